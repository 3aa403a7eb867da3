package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/storage/sqlstore"
	"github.com/mmynk/clarity/internal/tenant"
)

func newTestAuthenticator(t *testing.T) *PasswordAuthenticator {
	t.Helper()

	store, err := sqlstore.New(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewPasswordAuthenticator(store, tenant.NewDirectory(store))
}

func TestRegisterAndAuthenticate(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	admin, err := a.Register(ctx, "Priya", "Priya@Example.com ", "password123", "Clarity University")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NotEmpty(t, admin.InstitutionID)
	assert.Equal(t, "priya@example.com", admin.Email)

	t.Run("correct password", func(t *testing.T) {
		user, err := a.Authenticate(ctx, "priya@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, user.ID)
	})

	t.Run("wrong password is unauthenticated", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "priya@example.com", "nope-nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("unknown email is unauthenticated", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "ghost@example.com", "password123")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := a.Register(ctx, "Other", "priya@example.com", "password123", "Other School")
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("blank institution name", func(t *testing.T) {
		_, err := a.Register(ctx, "Nina", "nina@example.com", "password123", "   ")
		assert.ErrorIs(t, err, tenant.ErrNameRequired)

		_, err = a.Register(ctx, "Nina", "nina@example.com", "password123", "Nina School")
		assert.NoError(t, err)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := a.Register(ctx, "Weak", "weak@example.com", "short", "Weak School")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("separate signups get separate institutions", func(t *testing.T) {
		other, err := a.Register(ctx, "Omar", "omar@example.com", "password123", "Other School")
		require.NoError(t, err)
		assert.NotEqual(t, admin.InstitutionID, other.InstitutionID)
	})
}

func TestCreateUser(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	admin, err := a.Register(ctx, "Admin", "admin@example.com", "password123", "Clarity University")
	require.NoError(t, err)

	reviewer, err := a.CreateUser(ctx, admin, "Rita", "rita@example.com", "password123", models.RoleReviewer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleReviewer, reviewer.Role)
	assert.Equal(t, admin.InstitutionID, reviewer.InstitutionID)

	t.Run("non-admin is denied", func(t *testing.T) {
		_, err := a.CreateUser(ctx, reviewer, "Sam", "sam@example.com", "password123", models.RoleAdmin)
		assert.ErrorIs(t, err, ErrDenied)
	})

	t.Run("nil actor is unauthenticated", func(t *testing.T) {
		_, err := a.CreateUser(ctx, nil, "Sam", "sam@example.com", "password123", models.RoleAdmin)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := a.CreateUser(ctx, admin, "Sam", "sam@example.com", "password123", models.RoleUnknown)
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestAuthorize(t *testing.T) {
	admin := &models.User{ID: "a", Role: models.RoleAdmin}
	reviewer := &models.User{ID: "r", Role: models.RoleReviewer}
	public := &models.User{ID: "p", Role: models.RolePublic}

	tests := []struct {
		name    string
		user    *models.User
		roles   []models.Role
		wantErr error
	}{
		{"admin allowed", admin, []models.Role{models.RoleAdmin}, nil},
		{"reviewer in set", reviewer, []models.Role{models.RoleAdmin, models.RoleReviewer}, nil},
		{"public denied", public, []models.Role{models.RoleAdmin, models.RoleReviewer}, ErrDenied},
		{"reviewer denied admin-only", reviewer, []models.Role{models.RoleAdmin}, ErrDenied},
		{"nil user", nil, []models.Role{models.RoleAdmin}, ErrUnauthenticated},
		{"empty set", admin, nil, ErrDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.user, tt.roles...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "u1", InstitutionID: "i1", Role: models.RoleReviewer}

	token, err := m.Generate(user)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "i1", claims.InstitutionID)
	assert.Equal(t, models.RoleReviewer, claims.Role)
	assert.True(t, claims.Matches(user))

	t.Run("role change invalidates match", func(t *testing.T) {
		changed := *user
		changed.Role = models.RoleAdmin
		assert.False(t, claims.Matches(&changed))
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTManager("other-secret", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("expired", func(t *testing.T) {
		expired, err := NewJWTManager("test-secret", -time.Minute).Generate(user)
		require.NoError(t, err)
		_, err = m.Validate(expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("context round trip", func(t *testing.T) {
		ctx := WithUser(context.Background(), user)
		assert.Equal(t, user, UserFromContext(ctx))
		assert.Nil(t, UserFromContext(context.Background()))
	})
}
