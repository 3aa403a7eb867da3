package tenant

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/storage"
	"github.com/mmynk/clarity/internal/storage/sqlstore"
)

func TestDirectory(t *testing.T) {
	store, err := sqlstore.New(filepath.Join(t.TempDir(), "tenant.db"))
	require.NoError(t, err)
	defer store.Close()

	dir := NewDirectory(store)
	ctx := context.Background()

	t.Run("create then resolve", func(t *testing.T) {
		inst, err := dir.CreateInstitution(ctx, "  Clarity University ")
		require.NoError(t, err)
		assert.Equal(t, "Clarity University", inst.Name)

		got, err := dir.ResolveInstitution(ctx, inst.ID)
		require.NoError(t, err)
		assert.Equal(t, inst.ID, got.ID)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := dir.CreateInstitution(ctx, "   ")
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("register with admin", func(t *testing.T) {
		admin := models.NewUser("", "head@example.com", "Head", "hash", models.RoleAdmin)
		inst, err := dir.RegisterInstitution(ctx, " Hill School ", admin)
		require.NoError(t, err)
		assert.Equal(t, "Hill School", inst.Name)
		assert.Equal(t, inst.ID, admin.InstitutionID)
	})

	t.Run("register blank name stores nothing", func(t *testing.T) {
		admin := models.NewUser("", "blank@example.com", "Blank", "hash", models.RoleAdmin)
		_, err := dir.RegisterInstitution(ctx, "  ", admin)
		assert.ErrorIs(t, err, ErrNameRequired)

		_, err = store.GetUserByEmail(ctx, "blank@example.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("register duplicate admin email", func(t *testing.T) {
		admin := models.NewUser("", "head@example.com", "Again", "hash", models.RoleAdmin)
		_, err := dir.RegisterInstitution(ctx, "Second Hill School", admin)
		assert.ErrorIs(t, err, storage.ErrDuplicate)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := dir.ResolveInstitution(ctx, "does-not-exist")
		assert.ErrorIs(t, err, ErrUnknownInstitution)

		_, err = dir.ResolveInstitution(ctx, "")
		assert.ErrorIs(t, err, ErrUnknownInstitution)
	})
}
