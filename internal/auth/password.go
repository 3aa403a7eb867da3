package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/storage"
)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// InstitutionRegistrar creates the institution and its Admin at signup.
type InstitutionRegistrar interface {
	RegisterInstitution(ctx context.Context, name string, admin *models.User) (*models.Institution, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
	tenants InstitutionRegistrar
}

// Ensure PasswordAuthenticator implements Authenticator
var _ Authenticator = (*PasswordAuthenticator)(nil)

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage, tenants InstitutionRegistrar) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		tenants: tenants,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new institution and its Admin account.
func (a *PasswordAuthenticator) Register(ctx context.Context, name, email, credential, institutionName string) (*models.User, error) {
	if err := a.checkNewUser(ctx, name, email, credential); err != nil {
		return nil, err
	}

	admin, err := newUser("", name, email, credential, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if _, err := a.tenants.RegisterInstitution(ctx, institutionName, admin); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return admin, nil
}

// CreateUser adds a user to the Admin actor's institution.
func (a *PasswordAuthenticator) CreateUser(ctx context.Context, actor *models.User, name, email, credential string, role models.Role) (*models.User, error) {
	if err := Authorize(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	switch role {
	case models.RoleAdmin, models.RoleReviewer, models.RolePublic:
	default:
		return nil, ErrInvalidRole
	}

	if err := a.checkNewUser(ctx, name, email, credential); err != nil {
		return nil, err
	}

	return a.createUser(ctx, actor.InstitutionID, name, email, credential, role)
}

// Authenticate verifies the email and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (a *PasswordAuthenticator) checkNewUser(ctx context.Context, name, email, credential string) error {
	if strings.TrimSpace(name) == "" || normalizeEmail(email) == "" {
		return ErrInvalidInput
	}
	if err := a.ValidateCredential(credential); err != nil {
		return err
	}

	existing, err := a.storage.GetUserByEmail(ctx, normalizeEmail(email))
	if err == nil && existing != nil {
		return ErrEmailExists
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to look up email: %w", err)
	}
	return nil
}

func (a *PasswordAuthenticator) createUser(ctx context.Context, institutionID, name, email, credential string, role models.Role) (*models.User, error) {
	user, err := newUser(institutionID, name, email, credential, role)
	if err != nil {
		return nil, err
	}

	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func newUser(institutionID, name, email, credential string, role models.Role) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return models.NewUser(institutionID, normalizeEmail(email), strings.TrimSpace(name), string(hashedPassword), role), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
