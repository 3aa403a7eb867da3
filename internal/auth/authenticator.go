package auth

import (
	"context"

	"github.com/mmynk/clarity/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register signs up a new institution and its first user, who becomes the
	// institution's Admin. Returns the created user.
	Register(ctx context.Context, name, email, credential, institutionName string) (*models.User, error)

	// CreateUser adds a user with the given role to the actor's institution.
	// Only Admins may create users.
	CreateUser(ctx context.Context, actor *models.User, name, email, credential string, role models.Role) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	// Returns ErrInvalidCredentials if authentication fails.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
