package auth

import (
	"context"
	"fmt"
	"slices"

	"github.com/mmynk/clarity/internal/models"
)

// Authorize succeeds iff user holds one of roles.
func Authorize(user *models.User, roles ...models.Role) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if slices.Contains(roles, user.Role) {
		return nil
	}
	return fmt.Errorf("%w: role %s", ErrDenied, user.Role)
}

type contextKey struct{}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the authenticated user, or nil if the request is
// anonymous.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(contextKey{}).(*models.User)
	return user
}
