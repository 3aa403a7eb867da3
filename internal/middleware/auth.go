package middleware

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/models"
)

// UserResolver loads the user a token was issued to.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// GetUserID extracts the authenticated user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	if user := auth.UserFromContext(ctx); user != nil {
		return user.ID
	}
	return ""
}

// RequireAuth returns a middleware that validates JWT tokens and requires authentication.
// It extracts the token from the Authorization header, validates it, re-reads
// the user from the store, and adds the user to the request context.
func RequireAuth(jwtManager *auth.JWTManager, users UserResolver) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			user, err := authenticate(ctx, jwtManager, users, authHeader)
			if err != nil {
				slog.Warn("Rejected token", "procedure", req.Spec().Procedure, "error", err)
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(auth.WithUser(ctx, user), req)
		}
	}
}

// OptionalAuth returns a middleware that validates JWT tokens if present, but allows
// requests without authentication. Handlers see a nil user for anonymous calls.
func OptionalAuth(jwtManager *auth.JWTManager, users UserResolver) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if authHeader := req.Header().Get("Authorization"); authHeader != "" {
				user, err := authenticate(ctx, jwtManager, users, authHeader)
				if err != nil {
					// A bad token is not silently downgraded to anonymous.
					return nil, connect.NewError(connect.CodeUnauthenticated, err)
				}
				ctx = auth.WithUser(ctx, user)
			}
			return next(ctx, req)
		}
	}
}

// authenticate resolves the bearer token to the current user record. Tokens
// whose institution or role no longer match the user are rejected.
func authenticate(ctx context.Context, jwtManager *auth.JWTManager, users UserResolver, header string) (*models.User, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, auth.ErrInvalidToken
	}

	claims, err := jwtManager.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	if !claims.Matches(user) {
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}
