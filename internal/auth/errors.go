package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no valid identity accompanies the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrDenied means the identity is valid but its role is not permitted.
	ErrDenied = errors.New("permission denied")

	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	ErrInvalidToken       = fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)
	ErrMissingToken       = fmt.Errorf("%w: authorization token required", ErrUnauthenticated)

	ErrWeakPassword = errors.New("password must be at least 8 characters")
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidInput = errors.New("name and email are required")
	ErrInvalidRole  = errors.New("role must be Admin, Reviewer or Public")
)
