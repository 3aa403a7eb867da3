package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/internal/assistant"
	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/ledger"
	"github.com/mmynk/clarity/internal/tenant"
	"github.com/mmynk/clarity/pkg/api/apiconnect"
)

// Error kinds carried in the "kind" field of every error's detail.
const (
	KindUnauthenticated      = "Unauthenticated"
	KindDenied               = "Denied"
	KindNotFound             = "NotFound"
	KindValidation           = "ValidationError"
	KindCrossTenantReference = "CrossTenantReference"
	KindInvalidTransition    = "InvalidTransition"
	KindAlreadyExists        = "AlreadyExists"
	KindUnavailable          = "Unavailable"
	KindInternal             = "Internal"
)

// toConnectError maps a domain error to a Connect error with a kind detail.
// Unrecognized errors are logged and reported as internal without their text.
func toConnectError(err error) *connect.Error {
	code, kind := classify(err)

	msgErr := err
	if code == connect.CodeInternal {
		slog.Error("Internal error", "error", err)
		msgErr = errors.New("internal error")
	}

	return apiconnect.NewError(code, msgErr, kind)
}

func classify(err error) (connect.Code, string) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return connect.CodeUnauthenticated, KindUnauthenticated
	case errors.Is(err, auth.ErrDenied):
		return connect.CodePermissionDenied, KindDenied
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, tenant.ErrUnknownInstitution):
		return connect.CodeNotFound, KindNotFound
	case errors.Is(err, ledger.ErrValidation),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, auth.ErrInvalidRole),
		errors.Is(err, tenant.ErrNameRequired):
		return connect.CodeInvalidArgument, KindValidation
	case errors.Is(err, ledger.ErrCrossTenantReference):
		return connect.CodeFailedPrecondition, KindCrossTenantReference
	case errors.Is(err, ledger.ErrInvalidTransition):
		return connect.CodeFailedPrecondition, KindInvalidTransition
	case errors.Is(err, auth.ErrEmailExists):
		return connect.CodeAlreadyExists, KindAlreadyExists
	case errors.Is(err, assistant.ErrUnavailable):
		return connect.CodeUnavailable, KindUnavailable
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled, KindUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded, KindUnavailable
	}
	return connect.CodeInternal, KindInternal
}

// KindOf returns the kind detail of an error produced by these services, or
// "" if err carries none.
func KindOf(err error) string {
	return apiconnect.ErrorKind(err)
}
