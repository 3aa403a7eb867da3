package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/pkg/api/apiconnect"
)

// LoggingInterceptor returns a Connect interceptor that logs one line per
// call with the caller's tenant. Failures also carry the Connect code and
// the error kind. Install it inside the auth interceptor so the user is
// known.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if user := auth.UserFromContext(ctx); user != nil {
				attrs = append(attrs, "user_id", user.ID, "institution_id", user.InstitutionID, "role", user.Role.String())
			}

			if err == nil {
				slog.InfoContext(ctx, "RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			attrs = append(attrs, "code", code.String())
			if kind := apiconnect.ErrorKind(err); kind != "" {
				attrs = append(attrs, "kind", kind)
			}

			var connectErr *connect.Error
			if errors.As(err, &connectErr) && code != connect.CodeInternal && code != connect.CodeUnknown {
				slog.WarnContext(ctx, "RPC error", append(attrs, "error", connectErr.Message())...)
			} else {
				slog.ErrorContext(ctx, "RPC error", append(attrs, "error", err)...)
			}
			return resp, err
		}
	}
}
