package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// ErrorKindHeader carries the escrow error kind of a failed call.
const ErrorKindHeader = "Escrow-Error-Kind"

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It logs the procedure name, caller, duration, and any error codes/messages.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			var subject, role string
			if p, ok := GetPrincipal(ctx); ok {
				subject, role = p.Subject, string(p.Role)
			}

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					slog.Warn("RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"kind", connectErr.Meta().Get(ErrorKindHeader),
						"error", connectErr.Message(),
						"subject", subject,
						"role", role,
						"duration_ms", duration,
					)
				} else {
					slog.Error("RPC error",
						"procedure", procedure,
						"error", err,
						"subject", subject,
						"role", role,
						"duration_ms", duration,
					)
				}
			} else {
				slog.Info("RPC ok",
					"procedure", procedure,
					"subject", subject,
					"role", role,
					"duration_ms", duration,
				)
			}

			return resp, err
		}
	}
}
