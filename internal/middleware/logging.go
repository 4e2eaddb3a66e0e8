package middleware

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// Rejections the caller can fix (bad input, missing records, short stock) log
// at WARN; server faults log at ERROR. The operator attribute is included only
// when the request carried one, so place it after OperatorInterceptor.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			attrs := []any{"procedure", req.Spec().Procedure}
			if operator := GetOperator(ctx); operator != "" {
				attrs = append(attrs, "operator", operator)
			}
			attrs = append(attrs, "duration_ms", time.Since(start).Milliseconds())

			if err == nil {
				slog.Info("RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			attrs = append(attrs, "code", code.String(), "error", err)
			if isCallerError(code) {
				slog.Warn("RPC rejected", attrs...)
			} else {
				slog.Error("RPC failed", attrs...)
			}
			return resp, err
		}
	}
}

func isCallerError(code connect.Code) bool {
	switch code {
	case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeFailedPrecondition, connect.CodeCanceled:
		return true
	default:
		return false
	}
}
