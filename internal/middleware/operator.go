package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// OperatorKey is the context key for the staff member driving the request.
const OperatorKey contextKey = "operator"

// OperatorHeader names the request header that carries the operator name.
const OperatorHeader = "X-Clinic-Operator"

// GetOperator extracts the operator from the context.
// Returns empty string if not found.
func GetOperator(ctx context.Context) string {
	operator, _ := ctx.Value(OperatorKey).(string)
	return operator
}

// OperatorInterceptor copies the operator header into the request context so
// logs can attribute actions. It is attribution only and never rejects a call.
func OperatorInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if operator := strings.TrimSpace(req.Header().Get(OperatorHeader)); operator != "" {
				ctx = context.WithValue(ctx, OperatorKey, operator)
			}
			return next(ctx, req)
		}
	}
}
