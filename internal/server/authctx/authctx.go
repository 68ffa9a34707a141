package authctx

import (
	"context"

	"washtrack-backend/internal/service"
)

type contextKey string

const principalContextKey contextKey = "principal"

func WithPrincipal(ctx context.Context, p service.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// FromContext returns the verified principal, or nil when the request
// carried no valid session.
func FromContext(ctx context.Context) *service.Principal {
	val, ok := ctx.Value(principalContextKey).(service.Principal)
	if !ok {
		return nil
	}
	return &val
}
