package http

import (
	"context"

	"eduvista/site/internal/domain/auth"
)

type contextKey string

const (
	requestIDContextKey contextKey = "eduvista/request-id"
	clientContextKey    contextKey = "eduvista/client"
	principalContextKey contextKey = "eduvista/principal"
)

// clientInfo describes the caller as seen by the transport.
type clientInfo struct {
	IP        string
	UserAgent string
}

// RequestIDFromContext extracts the request identifier from the context when available.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(requestIDContextKey).(string); ok {
		return value
	}
	return ""
}

// PrincipalFromContext returns the authenticated admin user, or nil on public routes.
func PrincipalFromContext(ctx context.Context) *auth.Principal {
	if ctx == nil {
		return nil
	}
	principal, _ := ctx.Value(principalContextKey).(*auth.Principal)
	return principal
}

func clientFromContext(ctx context.Context) clientInfo {
	if ctx == nil {
		return clientInfo{}
	}
	info, _ := ctx.Value(clientContextKey).(clientInfo)
	return info
}
