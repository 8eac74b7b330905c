package http

import (
	"context"
	"net/http"
)

// Context keys for ambient client metadata. Typed keys avoid collisions
// with other packages' context values.
type contextKey string

const (
	userAgentKey contextKey = "client_user_agent"
	referrerKey  contextKey = "client_referrer"
)

// ClientInfoMiddleware captures the caller's User-Agent and Referer
// headers into the request context, where the analytics service's
// environment reader picks them up at tracking time
func ClientInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), userAgentKey, r.UserAgent())
		ctx = context.WithValue(ctx, referrerKey, r.Referer())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestEnvironment reads ambient client metadata from the request
// context. It implements the analytics service's environment reader, so
// the core never touches HTTP types directly and tests can substitute a
// fake.
type RequestEnvironment struct{}

// NewRequestEnvironment creates the context-backed environment reader
func NewRequestEnvironment() *RequestEnvironment {
	return &RequestEnvironment{}
}

// UserAgent returns the caller's user agent, or "" outside a request
func (RequestEnvironment) UserAgent(ctx context.Context) string {
	ua, _ := ctx.Value(userAgentKey).(string)
	return ua
}

// Referrer returns the page that directed the caller here, or ""
func (RequestEnvironment) Referrer(ctx context.Context) string {
	ref, _ := ctx.Value(referrerKey).(string)
	return ref
}
