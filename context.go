package goNebula

import "context"

type requestIDContextKey struct{}

// WithRequestID attaches a request identifier to ctx. Execute sends it as
// X-Request-ID instead of generating a fresh one, which lets callers
// correlate a chain of calls in backend logs and audit events.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// RequestIDFromContext returns the identifier set by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
