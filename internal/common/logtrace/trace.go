package logtrace

import (
	"context"
)

type requestIDKey struct{}

// WithRequestID returns a context whose outgoing API request is tagged with id
// instead of a freshly generated one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext extracts the request ID from the context.
// Returns an empty string if the context is nil or if no request ID is found.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, ok := ctx.Value(requestIDKey{}).(string)
	if !ok {
		return ""
	}
	return r
}
