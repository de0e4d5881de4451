package logging

import "context"

type contextKey string

const (
	backendKey contextKey = "backend"
	refKey     contextKey = "ref"
)

// WithBackend adds the VCS backend name to the context.
func WithBackend(ctx context.Context, backend string) context.Context {
	return context.WithValue(ctx, backendKey, backend)
}

// WithRef adds the revision reference being operated on to the context.
func WithRef(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, refKey, ref)
}

// GetBackend retrieves the backend name from the context.
// Returns empty string if not present.
func GetBackend(ctx context.Context) string {
	if name, ok := ctx.Value(backendKey).(string); ok {
		return name
	}
	return ""
}

// GetRef retrieves the revision reference from the context.
// Returns empty string if not present.
func GetRef(ctx context.Context) string {
	if ref, ok := ctx.Value(refKey).(string); ok {
		return ref
	}
	return ""
}
