package logger

import "context"

type contextKey struct{}

var requestIDKey contextKey

// ContextWithRequestID attaches the request ID so layers below the HTTP
// stack, the SQL trace logger in particular, can correlate their entries.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the attached request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
