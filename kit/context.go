package kit

import "context"

type contextKey string

// RequestIDKey carries a per-invocation id through the tool call, so
// log lines from one call can be correlated.
const RequestIDKey contextKey = "kit_request_id"

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey).(string)
	return v
}
