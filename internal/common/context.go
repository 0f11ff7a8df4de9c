package common

import "context"

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// WithCorrelationID stores the request's correlation id on ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID returns the id stored by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// ForRequest tags l with the correlation id on ctx, if any.
func (l *Logger) ForRequest(ctx context.Context) *Logger {
	if id := CorrelationID(ctx); id != "" {
		return l.WithCorrelationId(id)
	}
	return l
}
