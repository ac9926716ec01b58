package contextkeys

import (
	"context"

	"github.com/google/uuid"
)

// TraceIDHeader - имя заголовка HTTP и AMQP, в котором передаётся trace_id
const TraceIDHeader = "X-Trace-ID"

type traceIDKeyType struct{}

var traceIDKey = traceIDKeyType{}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext возвращает пустую строку, если trace_id не задан
func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// EnsureTraceID кладёт в контекст переданный trace_id, а если он пуст - новый UUID.
func EnsureTraceID(ctx context.Context, traceID string) (context.Context, string) {
	if traceID == "" {
		traceID = uuid.New().String()
	}
	return ContextWithTraceID(ctx, traceID), traceID
}
