package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	SessionIDKey contextKey = "session_id"
)

const RequestIDHeader = "X-Request-ID"

func NewRequestID() string {
	return uuid.New().String()
}

// requestIDFromHeader keeps a caller-supplied ID only when it is a UUID.
func requestIDFromHeader(v string) string {
	if id, err := uuid.Parse(v); err == nil {
		return id.String()
	}
	return NewRequestID()
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// ContextWithSessionID tags ctx with the calculator session being served.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

func SessionIDFromContext(ctx context.Context) string {
	return stringValue(ctx, SessionIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	v, ok := ctx.Value(key).(string)
	if !ok {
		return ""
	}
	return v
}
