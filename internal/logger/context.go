package logger

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	loggerKey
)

// identity is the per-request data every log line carries
type identity struct {
	requestID string
	userID    string
}

func identityFrom(ctx context.Context) identity {
	id, _ := ctx.Value(identityKey).(identity)
	return id
}

// WithRequestID tags ctx with a request ID, generating one when requestID is empty
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	id := identityFrom(ctx)
	id.requestID = requestID
	return context.WithValue(ctx, identityKey, id)
}

// WithUserID tags ctx with the authenticated user
func WithUserID(ctx context.Context, userID string) context.Context {
	id := identityFrom(ctx)
	id.userID = userID
	return context.WithValue(ctx, identityKey, id)
}

// WithLogger attaches l to ctx
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx, or the default logger
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

func extractContextFields(ctx context.Context) []Field {
	id := identityFrom(ctx)
	fields := make([]Field, 0, 2)
	if id.requestID != "" {
		fields = append(fields, String("request_id", id.requestID))
	}
	if id.userID != "" {
		fields = append(fields, String("user_id", id.userID))
	}
	return fields
}

// Ctx returns the context's logger with its request and user fields attached
func Ctx(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
