package utils

import (
	"context"
)

type contextKey string

const (
	UserIDKey        contextKey = "user_id"
	CorrelationIDKey contextKey = "correlation_id"
)

// GetUserIDFromContext returns the caller identity set by the identity middleware.
// User ids are opaque strings, no format is imposed.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func SetUserContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetCorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CorrelationIDKey).(string)
	return id
}

func SetCorrelationIDContext(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}
