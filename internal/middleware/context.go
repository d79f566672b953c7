// Package middleware содержит HTTP middleware сервера планировщика:
// идентификаторы запросов, логирование, метрики, CORS, аутентификация
// и rate limiting.
package middleware

import (
	"context"

	"github.com/google/uuid"

	"techsel/pkg/passhash"
)

// Context keys
type contextKey string

const (
	userIDKey    contextKey = "user_id"
	claimsKey    contextKey = "claims"
	requestIDKey contextKey = "request_id"
)

// GetUserID извлекает user_id из контекста
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// GetClaims извлекает JWT claims из контекста
func GetClaims(ctx context.Context) *passhash.Claims {
	if v, ok := ctx.Value(claimsKey).(*passhash.Claims); ok {
		return v
	}
	return nil
}

// GetRequestID извлекает request_id из контекста
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID добавляет user_id в контекст
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithClaims добавляет JWT claims в контекст
func WithClaims(ctx context.Context, claims *passhash.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// WithRequestID добавляет request_id в контекст
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GenerateRequestID генерирует уникальный ID запроса
func GenerateRequestID() string {
	return uuid.NewString()
}
