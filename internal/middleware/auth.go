package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"techsel/pkg/apperror"
	"techsel/pkg/logger"
	"techsel/pkg/metrics"
	"techsel/pkg/passhash"
)

// AuthConfig конфигурация auth middleware
type AuthConfig struct {
	Manager     *passhash.JWTManager
	PublicPaths map[string]bool
}

// PublicPaths возвращает список путей без аутентификации
func PublicPaths() map[string]bool {
	return map[string]bool{
		"/healthz": true,
		"/metrics": true,
	}
}

// Auth проверяет JWT токен из заголовка Authorization.
// Публичные пути пропускаются без проверки.
func Auth(cfg *AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Проверяем, является ли путь публичным
			if cfg.PublicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token, err := extractToken(r)
			if err != nil {
				metrics.Get().RecordAuthAttempt(false)
				writeError(w, err)
				return
			}

			claims, err := cfg.Manager.ValidateToken(token)
			if err != nil {
				metrics.Get().RecordAuthAttempt(false)
				logger.Log.Warn("Token validation failed", "error", err)
				writeError(w, apperror.New(apperror.CodeUnauthenticated, "invalid token"))
				return
			}

			metrics.Get().RecordAuthAttempt(true)

			// Добавляем информацию о пользователе в контекст
			ctx := WithUserID(r.Context(), claims.UserID)
			ctx = WithClaims(ctx, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperror.New(apperror.CodeUnauthenticated, "no authorization header")
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return "", apperror.New(apperror.CodeUnauthenticated, "malformed authorization header")
	}

	return token, nil
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperror.HTTPStatus(err))

	body := map[string]any{
		"error": map[string]any{
			"code":    string(apperror.Code(err)),
			"message": err.Error(),
		},
	}
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		logger.Log.Warn("Failed to write auth error", "error", encErr)
	}
}
