package middleware

import (
	"net/http"
	"strconv"
	"time"

	"techsel/pkg/apperror"
	"techsel/pkg/logger"
	"techsel/pkg/metrics"
	"techsel/pkg/ratelimit"
)

// RateLimitConfig конфигурация rate limiting
type RateLimitConfig struct {
	Limiter      ratelimit.Limiter
	KeyExtractor KeyExtractor
	ExcludePaths map[string]bool
}

// KeyExtractor функция извлечения ключа
type KeyExtractor func(r *http.Request) string

// DefaultKeyExtractor извлекает ключ по user_id или IP
func DefaultKeyExtractor(r *http.Request) string {
	// Сначала пробуем user_id
	if userID := GetUserID(r.Context()); userID != "" {
		return "user:" + userID
	}

	// Затем IP
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return "ip:" + xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return "ip:" + xri
	}

	return "ip:" + r.RemoteAddr
}

// RateLimit ограничивает частоту запросов. При ошибке лимитера запрос
// пропускается (fail open).
func RateLimit(cfg *RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = DefaultKeyExtractor
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.ExcludePaths != nil && cfg.ExcludePaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.KeyExtractor(r)

			allowed, err := cfg.Limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Log.Warn("Rate limit check failed", "error", err, "key", key)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				metrics.Get().RecordRateLimit(false)

				limitInfo, infoErr := cfg.Limiter.GetInfo(r.Context(), key)
				if infoErr != nil {
					logger.Log.Warn("Failed to get rate limit info", "error", infoErr, "key", key)
					// Используем дефолтные значения
					limitInfo = &ratelimit.LimitInfo{
						Limit:   0,
						ResetAt: time.Now().Add(time.Minute),
					}
				}

				logger.Log.Warn("Rate limit exceeded",
					"key", key,
					"limit", limitInfo.Limit,
				)

				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limitInfo.Limit))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", limitInfo.ResetAt.Format(time.RFC3339))
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(limitInfo.ResetAt).Seconds())+1))

				writeError(w, apperror.New(apperror.CodeRateLimited, "rate limit exceeded"))
				return
			}

			metrics.Get().RecordRateLimit(true)

			next.ServeHTTP(w, r)
		})
	}
}
