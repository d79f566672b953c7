package middleware

import (
	"net/http"
	"time"

	"techsel/pkg/logger"
)

// statusRecorder запоминает статус ответа
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Logging логирует запросы с дополнительной информацией
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)

		logFields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", duration.Milliseconds(),
			"bytes", rec.bytes,
		}

		if requestID := GetRequestID(r.Context()); requestID != "" {
			logFields = append(logFields, "request_id", requestID)
		}

		if userID := GetUserID(r.Context()); userID != "" {
			logFields = append(logFields, "user_id", userID)
		}

		if rec.status >= http.StatusInternalServerError {
			logger.Log.Error("Request failed", logFields...)
		} else {
			logger.Log.Info("Request completed", logFields...)
		}
	})
}
