package middleware

import (
	"net/http"
	"runtime/debug"

	"techsel/pkg/logger"
)

// Recovery перехватывает паники обработчиков и отвечает 500.
// Сетевая оптимизация паникует на нарушении инвариантов разреза,
// поэтому паника здесь означает дефект, а не пользовательскую ошибку.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Log.Error("Panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", GetRequestID(r.Context()),
					"stack", string(debug.Stack()),
				)
				http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}`,
					http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
