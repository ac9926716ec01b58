package rest

import (
	"net/http"
	"time"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/port"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// LoggerMiddleware кладёт в контекст логгер с trace_id и пишет начало/конец запроса
func LoggerMiddleware(logger port.LoggerPort) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// чужой trace_id принимаем, только если это UUID
			traceID := r.Header.Get(contextkeys.TraceIDHeader)
			if _, err := uuid.Parse(traceID); err != nil {
				traceID = ""
			}
			ctx, traceID := contextkeys.EnsureTraceID(r.Context(), traceID)

			// для use case и адаптеров - без http-полей
			coreLogger := logger.WithFields(port.Fields{"trace_id": traceID})
			httpLogger := coreLogger.WithFields(port.Fields{
				"http_method": r.Method,
				"http_path":   r.URL.Path,
				"remote_addr": r.RemoteAddr,
			})
			ctx = contextkeys.ContextWithLogger(ctx, coreLogger)

			w.Header().Set(contextkeys.TraceIDHeader, traceID)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			startTime := time.Now()

			httpLogger.Debug("Request started", nil)

			next.ServeHTTP(ww, r.WithContext(ctx))

			httpLogger.Info("Request finished", port.Fields{
				"status_code":   ww.Status(),
				"bytes_written": ww.BytesWritten(),
				"duration_ms":   time.Since(startTime).Milliseconds(),
			})
		})
	}
}
