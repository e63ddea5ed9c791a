package http

import (
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kit/log"
	"github.com/google/uuid"
	"net/http"
	"time"
)

const requestIDHeader = "X-Request-ID"

// requestLogging tags every request with an id and logs its outcome
func requestLogging(logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			rw.Header().Set(requestIDHeader, requestID)

			ww := middleware.NewWrapResponseWriter(rw, r.ProtoMajor)
			defer func(begin time.Time) {
				logger.Log(
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"took", time.Since(begin),
				)
			}(time.Now())

			next.ServeHTTP(ww, r)
		})
	}
}
