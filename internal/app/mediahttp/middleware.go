package mediahttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// limit держит не больше Workers одновременно обрабатываемых запросов.
// Клиент, ушедший в очереди, получает 503.
func (s *Server) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.pool.Acquire(r.Context(), 1); err != nil {
			http.Error(w, "server busy", http.StatusServiceUnavailable)
			return
		}
		defer s.pool.Release(1)

		next.ServeHTTP(w, r)
	})
}

// accessLog пишет строку на каждый запрос после его завершения.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"range", r.Header.Get("Range"),
			"status", status,
			"bytes", ww.BytesWritten(),
			"took", time.Since(start),
			"req_id", middleware.GetReqID(r.Context()),
		)
	})
}
