package mediahttp

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sir_venger/rangeserve/internal/usecase/mediasvc"
)

const manualGCTTL = 24 * time.Hour

// gcOnce вручную запускает удаление брошенных временных файлов загрузок.
func (s *Server) gcOnce(w http.ResponseWriter, r *http.Request) {
	if _, err := s.files.Sweep(r.Context(), s.gcTTL); err != nil {
		s.logger.Error("gc failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartGC стартует периодическую очистку корня. Возвращает функцию остановки.
func StartGC(files mediasvc.Service, logger *log.Logger, ttl time.Duration, every time.Duration) func() {
	if every <= 0 || ttl <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(every)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-ticker.C:
				if _, err := files.Sweep(context.Background(), ttl); err != nil && logger != nil {
					logger.Warn("periodic gc failed", "err", err)
				}
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
		})
	}
}
