package mediasvc

import (
	"context"
	"time"

	"github.com/sir_venger/rangeserve/internal/models"
)

// Usage хранит агрегированную статистика по корню для /health.
type Usage struct {
	TotalBytes int64 `json:"total_bytes"`
	Files      int   `json:"files"`
}

// List возвращает файлы корня для индексной страницы с учётом фильтра расширений.
func (s *Files) List(ctx context.Context) ([]models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Store.List(s.ListExtensions)
}

// Sweep удаляет брошенные временные файлы загрузок старше ttl.
func (s *Files) Sweep(ctx context.Context, ttl time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	removed, err := s.Store.Sweep(ttl)
	if removed > 0 {
		s.Logger.Info("stale uploads removed", "count", removed)
	}
	return removed, err
}

// Usage считает суммарный размер файлов под корнем.
func (s *Files) Usage(ctx context.Context) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	total, files, err := s.Store.Usage()
	return Usage{TotalBytes: total, Files: files}, err
}
