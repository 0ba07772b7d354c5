package mediasvc

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sir_venger/rangeserve/internal/byterange"
	"github.com/sir_venger/rangeserve/internal/logging"
	"github.com/sir_venger/rangeserve/internal/models"
	"github.com/sir_venger/rangeserve/internal/storage"
)

// Service объединяет операции выдачи и загрузки медиафайлов.
type Service interface {
	Open(ctx context.Context, requestPath string) (*Media, error)
	Stream(ctx context.Context, m *Media, r byterange.ByteRange, w io.Writer) (int64, error)
	Upload(ctx context.Context, req UploadRequest) (models.UploadResult, error)
	List(ctx context.Context) ([]models.Entry, error)
	Sweep(ctx context.Context, ttl time.Duration) (int, error)
	Usage(ctx context.Context) (Usage, error)
}

type Deps struct {
	Store          *storage.Store
	Logger         *log.Logger
	ChunkSize      int
	MaxUploadSize  int64
	ListExtensions []string
	// Now подменяется в тестах; по умолчанию time.Now.
	Now func() time.Time
}

type Files struct {
	Deps
}

// New конструирует сервис с заданными зависимостями.
func New(deps Deps) *Files {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	return &Files{Deps: deps}
}

var _ Service = (*Files)(nil)
