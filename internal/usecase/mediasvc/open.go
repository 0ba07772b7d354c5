package mediasvc

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/sir_venger/rangeserve/internal/byterange"
	"github.com/sir_venger/rangeserve/internal/mediatype"
	"github.com/sir_venger/rangeserve/internal/pathresolve"
	"github.com/sir_venger/rangeserve/internal/streamer"
)

// Media описывает открытый файл, готовый к отдаче. Закрывает вызывающий.
type Media struct {
	File        afero.File
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// Close закрывает файл.
func (m *Media) Close() error {
	return m.File.Close()
}

// Open разрешает путь запроса внутри корня и открывает обычный файл.
// Путь вне корня, отсутствующий файл и каталог возвращаются как ошибки из models.
func (s *Files) Open(ctx context.Context, requestPath string) (*Media, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rp := pathresolve.Resolve(s.Store.Root(), requestPath)
	f, info, err := s.Store.Open(rp)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(rp.AbsolutePath)
	return &Media{
		File:        f,
		Name:        name,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: mediatype.Detect(name, f),
	}, nil
}

// Stream отдаёт окно r файла в w чанками настроенного размера.
func (s *Files) Stream(ctx context.Context, m *Media, r byterange.ByteRange, w io.Writer) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return streamer.Stream(m.File, r, w, s.ChunkSize)
}
