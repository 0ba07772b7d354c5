// Package streamer копирует окно байт из файла в ответ ограниченными чанками.
package streamer

import (
	"errors"
	"fmt"
	"io"

	"github.com/sir_venger/rangeserve/internal/byterange"
	"github.com/sir_venger/rangeserve/internal/models"
)

// Границы размера чанка. Буфер размером со весь диапазон не допускается.
const (
	MinChunkSize     = 4 << 10
	DefaultChunkSize = 64 << 10
	MaxChunkSize     = 4 << 20
)

// ClampChunkSize приводит размер чанка к допустимым границам; <= 0 даёт значение по умолчанию.
func ClampChunkSize(n int) int {
	switch {
	case n <= 0:
		return DefaultChunkSize
	case n < MinChunkSize:
		return MinChunkSize
	case n > MaxChunkSize:
		return MaxChunkSize
	default:
		return n
	}
}

// Stream перематывает src на r.Start и пишет в dst ровно r.Length() байт.
//
// Если источник закончился раньше (файл урезали параллельно), возвращается
// фактически записанное число байт и models.ErrTruncatedSource. Ошибка записи
// (например, клиент отключился) сразу прерывает цикл и оборачивает models.ErrIO.
func Stream(src io.ReadSeeker, r byterange.ByteRange, dst io.Writer, chunkSize int) (int64, error) {
	remaining := r.Length()
	if remaining <= 0 {
		return 0, nil
	}

	if _, err := src.Seek(r.Start, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to %d: %w: %w", r.Start, models.ErrIO, err)
	}

	buf := make([]byte, min(int64(ClampChunkSize(chunkSize)), remaining))
	var written int64
	for remaining > 0 {
		want := min(int64(len(buf)), remaining)
		n, rerr := src.Read(buf[:want])
		if n > 0 {
			wn, werr := dst.Write(buf[:n])
			written += int64(wn)
			remaining -= int64(wn)
			if werr != nil {
				return written, fmt.Errorf("write chunk: %w: %w", models.ErrIO, werr)
			}
			if wn != n {
				return written, fmt.Errorf("write chunk: %w: %w", models.ErrIO, io.ErrShortWrite)
			}
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				if remaining > 0 {
					return written, fmt.Errorf("%w: %d of %d bytes", models.ErrTruncatedSource, written, r.Length())
				}
				return written, nil
			}
			return written, fmt.Errorf("read chunk: %w: %w", models.ErrIO, rerr)
		}
	}

	return written, nil
}
