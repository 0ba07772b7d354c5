package mediasvc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/sir_venger/rangeserve/internal/models"
	"github.com/sir_venger/rangeserve/internal/pathresolve"
	"github.com/sir_venger/rangeserve/internal/storage"
	"github.com/sir_venger/rangeserve/internal/uploadname"
)

// UploadRequest содержит то, что HTTP-слой передаёт в Upload.
type UploadRequest struct {
	Body io.Reader
	// ContentLength < 0 означает, что длина неизвестна.
	ContentLength int64
	ContentType   string
	// FileName содержит значение заголовка File-Name как пришло (может быть URL-encoded).
	FileName string
}

// Upload сохраняет тело запроса как файл в корне.
//
// Имя берётся из File-Name, иначе для multipart/form-data из filename="..." в начале
// тела (остаток тела пишется как есть), иначе генерируется.
func (s *Files) Upload(ctx context.Context, req UploadRequest) (models.UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return models.UploadResult{}, err
	}
	if s.MaxUploadSize > 0 && req.ContentLength > s.MaxUploadSize {
		return models.UploadResult{}, fmt.Errorf("%w: %s > %s", models.ErrTooLarge,
			humanize.IBytes(uint64(req.ContentLength)), humanize.IBytes(uint64(s.MaxUploadSize)))
	}

	var body io.Reader = req.Body
	if s.MaxUploadSize > 0 {
		body = &cappedReader{r: body, left: s.MaxUploadSize}
	}
	br := bufio.NewReader(body)

	kind := models.UploadRaw
	if isMultipart(req.ContentType) {
		kind = models.UploadMultipart
	}

	name := decodeName(req.FileName)
	if name == "" && kind == models.UploadMultipart {
		hdr := uploadname.Extract(br)
		if hdr.Found {
			name = strings.TrimSpace(hdr.Filename)
		}
		s.Logger.Debug("multipart header scanned", "bytes", len(hdr.HeaderText), "terminated", hdr.Terminated, "filename", hdr.Filename)
	}

	generated := false
	if name == "" {
		name = DefaultName(kind, s.Now())
		generated = true
	}
	if !validName(name) {
		return models.UploadResult{}, fmt.Errorf("%w: %q", models.ErrInvalidName, name)
	}

	rp := pathresolve.Resolve(s.Store.Root(), "/"+name)
	n, err := s.Store.Save(rp, br)
	if err != nil {
		return models.UploadResult{}, err
	}

	s.Logger.Info("upload stored", "name", name, "size", humanize.IBytes(uint64(n)), "generated", generated)

	return models.UploadResult{Name: name, Size: n, Generated: generated}, nil
}

// DefaultName синтезирует имя для загрузки без имени: метка времени плюс кусок uuid.
func DefaultName(kind models.UploadKind, now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	if kind == models.UploadMultipart {
		return fmt.Sprintf("video_%d_%s.mp4", now.UnixMilli(), suffix)
	}
	return fmt.Sprintf("uploaded_file_%d_%s.dat", now.UnixMilli(), suffix)
}

func isMultipart(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(contentType), "multipart/form-data")
	}
	return mt == "multipart/form-data"
}

func decodeName(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if dec, err := url.PathUnescape(v); err == nil {
		v = dec
	}
	return strings.TrimSpace(v)
}

// validName допускает только один элемент пути без разделителей.
// Имена временных файлов загрузок заняты: такой файл не отдался бы и был бы удалён GC.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." || storage.Reserved(name) {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}

// cappedReader пропускает не больше left байт; попытка прочитать сверх лимита даёт ErrTooLarge.
type cappedReader struct {
	r    io.Reader
	left int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.left <= 0 {
		var probe [1]byte
		n, err := c.r.Read(probe[:])
		if n > 0 {
			return 0, models.ErrTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	return n, err
}
