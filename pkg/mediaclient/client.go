// Package mediaclient реализует HTTP-клиент медиасервера для чтения диапазонов, докачки и загрузки файлов.
package mediaclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sir_venger/rangeserve/internal/byterange"
	"github.com/sir_venger/rangeserve/internal/models"
	"github.com/sir_venger/rangeserve/pkg/mediaproto"
)

// DefaultChunk задаёт размер одного диапазона при Download.
const DefaultChunk = 1 << 20

// Fetched описывает ответ на запрос диапазона. Body закрывает вызывающий.
type Fetched struct {
	// Partial выставлен для 206; тогда Range хранит фактически отданное окно.
	Partial bool
	Range   byterange.ByteRange
	Body    io.ReadCloser
}

type UploadRequest struct {
	Name string
	Body io.Reader
	// Size <= 0 означает, что длина неизвестна, и тело уйдёт chunked.
	Size int64
}

type Client interface {
	// Fetch запрашивает байты [start, end] файла name. end < 0 означает "до конца",
	// start < 0 запрашивает весь файл без заголовка Range.
	Fetch(ctx context.Context, baseURL, name string, start, end int64) (*Fetched, error)
	// Download скачивает файл последовательными диапазонами по chunk байт и пишет в dst.
	Download(ctx context.Context, baseURL, name string, chunk int64, dst io.Writer) (int64, error)
	// Upload загружает тело как файл с именем req.Name.
	Upload(ctx context.Context, baseURL string, req UploadRequest) (models.UploadResult, error)
}

type Option func(*httpClient)

// WithHTTPClient подменяет http.Client, например на клиент httptest-сервера.
func WithHTTPClient(c *http.Client) Option {
	return func(h *httpClient) {
		h.c = c
	}
}

// WithProgress включает индикатор выполнения в out.
func WithProgress(out io.Writer) Option {
	return func(h *httpClient) {
		h.progress = out
	}
}

type httpClient struct {
	c        *http.Client
	progress io.Writer
}

// New создаёт HTTP-клиент по умолчанию.
func New(opts ...Option) Client {
	h := &httpClient{
		c: &http.Client{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func fileURL(baseURL, name string) string {
	return fmt.Sprintf(mediaproto.FilesPathFormat, strings.TrimRight(baseURL, "/"), url.PathEscape(name))
}

// Fetch делает один GET с Range и проверяет, что сервер ответил согласованно.
func (h *httpClient) Fetch(ctx context.Context, baseURL, name string, start, end int64) (*Fetched, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL(baseURL, name), nil)
	if err != nil {
		return nil, err
	}
	if start >= 0 {
		spec := fmt.Sprintf("bytes=%d-", start)
		if end >= 0 {
			spec += fmt.Sprint(end)
		}
		req.Header.Set(mediaproto.HeaderRange, spec)
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return &Fetched{Range: byterange.Whole(resp.ContentLength), Body: resp.Body}, nil
	case http.StatusPartialContent:
		r, ok, err := byterange.ParseContentRange(resp.Header.Get(mediaproto.HeaderContentRange))
		if err != nil || !ok {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: bad Content-Range %q", name, resp.Header.Get(mediaproto.HeaderContentRange))
		}
		return &Fetched{Partial: true, Range: r, Body: resp.Body}, nil
	}

	defer resp.Body.Close()
	return nil, statusError("fetch "+name, resp)
}

// Download качает файл окнами [off, off+chunk-1], пока не дойдёт до Total.
// Каждое окно проверяется на полноту; сервер, игнорирующий Range, отдаёт всё за один раз.
func (h *httpClient) Download(ctx context.Context, baseURL, name string, chunk int64, dst io.Writer) (int64, error) {
	if chunk <= 0 {
		chunk = DefaultChunk
	}

	var (
		written int64
		bar     *progressBar
	)
	for off := int64(0); ; {
		f, err := h.Fetch(ctx, baseURL, name, off, off+chunk-1)
		if err != nil {
			// пустой файл: любой диапазон неудовлетворим
			if off == 0 && errors.Is(err, models.ErrUnsatisfiableRange) {
				return 0, nil
			}
			bar.Fail(err)
			return written, err
		}
		if bar == nil {
			bar = newProgressBar(h.progress, "Downloading "+name, f.Range.Total)
			bar.render(true, "")
		}

		n, err := io.Copy(io.MultiWriter(dst, progressWriter{bar: bar}), f.Body)
		f.Body.Close()
		written += n
		if err == nil && f.Range.Total >= 0 && n != f.Range.Length() {
			err = fmt.Errorf("%w: got %d of %d bytes at offset %d", models.ErrTruncatedSource, n, f.Range.Length(), f.Range.Start)
		}
		if err != nil {
			bar.Fail(err)
			return written, err
		}

		if !f.Partial || f.Range.End+1 >= f.Range.Total {
			bar.Finish()
			return written, nil
		}
		off = f.Range.End + 1
	}
}

// Upload отправляет тело на /upload с именем в заголовке File-Name.
func (h *httpClient) Upload(ctx context.Context, baseURL string, req UploadRequest) (models.UploadResult, error) {
	body := req.Body
	bar := newProgressBar(h.progress, "Uploading "+req.Name, req.Size)
	if body != nil && bar != nil {
		body = io.TeeReader(body, progressWriter{bar: bar})
	}

	u := fmt.Sprintf(mediaproto.UploadPathFormat, strings.TrimRight(baseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		bar.Fail(err)
		return models.UploadResult{}, err
	}
	bar.render(true, "")

	if req.Size > 0 {
		httpReq.ContentLength = req.Size
	}
	httpReq.Header.Set("Content-Type", "application/octet-stream")
	if req.Name != "" {
		httpReq.Header.Set(mediaproto.HeaderFileName, url.PathEscape(req.Name))
	}

	// 303 на индекс не нужен, итог лежит в теле ответа
	cl := *h.c
	cl.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := cl.Do(httpReq)
	if err != nil {
		bar.Fail(err)
		return models.UploadResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther && resp.StatusCode >= http.StatusMultipleChoices {
		err = statusError("upload "+req.Name, resp)
		bar.Fail(err)
		return models.UploadResult{}, err
	}

	var res models.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		err = fmt.Errorf("upload %s: decode response: %w", req.Name, err)
		bar.Fail(err)
		return models.UploadResult{}, err
	}

	bar.Finish()
	return res, nil
}

// statusError переводит статус ответа обратно в ошибки models, чтобы вызывающий мог их различать.
func statusError(op string, resp *http.Response) error {
	var sentinel error
	switch resp.StatusCode {
	case http.StatusNotFound:
		sentinel = models.ErrNotFound
	case http.StatusRequestedRangeNotSatisfiable:
		sentinel = models.ErrUnsatisfiableRange
	case http.StatusRequestEntityTooLarge:
		sentinel = models.ErrTooLarge
	case http.StatusBadRequest:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		if strings.Contains(string(msg), "range") {
			sentinel = models.ErrMalformedRange
		} else {
			sentinel = models.ErrInvalidName
		}
	default:
		return fmt.Errorf("%s: %s", op, resp.Status)
	}
	return fmt.Errorf("%s: %w", op, sentinel)
}
