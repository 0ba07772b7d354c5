package mediahttp

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/sir_venger/rangeserve/internal/byterange"
	"github.com/sir_venger/rangeserve/internal/models"
	"github.com/sir_venger/rangeserve/pkg/httperrors"
	"github.com/sir_venger/rangeserve/pkg/mediaproto"
)

// serveFile отдаёт файл под prefix целиком или одним диапазоном.
// Путь берётся из уже декодированного URL.Path, чтобы %2e%2e не обходил проверку корня.
func (s *Server) serveFile(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqPath := strings.TrimPrefix(r.URL.Path, prefix)

		m, err := s.files.Open(r.Context(), reqPath)
		if err != nil {
			s.logger.Debug("open failed", "path", reqPath, "err", err)
			httperrors.Write(w, err)
			return
		}
		defer m.Close()

		plan := byterange.PlanResponse(byterange.Parse(r.Header.Get(mediaproto.HeaderRange), m.Size))
		h := w.Header()
		for k, v := range plan.Header {
			h[k] = v
		}

		switch {
		case plan.Status == http.StatusBadRequest:
			httperrors.Write(w, models.ErrMalformedRange)
			return
		case plan.Body == nil:
			h.Set("Content-Length", "0")
			w.WriteHeader(plan.Status)
			return
		}

		want := plan.Body.Length()
		h.Set("Content-Type", m.ContentType)
		h.Set("Content-Length", strconv.FormatInt(want, 10))
		h.Set("Last-Modified", m.ModTime.UTC().Format(http.TimeFormat))
		w.WriteHeader(plan.Status)

		if r.Method == http.MethodHead {
			return
		}

		n, err := s.files.Stream(r.Context(), m, *plan.Body, w)
		if err != nil {
			// заголовки уже ушли; net/http закроет соединение из-за недописанного Content-Length
			s.logger.Warn("stream interrupted", "file", m.Name, "written", n, "want", want, "err", err)
		}
	}
}
