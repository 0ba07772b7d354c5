package mediahttp

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sir_venger/rangeserve/internal/models"
	"github.com/sir_venger/rangeserve/pkg/httperrors"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"pathEscape": url.PathEscape,
	"bytes":      func(n int64) string { return humanize.IBytes(uint64(n)) },
	"ago":        func(t time.Time) string { return humanize.Time(t) },
}).ParseFS(templateFS, "templates/*.html"))

type indexPage struct {
	Entries []models.Entry
}

type playerPage struct {
	Name        string
	Size        int64
	ContentType string
}

// index показывает список файлов корня и форму загрузки.
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	entries, err := s.files.List(r.Context())
	if err != nil {
		s.logger.Error("list failed", "err", err)
		httperrors.Write(w, err)
		return
	}

	s.render(w, "index.html", indexPage{Entries: entries})
}

// player отдаёт страницу с <video>, который тянет файл диапазонами через /video/.
func (s *Server) player(w http.ResponseWriter, r *http.Request) {
	m, err := s.files.Open(r.Context(), strings.TrimPrefix(r.URL.Path, playerPrefix))
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	_ = m.Close()

	s.render(w, "player.html", playerPage{Name: m.Name, Size: m.Size, ContentType: m.ContentType})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render failed", "page", name, "err", err)
	}
}
