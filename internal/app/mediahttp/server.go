package mediahttp

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/sir_venger/rangeserve/internal/logging"
	"github.com/sir_venger/rangeserve/internal/usecase/mediasvc"
)

const (
	filesPrefix  = "/files"
	videoPrefix  = "/video"
	playerPrefix = "/player"
)

type Options struct {
	Files   mediasvc.Service
	Logger  *log.Logger
	Workers int
	// GCTTL задаёт возраст временного файла, после которого ручной GC его удаляет.
	GCTTL time.Duration
}

// Server serves the media HTTP API on top of the files service.
type Server struct {
	files  mediasvc.Service
	logger *log.Logger
	gcTTL  time.Duration
	pool   *semaphore.Weighted
}

// New создаёт HTTP-обработчик медиасервера.
func New(opts Options) http.Handler {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	ttl := opts.GCTTL
	if ttl <= 0 {
		ttl = manualGCTTL
	}

	srv := &Server{
		files:  opts.Files,
		logger: logger,
		gcTTL:  ttl,
		pool:   semaphore.NewWeighted(int64(workers)),
	}

	return srv.routes()
}

// routes регистрирует обработчики для файлов, загрузки, health и GC.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(s.limit)
	r.Use(middleware.GetHead)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/", s.index)
	r.Get(filesPrefix+"/*", s.serveFile(filesPrefix))
	r.Get(videoPrefix+"/*", s.serveFile(videoPrefix))
	r.Get(playerPrefix+"/*", s.player)
	r.Post("/upload", s.upload)

	r.Get("/health", s.health)
	r.Post("/admin/gc", s.gcOnce)

	return r
}
