package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sir_venger/rangeserve/internal/app/mediahttp"
	"github.com/sir_venger/rangeserve/internal/config"
	"github.com/sir_venger/rangeserve/internal/storage"
	"github.com/sir_venger/rangeserve/internal/usecase/mediasvc"
)

const readHeaderTimeout = 10 * time.Second

// NewServeCommand создаёт команду 'serve'. Флаги перекрывают config.yaml и ENV.
func NewServeCommand(fs afero.Fs, newLogger loggerFactory) *cobra.Command {
	var (
		addr    string
		root    string
		workers int
	)

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Start the HTTP server",
		Example: "$ rangeserve serve --root ./static --addr :8080",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.ListenAddr = addr
			}
			if flags.Changed("root") {
				cfg.Root = root
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(cmd, cfg.LogLevel)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", cfg.ListenAddr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
			}

			return Serve(cmd.Context(), fs, ln, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (LISTEN_ADDR)")
	cmd.Flags().StringVar(&root, "root", "", "directory to serve (MEDIA_ROOT)")
	cmd.Flags().IntVar(&workers, "workers", 0, "max concurrent requests (WORKERS)")

	return cmd
}

// Serve поднимает сервер на ln и держит его до отмены ctx, после чего
// завершает активные запросы в пределах cfg.ShutdownTimeout.
func Serve(ctx context.Context, fs afero.Fs, ln net.Listener, cfg *config.Config, logger *log.Logger) error {
	st := storage.New(fs, cfg.Root, cfg.FollowSymlinks)
	if err := st.EnsureRoot(); err != nil {
		ln.Close()
		return fmt.Errorf("media root %s: %w", cfg.Root, err)
	}

	files := mediasvc.New(mediasvc.Deps{
		Store:          st,
		Logger:         logger,
		ChunkSize:      cfg.ChunkBytes(),
		MaxUploadSize:  cfg.MaxUploadBytes(),
		ListExtensions: cfg.ListExtensions,
	})

	// Настраиваем фоновый GC по удалению брошенных загрузок.
	stopGC := mediahttp.StartGC(files, logger, cfg.GCTTL, cfg.GCInterval)
	defer stopGC()

	server := &http.Server{
		Handler: mediahttp.New(mediahttp.Options{
			Files:   files,
			Logger:  logger,
			Workers: cfg.Workers,
			GCTTL:   cfg.GCTTL,
		}),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening",
			"addr", ln.Addr().String(),
			"root", cfg.Root,
			"chunk", humanize.IBytes(uint64(cfg.ChunkBytes())),
			"max_upload", humanize.IBytes(uint64(cfg.MaxUploadBytes())),
			"workers", cfg.Workers,
		)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
