package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sir_venger/rangeserve/internal/streamer"
)

const (
	defaultListenAddr      = ":8080"
	defaultRoot            = "./static"
	defaultChunkSize       = "64KiB"
	defaultMaxUploadSize   = "1GiB"
	defaultWorkers         = 10
	defaultGCTTL           = 24 * time.Hour
	defaultGCInterval      = 30 * time.Minute
	defaultLogLevel        = "info"
	defaultShutdownTimeout = 15 * time.Second
)

// Config хранит настройки сервера. Размеры задаются строками вида "64KiB", "1GB".
type Config struct {
	ListenAddr      string        `yaml:"listen_addr" json:"listen_addr"`
	Root            string        `yaml:"root" json:"root"`
	ChunkSize       string        `yaml:"chunk_size" json:"chunk_size"`
	MaxUploadSize   string        `yaml:"max_upload_size" json:"max_upload_size"`
	Workers         int           `yaml:"workers" json:"workers"`
	FollowSymlinks  bool          `yaml:"follow_symlinks" json:"follow_symlinks"`
	ListExtensions  []string      `yaml:"list_extensions" json:"list_extensions"`
	GCTTL           time.Duration `yaml:"gc_ttl" json:"gc_ttl"`
	GCInterval      time.Duration `yaml:"gc_interval" json:"gc_interval"`
	LogLevel        string        `yaml:"log_level" json:"log_level"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`

	chunkBytes  int
	uploadBytes int64
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *Config {
	return &Config{
		ListenAddr:      defaultListenAddr,
		Root:            defaultRoot,
		ChunkSize:       defaultChunkSize,
		MaxUploadSize:   defaultMaxUploadSize,
		Workers:         defaultWorkers,
		GCTTL:           defaultGCTTL,
		GCInterval:      defaultGCInterval,
		LogLevel:        defaultLogLevel,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// Load подхватывает .env, читает YAML (если файл есть), применяет ENV-переопределения и валидирует результат.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c := Default()

	path := getenv("CONFIG_PATH", "./config.yaml")
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// без файла работаем на дефолтах и ENV
	default:
		return nil, err
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("MEDIA_ROOT"); v != "" {
		c.Root = v
	}
	if v := os.Getenv("CHUNK_SIZE"); v != "" {
		c.ChunkSize = v
	}
	if v := os.Getenv("MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv("LIST_EXTENSIONS"); v != "" {
		c.ListExtensions = splitComma(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("FOLLOW_SYMLINKS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FOLLOW_SYMLINKS: %w", err)
		}
		c.FollowSymlinks = b
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"GC_TTL", &c.GCTTL},
		{"GC_INTERVAL", &c.GCInterval},
		{"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	return nil
}

// Validate проверяет значения, приводит корень к абсолютному пути и разбирает размеры.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("root is required")
	}
	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("root: %w", err)
	}
	c.Root = abs

	if c.Workers < 1 {
		return fmt.Errorf("workers must be > 0, got %d", c.Workers)
	}

	chunk, err := humanize.ParseBytes(c.ChunkSize)
	if err != nil {
		return fmt.Errorf("chunk_size: %w", err)
	}
	if chunk < streamer.MinChunkSize || chunk > streamer.MaxChunkSize {
		return fmt.Errorf("chunk_size must be between %s and %s, got %s",
			humanize.IBytes(streamer.MinChunkSize), humanize.IBytes(streamer.MaxChunkSize), c.ChunkSize)
	}
	c.chunkBytes = int(chunk)

	upload, err := humanize.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("max_upload_size: %w", err)
	}
	if upload == 0 {
		return fmt.Errorf("max_upload_size must be > 0")
	}
	c.uploadBytes = int64(upload)

	for i, ext := range c.ListExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.ListExtensions[i] = ext
	}

	return nil
}

// ChunkBytes возвращает размер чанка стриминга в байтах (после Validate).
func (c *Config) ChunkBytes() int {
	return c.chunkBytes
}

// MaxUploadBytes возвращает лимит загрузки в байтах (после Validate).
func (c *Config) MaxUploadBytes() int64 {
	return c.uploadBytes
}

func splitComma(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
