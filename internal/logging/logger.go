// Package logging собирает логгер charmbracelet/log для сервера и CLI.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

const prefix = "rangeserve"

// New создаёт логгер с уровнем level ("debug", "info", "warn", "error").
// Пустой level означает info. При DEBUG=1 в вывод добавляется место вызова.
func New(w io.Writer, level string) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
		lvl = parsed
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    os.Getenv("DEBUG") == "1",
		Prefix:          prefix,
		Level:           lvl,
	})

	return logger, nil
}

// Discard возвращает логгер, который ничего не пишет. Удобен в тестах.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
