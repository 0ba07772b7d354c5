// Package cli собирает команды rangeserve: сервер и клиентские fetch/upload.
package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sir_venger/rangeserve/internal/logging"
)

// NewRootCommand возвращает корневую команду со всеми подкомандами.
func NewRootCommand(fs afero.Fs) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "rangeserve",
		Short:         "Serve a media directory over HTTP with byte-range support.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	newLogger := func(cmd *cobra.Command, fallback string) (*log.Logger, error) {
		level := logLevel
		if level == "" {
			level = fallback
		}
		return logging.New(cmd.ErrOrStderr(), level)
	}

	rootCmd.AddCommand(NewServeCommand(fs, newLogger))
	rootCmd.AddCommand(NewFetchCommand(fs, newLogger))
	rootCmd.AddCommand(NewUploadCommand(fs, newLogger))

	return rootCmd
}

type loggerFactory func(cmd *cobra.Command, fallback string) (*log.Logger, error)
