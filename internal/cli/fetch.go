package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sir_venger/rangeserve/pkg/mediaclient"
)

// NewFetchCommand создаёт команду 'fetch': скачивание файла целиком или одного диапазона.
func NewFetchCommand(fs afero.Fs, newLogger loggerFactory) *cobra.Command {
	var (
		rangeSpec string
		chunk     string
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:     "fetch <baseURL> <name> [out]",
		Short:   "Download a file, optionally a single byte range",
		Example: "$ rangeserve fetch http://localhost:8080 clip.mp4 clip.mp4 --chunk 4MiB",
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, "warn")
			if err != nil {
				return err
			}

			var opts []mediaclient.Option
			if !quiet {
				opts = append(opts, mediaclient.WithProgress(cmd.ErrOrStderr()))
			}
			client := mediaclient.New(opts...)
			baseURL, name := args[0], args[1]

			var out io.Writer = cmd.OutOrStdout()
			if len(args) == 3 && args[2] != "-" {
				f, err := fs.Create(args[2])
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			if rangeSpec != "" {
				start, end, err := parseRangeFlag(rangeSpec)
				if err != nil {
					return err
				}
				got, err := client.Fetch(cmd.Context(), baseURL, name, start, end)
				if err != nil {
					return err
				}
				defer got.Body.Close()
				n, err := io.Copy(out, got.Body)
				logger.Debug("range fetched", "name", name, "content_range", got.Range.ContentRange(), "bytes", n)
				return err
			}

			size, err := humanize.ParseBytes(chunk)
			if err != nil {
				return fmt.Errorf("--chunk: %w", err)
			}
			n, err := client.Download(cmd.Context(), baseURL, name, int64(size), out)
			logger.Debug("download finished", "name", name, "bytes", n)
			return err
		},
	}

	cmd.Flags().StringVarP(&rangeSpec, "range", "r", "", `single range "start-end" or "start-"`)
	cmd.Flags().StringVar(&chunk, "chunk", "1MiB", "size of each ranged request")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not draw progress")

	return cmd
}

// parseRangeFlag разбирает "start-end" или "start-"; end = -1 означает до конца файла.
func parseRangeFlag(v string) (int64, int64, error) {
	startStr, endStr, ok := strings.Cut(v, "-")
	if !ok {
		return 0, 0, fmt.Errorf("--range %q: want start-end", v)
	}
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return 0, 0, fmt.Errorf("--range %q: bad start", v)
	}
	if endStr == "" {
		return start, -1, nil
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < start {
		return 0, 0, fmt.Errorf("--range %q: bad end", v)
	}
	return start, end, nil
}
