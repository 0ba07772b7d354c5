package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sir_venger/rangeserve/pkg/mediaclient"
)

// NewUploadCommand создаёт команду 'upload'.
func NewUploadCommand(fs afero.Fs, newLogger loggerFactory) *cobra.Command {
	var (
		name  string
		quiet bool
	)

	cmd := &cobra.Command{
		Use:     "upload <baseURL> <file>",
		Short:   "Upload a local file",
		Example: "$ rangeserve upload http://localhost:8080 ./clip.mp4 --name holiday.mp4",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, "warn")
			if err != nil {
				return err
			}

			f, err := fs.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", args[1])
			}
			if name == "" {
				name = filepath.Base(args[1])
			}

			var opts []mediaclient.Option
			if !quiet {
				opts = append(opts, mediaclient.WithProgress(cmd.ErrOrStderr()))
			}
			res, err := mediaclient.New(opts...).Upload(cmd.Context(), args[0], mediaclient.UploadRequest{
				Name: name,
				Body: f,
				Size: info.Size(),
			})
			if err != nil {
				return err
			}

			logger.Debug("uploaded", "name", res.Name, "size", res.Size, "generated", res.Generated)
			fmt.Fprintln(cmd.OutOrStdout(), res.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name to store the file under (default: base name of <file>)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not draw progress")

	return cmd
}
