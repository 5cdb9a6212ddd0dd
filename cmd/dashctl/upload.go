package main

import (
	"fmt"
	"io"
	"time"

	"dashboard-cms/pkg/media"
	"dashboard-cms/pkg/models"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newProgressBar(w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (a *app) uploadCmd() *cobra.Command {
	var (
		setHeader bool
		optimize  bool
		quiet     bool
	)
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload an image to the media host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, closer, err := media.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer closer.Close()

			var sink media.ProgressSink
			if !quiet && isTerminal(cmd.ErrOrStderr()) {
				bar := newProgressBar(cmd.ErrOrStderr(), "Uploading "+f.Name)
				sink = media.ProgressFunc(func(percent int) {
					_ = bar.Set(percent)
				})
			}

			url, err := a.uploader.Upload(cmd.Context(), f, sink)
			if err != nil {
				return fmt.Errorf("upload: %w", err)
			}
			if optimize {
				url = media.OptimizedURL(url, media.TransformOptions{})
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)

			if setHeader {
				a.sync.EditHeader(models.HeaderPatch{ImageURL: &url})
				fmt.Fprintln(cmd.OutOrStdout(), "Header image updated in the working copy; run 'dashctl push' to save it")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&setHeader, "set-header", false, "use the uploaded image as the header image")
	cmd.Flags().BoolVar(&optimize, "optimize", false, "print a delivery URL with resize and format transformations")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not draw a progress bar")
	return cmd
}
