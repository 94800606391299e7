package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vortex-oo/clouddrop/internal/errors"
	"github.com/vortex-oo/clouddrop/pkg/clipboard"
	"github.com/vortex-oo/clouddrop/pkg/dropzone"
	"github.com/vortex-oo/clouddrop/pkg/uploader"
	"github.com/vortex-oo/clouddrop/pkg/widget"
)

func uploadCmd() *cobra.Command {
	var (
		copyLink bool
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file and print its link",
		Long: `Upload a file to CloudDrop and print the shareable link.

Accepted files: images (.png .jpg .jpeg .gif), PDF and Word documents.

Examples:
  clouddrop upload photo.png
  clouddrop upload report.pdf --copy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runUpload(ctx, uploadOptions{
				Path:      args[0],
				Copy:      copyLink,
				Timeout:   timeout,
				Client:    uploader.NewClient(uploader.DefaultBaseURL),
				Clipboard: clipboard.SystemWriter{},
				Out:       os.Stdout,
				Logger:    newLogger("warn", "text"),
			})
		},
	}

	cmd.Flags().BoolVarP(&copyLink, "copy", "c", false, "Copy the link to the clipboard")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 60*time.Second, "Upload timeout")

	return cmd
}

type uploadOptions struct {
	Path      string
	Copy      bool
	Timeout   time.Duration
	Client    uploader.Uploader
	Clipboard clipboard.Writer
	Out       io.Writer
	Logger    *slog.Logger
}

// terminalAlerts prints widget alerts to the terminal.
type terminalAlerts struct {
	out io.Writer
}

func (a terminalAlerts) Warning(message string) {
	fmt.Fprintf(a.out, "\033[33m⚠\033[0m %s\n", message)
}

func (a terminalAlerts) Error(message string) {
	fmt.Fprintf(a.out, "\033[31m✗\033[0m %s\n", message)
}

// runUpload drives a widget headlessly: select the file, upload it, and
// optionally copy the link.
func runUpload(ctx context.Context, opts uploadOptions) error {
	file, err := dropzone.FromPath(opts.Path)
	if err != nil {
		return errors.New("E160").WithDetail("Could not read " + opts.Path).Wrap(err)
	}

	w := widget.New(widget.Config{
		Client:        opts.Client,
		Clipboard:     opts.Clipboard,
		Alerts:        terminalAlerts{out: opts.Out},
		UploadTimeout: opts.Timeout,
		Logger:        opts.Logger,
	})
	defer w.Close()

	if _, err := w.Drop(ctx, file); err != nil {
		return errors.New("E040").
			WithDetail(fmt.Sprintf("%s was detected as %s.", file.Name, file.ContentType))
	}

	fmt.Fprintf(opts.Out, "  Uploading %s (%s)...\n", file.Name, formatSize(file.Size))
	if err := w.Upload(ctx); err != nil {
		return err
	}

	url := w.ResultURL()
	fmt.Fprintf(opts.Out, "\033[32m✓\033[0m Uploaded %s\n", file.Name)
	fmt.Fprintln(opts.Out, url)

	if opts.Copy {
		if err := w.Copy(ctx); err != nil {
			fmt.Fprintf(opts.Out, "\033[33m⚠\033[0m Could not copy the link: %v\n", err)
			return nil
		}
		fmt.Fprintf(opts.Out, "\033[32m✓\033[0m %s\n", clipboard.LabelCopied)
	}
	return nil
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
