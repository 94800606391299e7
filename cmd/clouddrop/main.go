package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vortex-oo/clouddrop/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┬  ┌─┐┬ ┬┌┬┐╔╦╗┬─┐┌─┐┌─┐
  ║  │  │ ││ │ ││ ║║├┬┘│ │├─┘
  ╚═╝┴─┘└─┘└─┘─┴┘═╩╝┴└─└─┘┴
`

var (
	verbose     bool
	errorFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clouddrop",
		Short: "Upload and share your files securely",
		Long: `CloudDrop uploads a file to the CloudDrop API and hands back a
shareable link.

Run it as a web widget with drag & drop and one-click link copying,
or upload straight from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&errorFormat, "error-format", "text", "Error output: text, compact or json")

	rootCmd.AddCommand(
		serveCmd(),
		uploadCmd(),
		initCmd(),
		explainCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err, errorFormat)
		os.Exit(1)
	}
}

// reportError writes err to w in the requested format.
func reportError(w io.Writer, err error, format string) {
	e, ok := err.(*errors.Error)
	if !ok && format != "text" {
		e = errors.Newf(errors.CategoryCLI, "%s", err.Error())
	}
	switch format {
	case "json":
		fmt.Fprintln(w, e.FormatJSON())
	case "compact":
		fmt.Fprintln(w, e.FormatCompact())
	default:
		errors.Fprint(w, err)
	}
}

// newLogger builds the process logger from the configured level and format.
func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if verbose {
		lvl = slog.LevelDebug
	} else if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// printBanner prints the CloudDrop ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
