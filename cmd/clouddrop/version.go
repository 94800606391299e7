package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/vortex-oo/clouddrop/pkg/uploader"
)

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and upload endpoint",
		Long:  `Print the CloudDrop build and the upload API it talks to.`,
		Run: func(cmd *cobra.Command, args []string) {
			if !short {
				printBanner()
			}
			printVersion(os.Stdout, short)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}

func printVersion(w io.Writer, short bool) {
	if short {
		fmt.Fprintln(w, version)
		return
	}
	build := fmt.Sprintf("%s (%s, %s)", version, commit, date)
	fmt.Fprintf(w, "\n  %-10s %s\n", "Build:", build)
	fmt.Fprintf(w, "  %-10s %s\n", "Endpoint:", uploader.NewClient(uploader.DefaultBaseURL).Endpoint())
	fmt.Fprintf(w, "  %-10s %s %s/%s\n\n", "Runtime:", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
