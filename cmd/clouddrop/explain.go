package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vortex-oo/clouddrop/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe an error code",
		Long: `Describe one of the E-codes CloudDrop reports.

Without a code, lists every known code with its message.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				listCodes(os.Stdout)
				return nil
			}
			return runExplain(os.Stdout, args[0])
		},
	}
}

func listCodes(w io.Writer) {
	codes := errors.GetAllCodes()
	sort.Strings(codes)
	for _, code := range codes {
		tmpl, _ := errors.GetTemplate(code)
		fmt.Fprintf(w, "  %s  %-10s %s\n", code, tmpl.Category, tmpl.Message)
	}
}

func runExplain(w io.Writer, code string) error {
	code = strings.ToUpper(code)
	if _, ok := errors.GetTemplate(code); !ok {
		return errors.Newf(errors.CategoryCLI, "unknown error code %s", code).
			WithSuggestion("Run 'clouddrop explain' to list known codes")
	}
	fmt.Fprint(w, errors.New(code).Format())
	return nil
}
