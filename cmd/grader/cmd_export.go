package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newExportCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "export [pdf|docx]",
		Short:     "Download the last grading result as a PDF or Word document",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"pdf", "docx"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(a *app) error {
				result, err := a.results.Load(cmd.Context())
				if err != nil {
					return err
				}

				var path string
				switch strings.ToLower(args[0]) {
				case "docx":
					path, err = a.export.DownloadDocx(cmd.Context(), result)
				default:
					path, err = a.export.DownloadPDF(cmd.Context(), result)
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", path)
				return nil
			})
		},
	}
}
