package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSamplesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "Download the sample assignment, solution and submission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(a *app) error {
				bundle, err := a.samples.LoadSampleFiles(cmd.Context())
				if err != nil {
					return err
				}

				for _, file := range bundle.Files() {
					path, err := a.saver.Save(cmd.Context(), file.Name, file.ContentType, file.Data)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", path, file.Size())
				}
				return nil
			})
		},
	}
}
