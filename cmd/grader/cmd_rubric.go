package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRubricCommand(root *rootOptions) *cobra.Command {
	var apiKey, assignment string

	cmd := &cobra.Command{
		Use:   "rubric",
		Short: "Review an assignment rubric and get grading advice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(a *app) error {
				file, err := loadOptional(assignment)
				if err != nil {
					return err
				}

				analysis, err := a.rubric.AnalyzeRubric(cmd.Context(), firstNonEmpty(apiKey, a.cfg.APIKey), file)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Rubric improvements\n%s\n\nGrading advice\n%s\n", analysis.Improvements, analysis.Advice)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key forwarded to the grading service (defaults to GRADER_API_KEY)")
	cmd.Flags().StringVar(&assignment, "assignment", "", "Assignment PDF including the rubric")
	return cmd
}
