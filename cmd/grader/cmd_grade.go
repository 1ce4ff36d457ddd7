package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-grader/internal/dto"
	"github.com/noah-isme/gema-grader/internal/models"
	"github.com/noah-isme/gema-grader/internal/scoring"
)

type gradeOptions struct {
	apiKey     string
	assignment string
	solution   string
	submission string
	advice     string
}

func newGradeCommand(root *rootOptions) *cobra.Command {
	opts := &gradeOptions{}

	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade a submission against an assignment and solution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(a *app) error {
				params := dto.GradeRequestParams{
					APIKey:               firstNonEmpty(opts.apiKey, a.cfg.APIKey),
					IncludeGradingAdvice: strings.TrimSpace(opts.advice) != "",
					GradingAdvice:        opts.advice,
				}

				var err error
				if params.Assignment, err = loadOptional(opts.assignment); err != nil {
					return err
				}
				if params.Solution, err = loadOptional(opts.solution); err != nil {
					return err
				}
				if params.Submission, err = loadOptional(opts.submission); err != nil {
					return err
				}

				result, err := a.grading.GradeAssignment(cmd.Context(), params)
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), result)

				if err := a.results.Save(cmd.Context(), result); err != nil {
					a.logger.Warn().Err(err).Msg("grading result not persisted")
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: this result was not saved and cannot be scored or exported later: %v\n", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "API key forwarded to the grading service (defaults to GRADER_API_KEY)")
	cmd.Flags().StringVar(&opts.assignment, "assignment", "", "Assignment PDF including the rubric")
	cmd.Flags().StringVar(&opts.solution, "solution", "", "Reference solution PDF")
	cmd.Flags().StringVar(&opts.submission, "submission", "", "Student submission PDF")
	cmd.Flags().StringVar(&opts.advice, "advice", "", "Grading advice to include in the prompt")

	return cmd
}

func newScoreCommand(root *rootOptions) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Recompute the score of the last grading result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(a *app) error {
				result, calc, err := a.results.Reconcile(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Starting points:  %g\n", scoring.MaxScore)
				fmt.Fprintf(out, "Total deductions: -%g\n", calc.TotalDeductions)
				fmt.Fprintf(out, "Final score:      %g (%s)\n", scoring.DisplayedScore(result, &calc), scoring.BandFor(calc.CalculatedScore))
				if calc.Discrepancy {
					fmt.Fprintf(out, "Note: the service reported %g; the displayed score has been adjusted.\n", calc.ReportedScore)
				}
				if offline {
					return nil
				}

				check := a.scores.CrossCheck(cmd.Context(), result)
				switch {
				case check.Remote == nil:
					fmt.Fprintf(out, "Server check:     unavailable (%s)\n", check.RemoteError)
				case check.Agrees():
					fmt.Fprintf(out, "Server check:     agrees (%g)\n", check.Remote.CalculatedScore)
				default:
					fmt.Fprintf(out, "Server check:     service calculated %g with %g deducted\n", check.Remote.CalculatedScore, check.Remote.TotalDeductions)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the grading service score check")
	return cmd
}

func printResult(out io.Writer, result models.GradingResult) {
	calc := scoring.Reconcile(result)
	score := scoring.DisplayedScore(result, &calc)

	fmt.Fprintf(out, "Grade: %g/100 (%s)\n", score, scoring.BandFor(score))
	if calc.Discrepancy {
		fmt.Fprintf(out, "Note: the service reported %g but the deductions add up to %g.\n", calc.ReportedScore, calc.CalculatedScore)
	}
	fmt.Fprintf(out, "\nOverall assessment\n  %s\n", result.OverallAssessment)

	if len(result.Strengths) > 0 {
		fmt.Fprintln(out, "\nStrengths")
		for _, strength := range result.Strengths {
			fmt.Fprintf(out, "  + %s\n", strength)
		}
	}
	if len(result.PointDeductions) > 0 {
		fmt.Fprintln(out, "\nPoint deductions")
		for _, deduction := range result.PointDeductions {
			fmt.Fprintf(out, "  -%g %s: %s\n", deduction.Points, deduction.Area, deduction.Reason)
		}
	}
	if len(result.ConceptImprovements) > 0 {
		fmt.Fprintln(out, "\nImprovement suggestions")
		for _, improvement := range result.ConceptImprovements {
			fmt.Fprintf(out, "  %s -> %s\n", improvement.Concept, improvement.Suggestion)
		}
	}
}

// loadOptional leaves a missing path empty so validation can report it.
func loadOptional(path string) (models.File, error) {
	if strings.TrimSpace(path) == "" {
		return models.File{}, nil
	}
	file, err := models.LoadFile(path)
	if err != nil {
		return models.File{}, errors.New("cannot read " + path)
	}
	return file, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
