package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-grader/internal/config"
	"github.com/noah-isme/gema-grader/internal/observability"
	"github.com/noah-isme/gema-grader/internal/service"
)

var version = "dev"

type rootOptions struct {
	apiURL      string
	downloadDir string
	debug       bool
	metricsFile string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "grader",
		Short: "Client for the assignment grading service",
		Long: `grader submits assignments for AI grading, reviews rubrics, fetches the
sample bundle and exports grading reports. The most recent grading result is
kept in the configured result store so it can be reconciled or exported later.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Grading service base address (overrides GRADER_API_URL)")
	cmd.PersistentFlags().StringVar(&opts.downloadDir, "out", "", "Directory for downloaded files (overrides GRADER_DOWNLOAD_DIR)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.metricsFile, "metrics-file", "", "Write request metrics in Prometheus textfile format on exit")

	cmd.AddCommand(newGradeCommand(opts))
	cmd.AddCommand(newRubricCommand(opts))
	cmd.AddCommand(newSamplesCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newScoreCommand(opts))

	return cmd
}

// withApp loads configuration, builds the app and reports any failure as a
// single display message.
func withApp(cmd *cobra.Command, opts *rootOptions, run func(a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "configuration error: %v\n", err)
		return err
	}
	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
	}
	if opts.debug {
		cfg.LogLevel = zerolog.DebugLevel
	}

	a, err := newApp(cmd.Context(), cfg, opts.downloadDir)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", service.Message(err))
		return err
	}
	defer a.close()
	if opts.metricsFile != "" {
		defer func() {
			if err := observability.WriteTextfile(opts.metricsFile); err != nil {
				a.logger.Warn().Err(err).Str("path", opts.metricsFile).Msg("failed to write metrics")
			}
		}()
	}

	if err := run(a); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", service.Message(err))
		return err
	}
	return nil
}
