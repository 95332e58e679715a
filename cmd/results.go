package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stoltzen/stoltzen-cli/internal/pipeline"
)

var resultsFlags outputFlags

var resultsCmd = &cobra.Command{
	Use:   "results <url>",
	Short: "Scrape a results list and compare each runner with their earlier best",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d := newDriver()
		return runAndWrite(ctx, func(ctx context.Context, year int) (*pipeline.Result, error) {
			return d.RunResults(ctx, args[0], year)
		}, resultsFlags, cfg.Report.Format, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	resultsCmd.Flags().StringVar(&resultsFlags.format, "format", "", "output format: json, csv or xlsx (default from report.format)")
	resultsCmd.Flags().StringVar(&resultsFlags.output, "output", stdoutPath, "output file, - for stdout")
	resultsCmd.Flags().IntVar(&resultsFlags.year, "year", 0, "season to compare against (default current year)")
	rootCmd.AddCommand(resultsCmd)
}
