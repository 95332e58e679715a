package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stoltzen/stoltzen-cli/internal/pipeline"
)

var profilesFlags outputFlags

var profilesCmd = &cobra.Command{
	Use:   "profiles <url-file>",
	Short: "Build a report from a list of statistics page URLs",
	Long:  "Reads one stat.php?id=N URL per line (blank lines and # comments ignored), fetches every page and reports each runner's time this season against their earlier best.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		urls, err := pipeline.LoadURLFile(args[0])
		if err != nil {
			return err
		}

		d := newDriver()
		return runAndWrite(ctx, func(ctx context.Context, year int) (*pipeline.Result, error) {
			return d.RunProfiles(ctx, urls, year)
		}, profilesFlags, "csv", cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	profilesCmd.Flags().StringVar(&profilesFlags.format, "format", "csv", "output format: csv, json or xlsx")
	profilesCmd.Flags().StringVar(&profilesFlags.output, "output", "results.csv", "output file, - for stdout")
	profilesCmd.Flags().IntVar(&profilesFlags.year, "year", 0, "season to compare against (default current year)")
	rootCmd.AddCommand(profilesCmd)
}
