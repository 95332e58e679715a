package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stoltzen/stoltzen-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "stoltzen-cli",
	Short: "Stoltzekleiven Opp results with personal-best comparison",
	Long:  "Scrapes a Stoltzekleiven Opp results list or a set of statistics pages, compares every runner with their best earlier time and writes the result as JSON, CSV or XLSX.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Flags and args are valid by now; later failures are not usage errors.
		cmd.SilenceUsage = true

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		zap.ReplaceGlobals(zap.L().With(zap.String("run_id", uuid.NewString())))

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
