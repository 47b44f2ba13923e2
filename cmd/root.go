package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/legalgapdb/gapcheck/internal/config"
)

var cfg *config.Config

// exitCode is set by commands that report validation outcomes: 0 when every
// case passed, 1 when at least one failed. Pipeline errors exit 2.
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "gapcheck",
	Short: "Validation and quality scoring for the legal gap case corpus",
	Long:  "Validates crowdsourced legal gap cases: schema checks, citation reachability probes, statistical plausibility analysis, and confidence scoring.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
	os.Exit(exitCode)
}
