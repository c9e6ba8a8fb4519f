package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arup-group/social-data-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "social-data-cli",
	Short: "Socioeconomic vulnerability analysis for counties and census tracts",
	Long:  "Ranks counties by composite socioeconomic relative risk, classifies census tracts as equity geographies, builds user-weighted sub-indices, and estimates eviction-driven rent relief costs.",
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
		os.Exit(1)
	}
}
