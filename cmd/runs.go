package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arup-group/social-data-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent analysis runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, err := store.OpenRunHistory(cfg.Store.RunHistory)
	if err != nil {
		return err
	}
	defer h.Close() //nolint:errcheck

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := h.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-36s %-20s %-15s %7s %-12s %s\n",
		"ID", "Started", "Command", "Units", "Duration", "Output")
	for _, r := range runs {
		fmt.Printf("%-36s %-20s %-15s %7d %-12s %s\n",
			r.ID,
			r.StartedAt.Format(time.RFC3339),
			r.Command,
			r.Units,
			r.Duration.Round(time.Millisecond),
			r.Output)
	}
	return nil
}
