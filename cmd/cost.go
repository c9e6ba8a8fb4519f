package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/arup-group/social-data-cli/internal/cost"
	"github.com/arup-group/social-data-cli/internal/exporter"
	"github.com/arup-group/social-data-cli/internal/indicator"
	"github.com/arup-group/social-data-cli/internal/store"
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Estimate eviction-driven rent relief cost per county",
	Long: `Estimate the monthly cost of covering rent for burdened households
at risk of eviction. The estimate distributes each county's burdened
households across the housing stock by bedroom count and prices them at fair
market or median rents.

Examples:
  cost --state Georgia
  cost --state Georgia --rent-type rent50 --pct-burdened 30`,
	RunE: runCost,
}

func init() {
	f := costCmd.Flags()
	f.String("input", "", "county indicator file (.csv or .xlsx); omit to read the warehouse")
	f.String("state", "", "state to estimate (warehouse mode)")
	f.String("counties", "", "comma-separated county names (default: all in state)")
	f.String("rent-type", "", "rent table: fmr or rent50 (default: config)")
	f.Float64("pct-burdened", 0, "percent of burdened households at risk (default: config)")
	f.String("location", "", "metro area for the housing stock distribution (default: national)")
	f.String("output", "", "output file path (default: under configured output dir)")

	rootCmd.AddCommand(costCmd)
}

func runCost(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	started := time.Now()

	state, _ := cmd.Flags().GetString("state")
	if state == "" {
		return eris.New("cost: --state is required")
	}

	rentType := cost.RentType(flagOrDefault(cmd, "rent-type", cfg.Analysis.RentType))
	pctBurdened := float64Flag(cmd, "pct-burdened", cfg.Analysis.PctBurdened)

	pg, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return err
	}
	defer pg.Close()

	var t *indicator.Table
	if input, _ := cmd.Flags().GetString("input"); input != "" {
		t, err = readTableFile(input, "")
	} else {
		counties, _ := cmd.Flags().GetString("counties")
		t, err = pg.CountyIndicators(ctx, state, splitAndTrim(counties))
	}
	if err != nil {
		return err
	}

	rents, err := pg.Rents(ctx, rentType, state)
	if err != nil {
		return err
	}
	location, _ := cmd.Flags().GetString("location")
	distribution, err := pg.HousingStockDistribution(ctx, location)
	if err != nil {
		return err
	}

	calc, err := cost.NewCalculator(rentType, distribution)
	if err != nil {
		return err
	}
	estimates, err := calc.Estimate(t, rents, pctBurdened)
	if err != nil {
		return eris.Wrap(err, "cost")
	}

	out, err := outputPath(cmd, "cost_estimate.xlsx")
	if err != nil {
		return err
	}
	if err := exporter.WriteCostXLSX(out, estimates); err != nil {
		return err
	}

	recordRun(ctx, "cost", state, len(estimates), out, started)
	fmt.Printf("Estimated costs for %d counties (%s rents, %.0f%% burdened at risk) -> %s\n",
		len(estimates), rentType, pctBurdened, out)
	return nil
}

func flagOrDefault(cmd *cobra.Command, name, fallback string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return fallback
}
