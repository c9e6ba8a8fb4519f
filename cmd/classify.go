package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/arup-group/social-data-cli/internal/equity"
	"github.com/arup-group/social-data-cli/internal/exporter"
	"github.com/arup-group/social-data-cli/internal/tracts"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify census tracts as equity geographies",
	Long: `Classify census tracts against the two-criteria concentration test:
a tract qualifies when People of Color and Low-Income shares both exceed
their concentration thresholds (Criterion A), or when Low-Income exceeds its
threshold together with at least three of the six remaining equity
indicators (Criterion B). Thresholds are mean + stddev x coefficient over
the tract set being classified.

Examples:
  # Classify all tracts in a state at the default coefficient
  classify --state California

  # Stricter threshold, tracts from a local file
  classify --input tracts.csv --coefficient 1.5

  # Attach TIGER/Line boundaries to the output
  classify --state California --shapefile tl_2023_06_tract.shp`,
	RunE: runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.String("input", "", "tract indicator file (.csv or .xlsx); omit to read the warehouse")
	f.String("state", "", "state to classify (warehouse mode)")
	f.String("counties", "", "comma-separated county names (default: all in state)")
	f.Float64("coefficient", 0, "std-dev coefficient: 0.5, 1.0, or 1.5 (default: config)")
	f.String("shapefile", "", "TIGER/Line tract shapefile to join boundaries from")
	f.String("output", "", "output file path (default: under configured output dir)")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	started := time.Now()

	t, closeStore, err := loadTractTable(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	coefficient := float64Flag(cmd, "coefficient", cfg.Analysis.Coefficient)

	result, err := equity.Classify(t, coefficient)
	if err != nil {
		return eris.Wrap(err, "classify")
	}

	var geometry map[string]string
	if shapefile, _ := cmd.Flags().GetString("shapefile"); shapefile != "" {
		boundaries, err := tracts.LoadShapefile(shapefile)
		if err != nil {
			return err
		}
		joined := tracts.Join(result.Tracts, boundaries)
		geometry = make(map[string]string, len(joined))
		for _, g := range joined {
			geometry[g.Name] = g.WKT
		}
	}

	out, err := outputPath(cmd, "equity_geographies.xlsx")
	if err != nil {
		return err
	}
	if err := exporter.WriteClassificationXLSX(out, result, geometry); err != nil {
		return err
	}

	state, _ := cmd.Flags().GetString("state")
	recordRun(ctx, "classify", state, len(result.Tracts), out, started)
	fmt.Printf("Classified %d tracts, %d equity geographies (coefficient %.1f) -> %s\n",
		len(result.Tracts), len(result.Equity), coefficient, out)
	return nil
}
