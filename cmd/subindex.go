package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/arup-group/social-data-cli/internal/exporter"
	"github.com/arup-group/social-data-cli/internal/indicator"
	"github.com/arup-group/social-data-cli/internal/risk"
	"github.com/arup-group/social-data-cli/internal/subindex"
)

var subindexCmd = &cobra.Command{
	Use:   "subindex",
	Short: "Build a user-weighted sub-index over tract indicators",
	Long: `Build a weighted composite index over a chosen subset of tract
indicators. Each weight is a percentage; weights are applied to MaxAbs
normalized columns and the result is ranked descending.

Weights are given as name=value pairs, e.g.:

  subindex --state Oregon \
    --weight "People of Color (%)=50" \
    --weight "Low-Income (%)=50"

A weight sum away from 100 is reported as a warning, not an error.`,
	RunE: runSubindex,
}

func init() {
	f := subindexCmd.Flags()
	f.String("input", "", "tract indicator file (.csv or .xlsx); omit to read the warehouse")
	f.String("state", "", "state to index (warehouse mode)")
	f.String("counties", "", "comma-separated county names (default: all in state)")
	f.StringArray("weight", nil, "indicator weight as name=percent (repeatable)")
	f.Int("top", 0, "limit output to the top N tracts (0 = all)")
	f.String("output", "", "output file path (default: under configured output dir)")
	f.String("format", "", "output format: xlsx or csv (default: config)")

	rootCmd.AddCommand(subindexCmd)
}

func runSubindex(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	started := time.Now()

	weights, err := parseWeights(cmd)
	if err != nil {
		return err
	}
	if len(weights) == 0 {
		return eris.New("subindex: at least one --weight is required")
	}

	t, closeStore, err := loadTractTable(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	inds := make([]indicator.Indicator, 0, len(weights))
	for ind := range weights {
		inds = append(inds, ind)
	}
	normalized, err := risk.NormalizeColumns(t, inds)
	if err != nil {
		return eris.Wrap(err, "subindex")
	}

	result, err := subindex.Build(normalized, weights)
	if err != nil {
		return eris.Wrap(err, "subindex")
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	if top, _ := cmd.Flags().GetInt("top"); top > 0 {
		result.Entries = result.Top(top)
	}

	out, err := writeSubindex(cmd, result, weights)
	if err != nil {
		return err
	}

	state, _ := cmd.Flags().GetString("state")
	recordRun(ctx, "subindex", state, len(result.Entries), out, started)
	fmt.Printf("Indexed %d tracts over %d indicators -> %s\n",
		len(result.Entries), len(weights), out)
	return nil
}

func parseWeights(cmd *cobra.Command) (subindex.Weights, error) {
	pairs, _ := cmd.Flags().GetStringArray("weight")
	weights := make(subindex.Weights, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, eris.Errorf("subindex: malformed --weight %q (want name=percent)", pair)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "subindex: weight for %q", name)
		}
		weights[indicator.Indicator(strings.TrimSpace(name))] = w
	}
	return weights, nil
}

func writeSubindex(cmd *cobra.Command, result *subindex.Result, weights subindex.Weights) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Output.Format
	}

	switch format {
	case "xlsx":
		out, err := outputPath(cmd, "subindex.xlsx")
		if err != nil {
			return "", err
		}
		return out, exporter.WriteSubIndexXLSX(out, result, weights)
	case "csv":
		out, err := outputPath(cmd, "subindex.csv")
		if err != nil {
			return "", err
		}
		f, err := os.Create(out)
		if err != nil {
			return "", eris.Wrapf(err, "subindex: create %s", out)
		}
		defer f.Close() //nolint:errcheck
		return out, exporter.WriteSubIndexCSV(f, result)
	default:
		return "", eris.Errorf("subindex: unsupported format %q (want xlsx or csv)", format)
	}
}
