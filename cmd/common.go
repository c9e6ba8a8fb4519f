package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arup-group/social-data-cli/internal/indicator"
	"github.com/arup-group/social-data-cli/internal/loader"
	"github.com/arup-group/social-data-cli/internal/risk"
	"github.com/arup-group/social-data-cli/internal/store"
)

// loadCountyTable reads county indicators from --input (csv or xlsx by
// extension) or, when no input file is given, from the configured warehouse.
func loadCountyTable(ctx context.Context, cmd *cobra.Command) (*indicator.Table, func(), error) {
	input, _ := cmd.Flags().GetString("input")
	if input != "" {
		t, err := readTableFile(input, "")
		return t, func() {}, err
	}

	state, _ := cmd.Flags().GetString("state")
	counties, _ := cmd.Flags().GetString("counties")
	if state == "" {
		return nil, nil, eris.New("either --input or --state is required")
	}

	pg, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	t, err := pg.CountyIndicators(ctx, state, splitAndTrim(counties))
	if err != nil {
		pg.Close()
		return nil, nil, err
	}
	return t, pg.Close, nil
}

// loadTractTable is loadCountyTable for tract-level indicators.
func loadTractTable(ctx context.Context, cmd *cobra.Command) (*indicator.Table, func(), error) {
	input, _ := cmd.Flags().GetString("input")
	if input != "" {
		t, err := readTableFile(input, "")
		return t, func() {}, err
	}

	state, _ := cmd.Flags().GetString("state")
	counties, _ := cmd.Flags().GetString("counties")
	if state == "" {
		return nil, nil, eris.New("either --input or --state is required")
	}

	pg, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	t, err := pg.TractIndicators(ctx, state, splitAndTrim(counties))
	if err != nil {
		pg.Close()
		return nil, nil, err
	}
	return t, pg.Close, nil
}

func readTableFile(path, sheet string) (*indicator.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return loader.ReadCSV(f)
	case ".xlsx":
		return loader.ReadXLSX(path, sheet)
	default:
		return nil, eris.Errorf("unsupported input format %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

func readPolicyFile(path string) ([]risk.PolicyRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return loader.ReadPolicyCSV(f)
	case ".xlsx":
		return loader.ReadPolicyXLSX(path, "")
	default:
		return nil, eris.Errorf("unsupported policy format %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// outputPath resolves --output against the configured output directory and
// ensures the directory exists.
func outputPath(cmd *cobra.Command, defaultName string) (string, error) {
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = filepath.Join(cfg.Output.Dir, defaultName)
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", eris.Wrapf(err, "create output dir %s", dir)
		}
	}
	return out, nil
}

// recordRun appends the invocation to the local run history. Failures are
// logged, not fatal; the analysis output already exists on disk.
func recordRun(ctx context.Context, command, state string, units int, output string, started time.Time) {
	h, err := store.OpenRunHistory(cfg.Store.RunHistory)
	if err != nil {
		zap.L().Warn("run history unavailable", zap.Error(err))
		return
	}
	defer h.Close() //nolint:errcheck

	if _, err := h.RecordRun(ctx, store.Run{
		Command:   command,
		State:     state,
		Units:     units,
		Output:    output,
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
	}); err != nil {
		zap.L().Warn("run history write failed", zap.Error(err))
	}
}

// float64Flag returns the flag's value when it was set on the command line,
// else the fallback. An explicit zero is honored, unlike a zero-value check.
func float64Flag(cmd *cobra.Command, name string, fallback float64) float64 {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetFloat64(name)
		return v
	}
	return fallback
}

func splitAndTrim(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
