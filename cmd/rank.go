package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arup-group/social-data-cli/internal/exporter"
	"github.com/arup-group/social-data-cli/internal/risk"
	"github.com/arup-group/social-data-cli/internal/store"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank counties by composite relative risk",
	Long: `Rank counties by a composite socioeconomic relative risk score built
from normalized poverty, unemployment, income inequality, housing, and
household-structure indicators. When policy data is available the ranking is
additionally ordered by a policy-adjusted priority score.

Examples:
  # Rank counties in one state from the warehouse
  rank --state Texas

  # Rank a subset of counties from a local CSV with a policy workbook
  rank --input counties.csv --policy policy.xlsx

  # Rank every state in parallel, one workbook per state
  rank --national`,
	RunE: runRank,
}

func init() {
	f := rankCmd.Flags()
	f.String("input", "", "county indicator file (.csv or .xlsx); omit to read the warehouse")
	f.String("state", "", "state to rank (warehouse mode)")
	f.String("counties", "", "comma-separated county names (default: all in state)")
	f.String("policy", "", "policy file (.csv or .xlsx); warehouse mode reads stored policies")
	f.Bool("national", false, "rank every state in the warehouse, one output per state")
	f.String("output", "", "output file path (default: under configured output dir)")
	f.String("format", "", "output format: xlsx or csv (default: config)")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	national, _ := cmd.Flags().GetBool("national")
	if national {
		return runRankNational(cmd, started)
	}

	t, closeStore, err := loadCountyTable(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	policies, err := rankPolicies(cmd)
	if err != nil {
		return err
	}
	if policies == nil {
		if state, _ := cmd.Flags().GetString("state"); state != "" {
			if input, _ := cmd.Flags().GetString("input"); input == "" {
				pg, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
				if err != nil {
					return err
				}
				policies, err = pg.PolicyRecords(ctx, state)
				pg.Close()
				if err != nil {
					return err
				}
			}
		}
	}

	ranking, err := risk.Rank(t, policies)
	if err != nil {
		return eris.Wrap(err, "rank")
	}

	state, _ := cmd.Flags().GetString("state")
	out, err := writeRanking(cmd, ranking, "ranking")
	if err != nil {
		return err
	}

	recordRun(ctx, "rank", state, len(ranking.Scores), out, started)
	fmt.Printf("Ranked %d counties (policy adjusted: %v) -> %s\n",
		len(ranking.Scores), ranking.PolicyAdjusted, out)
	return nil
}

// runRankNational ranks every state in the warehouse concurrently, bounded by
// the configured concurrency, and writes one workbook per state.
func runRankNational(cmd *cobra.Command, started time.Time) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return err
	}
	defer pg.Close()

	states, err := pg.States(ctx)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return eris.New("rank: no states in warehouse")
	}

	log := zap.L().With(zap.String("command", "rank"))
	log.Info("starting national ranking",
		zap.Int("states", len(states)),
		zap.Int("concurrency", cfg.Analysis.Concurrency))

	var (
		mu     sync.Mutex
		total  int
		failed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Analysis.Concurrency)
	for _, state := range states {
		g.Go(func() error {
			t, err := pg.CountyIndicators(gctx, state, nil)
			if err != nil {
				log.Warn("state fetch failed", zap.String("state", state), zap.Error(err))
				mu.Lock()
				failed = append(failed, state)
				mu.Unlock()
				return nil
			}
			policies, err := pg.PolicyRecords(gctx, state)
			if err != nil {
				return err
			}
			ranking, err := risk.Rank(t, policies)
			if err != nil {
				log.Warn("state ranking failed", zap.String("state", state), zap.Error(err))
				mu.Lock()
				failed = append(failed, state)
				mu.Unlock()
				return nil
			}

			name := "ranking_" + strings.ReplaceAll(strings.ToLower(state), " ", "_") + ".xlsx"
			out := filepath.Join(cfg.Output.Dir, name)
			if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
				return eris.Wrapf(err, "rank: create output dir %s", cfg.Output.Dir)
			}
			if err := exporter.WriteRankingXLSX(out, ranking); err != nil {
				return err
			}

			mu.Lock()
			total += len(ranking.Scores)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Strings(failed)
	log.Info("national ranking complete",
		zap.Int("counties", total),
		zap.Strings("failed_states", failed))

	recordRun(ctx, "rank --national", "", total, cfg.Output.Dir, started)
	fmt.Printf("Ranked %d counties across %d states -> %s\n",
		total, len(states)-len(failed), cfg.Output.Dir)
	return nil
}

func rankPolicies(cmd *cobra.Command) ([]risk.PolicyRecord, error) {
	policyPath, _ := cmd.Flags().GetString("policy")
	if policyPath == "" {
		return nil, nil
	}
	return readPolicyFile(policyPath)
}

func writeRanking(cmd *cobra.Command, ranking *risk.Ranking, baseName string) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Output.Format
	}

	switch format {
	case "xlsx":
		out, err := outputPath(cmd, baseName+".xlsx")
		if err != nil {
			return "", err
		}
		return out, exporter.WriteRankingXLSX(out, ranking)
	case "csv":
		out, err := outputPath(cmd, baseName+".csv")
		if err != nil {
			return "", err
		}
		f, err := os.Create(out)
		if err != nil {
			return "", eris.Wrapf(err, "rank: create %s", out)
		}
		defer f.Close() //nolint:errcheck
		return out, exporter.WriteRankingCSV(f, ranking)
	default:
		return "", eris.Errorf("rank: unsupported format %q (want xlsx or csv)", format)
	}
}
