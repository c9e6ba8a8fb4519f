// Package risk implements the county vulnerability ranking pipeline:
// population-weighted normalization, pairwise feature crossing, composite
// relative-risk scoring, and policy-adjusted priority ranking.
package risk

import (
	"math"

	"go.uber.org/zap"

	"github.com/rotisserie/eris"

	"github.com/arup-group/social-data-cli/internal/indicator"
)

// Warning records a recoverable condition encountered during a pipeline
// stage. Warnings degrade the result but never abort it.
type Warning struct {
	Indicator indicator.Indicator
	Message   string
}

// Normalized is a derived table whose columns are scaled to [-1,1] by each
// column's maximum absolute value over the current unit set. The divisors are
// recomputed on every invocation; nothing is cached across runs.
type Normalized struct {
	Units    []indicator.Unit
	Columns  []indicator.Indicator
	Values   []map[indicator.Indicator]float64 // aligned with Units
	Warnings []Warning
}

// Value returns the normalized value for unit i and column ind.
func (n *Normalized) Value(i int, ind indicator.Indicator) float64 {
	return n.Values[i][ind]
}

// requiredForRanking lists the raw columns the ranking pipeline cannot run
// without. SNAP recipients is optional and carried only when every surviving
// unit reports it.
var requiredForRanking = []indicator.Indicator{
	indicator.PovertyRate,
	indicator.UnemploymentRate,
	indicator.NonHomeOwnership,
	indicator.BurdenedHouseholds,
	indicator.SingleParentHouseholds,
	indicator.IncomeInequality,
}

// Normalize converts the percent-of-population indicators to absolute counts
// (pct/100 × population in thousands × 1000), drops the percentage originals
// and the population column, and scales every remaining numeric column by its
// maximum absolute value. Policy Value and Countdown are never scaled; they
// are carried on the raw table and joined later by the ranker.
func Normalize(t *indicator.Table) (*Normalized, error) {
	if t == nil || t.Len() == 0 {
		return nil, eris.New("risk: empty unit set")
	}
	if err := t.RequireColumns(requiredForRanking...); err != nil {
		return nil, err
	}

	rows := t.Complete(requiredForRanking...)
	if excluded := t.Len() - len(rows); excluded > 0 {
		zap.L().Warn("risk: units excluded for incomplete indicators",
			zap.Int("excluded", excluded),
			zap.Int("remaining", len(rows)),
		)
	}

	var kept []indicator.Row
	for _, r := range rows {
		if r.Population <= 0 {
			zap.L().Warn("risk: unit excluded for missing population",
				zap.String("region", r.Region),
				zap.String("unit", r.Name),
			)
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return nil, eris.New("risk: no units with complete indicator data")
	}

	columns := []indicator.Indicator{
		indicator.PopBelowPoverty,
		indicator.PopUnemployed,
		indicator.IncomeInequality,
		indicator.NonHomeOwnershipPop,
		indicator.NumBurdened,
		indicator.NumSingleParent,
	}
	// Optional pass-through count columns ride along only when every unit
	// reports them; a partial column would silently skew the composite.
	for _, opt := range []indicator.Indicator{indicator.SNAPRecipients} {
		all := true
		for _, r := range kept {
			if _, ok := r.Values[opt]; !ok {
				all = false
				break
			}
		}
		if all {
			columns = append(columns, opt)
		}
	}

	n := &Normalized{
		Units:   make([]indicator.Unit, len(kept)),
		Columns: columns,
		Values:  make([]map[indicator.Indicator]float64, len(kept)),
	}

	for i, r := range kept {
		n.Units[i] = r.Unit
		vals := make(map[indicator.Indicator]float64, len(columns))
		for pct, derived := range indicator.PercentOfPopulation {
			vals[derived] = percentToPopulation(r.Values[pct], r.Population)
		}
		vals[indicator.IncomeInequality] = r.Values[indicator.IncomeInequality]
		if snap, ok := r.Values[indicator.SNAPRecipients]; ok {
			vals[indicator.SNAPRecipients] = snap
		}
		n.Values[i] = vals
	}

	for _, col := range columns {
		n.scaleColumn(col)
	}

	return n, nil
}

// NormalizeColumns scales the selected columns of a table to [-1,1] without
// any population conversion. Used for tract-level transportation and hazard
// indicators feeding the weighted sub-index.
func NormalizeColumns(t *indicator.Table, inds []indicator.Indicator) (*Normalized, error) {
	if t == nil || t.Len() == 0 {
		return nil, eris.New("risk: empty unit set")
	}
	if len(inds) == 0 {
		return nil, eris.New("risk: no columns selected")
	}
	if err := t.RequireColumns(inds...); err != nil {
		return nil, err
	}

	rows := t.Complete(inds...)
	if len(rows) == 0 {
		return nil, eris.New("risk: no units with complete indicator data")
	}

	n := &Normalized{
		Units:   make([]indicator.Unit, len(rows)),
		Columns: append([]indicator.Indicator(nil), inds...),
		Values:  make([]map[indicator.Indicator]float64, len(rows)),
	}
	for i, r := range rows {
		n.Units[i] = r.Unit
		vals := make(map[indicator.Indicator]float64, len(inds))
		for _, ind := range inds {
			vals[ind] = r.Values[ind]
		}
		n.Values[i] = vals
	}
	for _, col := range n.Columns {
		n.scaleColumn(col)
	}
	return n, nil
}

// scaleColumn divides the column by its maximum absolute value. A zero
// maximum (single-value or all-zero data) yields an all-zero column and a
// degenerate-scale warning instead of a division error.
func (n *Normalized) scaleColumn(col indicator.Indicator) {
	var maxAbs float64
	for i := range n.Values {
		if a := math.Abs(n.Values[i][col]); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		for i := range n.Values {
			n.Values[i][col] = 0
		}
		n.Warnings = append(n.Warnings, Warning{
			Indicator: col,
			Message:   "degenerate scale: maximum absolute value is zero",
		})
		zap.L().Warn("risk: degenerate column scale", zap.String("column", string(col)))
		return
	}
	for i := range n.Values {
		n.Values[i][col] /= maxAbs
	}
}

// percentToPopulation converts a percent-of-population indicator to an
// absolute person count, with population expressed in thousands.
func percentToPopulation(pct, populationThousands float64) float64 {
	return pct / 100 * populationThousands * 1000
}
