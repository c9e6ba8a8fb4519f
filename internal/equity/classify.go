// Package equity identifies equity geographies: census tracts with a
// significant concentration of underserved populations, per the MTC equity
// priority community methodology.
package equity

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/arup-group/social-data-cli/internal/indicator"
)

// Concentration coefficients. Higher coefficients raise every threshold and
// narrow the qualifying set.
const (
	CoefficientLow    = 0.5
	CoefficientMedium = 1.0
	CoefficientHigh   = 1.5
)

// Threshold is the concentration cutoff for one indicator over the current
// tract set: mean + stddev × coefficient. Region-relative, recomputed per
// classification run.
type Threshold struct {
	Mean   float64
	StdDev float64
	Value  float64
}

// Tract is one classified census tract with per-criterion provenance.
type Tract struct {
	indicator.Unit
	Values         map[indicator.Indicator]float64
	CriterionA     bool // concentration of both people of color AND low income
	CriterionB     bool // low income AND >= 3 of the remaining six factors
	RemainingCount int  // remaining indicators exceeding their thresholds
}

// EquityGeography reports whether the tract meets Criterion A or B.
func (t Tract) EquityGeography() bool {
	return t.CriterionA || t.CriterionB
}

// Criteria returns a display label for the criteria the tract meets.
func (t Tract) Criteria() string {
	switch {
	case t.CriterionA && t.CriterionB:
		return "A and B"
	case t.CriterionA:
		return "A"
	case t.CriterionB:
		return "B"
	default:
		return ""
	}
}

// Result holds one classification run: the full flagged tract set, the
// equity-only subset, the thresholds used, and per-indicator averages for the
// whole region and for the equity subset.
type Result struct {
	Coefficient    float64
	Tracts         []Tract
	Equity         []Tract
	Thresholds     map[indicator.Indicator]Threshold
	Averages       map[indicator.Indicator]float64
	EquityAverages map[indicator.Indicator]float64
}

// Classify runs the two-criteria concentration test over raw
// (pre-normalization) tract indicator values. One run per
// (tract set, coefficient) pair; thresholds are never reused across runs.
//
// A single-tract set degenerates: every stddev is zero and each threshold
// collapses to the tract's own value, which a strict comparison never
// exceeds. That behavior is preserved, not patched.
func Classify(t *indicator.Table, coefficient float64) (*Result, error) {
	if coefficient <= 0 {
		return nil, eris.Errorf("equity: concentration coefficient must be > 0, got %g", coefficient)
	}
	if t == nil || t.Len() == 0 {
		return nil, eris.New("equity: empty tract set")
	}

	configured := append(indicator.EquityCorePair(), indicator.EquityRemaining()...)
	if err := t.RequireColumns(configured...); err != nil {
		return nil, err
	}

	rows := t.Complete(configured...)
	if len(rows) == 0 {
		return nil, eris.New("equity: no tracts with complete indicator data")
	}
	if excluded := t.Len() - len(rows); excluded > 0 {
		zap.L().Warn("equity: tracts excluded for incomplete indicators",
			zap.Int("excluded", excluded),
			zap.Int("remaining", len(rows)),
		)
	}

	res := &Result{
		Coefficient:    coefficient,
		Thresholds:     make(map[indicator.Indicator]Threshold, len(configured)),
		Averages:       make(map[indicator.Indicator]float64, len(configured)),
		EquityAverages: make(map[indicator.Indicator]float64, len(configured)),
	}

	for _, ind := range configured {
		mean, std := meanStdDev(rows, ind)
		res.Thresholds[ind] = Threshold{
			Mean:   mean,
			StdDev: std,
			Value:  mean + std*coefficient,
		}
		res.Averages[ind] = mean
	}

	remaining := indicator.EquityRemaining()
	for _, r := range rows {
		tract := Tract{Unit: r.Unit, Values: r.Values}

		poc := r.Values[indicator.PeopleOfColor] > res.Thresholds[indicator.PeopleOfColor].Value
		lowIncome := r.Values[indicator.LowIncome] > res.Thresholds[indicator.LowIncome].Value
		tract.CriterionA = poc && lowIncome

		for _, ind := range remaining {
			if r.Values[ind] > res.Thresholds[ind].Value {
				tract.RemainingCount++
			}
		}
		tract.CriterionB = lowIncome && tract.RemainingCount >= 3

		res.Tracts = append(res.Tracts, tract)
		if tract.EquityGeography() {
			res.Equity = append(res.Equity, tract)
		}
	}

	for _, ind := range configured {
		res.EquityAverages[ind] = meanOf(res.Equity, ind)
	}

	sort.SliceStable(res.Tracts, func(i, j int) bool { return res.Tracts[i].Name < res.Tracts[j].Name })
	sort.SliceStable(res.Equity, func(i, j int) bool { return res.Equity[i].Name < res.Equity[j].Name })

	zap.L().Info("equity: classification complete",
		zap.Float64("coefficient", coefficient),
		zap.Int("tracts", len(res.Tracts)),
		zap.Int("equity_geographies", len(res.Equity)),
	)

	return res, nil
}

// meanStdDev computes the mean and sample standard deviation of an indicator
// over the tract rows. With fewer than two tracts the deviation is zero.
func meanStdDev(rows []indicator.Row, ind indicator.Indicator) (float64, float64) {
	n := float64(len(rows))
	var sum float64
	for _, r := range rows {
		sum += r.Values[ind]
	}
	mean := sum / n

	if len(rows) < 2 {
		return mean, 0
	}
	var ss float64
	for _, r := range rows {
		d := r.Values[ind] - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / (n - 1))
}

func meanOf(tracts []Tract, ind indicator.Indicator) float64 {
	if len(tracts) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tracts {
		sum += t.Values[ind]
	}
	return sum / float64(len(tracts))
}
