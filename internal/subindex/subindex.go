// Package subindex builds user-weighted vulnerability indices over arbitrary
// indicator subsets, such as a transportation vulnerability index.
package subindex

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/arup-group/social-data-cli/internal/indicator"
	"github.com/arup-group/social-data-cli/internal/risk"
)

// Weights maps each selected indicator to its weight as a percentage (0-100).
type Weights map[indicator.Indicator]float64

// Entry is one unit's index value.
type Entry struct {
	indicator.Unit
	Value float64
}

// Result is a ranked sub-index. Warnings carry soft validation findings
// (weights not summing to 100); they are the border's concern to display,
// never a computation failure.
type Result struct {
	Entries  []Entry
	Warnings []string
}

// weightSumTolerance matches the border validation: sums in [99,101] pass
// without comment so per-indicator rounding doesn't nag.
const weightSumTolerance = 1.0

// Build computes Σ weight(i) × normalized value(i) per unit over the
// caller-chosen indicator subset and ranks units descending. The weighted sum
// is computed regardless of whether the weights total 100.
func Build(n *risk.Normalized, weights Weights) (*Result, error) {
	if n == nil || len(n.Units) == 0 {
		return nil, eris.New("subindex: empty unit set")
	}
	if len(weights) == 0 {
		return nil, eris.New("subindex: empty indicator subset")
	}

	present := make(map[indicator.Indicator]bool, len(n.Columns))
	for _, c := range n.Columns {
		present[c] = true
	}

	var sum float64
	for ind, w := range weights {
		if w < 0 || w > 100 {
			return nil, eris.Errorf("subindex: weight %g for %q out of [0,100]", w, ind)
		}
		if !present[ind] {
			return nil, eris.Errorf("subindex: indicator %q missing from normalized table", ind)
		}
		sum += w
	}

	res := &Result{}
	if sum < 100-weightSumTolerance || sum > 100+weightSumTolerance {
		res.Warnings = append(res.Warnings, fmt.Sprintf("weights sum to %.1f, not 100", sum))
	}

	for i, u := range n.Units {
		var v float64
		for ind, w := range weights {
			v += w * n.Values[i][ind]
		}
		res.Entries = append(res.Entries, Entry{Unit: u, Value: v})
	}

	sort.SliceStable(res.Entries, func(i, j int) bool {
		a, b := res.Entries[i], res.Entries[j]
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		return a.Name < b.Name
	})

	return res, nil
}

// Top returns the first k entries, bounded by the available unit count.
// k <= 0 returns everything.
func (r *Result) Top(k int) []Entry {
	if k <= 0 || k > len(r.Entries) {
		return r.Entries
	}
	return r.Entries[:k]
}
