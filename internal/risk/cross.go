package risk

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/arup-group/social-data-cli/internal/indicator"
)

// Combinations returns all unordered subsets of size r, preserving the input
// order within each subset. The generator is general, but the feature crosser
// deliberately uses only r=2: pairwise interactions capture compounding risk
// without the blow-up of higher orders.
func Combinations(items []indicator.Indicator, r int) [][]indicator.Indicator {
	if r <= 0 || r > len(items) {
		return nil
	}
	var out [][]indicator.Indicator
	combo := make([]indicator.Indicator, r)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == r {
			out = append(out, append([]indicator.Indicator(nil), combo...))
			return
		}
		for i := start; i <= len(items)-(r-depth); i++ {
			combo[depth] = items[i]
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return out
}

// CrossedMeans computes the "Crossed" feature for every unit: the mean over
// all pairwise |a×b| products of the six core socioeconomic columns. The
// result is aligned with n.Units and is discarded after folding into the
// composite.
func CrossedMeans(n *Normalized) ([]float64, error) {
	core := indicator.CoreSocioeconomic()
	present := make(map[indicator.Indicator]bool, len(n.Columns))
	for _, c := range n.Columns {
		present[c] = true
	}
	for _, c := range core {
		if !present[c] {
			return nil, eris.Errorf("risk: crossed feature requires column %q", c)
		}
	}

	pairs := Combinations(core, 2)
	out := make([]float64, len(n.Units))
	for i := range n.Units {
		var sum float64
		for _, p := range pairs {
			sum += math.Abs(n.Values[i][p[0]] * n.Values[i][p[1]])
		}
		out[i] = sum / float64(len(pairs))
	}
	return out, nil
}
