package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arup-group/social-data-cli/internal/indicator"
)

func policy(name string, value, countdown float64) PolicyRecord {
	return PolicyRecord{
		Unit:      indicator.Unit{Region: "Testland", Name: name},
		Value:     value,
		Countdown: countdown,
	}
}

func TestRankCompositeBounds(t *testing.T) {
	tbl := mustTable(t, []indicator.Row{
		countyRow("Adams", 100, map[indicator.Indicator]float64{indicator.PovertyRate: 30}),
		countyRow("Butler", 80, nil),
		countyRow("Clark", 20, map[indicator.Indicator]float64{indicator.PovertyRate: 2}),
	})

	ranking, err := Rank(tbl, nil)
	require.NoError(t, err)
	require.Len(t, ranking.Scores, 3)
	assert.False(t, ranking.PolicyAdjusted)

	for _, s := range ranking.Scores {
		assert.GreaterOrEqual(t, s.RelativeRisk, 0.0)
		assert.LessOrEqual(t, s.RelativeRisk, 1.0)
	}
	// Descending order with the maximum pinned at exactly 1.0.
	assert.Equal(t, 1.0, ranking.Scores[0].RelativeRisk)
	for i := 1; i < len(ranking.Scores); i++ {
		assert.LessOrEqual(t, ranking.Scores[i].RelativeRisk, ranking.Scores[i-1].RelativeRisk)
	}
}

func TestPriorityScore(t *testing.T) {
	// Countdown below one is floored at one.
	assert.Equal(t, PriorityScore(0.8, 0.5, 0), PriorityScore(0.8, 0.5, 1))
	assert.InDelta(t, 0.4, PriorityScore(0.8, 0.5, 1), 1e-12)

	// Monotonic decay: longer countdowns never raise priority.
	prev := math.Inf(1)
	for _, countdown := range []float64{1, 2, 4, 9, 100} {
		p := PriorityScore(0.8, 0.2, countdown)
		assert.Less(t, p, prev)
		prev = p
	}

	// A fully enacted policy zeroes the priority regardless of risk.
	assert.Zero(t, PriorityScore(1.0, 1.0, 4))
}

func TestRankPolicyAdjusted(t *testing.T) {
	tbl := mustTable(t, []indicator.Row{
		countyRow("Adams", 100, map[indicator.Indicator]float64{indicator.PovertyRate: 30}),
		countyRow("Butler", 80, nil),
	})
	policies := []PolicyRecord{
		// The riskier county has strong protections and a distant deadline;
		// the safer one is unprotected and urgent.
		policy("Adams", 0.9, 36),
		policy("Butler", 0.0, 1),
	}

	ranking, err := Rank(tbl, policies)
	require.NoError(t, err)
	require.True(t, ranking.PolicyAdjusted)

	assert.Equal(t, "Butler", ranking.Scores[0].Name)
	assert.Greater(t, ranking.Scores[0].Priority, ranking.Scores[1].Priority)
}

func TestRankPolicyValueOutOfRange(t *testing.T) {
	tbl := mustTable(t, []indicator.Row{
		countyRow("Adams", 100, nil),
		countyRow("Butler", 80, nil),
	})

	_, err := Rank(tbl, []PolicyRecord{policy("Adams", 1.5, 1), policy("Butler", 0.2, 1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of [0,1]")

	_, err = Rank(tbl, []PolicyRecord{policy("Adams", 0.5, -2), policy("Butler", 0.2, 1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative countdown")
}

func TestRankPartialPolicyJoinFallsBack(t *testing.T) {
	tbl := mustTable(t, []indicator.Row{
		countyRow("Adams", 100, nil),
		countyRow("Butler", 80, nil),
	})

	ranking, err := Rank(tbl, []PolicyRecord{policy("Adams", 0.5, 4)})
	require.NoError(t, err)
	assert.False(t, ranking.PolicyAdjusted)

	var found bool
	for _, w := range ranking.Warnings {
		if w.Message == "policy adjustment skipped: partial join" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRankDuplicatePolicyFallsBack(t *testing.T) {
	tbl := mustTable(t, []indicator.Row{
		countyRow("Adams", 100, nil),
		countyRow("Butler", 80, nil),
	})
	policies := []PolicyRecord{
		policy("Adams", 0.5, 4),
		policy("Adams", 0.7, 2),
		policy("Butler", 0.2, 1),
	}

	ranking, err := Rank(tbl, policies)
	require.NoError(t, err)
	assert.False(t, ranking.PolicyAdjusted)
}

func TestRankDeterministicTieBreak(t *testing.T) {
	// Identical rows score identically; ties order by name ascending.
	tbl := mustTable(t, []indicator.Row{
		countyRow("Zeta", 100, nil),
		countyRow("Alpha", 100, nil),
	})

	ranking, err := Rank(tbl, nil)
	require.NoError(t, err)
	require.Len(t, ranking.Scores, 2)
	assert.Equal(t, "Alpha", ranking.Scores[0].Name)
	assert.Equal(t, "Zeta", ranking.Scores[1].Name)
	assert.Equal(t, ranking.Scores[0].RelativeRisk, ranking.Scores[1].RelativeRisk)
}
