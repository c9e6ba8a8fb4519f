package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arup-group/social-data-cli/internal/indicator"
)

// countyRow builds a row with every required ranking indicator set to flat
// mid-range values, then applies overrides.
func countyRow(name string, popThousands float64, overrides map[indicator.Indicator]float64) indicator.Row {
	values := map[indicator.Indicator]float64{
		indicator.PovertyRate:            10,
		indicator.UnemploymentRate:       5,
		indicator.NonHomeOwnership:       40,
		indicator.BurdenedHouseholds:     20,
		indicator.SingleParentHouseholds: 15,
		indicator.IncomeInequality:       4.5,
	}
	for ind, v := range overrides {
		values[ind] = v
	}
	return indicator.Row{
		Unit:       indicator.Unit{Region: "Testland", Name: name},
		Population: popThousands,
		Values:     values,
	}
}

func mustTable(t *testing.T, rows []indicator.Row) *indicator.Table {
	t.Helper()
	tbl, err := indicator.NewTable(rows)
	require.NoError(t, err)
	return tbl
}

func TestNormalizePercentToPopulationAndScale(t *testing.T) {
	// 10% of 100k = 10000, 20% of 100k = 20000, 40% of 100k = 40000.
	// After MaxAbs scaling the poverty column must read 0.25, 0.5, 1.0.
	tbl := mustTable(t, []indicator.Row{
		countyRow("Adams", 100, map[indicator.Indicator]float64{indicator.PovertyRate: 10}),
		countyRow("Butler", 100, map[indicator.Indicator]float64{indicator.PovertyRate: 20}),
		countyRow("Clark", 100, map[indicator.Indicator]float64{indicator.PovertyRate: 40}),
	})

	n, err := Normalize(tbl)
	require.NoError(t, err)
	require.Len(t, n.Units, 3)

	assert.InDelta(t, 0.25, n.Value(0, indicator.PopBelowPoverty), 1e-12)
	assert.InDelta(t, 0.5, n.Value(1, indicator.PopBelowPoverty), 1e-12)
	assert.InDelta(t, 1.0, n.Value(2, indicator.PopBelowPoverty), 1e-12)
}

func TestNormalizeBoundsAndPercentDrop(t *testing.T) {
	tbl := mustTable(t, []indicator.Row{
		countyRow("Adams", 50, nil),
		countyRow("Butler", 500, map[indicator.Indicator]float64{indicator.PovertyRate: 30}),
	})

	n, err := Normalize(tbl)
	require.NoError(t, err)

	// Percentage originals are gone; only derived counts and the ratio remain.
	for _, col := range n.Columns {
		assert.NotEqual(t, indicator.PovertyRate, col)
		assert.NotEqual(t, indicator.NonHomeOwnership, col)
	}
	for i := range n.Units {
		for _, col := range n.Columns {
			v := n.Value(i, col)
			assert.GreaterOrEqual(t, v, -1.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestNormalizeMissingColumnIsStructuralError(t *testing.T) {
	r := countyRow("Adams", 50, nil)
	delete(r.Values, indicator.IncomeInequality)
	tbl := mustTable(t, []indicator.Row{r})

	_, err := Normalize(tbl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required column")
}

func TestNormalizeExcludesIncompleteRows(t *testing.T) {
	partial := countyRow("Butler", 50, nil)
	delete(partial.Values, indicator.BurdenedHouseholds)

	tbl := mustTable(t, []indicator.Row{
		countyRow("Adams", 50, nil),
		partial,
	})

	n, err := Normalize(tbl)
	require.NoError(t, err)
	require.Len(t, n.Units, 1)
	assert.Equal(t, "Adams", n.Units[0].Name)
}

func TestNormalizeExcludesZeroPopulation(t *testing.T) {
	tbl := mustTable(t, []indicator.Row{
		countyRow("Adams", 50, nil),
		countyRow("Butler", 0, nil),
	})

	n, err := Normalize(tbl)
	require.NoError(t, err)
	require.Len(t, n.Units, 1)
	assert.Equal(t, "Adams", n.Units[0].Name)
}

func TestNormalizeDegenerateColumnWarns(t *testing.T) {
	// All-zero unemployment yields an all-zero column plus a warning, not an
	// error.
	tbl := mustTable(t, []indicator.Row{
		countyRow("Adams", 50, map[indicator.Indicator]float64{indicator.UnemploymentRate: 0}),
		countyRow("Butler", 80, map[indicator.Indicator]float64{indicator.UnemploymentRate: 0}),
	})

	n, err := Normalize(tbl)
	require.NoError(t, err)

	for i := range n.Units {
		assert.Zero(t, n.Value(i, indicator.PopUnemployed))
	}
	require.NotEmpty(t, n.Warnings)
	assert.Equal(t, indicator.PopUnemployed, n.Warnings[0].Indicator)
}

func TestNormalizeSNAPOnlyWhenComplete(t *testing.T) {
	withSNAP := countyRow("Adams", 50, map[indicator.Indicator]float64{indicator.SNAPRecipients: 4000})
	withoutSNAP := countyRow("Butler", 80, nil)

	n, err := Normalize(mustTable(t, []indicator.Row{withSNAP, withoutSNAP}))
	require.NoError(t, err)
	assert.NotContains(t, n.Columns, indicator.SNAPRecipients)

	bothSNAP := countyRow("Butler", 80, map[indicator.Indicator]float64{indicator.SNAPRecipients: 9000})
	n, err = Normalize(mustTable(t, []indicator.Row{withSNAP, bothSNAP}))
	require.NoError(t, err)
	assert.Contains(t, n.Columns, indicator.SNAPRecipients)
}

func TestNormalizeColumnsIdempotent(t *testing.T) {
	// MaxAbs scaling is a fixed point: a column whose maximum absolute value
	// is already 1 passes through unchanged, so normalizing normalized output
	// yields identical values.
	inds := []indicator.Indicator{indicator.ZeroVehicle, indicator.WildfireRisk}
	tbl := mustTable(t, []indicator.Row{
		{
			Unit:   indicator.Unit{Region: "Testland", Name: "06001400100"},
			Values: map[indicator.Indicator]float64{indicator.ZeroVehicle: 3, indicator.WildfireRisk: 2},
		},
		{
			Unit:   indicator.Unit{Region: "Testland", Name: "06001400200"},
			Values: map[indicator.Indicator]float64{indicator.ZeroVehicle: 12, indicator.WildfireRisk: 8},
		},
	})

	first, err := NormalizeColumns(tbl, inds)
	require.NoError(t, err)

	rows := make([]indicator.Row, len(first.Units))
	for i, u := range first.Units {
		values := make(map[indicator.Indicator]float64, len(inds))
		for _, ind := range inds {
			values[ind] = first.Value(i, ind)
		}
		rows[i] = indicator.Row{Unit: u, Values: values}
	}

	second, err := NormalizeColumns(mustTable(t, rows), inds)
	require.NoError(t, err)
	require.Len(t, second.Units, len(first.Units))
	for i := range first.Units {
		for _, ind := range inds {
			assert.Equal(t, first.Value(i, ind), second.Value(i, ind))
		}
	}
}

func TestNormalizeColumnsNoPopulationConversion(t *testing.T) {
	rows := []indicator.Row{
		{
			Unit:   indicator.Unit{Region: "Testland", Name: "06001400100"},
			Values: map[indicator.Indicator]float64{indicator.MeanCommute: 20, indicator.WildfireRisk: 2},
		},
		{
			Unit:   indicator.Unit{Region: "Testland", Name: "06001400200"},
			Values: map[indicator.Indicator]float64{indicator.MeanCommute: 40, indicator.WildfireRisk: 8},
		},
	}
	tbl := mustTable(t, rows)

	n, err := NormalizeColumns(tbl, []indicator.Indicator{indicator.MeanCommute, indicator.WildfireRisk})
	require.NoError(t, err)
	require.Len(t, n.Units, 2)
	assert.InDelta(t, 0.5, n.Value(0, indicator.MeanCommute), 1e-12)
	assert.InDelta(t, 1.0, n.Value(1, indicator.MeanCommute), 1e-12)
	assert.InDelta(t, 0.25, n.Value(0, indicator.WildfireRisk), 1e-12)
}
