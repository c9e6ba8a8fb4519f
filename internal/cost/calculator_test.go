package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arup-group/social-data-cli/internal/indicator"
)

func county(name string, popThousands, burdenedPct float64) indicator.Row {
	return indicator.Row{
		Unit:       indicator.Unit{Region: "Testland", Name: name},
		Population: popThousands,
		Values: map[indicator.Indicator]float64{
			indicator.BurdenedHouseholds: burdenedPct,
		},
	}
}

func flatRents(name string, rent float64) Rents {
	r := Rents{Unit: indicator.Unit{Region: "Testland", Name: name}}
	for br := 0; br < Bedrooms; br++ {
		r.ByBedrooms[br] = rent
	}
	return r
}

func TestNewCalculatorValidation(t *testing.T) {
	_, err := NewCalculator("median", DefaultDistribution())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rent type")

	_, err = NewCalculator(RentFairMarket, Distribution{0.5, 0.5, 0.5, 0, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to")

	_, err = NewCalculator(RentFairMarket, Distribution{-0.1, 0.3, 0.3, 0.3, 0.2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative")

	c, err := NewCalculator(RentMedian, DefaultDistribution())
	require.NoError(t, err)
	assert.Equal(t, RentMedian, c.RentType())
}

func TestEstimateFormula(t *testing.T) {
	c, err := NewCalculator(RentFairMarket, DefaultDistribution())
	require.NoError(t, err)

	tbl, err := indicator.NewTable([]indicator.Row{county("Adams", 100, 20)})
	require.NoError(t, err)

	// Flat $1000 rent: shares sum to 1, so the total collapses to
	// 1000 × 50% at risk × 100k persons × 20% burdened = $10M.
	out, err := c.Estimate(tbl, []Rents{flatRents("Adams", 1000)}, 50)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 10_000_000, out[0].Total, 1)

	// Per-bedroom figures follow the distribution shares.
	dist := DefaultDistribution()
	for br := 0; br < Bedrooms; br++ {
		assert.InDelta(t, dist[br]*10_000_000, out[0].ByBedrooms[br], 1)
	}
}

func TestEstimateSkipsCountiesWithoutRents(t *testing.T) {
	c, err := NewCalculator(RentFairMarket, DefaultDistribution())
	require.NoError(t, err)

	tbl, err := indicator.NewTable([]indicator.Row{
		county("Adams", 100, 20),
		county("Butler", 50, 10),
	})
	require.NoError(t, err)

	out, err := c.Estimate(tbl, []Rents{flatRents("Adams", 1000)}, 50)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Adams", out[0].Name)
}

func TestEstimateSortedByTotalDescending(t *testing.T) {
	c, err := NewCalculator(RentFairMarket, DefaultDistribution())
	require.NoError(t, err)

	tbl, err := indicator.NewTable([]indicator.Row{
		county("Small", 10, 20),
		county("Large", 500, 20),
	})
	require.NoError(t, err)

	rents := []Rents{flatRents("Small", 1000), flatRents("Large", 1000)}
	out, err := c.Estimate(tbl, rents, 50)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Large", out[0].Name)
	assert.Greater(t, out[0].Total, out[1].Total)
}

func TestEstimateValidation(t *testing.T) {
	c, err := NewCalculator(RentFairMarket, DefaultDistribution())
	require.NoError(t, err)

	tbl, err := indicator.NewTable([]indicator.Row{county("Adams", 100, 20)})
	require.NoError(t, err)
	rents := []Rents{flatRents("Adams", 1000)}

	_, err = c.Estimate(tbl, rents, 120)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of [0,100]")

	_, err = c.Estimate(nil, rents, 50)
	require.Error(t, err)

	// No county with both indicator and rent data.
	_, err = c.Estimate(tbl, nil, 50)
	require.Error(t, err)
}
