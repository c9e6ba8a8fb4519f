// Package cost estimates the cost of supporting burdened households to avoid
// eviction, broken down by bedroom count.
package cost

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/arup-group/social-data-cli/internal/indicator"
)

// RentType selects which rent table drives the estimate.
type RentType string

const (
	RentFairMarket RentType = "fmr"    // HUD fair market rents
	RentMedian     RentType = "rent50" // 50th percentile rents
)

// Bedrooms is the number of bedroom counts modeled (0 through 4).
const Bedrooms = 5

// Distribution is the share of housing stock by bedroom count (0-4).
type Distribution [Bedrooms]float64

// DefaultDistribution returns the assumed national housing stock
// distribution from the American Housing Survey.
func DefaultDistribution() Distribution {
	return Distribution{0.0079, 0.1083, 0.2466, 0.4083, 0.2289}
}

// Rents holds monthly rent by bedroom count for one county.
type Rents struct {
	indicator.Unit
	ByBedrooms [Bedrooms]float64
}

// Estimate is the per-county cost result.
type Estimate struct {
	indicator.Unit
	ByBedrooms [Bedrooms]float64
	Total      float64
}

// Calculator computes eviction-avoidance cost estimates.
type Calculator struct {
	rentType     RentType
	distribution Distribution
}

// NewCalculator validates the rent type and housing distribution.
func NewCalculator(rentType RentType, dist Distribution) (*Calculator, error) {
	if rentType != RentFairMarket && rentType != RentMedian {
		return nil, eris.Errorf("cost: invalid rent type %q (must be %q or %q)",
			rentType, RentFairMarket, RentMedian)
	}
	var sum float64
	for i, share := range dist {
		if share < 0 {
			return nil, eris.Errorf("cost: negative distribution share for %d bedrooms", i)
		}
		sum += share
	}
	if math.Abs(sum-1) > 0.01 {
		return nil, eris.Errorf("cost: distribution shares sum to %.4f, expected 1", sum)
	}
	return &Calculator{rentType: rentType, distribution: dist}, nil
}

// RentType returns the configured rent table selector.
func (c *Calculator) RentType() RentType {
	return c.rentType
}

// Estimate computes, for each county with rent data, the monthly cost of
// covering rent for pctBurdened percent of its burdened households:
//
//	share(br) × rent(br) × pctBurdened/100 × population × burdened%/100
//
// summed over bedroom counts. Counties without a rent row are skipped and
// logged; they do not abort the batch.
func (c *Calculator) Estimate(t *indicator.Table, rents []Rents, pctBurdened float64) ([]Estimate, error) {
	if t == nil || t.Len() == 0 {
		return nil, eris.New("cost: empty unit set")
	}
	if pctBurdened < 0 || pctBurdened > 100 {
		return nil, eris.Errorf("cost: percent burdened %g out of [0,100]", pctBurdened)
	}
	if err := t.RequireColumns(indicator.BurdenedHouseholds); err != nil {
		return nil, err
	}

	rentsByUnit := make(map[indicator.Unit]Rents, len(rents))
	for _, r := range rents {
		rentsByUnit[r.Unit] = r
	}

	var out []Estimate
	for _, row := range t.Complete(indicator.BurdenedHouseholds) {
		rent, ok := rentsByUnit[row.Unit]
		if !ok {
			zap.L().Warn("cost: no rent data for county, skipping",
				zap.String("region", row.Region),
				zap.String("county", row.Name),
			)
			continue
		}
		if row.Population <= 0 {
			continue
		}

		burdened := row.Values[indicator.BurdenedHouseholds]
		est := Estimate{Unit: row.Unit}
		for br := 0; br < Bedrooms; br++ {
			est.ByBedrooms[br] = c.distribution[br] * rent.ByBedrooms[br] *
				(pctBurdened / 100) * (row.Population * 1000) * (burdened / 100)
			est.Total += est.ByBedrooms[br]
		}
		out = append(out, est)
	}
	if len(out) == 0 {
		return nil, eris.New("cost: no counties with both indicator and rent data")
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out, nil
}
