// Package indicator defines the closed schema of socioeconomic indicators and
// the in-memory tables of geographic units the analysis pipeline operates on.
package indicator

// Kind is the semantic type of an indicator column.
type Kind int

const (
	KindPercentage Kind = iota // bounded to [0,100]
	KindRatio
	KindCount
	KindDate // excluded from all numeric processing
)

// Indicator names a column in an indicator table. The set of indicators is
// closed: only the constants below are accepted at ingestion.
type Indicator string

// County-level indicators.
const (
	PovertyRate            Indicator = "Population Below Poverty Line (%)"
	UnemploymentRate       Indicator = "Unemployment Rate (%)"
	IncomeInequality       Indicator = "Income Inequality (Ratio)"
	HomeOwnership          Indicator = "Home Ownership (%)"
	NonHomeOwnership       Indicator = "Non-Home Ownership (%)"
	BurdenedHouseholds     Indicator = "Burdened Households (%)"
	SingleParentHouseholds Indicator = "Single Parent Households (%)"
	SNAPRecipients         Indicator = "SNAP Benefits Recipients (Persons)"
	ResidentPopulation     Indicator = "Resident Population (Thousands of Persons)"
	PolicyValue            Indicator = "Policy Value"
	Countdown              Indicator = "Countdown"
)

// Derived population-count columns produced by the normalizer from the
// percentage indicators above.
const (
	PopBelowPoverty     Indicator = "Pop Below Poverty Level"
	PopUnemployed       Indicator = "Pop Unemployed"
	NonHomeOwnershipPop Indicator = "Non-Home Ownership Pop"
	NumBurdened         Indicator = "Num Burdened Households"
	NumSingleParent     Indicator = "Num Single Parent Households"
)

// Tract-level equity indicators, after the MTC equity priority community
// demographic factors.
const (
	PeopleOfColor        Indicator = "People of Color (%)"
	LowIncome            Indicator = "Low-Income (%)"
	Seniors              Indicator = "Seniors 75 and Over (%)"
	Disability           Indicator = "People with Disability (%)"
	LimitedEnglish       Indicator = "Limited English Proficiency (%)"
	ZeroVehicle          Indicator = "Zero-Vehicle Households (%)"
	SingleParentFamilies Indicator = "Single Parent Families (%)"
	RentBurdened         Indicator = "Severely Rent-Burdened Households (%)"
)

// Tract-level transportation and hazard-risk indicators.
const (
	VehicleMilesTraveled Indicator = "Vehicle Miles Traveled"
	MeanCommute          Indicator = "Mean Commute Time (Minutes)"
	TransitCommuters     Indicator = "Public Transit Commuters (%)"
	NoComputer           Indicator = "No Computer Households (%)"
	WildfireRisk         Indicator = "Wildfire Risk Score"
	FloodRisk            Indicator = "Flood Risk Score"
	ExtremeHeat          Indicator = "Extreme Heat Days"
)

var kinds = map[Indicator]Kind{
	PovertyRate:            KindPercentage,
	UnemploymentRate:       KindPercentage,
	IncomeInequality:       KindRatio,
	HomeOwnership:          KindPercentage,
	NonHomeOwnership:       KindPercentage,
	BurdenedHouseholds:     KindPercentage,
	SingleParentHouseholds: KindPercentage,
	SNAPRecipients:         KindCount,
	ResidentPopulation:     KindCount,
	PolicyValue:            KindRatio,
	Countdown:              KindCount,

	PopBelowPoverty:     KindCount,
	PopUnemployed:       KindCount,
	NonHomeOwnershipPop: KindCount,
	NumBurdened:         KindCount,
	NumSingleParent:     KindCount,

	PeopleOfColor:        KindPercentage,
	LowIncome:            KindPercentage,
	Seniors:              KindPercentage,
	Disability:           KindPercentage,
	LimitedEnglish:       KindPercentage,
	ZeroVehicle:          KindPercentage,
	SingleParentFamilies: KindPercentage,
	RentBurdened:         KindPercentage,

	VehicleMilesTraveled: KindCount,
	MeanCommute:          KindRatio,
	TransitCommuters:     KindPercentage,
	NoComputer:           KindPercentage,
	WildfireRisk:         KindRatio,
	FloodRisk:            KindRatio,
	ExtremeHeat:          KindCount,
}

// KindOf returns the semantic kind of a known indicator.
func KindOf(ind Indicator) (Kind, bool) {
	k, ok := kinds[ind]
	return k, ok
}

// Known reports whether ind is part of the closed schema.
func Known(ind Indicator) bool {
	_, ok := kinds[ind]
	return ok
}

// PercentOfPopulation maps the county percentage indicators to the derived
// population-count columns the normalizer produces from them.
var PercentOfPopulation = map[Indicator]Indicator{
	PovertyRate:            PopBelowPoverty,
	UnemploymentRate:       PopUnemployed,
	NonHomeOwnership:       NonHomeOwnershipPop,
	BurdenedHouseholds:     NumBurdened,
	SingleParentHouseholds: NumSingleParent,
}

// CoreSocioeconomic returns the six columns crossed pairwise by the feature
// crosser, in canonical order.
func CoreSocioeconomic() []Indicator {
	return []Indicator{
		PopBelowPoverty,
		PopUnemployed,
		IncomeInequality,
		NonHomeOwnershipPop,
		NumBurdened,
		NumSingleParent,
	}
}

// EquityCorePair returns the two indicators of Criterion A.
func EquityCorePair() []Indicator {
	return []Indicator{PeopleOfColor, LowIncome}
}

// EquityRemaining returns the six remaining demographic factors of Criterion B.
func EquityRemaining() []Indicator {
	return []Indicator{
		Seniors,
		Disability,
		LimitedEnglish,
		ZeroVehicle,
		SingleParentFamilies,
		RentBurdened,
	}
}

// Transportation returns the transportation indicator group offered to the
// sub-index builder.
func Transportation() []Indicator {
	return []Indicator{
		ZeroVehicle,
		VehicleMilesTraveled,
		MeanCommute,
		TransitCommuters,
		NoComputer,
		PeopleOfColor,
	}
}

// Hazard returns the natural-hazard indicator group offered to the sub-index
// builder.
func Hazard() []Indicator {
	return []Indicator{
		WildfireRisk,
		FloodRisk,
		ExtremeHeat,
	}
}
