// Package store provides the data borders of the analysis pipeline: the
// postgres warehouse that supplies indicator, policy, and rent tables, and a
// local sqlite history of analysis runs.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/arup-group/social-data-cli/internal/cost"
	"github.com/arup-group/social-data-cli/internal/indicator"
	"github.com/arup-group/social-data-cli/internal/risk"
)

// Pool is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Postgres reads indicator snapshots from the social_data warehouse.
type Postgres struct {
	pool Pool
}

// NewPostgres creates a Postgres store with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse config")
	}
	pgxCfg.MaxConns = 5
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "store: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping")
	}
	return &Postgres{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; tests inject pgxmock here.
func NewPostgresFromPool(pool Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Close releases the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

const countyQuery = `
SELECT state_name,
       county_name,
       resident_population,
       poverty_rate,
       unemployment_rate,
       home_ownership,
       burdened_households,
       single_parent_households,
       income_inequality,
       snap_recipients
FROM social_data.county_latest
WHERE lower(state_name) = lower($1)
  AND (cardinality($2::text[]) = 0 OR lower(county_name) = ANY($2))
ORDER BY county_name`

// CountyIndicators fetches the latest county snapshot for a state. An empty
// county list fetches every county in the state. NULL indicator cells stay
// absent from the row; they are never zero-filled.
func (s *Postgres) CountyIndicators(ctx context.Context, state string, counties []string) (*indicator.Table, error) {
	rows, err := s.pool.Query(ctx, countyQuery, state, lowerAll(counties))
	if err != nil {
		return nil, eris.Wrap(err, "store: query county indicators")
	}
	defer rows.Close()

	var out []indicator.Row
	for rows.Next() {
		var (
			stateName, countyName string
			population            *float64
			poverty, unemployment *float64
			homeOwnership         *float64
			burdened, singlePar   *float64
			inequality, snap      *float64
		)
		if err := rows.Scan(&stateName, &countyName, &population,
			&poverty, &unemployment, &homeOwnership,
			&burdened, &singlePar, &inequality, &snap); err != nil {
			return nil, eris.Wrap(err, "store: scan county row")
		}

		r := indicator.Row{
			Unit:   indicator.Unit{Region: stateName, Name: countyName},
			Values: make(map[indicator.Indicator]float64),
		}
		if population != nil {
			r.Population = *population
		}
		setIfPresent(r.Values, indicator.PovertyRate, poverty)
		setIfPresent(r.Values, indicator.UnemploymentRate, unemployment)
		if homeOwnership != nil {
			r.Values[indicator.NonHomeOwnership] = 100 - *homeOwnership
		}
		setIfPresent(r.Values, indicator.BurdenedHouseholds, burdened)
		setIfPresent(r.Values, indicator.SingleParentHouseholds, singlePar)
		setIfPresent(r.Values, indicator.IncomeInequality, inequality)
		setIfPresent(r.Values, indicator.SNAPRecipients, snap)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate county rows")
	}
	if len(out) == 0 {
		return nil, eris.Errorf("store: no county data for state %q", state)
	}

	return indicator.NewTable(out)
}

const tractQuery = `
SELECT state_name,
       tract_geoid,
       people_of_color,
       low_income,
       seniors_75_over,
       with_disability,
       limited_english,
       zero_vehicle,
       single_parent_families,
       rent_burdened,
       vehicle_miles_traveled,
       mean_commute_minutes,
       transit_commuters,
       no_computer,
       wildfire_risk,
       flood_risk,
       extreme_heat_days
FROM social_data.tract_latest
WHERE lower(state_name) = lower($1)
  AND (cardinality($2::text[]) = 0 OR lower(county_name) = ANY($2))
ORDER BY tract_geoid`

var tractColumns = []indicator.Indicator{
	indicator.PeopleOfColor,
	indicator.LowIncome,
	indicator.Seniors,
	indicator.Disability,
	indicator.LimitedEnglish,
	indicator.ZeroVehicle,
	indicator.SingleParentFamilies,
	indicator.RentBurdened,
	indicator.VehicleMilesTraveled,
	indicator.MeanCommute,
	indicator.TransitCommuters,
	indicator.NoComputer,
	indicator.WildfireRisk,
	indicator.FloodRisk,
	indicator.ExtremeHeat,
}

// TractIndicators fetches the latest tract-level equity, transportation, and
// hazard indicators for a state, optionally filtered to counties.
func (s *Postgres) TractIndicators(ctx context.Context, state string, counties []string) (*indicator.Table, error) {
	rows, err := s.pool.Query(ctx, tractQuery, state, lowerAll(counties))
	if err != nil {
		return nil, eris.Wrap(err, "store: query tract indicators")
	}
	defer rows.Close()

	var out []indicator.Row
	for rows.Next() {
		var (
			stateName, geoid string
			vals             [15]*float64
		)
		dest := []any{&stateName, &geoid}
		for i := range tractColumns {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, eris.Wrap(err, "store: scan tract row")
		}

		r := indicator.Row{
			Unit:   indicator.Unit{Region: stateName, Name: geoid},
			Values: make(map[indicator.Indicator]float64),
		}
		for i, col := range tractColumns {
			setIfPresent(r.Values, col, vals[i])
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate tract rows")
	}
	if len(out) == 0 {
		return nil, eris.Errorf("store: no tract data for state %q", state)
	}

	return indicator.NewTable(out)
}

const statesQuery = `
SELECT DISTINCT state_name
FROM social_data.county_latest
ORDER BY state_name`

// States lists every state with county data in the warehouse.
func (s *Postgres) States(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, statesQuery)
	if err != nil {
		return nil, eris.Wrap(err, "store: query states")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "store: scan state")
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate states")
	}
	return out, nil
}

const policyQuery = `
SELECT state_name, county_name, policy_value, countdown
FROM social_data.county_policies
WHERE lower(state_name) = lower($1)
ORDER BY county_name`

// PolicyRecords fetches policy urgency data for a state. No rows is not an
// error: the ranker degrades to unadjusted ordering.
func (s *Postgres) PolicyRecords(ctx context.Context, state string) ([]risk.PolicyRecord, error) {
	rows, err := s.pool.Query(ctx, policyQuery, state)
	if err != nil {
		return nil, eris.Wrap(err, "store: query policy records")
	}
	defer rows.Close()

	var out []risk.PolicyRecord
	for rows.Next() {
		var p risk.PolicyRecord
		if err := rows.Scan(&p.Region, &p.Name, &p.Value, &p.Countdown); err != nil {
			return nil, eris.Wrap(err, "store: scan policy row")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate policy rows")
	}
	return out, nil
}

const distributionQuery = `
SELECT br0_pct, br1_pct, br2_pct, br3_pct, br4_pct
FROM social_data.housing_stock_distribution
WHERE location = $1`

// HousingStockDistribution fetches the bedroom-count distribution for a
// metro area. Unknown locations fall back to the national default.
func (s *Postgres) HousingStockDistribution(ctx context.Context, location string) (cost.Distribution, error) {
	var d cost.Distribution
	row := s.pool.QueryRow(ctx, distributionQuery, location)
	if err := row.Scan(&d[0], &d[1], &d[2], &d[3], &d[4]); err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return cost.DefaultDistribution(), nil
		}
		return d, eris.Wrapf(err, "store: scan distribution for %q", location)
	}
	return d, nil
}

const rentsQuery = `
SELECT state_name, county_name, rent_0, rent_1, rent_2, rent_3, rent_4
FROM social_data.%s
WHERE lower(state_name) = lower($1)
ORDER BY county_name`

var rentTables = map[cost.RentType]string{
	cost.RentFairMarket: "fair_market_rents",
	cost.RentMedian:     "median_rents",
}

// Rents fetches per-county monthly rents by bedroom count for a state.
func (s *Postgres) Rents(ctx context.Context, rentType cost.RentType, state string) ([]cost.Rents, error) {
	table, ok := rentTables[rentType]
	if !ok {
		return nil, eris.Errorf("store: invalid rent type %q", rentType)
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(rentsQuery, table), state)
	if err != nil {
		return nil, eris.Wrapf(err, "store: query %s", table)
	}
	defer rows.Close()

	var out []cost.Rents
	for rows.Next() {
		var r cost.Rents
		if err := rows.Scan(&r.Region, &r.Name,
			&r.ByBedrooms[0], &r.ByBedrooms[1], &r.ByBedrooms[2],
			&r.ByBedrooms[3], &r.ByBedrooms[4]); err != nil {
			return nil, eris.Wrap(err, "store: scan rent row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate rent rows")
	}
	return out, nil
}

func setIfPresent(values map[indicator.Indicator]float64, ind indicator.Indicator, v *float64) {
	if v != nil {
		values[ind] = *v
	}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
