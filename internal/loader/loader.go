// Package loader reads indicator tables and policy workbooks from CSV and
// XLSX files into the typed schema, applying the ingestion cleanups the
// analysis expects: date columns dropped, home ownership inverted, county
// names canonicalized.
package loader

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/arup-group/social-data-cli/internal/indicator"
	"github.com/arup-group/social-data-cli/internal/risk"
)

// Identity and population column headers recognized in input files.
const (
	colState      = "State"
	colCounty     = "County Name"
	colTract      = "Census Tract"
	colPopulation = string(indicator.ResidentPopulation)
)

var titleCaser = cases.Title(language.AmericanEnglish)

// CanonicalName normalizes a unit name for joining: trimmed and title-cased,
// so "jefferson county" and "Jefferson County" refer to the same unit.
func CanonicalName(name string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(name)))
}

// tableFromRecords converts a header row plus data records into a Table.
func tableFromRecords(header []string, records [][]string) (*indicator.Table, error) {
	if len(header) == 0 {
		return nil, eris.New("loader: missing header row")
	}

	type colDef struct {
		ind      indicator.Indicator
		identity string // colState / colCounty / colTract / colPopulation
		skip     bool
	}
	defs := make([]colDef, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		switch {
		case name == colState, name == colCounty, name == colTract:
			defs[i] = colDef{identity: name}
		case name == colPopulation:
			defs[i] = colDef{identity: colPopulation}
		case strings.HasSuffix(name, " Date"), name == "", strings.HasPrefix(name, "Unnamed"):
			defs[i] = colDef{skip: true}
		case indicator.Known(indicator.Indicator(name)):
			defs[i] = colDef{ind: indicator.Indicator(name)}
		default:
			zap.L().Debug("loader: skipping unrecognized column", zap.String("column", name))
			defs[i] = colDef{skip: true}
		}
	}

	var rows []indicator.Row
	for lineNo, rec := range records {
		row := indicator.Row{Values: make(map[indicator.Indicator]float64)}
		for i, def := range defs {
			if i >= len(rec) || def.skip {
				continue
			}
			cell := strings.TrimSpace(rec[i])
			if cell == "" {
				continue // absent value, never zero-filled
			}
			switch def.identity {
			case colState:
				row.Region = CanonicalName(cell)
			case colCounty, colTract:
				if def.identity == colCounty {
					row.Name = CanonicalName(cell)
				} else {
					row.Name = cell
				}
			case colPopulation:
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, eris.Wrapf(err, "loader: row %d: parse population", lineNo+2)
				}
				row.Population = v
			default:
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, eris.Wrapf(err, "loader: row %d: parse %q", lineNo+2, def.ind)
				}
				row.Values[def.ind] = v
			}
		}
		if row.Name == "" {
			continue
		}
		// Home ownership is inverted into the vulnerability-oriented column.
		if ho, ok := row.Values[indicator.HomeOwnership]; ok {
			row.Values[indicator.NonHomeOwnership] = 100 - ho
			delete(row.Values, indicator.HomeOwnership)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, eris.New("loader: no data rows")
	}

	return indicator.NewTable(rows)
}

// policyFromRecords converts header + records into policy records.
func policyFromRecords(header []string, records [][]string) ([]risk.PolicyRecord, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{colCounty, string(indicator.PolicyValue), string(indicator.Countdown)} {
		if _, ok := idx[required]; !ok {
			return nil, eris.Errorf("loader: policy file missing column %q", required)
		}
	}

	var out []risk.PolicyRecord
	for lineNo, rec := range records {
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		name := get(colCounty)
		if name == "" {
			continue
		}
		value, err := strconv.ParseFloat(get(string(indicator.PolicyValue)), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: policy row %d: parse value", lineNo+2)
		}
		countdown, err := strconv.ParseFloat(get(string(indicator.Countdown)), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: policy row %d: parse countdown", lineNo+2)
		}
		out = append(out, risk.PolicyRecord{
			Unit:      indicator.Unit{Region: CanonicalName(get(colState)), Name: CanonicalName(name)},
			Value:     value,
			Countdown: countdown,
		})
	}
	if len(out) == 0 {
		return nil, eris.New("loader: no policy rows")
	}
	return out, nil
}
