package indicator

import (
	"sort"

	"github.com/rotisserie/eris"
)

// Unit identifies a geographic unit (county or census tract) within a region.
type Unit struct {
	Region string // state name
	Name   string // county name or tract GEOID
}

// Row is one geographic unit with its indicator values for a single snapshot.
// Values holds only the indicators actually observed for the unit; an absent
// key means the unit lacks that indicator and is excluded from computations
// that depend on it.
type Row struct {
	Unit
	Population float64 // thousands of persons
	Values     map[Indicator]float64
}

// Value returns the row's value for ind and whether it is present.
func (r Row) Value(ind Indicator) (float64, bool) {
	v, ok := r.Values[ind]
	return v, ok
}

// Table is an ordered collection of rows sharing one indicator schema.
// Tables are immutable inputs to the pipeline; every stage recomputes its
// aggregates from the rows it is handed.
type Table struct {
	rows []Row
}

// NewTable validates rows against the closed schema and returns a Table.
// It rejects unknown indicators, date-kind values, percentages outside
// [0,100], and duplicate (region, name) identities.
func NewTable(rows []Row) (*Table, error) {
	seen := make(map[Unit]bool, len(rows))
	for _, r := range rows {
		if r.Name == "" {
			return nil, eris.New("indicator: row with empty unit name")
		}
		if seen[r.Unit] {
			return nil, eris.Errorf("indicator: duplicate unit %s / %s", r.Region, r.Name)
		}
		seen[r.Unit] = true

		for ind, v := range r.Values {
			kind, ok := KindOf(ind)
			if !ok {
				return nil, eris.Errorf("indicator: unknown indicator %q for unit %s", ind, r.Name)
			}
			switch kind {
			case KindDate:
				return nil, eris.Errorf("indicator: date column %q must be dropped before ingestion", ind)
			case KindPercentage:
				if v < 0 || v > 100 {
					return nil, eris.Errorf("indicator: %q = %g out of [0,100] for unit %s", ind, v, r.Name)
				}
			}
		}
	}
	return &Table{rows: rows}, nil
}

// Rows returns the table's rows in ingestion order.
func (t *Table) Rows() []Row {
	return t.rows
}

// Len returns the number of units.
func (t *Table) Len() int {
	return len(t.rows)
}

// Has reports whether at least one row carries the indicator.
func (t *Table) Has(ind Indicator) bool {
	for _, r := range t.rows {
		if _, ok := r.Values[ind]; ok {
			return true
		}
	}
	return false
}

// Indicators returns the sorted union of indicators present across all rows.
func (t *Table) Indicators() []Indicator {
	set := make(map[Indicator]bool)
	for _, r := range t.rows {
		for ind := range r.Values {
			set[ind] = true
		}
	}
	out := make([]Indicator, 0, len(set))
	for ind := range set {
		out = append(out, ind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RequireColumns verifies that every requested indicator appears somewhere in
// the table. A column absent from the whole table is a structural error; the
// pipeline never substitutes zeros for vulnerability data.
func (t *Table) RequireColumns(inds ...Indicator) error {
	for _, ind := range inds {
		if !t.Has(ind) {
			return eris.Errorf("indicator: required column %q missing from input table", ind)
		}
	}
	return nil
}

// Complete returns the rows that carry values for every listed indicator.
// Rows missing any of them are excluded rather than zero-filled.
func (t *Table) Complete(inds ...Indicator) []Row {
	var out []Row
	for _, r := range t.rows {
		ok := true
		for _, ind := range inds {
			if _, present := r.Values[ind]; !present {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}
