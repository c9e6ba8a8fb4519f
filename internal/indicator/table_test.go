package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(name string, pop float64, values map[Indicator]float64) Row {
	return Row{
		Unit:       Unit{Region: "Testland", Name: name},
		Population: pop,
		Values:     values,
	}
}

func TestNewTableValidation(t *testing.T) {
	tests := []struct {
		name    string
		rows    []Row
		wantErr string
	}{
		{
			name:    "empty unit name",
			rows:    []Row{row("", 10, nil)},
			wantErr: "empty unit name",
		},
		{
			name: "duplicate unit",
			rows: []Row{
				row("Adams", 10, nil),
				row("Adams", 12, nil),
			},
			wantErr: "duplicate unit",
		},
		{
			name: "unknown indicator",
			rows: []Row{
				row("Adams", 10, map[Indicator]float64{"Shoe Size": 9}),
			},
			wantErr: "unknown indicator",
		},
		{
			name: "percentage out of range",
			rows: []Row{
				row("Adams", 10, map[Indicator]float64{PovertyRate: 104.5}),
			},
			wantErr: "out of [0,100]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.rows)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewTableAcceptsRatioAboveHundred(t *testing.T) {
	// Income inequality is a ratio, not a percentage; it is unbounded.
	tbl, err := NewTable([]Row{
		row("Adams", 10, map[Indicator]float64{IncomeInequality: 141.2}),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}

func TestRequireColumns(t *testing.T) {
	tbl, err := NewTable([]Row{
		row("Adams", 10, map[Indicator]float64{PovertyRate: 12}),
		row("Butler", 20, map[Indicator]float64{UnemploymentRate: 4}),
	})
	require.NoError(t, err)

	// Present in at least one row is enough.
	require.NoError(t, tbl.RequireColumns(PovertyRate, UnemploymentRate))

	err = tbl.RequireColumns(BurdenedHouseholds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required column")
}

func TestCompleteExcludesPartialRows(t *testing.T) {
	tbl, err := NewTable([]Row{
		row("Adams", 10, map[Indicator]float64{PovertyRate: 12, UnemploymentRate: 4}),
		row("Butler", 20, map[Indicator]float64{PovertyRate: 8}),
	})
	require.NoError(t, err)

	complete := tbl.Complete(PovertyRate, UnemploymentRate)
	require.Len(t, complete, 1)
	assert.Equal(t, "Adams", complete[0].Name)
}

func TestIndicatorsSortedUnion(t *testing.T) {
	tbl, err := NewTable([]Row{
		row("Adams", 10, map[Indicator]float64{UnemploymentRate: 4}),
		row("Butler", 20, map[Indicator]float64{PovertyRate: 8}),
	})
	require.NoError(t, err)

	inds := tbl.Indicators()
	require.Len(t, inds, 2)
	// Sorted lexically by name.
	assert.Equal(t, PovertyRate, inds[0])
	assert.Equal(t, UnemploymentRate, inds[1])
}
