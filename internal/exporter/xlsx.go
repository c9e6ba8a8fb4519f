// Package exporter writes analysis results to XLSX workbooks and CSV for
// downstream consumers. It is a border adapter; all numbers arrive already
// computed.
package exporter

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/arup-group/social-data-cli/internal/cost"
	"github.com/arup-group/social-data-cli/internal/equity"
	"github.com/arup-group/social-data-cli/internal/indicator"
	"github.com/arup-group/social-data-cli/internal/risk"
	"github.com/arup-group/social-data-cli/internal/subindex"
)

// WriteRankingXLSX writes a vulnerability ranking workbook. Priority columns
// appear only when the ranking was policy-adjusted.
func WriteRankingXLSX(path string, r *risk.Ranking) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Ranking")
	if err != nil {
		return eris.Wrap(err, "exporter: add sheet")
	}

	header := []string{"State", "County Name", "Relative Risk"}
	if r.PolicyAdjusted {
		header = append(header, "Policy Value", "Countdown", "Rank")
	}
	addStringRow(sheet, header...)

	for _, s := range r.Scores {
		row := sheet.AddRow()
		row.AddCell().Value = s.Region
		row.AddCell().Value = s.Name
		row.AddCell().SetFloat(s.RelativeRisk)
		if r.PolicyAdjusted {
			row.AddCell().SetFloat(s.PolicyValue)
			row.AddCell().SetFloat(s.Countdown)
			row.AddCell().SetFloat(s.Priority)
		}
	}

	if len(r.Warnings) > 0 {
		ws, err := f.AddSheet("Warnings")
		if err != nil {
			return eris.Wrap(err, "exporter: add warnings sheet")
		}
		for _, w := range r.Warnings {
			row := ws.AddRow()
			row.AddCell().Value = string(w.Indicator)
			row.AddCell().Value = w.Message
		}
	}

	return eris.Wrapf(f.Save(path), "exporter: save %s", path)
}

// WriteClassificationXLSX writes an equity-geography workbook: all tracts
// with criteria flags, the equity-only subset, and the thresholds table for
// auditability. A non-nil geometry map (GEOID → WKT) adds a geometry column
// to both tract sheets.
func WriteClassificationXLSX(path string, res *equity.Result, geometry map[string]string) error {
	f := xlsx.NewFile()

	inds := append(indicator.EquityCorePair(), indicator.EquityRemaining()...)

	writeTracts := func(name string, tracts []equity.Tract) error {
		sheet, err := f.AddSheet(name)
		if err != nil {
			return eris.Wrapf(err, "exporter: add sheet %s", name)
		}
		header := []string{"State", "Census Tract", "Criteria", "Criterion A", "Criterion B", "Remaining Count"}
		for _, ind := range inds {
			header = append(header, string(ind))
		}
		if geometry != nil {
			header = append(header, "Geometry (WKT)")
		}
		addStringRow(sheet, header...)
		for _, t := range tracts {
			row := sheet.AddRow()
			row.AddCell().Value = t.Region
			row.AddCell().Value = t.Name
			row.AddCell().Value = t.Criteria()
			row.AddCell().SetBool(t.CriterionA)
			row.AddCell().SetBool(t.CriterionB)
			row.AddCell().SetInt(t.RemainingCount)
			for _, ind := range inds {
				row.AddCell().SetFloat(t.Values[ind])
			}
			if geometry != nil {
				row.AddCell().Value = geometry[t.Name]
			}
		}
		return nil
	}

	if err := writeTracts("Census Tracts", res.Tracts); err != nil {
		return err
	}
	if err := writeTracts("Equity Geographies", res.Equity); err != nil {
		return err
	}

	sheet, err := f.AddSheet("Thresholds")
	if err != nil {
		return eris.Wrap(err, "exporter: add thresholds sheet")
	}
	addStringRow(sheet, "Indicator", "Mean", "Std Dev", "Coefficient", "Threshold", "Equity Geography Avg")
	for _, ind := range inds {
		th := res.Thresholds[ind]
		row := sheet.AddRow()
		row.AddCell().Value = string(ind)
		row.AddCell().SetFloat(th.Mean)
		row.AddCell().SetFloat(th.StdDev)
		row.AddCell().SetFloat(res.Coefficient)
		row.AddCell().SetFloat(th.Value)
		row.AddCell().SetFloat(res.EquityAverages[ind])
	}

	return eris.Wrapf(f.Save(path), "exporter: save %s", path)
}

// WriteSubIndexXLSX writes a weighted sub-index ranking workbook.
func WriteSubIndexXLSX(path string, res *subindex.Result, weights subindex.Weights) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Index")
	if err != nil {
		return eris.Wrap(err, "exporter: add sheet")
	}
	addStringRow(sheet, "State", "Census Tract", "Index Value")
	for _, e := range res.Entries {
		row := sheet.AddRow()
		row.AddCell().Value = e.Region
		row.AddCell().Value = e.Name
		row.AddCell().SetFloat(e.Value)
	}

	ws, err := f.AddSheet("Weights")
	if err != nil {
		return eris.Wrap(err, "exporter: add weights sheet")
	}
	addStringRow(ws, "Indicator", "Weight")
	for ind, w := range weights {
		row := ws.AddRow()
		row.AddCell().Value = string(ind)
		row.AddCell().SetFloat(w)
	}
	for _, warning := range res.Warnings {
		addStringRow(ws, "", warning)
	}

	return eris.Wrapf(f.Save(path), "exporter: save %s", path)
}

// WriteCostXLSX writes per-county eviction cost estimates.
func WriteCostXLSX(path string, estimates []cost.Estimate) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Cost Estimate")
	if err != nil {
		return eris.Wrap(err, "exporter: add sheet")
	}
	header := []string{"State", "County Name"}
	for br := 0; br < cost.Bedrooms; br++ {
		header = append(header, fmt.Sprintf("%d BR Cost", br))
	}
	header = append(header, "Total Cost")
	addStringRow(sheet, header...)

	for _, e := range estimates {
		row := sheet.AddRow()
		row.AddCell().Value = e.Region
		row.AddCell().Value = e.Name
		for br := 0; br < cost.Bedrooms; br++ {
			row.AddCell().SetFloat(e.ByBedrooms[br])
		}
		row.AddCell().SetFloat(e.Total)
	}

	return eris.Wrapf(f.Save(path), "exporter: save %s", path)
}

func addStringRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}
