package loader

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/arup-group/social-data-cli/internal/indicator"
	"github.com/arup-group/social-data-cli/internal/risk"
)

// ReadXLSX parses an indicator table from the named sheet of an XLSX
// workbook. An empty sheet name selects the first sheet.
func ReadXLSX(path, sheetName string) (*indicator.Table, error) {
	header, records, err := readSheet(path, sheetName)
	if err != nil {
		return nil, err
	}
	return tableFromRecords(header, records)
}

// ReadPolicyXLSX parses policy records from an XLSX workbook, as filled in on
// the analysis-data page of a policy workbook.
func ReadPolicyXLSX(path, sheetName string) ([]risk.PolicyRecord, error) {
	header, records, err := readSheet(path, sheetName)
	if err != nil {
		return nil, err
	}
	return policyFromRecords(header, records)
}

func readSheet(path, sheetName string) ([]string, [][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "loader: open xlsx %s", path)
	}

	var sheet *xlsx.Sheet
	if sheetName != "" {
		s, ok := f.Sheet[sheetName]
		if !ok {
			return nil, nil, eris.Errorf("loader: sheet %q not found in %s", sheetName, path)
		}
		sheet = s
	} else {
		if len(f.Sheets) == 0 {
			return nil, nil, eris.Errorf("loader: no sheets in %s", path)
		}
		sheet = f.Sheets[0]
	}

	if len(sheet.Rows) == 0 {
		return nil, nil, eris.Errorf("loader: empty sheet in %s", path)
	}

	header := rowToStrings(sheet.Rows[0])
	var records [][]string
	for _, row := range sheet.Rows[1:] {
		records = append(records, rowToStrings(row))
	}
	return header, records, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
