package loader

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/arup-group/social-data-cli/internal/indicator"
	"github.com/arup-group/social-data-cli/internal/risk"
)

// ReadCSV parses an indicator table from CSV. The first row is the header;
// columns are matched by indicator name.
func ReadCSV(r io.Reader) (*indicator.Table, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	return tableFromRecords(header, records)
}

// ReadPolicyCSV parses policy records (County Name, Policy Value, Countdown,
// optionally State) from CSV.
func ReadPolicyCSV(r io.Reader) ([]risk.PolicyRecord, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	return policyFromRecords(header, records)
}

func readAll(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, eris.New("loader: empty csv input")
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "loader: read csv header")
	}

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "loader: read csv row")
		}
		records = append(records, rec)
	}
	return header, records, nil
}
