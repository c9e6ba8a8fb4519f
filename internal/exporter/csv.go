package exporter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/arup-group/social-data-cli/internal/risk"
	"github.com/arup-group/social-data-cli/internal/subindex"
)

// WriteRankingCSV writes a vulnerability ranking as CSV.
func WriteRankingCSV(w io.Writer, r *risk.Ranking) error {
	cw := csv.NewWriter(w)

	header := []string{"State", "County Name", "Relative Risk"}
	if r.PolicyAdjusted {
		header = append(header, "Policy Value", "Countdown", "Rank")
	}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "exporter: write csv header")
	}

	for _, s := range r.Scores {
		rec := []string{s.Region, s.Name, formatFloat(s.RelativeRisk)}
		if r.PolicyAdjusted {
			rec = append(rec, formatFloat(s.PolicyValue), formatFloat(s.Countdown), formatFloat(s.Priority))
		}
		if err := cw.Write(rec); err != nil {
			return eris.Wrap(err, "exporter: write csv row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "exporter: flush csv")
}

// WriteSubIndexCSV writes a weighted sub-index ranking as CSV.
func WriteSubIndexCSV(w io.Writer, res *subindex.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"State", "Census Tract", "Index Value"}); err != nil {
		return eris.Wrap(err, "exporter: write csv header")
	}
	for _, e := range res.Entries {
		if err := cw.Write([]string{e.Region, e.Name, formatFloat(e.Value)}); err != nil {
			return eris.Wrap(err, "exporter: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "exporter: flush csv")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
