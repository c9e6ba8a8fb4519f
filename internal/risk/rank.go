package risk

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/arup-group/social-data-cli/internal/indicator"
)

// PolicyRecord is an externally supplied policy-urgency signal for one unit.
// Value is the policy strength in [0,1]; Countdown is the number of time
// units until the policy lapses.
type PolicyRecord struct {
	indicator.Unit
	Value     float64
	Countdown float64
}

// Score is one unit's ranked result. PolicyValue, Countdown, and Priority are
// meaningful only when the enclosing Ranking has PolicyAdjusted set.
type Score struct {
	indicator.Unit
	RelativeRisk float64
	PolicyValue  float64
	Countdown    float64
	Priority     float64
}

// Ranking is the ordered output of the pipeline. When PolicyAdjusted is
// false, the ranking is by RelativeRisk alone: either no policy data was
// supplied, or the join did not cover every unit and adjustment was skipped.
type Ranking struct {
	Scores         []Score
	PolicyAdjusted bool
	Warnings       []Warning
}

// PriorityScore folds policy urgency and time-to-deadline into a relative
// risk score. Countdown is floored at 1 before the square root: a countdown
// of zero means maximal urgency, not infinite.
func PriorityScore(relativeRisk, policyValue, countdown float64) float64 {
	if countdown < 1 {
		countdown = 1
	}
	return relativeRisk * (1 - policyValue) / math.Sqrt(countdown)
}

// Rank runs the full pipeline: normalize, cross, composite, and (when policy
// data covers every unit exactly) policy-adjusted priority ordering. Adding
// or removing units shifts every column's divisor and the composite scale, so
// callers must rank a changed unit set from scratch.
func Rank(t *indicator.Table, policies []PolicyRecord) (*Ranking, error) {
	n, err := Normalize(t)
	if err != nil {
		return nil, err
	}

	crossed, err := CrossedMeans(n)
	if err != nil {
		return nil, err
	}
	warnings := n.Warnings
	warnings = append(warnings, scaleSlice(crossed, "Crossed")...)

	// Composite: row sum of every normalized column plus Crossed, rescaled
	// so the maximum-scoring unit lands at exactly 1.0.
	raw := make([]float64, len(n.Units))
	for i := range n.Units {
		sum := crossed[i]
		for _, col := range n.Columns {
			sum += n.Values[i][col]
		}
		raw[i] = sum
	}
	maxRaw := 0.0
	for _, v := range raw {
		if v > maxRaw {
			maxRaw = v
		}
	}
	scores := make([]Score, len(n.Units))
	for i, u := range n.Units {
		s := Score{Unit: u}
		if maxRaw > 0 {
			s.RelativeRisk = raw[i] / maxRaw
		}
		scores[i] = s
	}
	if maxRaw == 0 {
		warnings = append(warnings, Warning{Message: "degenerate composite: all raw scores are zero"})
	}

	ranking := &Ranking{Scores: scores, Warnings: warnings}

	if len(policies) > 0 {
		adjusted, err := applyPolicy(ranking, policies)
		if err != nil {
			return nil, err
		}
		if adjusted {
			sort.SliceStable(ranking.Scores, func(i, j int) bool {
				a, b := ranking.Scores[i], ranking.Scores[j]
				if a.Priority != b.Priority {
					return a.Priority > b.Priority
				}
				if a.RelativeRisk != b.RelativeRisk {
					return a.RelativeRisk > b.RelativeRisk
				}
				return a.Name < b.Name
			})
			ranking.PolicyAdjusted = true
			return ranking, nil
		}
	}

	sort.SliceStable(ranking.Scores, func(i, j int) bool {
		a, b := ranking.Scores[i], ranking.Scores[j]
		if a.RelativeRisk != b.RelativeRisk {
			return a.RelativeRisk > b.RelativeRisk
		}
		return a.Name < b.Name
	})
	return ranking, nil
}

// applyPolicy joins policy records onto the scores. It returns true only when
// the join covers every unit exactly once; otherwise the adjustment is
// skipped and the condition is surfaced as a warning, never hidden.
func applyPolicy(r *Ranking, policies []PolicyRecord) (bool, error) {
	byUnit := make(map[indicator.Unit]PolicyRecord, len(policies))
	for _, p := range policies {
		if p.Value < 0 || p.Value > 1 {
			return false, eris.Errorf("risk: policy value %g out of [0,1] for unit %s", p.Value, p.Name)
		}
		if p.Countdown < 0 {
			return false, eris.Errorf("risk: negative countdown %g for unit %s", p.Countdown, p.Name)
		}
		if _, dup := byUnit[p.Unit]; dup {
			zap.L().Warn("risk: duplicate policy record, skipping policy adjustment",
				zap.String("unit", p.Name),
			)
			r.Warnings = append(r.Warnings, Warning{Message: "policy adjustment skipped: duplicate policy records"})
			return false, nil
		}
		byUnit[p.Unit] = p
	}

	for i := range r.Scores {
		if _, ok := byUnit[r.Scores[i].Unit]; !ok {
			zap.L().Warn("risk: policy data does not cover all units, ranking by relative risk only",
				zap.String("unit", r.Scores[i].Name),
				zap.Int("units", len(r.Scores)),
				zap.Int("policy_records", len(policies)),
			)
			r.Warnings = append(r.Warnings, Warning{Message: "policy adjustment skipped: partial join"})
			return false, nil
		}
	}

	for i := range r.Scores {
		p := byUnit[r.Scores[i].Unit]
		r.Scores[i].PolicyValue = p.Value
		r.Scores[i].Countdown = p.Countdown
		r.Scores[i].Priority = PriorityScore(r.Scores[i].RelativeRisk, p.Value, p.Countdown)
	}
	return true, nil
}

// scaleSlice rescales values in place by their maximum absolute value,
// returning a degenerate-scale warning when the maximum is zero.
func scaleSlice(values []float64, label string) []Warning {
	var maxAbs float64
	for _, v := range values {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		return []Warning{{Message: "degenerate scale: " + label + " column is all zero"}}
	}
	for i := range values {
		values[i] /= maxAbs
	}
	return nil
}
