package tracts

import (
	"go.uber.org/zap"

	"github.com/arup-group/social-data-cli/internal/equity"
)

// GeoTract is a classified tract with its boundary attached.
type GeoTract struct {
	equity.Tract
	WKT string
}

// Join attaches boundaries to classified tracts by GEOID. Tracts with no
// matching boundary are kept with an empty geometry and counted in the log;
// classification results never depend on geometry availability.
func Join(ts []equity.Tract, boundaries map[string]Boundary) []GeoTract {
	out := make([]GeoTract, 0, len(ts))
	missing := 0
	for _, t := range ts {
		g := GeoTract{Tract: t}
		if b, ok := boundaries[t.Name]; ok {
			g.WKT = b.WKT
		} else {
			missing++
		}
		out = append(out, g)
	}
	if missing > 0 {
		zap.L().Warn("tracts without boundary geometry",
			zap.Int("missing", missing),
			zap.Int("total", len(ts)))
	}
	return out
}
