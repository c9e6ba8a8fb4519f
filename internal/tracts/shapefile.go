// Package tracts joins census-tract boundary geometries, read from TIGER/Line
// shapefiles, onto tract-level analysis output.
package tracts

import (
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"
)

// Boundary is one tract polygon keyed by its 11-digit GEOID.
type Boundary struct {
	GEOID string
	WKT   string
}

// LoadShapefile reads tract boundaries from a TIGER/Line shapefile. The
// GEOID attribute identifies each tract.
func LoadShapefile(path string) (map[string]Boundary, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tracts: open shapefile %s", path)
	}
	defer reader.Close()

	geoidIdx := -1
	for i, f := range reader.Fields() {
		if strings.TrimRight(f.String(), "\x00") == "GEOID" {
			geoidIdx = i
			break
		}
	}
	if geoidIdx < 0 {
		return nil, eris.Errorf("tracts: no GEOID field in %s", path)
	}

	out := make(map[string]Boundary)
	for reader.Next() {
		_, shape := reader.Shape()
		geoid := strings.TrimSpace(reader.Attribute(geoidIdx))
		if geoid == "" {
			continue
		}

		g, err := toGeom(shape)
		if err != nil {
			zap.L().Warn("skipping unsupported shape",
				zap.String("geoid", geoid),
				zap.Error(err))
			continue
		}
		text, err := wkt.Marshal(g)
		if err != nil {
			return nil, eris.Wrapf(err, "tracts: encode geometry for %s", geoid)
		}
		out[geoid] = Boundary{GEOID: geoid, WKT: text}
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "tracts: read shapefile %s", path)
	}
	if len(out) == 0 {
		return nil, eris.Errorf("tracts: no boundaries in %s", path)
	}

	zap.L().Info("loaded tract boundaries",
		zap.String("path", path),
		zap.Int("count", len(out)))
	return out, nil
}

func toGeom(shape shp.Shape) (geom.T, error) {
	p, ok := shape.(*shp.Polygon)
	if !ok {
		return nil, eris.Errorf("tracts: unsupported shape type %T", shape)
	}

	poly := geom.NewPolygon(geom.XY)
	parts := append([]int32{}, p.Parts...)
	parts = append(parts, int32(len(p.Points)))
	for i := 0; i < len(parts)-1; i++ {
		ring := make([]geom.Coord, 0, parts[i+1]-parts[i])
		for _, pt := range p.Points[parts[i]:parts[i+1]] {
			ring = append(ring, geom.Coord{pt.X, pt.Y})
		}
		if err := poly.Push(geom.NewLinearRing(geom.XY).MustSetCoords(ring)); err != nil {
			return nil, eris.Wrap(err, "tracts: push ring")
		}
	}
	return poly, nil
}
