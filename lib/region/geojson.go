package region

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/eastham/adsb-actions/lib/geo"
	"github.com/kpawlik/geojson"
)

// loadGeoJSON reads a GeoJSON FeatureCollection of named Polygon/MultiPolygon
// features into a File. Each feature must carry a "name" property; for a
// MultiPolygon, every constituent ring becomes a separate Region sharing
// that name (Query still reports "first containing wins", so overlapping
// rings of the same multipolygon behave like any other region-file overlap).
func loadGeoJSON(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing geojson: %w", err)
	}

	f := &File{Path: path}
	for _, feat := range fc.Features {
		name, _ := feat.Properties["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("geojson feature missing string \"name\" property")
		}

		geom, err := feat.GetGeometry()
		if err != nil {
			return nil, fmt.Errorf("parsing geojson geometry for feature %q: %w", name, err)
		}

		switch g := geom.(type) {
		case *geojson.Polygon:
			f.Regions = append(f.Regions, Region{Name: name, Polygon: ringToPolygon(g.Coordinates)})
		case *geojson.MultiPolygon:
			for _, poly := range g.Coordinates {
				f.Regions = append(f.Regions, Region{Name: name, Polygon: ringToPolygon(poly)})
			}
		default:
			return nil, fmt.Errorf("unsupported geojson geometry %T for feature %q", geom, name)
		}
	}
	return f, nil
}

// ringToPolygon converts a GeoJSON polygon's coordinate rings into a
// geo.Polygon, keeping only the outer ring (index 0); holes are not
// represented in this engine's region model.
func ringToPolygon(rings geojson.MultiLine) geo.Polygon {
	if len(rings) == 0 {
		return geo.Polygon{}
	}
	outer := rings[0]
	poly := geo.Polygon{Points: make([]geo.Point, 0, len(outer))}
	for _, c := range outer {
		// GeoJSON coordinates are [lng, lat]
		poly.Points = append(poly.Points, geo.Point{Lat: float64(c[1]), Lon: float64(c[0])})
	}
	return poly
}
