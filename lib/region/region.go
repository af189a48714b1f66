// Package region loads named polygon collections ("region files") and
// answers, for a point, which region of each file (if any) contains it.
package region

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/eastham/adsb-actions/lib/geo"
)

// None is the sentinel returned by Query for a file that has no matching
// region for the point.
const None = ""

// Region is a single named polygon, optionally carrying the
// altitude/heading metadata the original KML placemark-naming convention
// encodes (e.g. "Rwy 25 Approach: 4500-5500 230-270"). Conditions in this
// engine only ever look at the Name; MinAlt/MaxAlt/StartHdg/EndHdg are kept
// for forward compatibility with callers that want finer-grained region
// matching than spec.md's "regions"/"transition_regions" conditions use.
type Region struct {
	Name              string
	Polygon           geo.Polygon
	MinAlt, MaxAlt    int
	StartHdg, EndHdg  int
	HasAltHdg         bool
}

// File is one loaded region file: an ordered list of regions, first match
// wins on Query, per spec.md's "at most one region per file" contract.
type File struct {
	Path    string
	Regions []Region
}

// Contains returns the name of the first region containing (lat, lon), or
// None.
func (f *File) Contains(lat, lon float64) string {
	for _, r := range f.Regions {
		if geo.PointInPolygon(lat, lon, r.Polygon) {
			return r.Name
		}
	}
	return None
}

// Set is the ordered collection of region files loaded at startup. It is
// read-only after Load returns.
type Set struct {
	Files []*File
}

// Load reads each path in order, selecting a parser by file extension
// (.kml, or .geojson/.json), and returns the resulting Set. Zero paths is
// valid and yields an empty Set.
func Load(paths []string) (*Set, error) {
	s := &Set{}
	for _, p := range paths {
		f, err := loadFile(p)
		if err != nil {
			return nil, fmt.Errorf("region file %s: %w", p, err)
		}
		s.Files = append(s.Files, f)
	}
	return s, nil
}

func loadFile(path string) (*File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kml":
		return loadKML(path)
	case ".geojson", ".json":
		return loadGeoJSON(path)
	default:
		return nil, fmt.Errorf("unrecognized region file extension: %s", path)
	}
}

// Query returns a slice parallel to s.Files; each entry is the containing
// region name for that file, or None.
func (s *Set) Query(lat, lon float64) []string {
	out := make([]string, len(s.Files))
	for i, f := range s.Files {
		out[i] = f.Contains(lat, lon)
	}
	return out
}

// NumFiles returns the number of loaded region files, used by callers that
// need to size a parallel "current regions" vector before any query runs.
func (s *Set) NumFiles() int {
	if s == nil {
		return 0
	}
	return len(s.Files)
}

// NameExists reports whether name is a declared region in any file, used at
// rule-load time to catch typos in "regions:"/"transition_regions:" lists
// before the engine starts processing reports.
func (s *Set) NameExists(name string) bool {
	if name == None {
		return true
	}
	for _, f := range s.Files {
		for _, r := range f.Regions {
			if r.Name == name {
				return true
			}
		}
	}
	return false
}
