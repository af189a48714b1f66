package region

import (
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/eastham/adsb-actions/lib/geo"
)

// placemarkRe matches the original tool's naming convention for a region
// placemark: "Name: minalt-maxalt minhdg-maxhdg", e.g.
// "Rwy 25 Approach: 4500-5500 230-270". Region files that don't use this
// convention simply use the placemark's raw name with no altitude/heading
// metadata.
var placemarkRe = regexp.MustCompile(`^([^:]+):\s*(\d+)-(\d+)\s+(\d+)-(\d+)`)

// kmlDocument is the minimal subset of KML this engine understands:
// Placemarks with a single Polygon each, directly under the top-level
// Document or in Folders nested below it to any depth. A Document nested
// inside another container is not read.
type kmlDocument struct {
	XMLName  xml.Name     `xml:"kml"`
	Document kmlContainer `xml:"Document"`
}

type kmlContainer struct {
	Folders    []kmlContainer `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name    string     `xml:"name"`
	Polygon kmlPolygon `xml:"Polygon"`
}

type kmlPolygon struct {
	Outer kmlLinearRing `xml:"outerBoundaryIs>LinearRing"`
}

type kmlLinearRing struct {
	Coordinates string `xml:"coordinates"`
}

func loadKML(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc kmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing kml: %w", err)
	}

	f := &File{Path: path}
	if err := collectPlacemarks(doc.Document, f); err != nil {
		return nil, err
	}
	return f, nil
}

// collectPlacemarks recurses into Folders, matching the original Python
// parser's "some systems put features in invisible folders" handling.
func collectPlacemarks(c kmlContainer, f *File) error {
	for _, pm := range c.Placemarks {
		r, err := placemarkToRegion(pm)
		if err != nil {
			return err
		}
		f.Regions = append(f.Regions, r)
	}
	for _, folder := range c.Folders {
		if err := collectPlacemarks(folder, f); err != nil {
			return err
		}
	}
	return nil
}

func placemarkToRegion(pm kmlPlacemark) (Region, error) {
	poly, err := parseCoordinates(pm.Polygon.Outer.Coordinates)
	if err != nil {
		return Region{}, fmt.Errorf("placemark %q: %w", pm.Name, err)
	}

	r := Region{Name: strings.TrimSpace(pm.Name), Polygon: poly}
	if m := placemarkRe.FindStringSubmatch(pm.Name); m != nil {
		r.Name = strings.TrimSpace(m[1])
		r.MinAlt, _ = strconv.Atoi(m[2])
		r.MaxAlt, _ = strconv.Atoi(m[3])
		r.StartHdg, _ = strconv.Atoi(m[4])
		r.EndHdg, _ = strconv.Atoi(m[5])
		r.HasAltHdg = true
	}
	return r, nil
}

// parseCoordinates parses a KML "lon,lat[,alt] lon,lat[,alt] ..." string
// into a geo.Polygon.
func parseCoordinates(raw string) (geo.Polygon, error) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) < 3 {
		return geo.Polygon{}, fmt.Errorf("polygon needs at least 3 vertices, got %d", len(fields))
	}

	poly := geo.Polygon{Points: make([]geo.Point, 0, len(fields))}
	for _, tuple := range fields {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			return geo.Polygon{}, fmt.Errorf("bad coordinate tuple: %q", tuple)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return geo.Polygon{}, fmt.Errorf("bad longitude %q: %w", parts[0], err)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return geo.Polygon{}, fmt.Errorf("bad latitude %q: %w", parts[1], err)
		}
		poly.Points = append(poly.Points, geo.Point{Lat: lat, Lon: lon})
	}
	return poly, nil
}
