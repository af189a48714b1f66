// Package report parses incoming ADS-B JSON points into the engine's
// immutable Report value type.
package report

import (
	"errors"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNoPosition is returned when a point has no usable lat/lon.
var ErrNoPosition = errors.New("report: missing position")

// ErrNoIdentifier is returned when a point has no usable aircraft identifier.
var ErrNoIdentifier = errors.New("report: missing identifier")

// Report is one immutable aircraft observation. It is created by Parse and
// never mutated afterwards; Flight aggregates hold on to at most the two
// most recent Reports (see lib/flight).
type Report struct {
	Identifier  string
	Timestamp   float64 // seconds since epoch, stream time
	Lat, Lon    float64
	HasAlt      bool
	AltBaro     float64 // feet MSL, valid only if HasAlt
	HasSpeed    bool
	GroundSpeed float64
	HasTrack    bool
	Track       float64
	Attrs       map[string]any
}

// rawPoint mirrors the loose JSON shape described in spec.md §6: fields may
// be absent. Numeric fields must be JSON numbers: a string lat/lon fails
// the parse, and a string alt_baro/alt leaves the report with no altitude.
type rawPoint struct {
	Hex     string              `json:"hex"`
	Flight  string              `json:"flight"`
	Lat     *float64            `json:"lat"`
	Lon     *float64            `json:"lon"`
	AltBaro jsoniter.RawMessage `json:"alt_baro"`
	Alt     jsoniter.RawMessage `json:"alt"`
	Now     *float64            `json:"now"`
	SeenPos *float64            `json:"seen_pos"`
	GS      *float64            `json:"gs"`
	Track   *float64            `json:"track"`
}

// Parse decodes one JSON line into a Report. fallbackTimestamp is used when
// the point carries no "now"/"seen_pos" field, per spec.md §6 ("Timestamp
// absent -> use now from the source").
func Parse(data []byte, fallbackTimestamp float64) (Report, error) {
	var raw rawPoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return Report{}, err
	}

	ident := identifier(raw)
	if ident == "" {
		return Report{}, ErrNoIdentifier
	}

	if raw.Lat == nil || raw.Lon == nil {
		return Report{}, ErrNoPosition
	}

	r := Report{
		Identifier: ident,
		Lat:        *raw.Lat,
		Lon:        *raw.Lon,
		Timestamp:  fallbackTimestamp,
	}

	if raw.Now != nil {
		r.Timestamp = *raw.Now
	} else if raw.SeenPos != nil {
		r.Timestamp = *raw.SeenPos
	}

	if alt, ok := parseAlt(raw.AltBaro); ok {
		r.HasAlt = true
		r.AltBaro = alt
	} else if alt, ok := parseAlt(raw.Alt); ok {
		r.HasAlt = true
		r.AltBaro = alt
	}

	if raw.GS != nil {
		r.HasSpeed = true
		r.GroundSpeed = *raw.GS
	}
	if raw.Track != nil {
		r.HasTrack = true
		r.Track = *raw.Track
	}

	r.Attrs = extraAttrs(data)
	return r, nil
}

func identifier(raw rawPoint) string {
	if raw.Flight != "" {
		return strings.ToUpper(strings.TrimSpace(raw.Flight))
	}
	if raw.Hex != "" {
		return strings.ToUpper(strings.TrimSpace(raw.Hex))
	}
	return ""
}

// parseAlt handles the "alt_baro can be the string 'ground'" case from
// spec.md §3 ("may be absent / 'ground'"): a non-numeric altitude resolves
// to "no altitude" rather than an error, since a grounded aircraft simply
// has no useful barometric altitude for min_alt/max_alt purposes.
func parseAlt(raw jsoniter.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	return 0, false
}

// knownFields lists the struct-mapped keys that should be excluded from
// Attrs, so user callbacks see only the "extra" scalars spec.md §3
// describes (squawk, category, emergency flag, etc.).
var knownFields = map[string]struct{}{
	"hex": {}, "flight": {}, "lat": {}, "lon": {}, "alt_baro": {}, "alt": {},
	"now": {}, "seen_pos": {}, "gs": {}, "track": {},
}

func extraAttrs(data []byte) map[string]any {
	var everything map[string]any
	if err := json.Unmarshal(data, &everything); err != nil {
		return nil
	}
	attrs := make(map[string]any, len(everything))
	for k, v := range everything {
		if _, known := knownFields[k]; known {
			continue
		}
		attrs[k] = v
	}
	return attrs
}

// HasAttr implements the truthiness rule spec.md §9 resolves for has_attr:
// present, not nil, not an empty string, and not numeric zero.
func (r Report) HasAttr(name string) bool {
	v, ok := r.Attrs[name]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	default:
		return true
	}
}
