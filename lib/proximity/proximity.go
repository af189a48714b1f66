// Package proximity answers "which other live flights are near this one"
// for the rule evaluator's proximity condition.
package proximity

import (
	"github.com/eastham/adsb-actions/lib/flight"
	"github.com/eastham/adsb-actions/lib/geo"
)

// freshWindowSeconds bounds how stale a candidate's last report may be to
// still be considered "live" for a proximity match, grounded on the
// original find_nearby_flight's MIN_FRESH constant.
const freshWindowSeconds = 60

// Match pairs a live flight with the subject flight it was found near.
type Match struct {
	Other   *flight.Flight
	DistNM  float64
	AltDiff float64
}

// Find returns every live flight in store within altSepFt feet and
// latSepNM nautical miles of subject, excluding subject itself and any
// candidate whose last report is older than the 60-second freshness
// window relative to now. Both subject and every candidate must carry an
// altitude; a flight with no barometric altitude never matches or is
// matched, mirroring the original's direct alt_baro subtraction (a
// missing altitude there would have raised, here it simply excludes).
func Find(store *flight.Store, subject *flight.Flight, altSepFt, latSepNM, now float64) []Match {
	if !subject.LastReport.HasAlt {
		return nil
	}
	if now-subject.LastSeenAt > freshWindowSeconds {
		return nil
	}

	var matches []Match
	for _, other := range store.IterLive() {
		if other == subject {
			continue
		}
		if !other.LastReport.HasAlt {
			continue
		}
		if now-other.LastSeenAt > freshWindowSeconds {
			continue
		}

		altDiff := other.LastReport.AltBaro - subject.LastReport.AltBaro
		if altDiff < 0 {
			altDiff = -altDiff
		}
		if altDiff > altSepFt {
			continue
		}

		dist := geo.DistanceNM(subject.LastReport.Lat, subject.LastReport.Lon,
			other.LastReport.Lat, other.LastReport.Lon)
		if dist > latSepNM {
			continue
		}

		matches = append(matches, Match{Other: other, DistNM: dist, AltDiff: altDiff})
	}
	return matches
}
