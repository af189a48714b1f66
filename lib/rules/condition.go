package rules

import (
	"fmt"
	"time"

	"github.com/eastham/adsb-actions/lib/aclist"
	"github.com/eastham/adsb-actions/lib/flight"
	"github.com/eastham/adsb-actions/lib/geo"
	"github.com/eastham/adsb-actions/lib/region"
)

// evalContext carries everything a compiled predicate needs to decide
// whether it matches, besides the flight itself.
type evalContext struct {
	now       float64
	regions   *region.Set
	aclists   *aclist.Set
	timezone  *time.Location
	proximity bool // set true only while re-checking a rule with a proximity
	// condition stripped out for the async proximity scan (mirrors
	// conditions_match being called with the 'proximity' key removed).
}

// predicate is one compiled, AND-able condition.
type predicate func(f *flight.Flight, ctx evalContext) bool

// latLongRing is a compiled latlongring condition, kept distinct from the
// generic predicate slice so the spatial grid optimization can pull out
// its center point without re-parsing raw YAML.
type latLongRing struct {
	RadiusNM float64
	Lat      float64
	Lon      float64
}

// compileConditions turns one rule's rawConditions into an AND-ed
// predicate list plus any values the evaluator/grid need separately
// (proximity parameters, latlongring center). ruleName is used only for
// error messages.
func compileConditions(rc rawConditions, ruleName string, doc *rawDocument) ([]predicate, *latLongRing, *proximitySpec, error) {
	var preds []predicate
	var ring *latLongRing
	var prox *proximitySpec

	if rc.MinAlt != nil {
		min := float64(*rc.MinAlt)
		preds = append(preds, func(f *flight.Flight, _ evalContext) bool {
			return f.LastReport.HasAlt && f.LastReport.AltBaro >= min
		})
	}

	if rc.MaxAlt != nil {
		max := float64(*rc.MaxAlt)
		preds = append(preds, func(f *flight.Flight, _ evalContext) bool {
			return f.LastReport.HasAlt && f.LastReport.AltBaro <= max
		})
	}

	if rc.AircraftList != nil {
		listName := *rc.AircraftList
		if _, ok := doc.AircraftLists[listName]; !ok {
			return nil, nil, nil, fmt.Errorf("rule %q: aircraft_list %q not declared", ruleName, listName)
		}
		preds = append(preds, func(f *flight.Flight, ctx evalContext) bool {
			return ctx.aclists.Has(listName, f.Identifier)
		})
	}

	if rc.ExcludeAircraftList != nil {
		listName := *rc.ExcludeAircraftList
		if _, ok := doc.AircraftLists[listName]; !ok {
			return nil, nil, nil, fmt.Errorf("rule %q: exclude_aircraft_list %q not declared", ruleName, listName)
		}
		preds = append(preds, func(f *flight.Flight, ctx evalContext) bool {
			return !ctx.aclists.Has(listName, f.Identifier)
		})
	}

	if len(rc.ExcludeAircraftSubstrs) > 0 {
		substrs := rc.ExcludeAircraftSubstrs
		preds = append(preds, func(f *flight.Flight, _ evalContext) bool {
			return !aclist.HasAnySubstr(f.Identifier, substrs)
		})
	}

	if rc.Regions != nil {
		names := *rc.Regions
		preds = append(preds, regionsPredicate(names))
	}

	if len(rc.TransitionRegions) > 0 {
		if len(rc.TransitionRegions) != 2 {
			return nil, nil, nil, fmt.Errorf("rule %q: transition_regions needs exactly [from, to]", ruleName)
		}
		from, to := rc.TransitionRegions[0], rc.TransitionRegions[1]
		preds = append(preds, transitionPredicate(from, to))
	}

	if len(rc.LatLongRing) > 0 {
		if len(rc.LatLongRing) != 3 {
			return nil, nil, nil, fmt.Errorf("rule %q: latlongring needs [radius_nm, lat, lon]", ruleName)
		}
		ring = &latLongRing{RadiusNM: rc.LatLongRing[0], Lat: rc.LatLongRing[1], Lon: rc.LatLongRing[2]}
		r := *ring
		preds = append(preds, func(f *flight.Flight, _ evalContext) bool {
			dist := geo.DistanceNM(f.LastReport.Lat, f.LastReport.Lon, r.Lat, r.Lon)
			return dist <= r.RadiusNM
		})
	}

	if len(rc.Proximity) > 0 {
		if len(rc.Proximity) != 2 {
			return nil, nil, nil, fmt.Errorf("rule %q: proximity needs [alt_ft, lat_nm]", ruleName)
		}
		prox = &proximitySpec{AltFt: rc.Proximity[0], LatNM: rc.Proximity[1]}
		// Proximity never matches synchronously; the evaluator strips it
		// and re-checks the remaining conditions against the proximity
		// scan separately, per the original's conditions_match/
		// handle_proximity_conditions split.
		preds = append(preds, func(f *flight.Flight, ctx evalContext) bool {
			return ctx.proximity
		})
	}

	if rc.HasAttr != nil {
		name := *rc.HasAttr
		preds = append(preds, func(f *flight.Flight, _ evalContext) bool {
			return f.LastReport.HasAttr(name)
		})
	}

	if rc.MinTime != nil {
		min := *rc.MinTime
		preds = append(preds, func(f *flight.Flight, ctx evalContext) bool {
			return hhmm(f.LastReport.Timestamp, ctx.timezone) >= min
		})
	}

	if rc.MaxTime != nil {
		max := *rc.MaxTime
		preds = append(preds, func(f *flight.Flight, ctx evalContext) bool {
			return hhmm(f.LastReport.Timestamp, ctx.timezone) <= max
		})
	}

	return preds, ring, prox, nil
}

// regionsPredicate implements the regions: [...] condition, including the
// [] special case (matches only when the flight is in no region of any
// file) described in spec.md §4.4's tie-break list.
func regionsPredicate(names []string) predicate {
	if len(names) == 0 {
		return func(f *flight.Flight, _ evalContext) bool {
			return !f.InAnyRegion()
		}
	}
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	return func(f *flight.Flight, _ evalContext) bool {
		for _, r := range f.CurrentRegions {
			if r == "" {
				continue
			}
			if _, ok := wanted[r]; ok {
				return true
			}
		}
		return false
	}
}

// transitionPredicate implements transition_regions: [from, to]. Either
// side may be the empty string to mean "none" (no region in that file).
func transitionPredicate(from, to string) predicate {
	return func(f *flight.Flight, _ evalContext) bool {
		for i := range f.CurrentRegions {
			if f.PreviousRegions[i] == from && f.CurrentRegions[i] == to {
				return true
			}
		}
		return false
	}
}

// hhmm converts a stream timestamp to an HHMM local-time integer in loc.
func hhmm(ts float64, loc *time.Location) int {
	t := time.Unix(int64(ts), 0).In(loc)
	return t.Hour()*100 + t.Minute()
}

// proximitySpec is the compiled form of a rule's proximity: [alt_ft,
// lat_nm] condition, kept separately from the generic predicate list so
// the evaluator can run the async proximity scan against it.
type proximitySpec struct {
	AltFt float64
	LatNM float64
}
