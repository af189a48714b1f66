// Package flight implements the per-aircraft aggregate (Flight) and its
// store (Store), the rolling state the rule evaluator reads and annotates.
package flight

import (
	"github.com/eastham/adsb-actions/lib/report"
)

// altTrackEntries bounds the rolling altitude window used for
// AltitudeTrend, mirroring the original tool's ALT_TRACK_ENTRIES constant.
const altTrackEntries = 5

// Flight is the mutable per-aircraft aggregate described in spec.md §3.
// It is owned exclusively by the driver loop; no field is safe to mutate
// from any other goroutine while a report for this flight is being
// processed.
type Flight struct {
	Identifier string

	LastReport report.Report
	PrevReport report.Report
	hasPrev    bool

	// CurrentRegions/PreviousRegions are parallel to the loaded region.Set's
	// Files; an empty string entry means "no region of that file".
	CurrentRegions  []string
	PreviousRegions []string

	notes map[string]string

	// ruleCooldowns is a dense vector indexed by each rule's stable integer
	// index (spec.md §9 design note: avoids a name-keyed map and the
	// collision-by-name ambiguity that implies).
	ruleCooldowns []float64

	// expireCallbacks are the names of expire_callback handlers registered
	// against this flight by matched rules; fired once each on eviction.
	expireCallbacks []string

	altHistory []float64

	CreatedAt  float64
	LastSeenAt float64
}

// New creates a Flight from its first report. numRules sizes the dense
// cooldown vector; it is the rule-set's rule count, known at engine
// startup before any flight exists.
func New(r report.Report, numRegionFiles, numRules int) *Flight {
	f := &Flight{
		Identifier:      r.Identifier,
		LastReport:      r,
		CurrentRegions:  make([]string, numRegionFiles),
		PreviousRegions: make([]string, numRegionFiles),
		notes:           make(map[string]string),
		ruleCooldowns:   make([]float64, numRules),
		CreatedAt:       r.Timestamp,
		LastSeenAt:      r.Timestamp,
	}
	for i := range f.ruleCooldowns {
		f.ruleCooldowns[i] = -1 // sentinel: never fired
	}
	return f
}

// Update pushes the current LastReport into PrevReport and installs r as
// the new LastReport, per invariant I1 (prev.Timestamp <= last.Timestamp
// is the caller's responsibility to ensure before calling Update).
func (f *Flight) Update(r report.Report) {
	f.PrevReport = f.LastReport
	f.hasPrev = true
	f.LastReport = r
	f.LastSeenAt = r.Timestamp
}

// HasPrevReport reports whether a PrevReport exists yet (false only for a
// flight's very first report).
func (f *Flight) HasPrevReport() bool {
	return f.hasPrev
}

// SetRegions saves CurrentRegions into PreviousRegions and installs next as
// the new CurrentRegions, satisfying invariant I2 (both vectors are
// strictly derived from their respective reports).
func (f *Flight) SetRegions(next []string) {
	copy(f.PreviousRegions, f.CurrentRegions)
	copy(f.CurrentRegions, next)
}

// ChangedRegions reports whether any region-file membership differs
// between CurrentRegions and PreviousRegions.
func (f *Flight) ChangedRegions() bool {
	for i := range f.CurrentRegions {
		if f.CurrentRegions[i] != f.PreviousRegions[i] {
			return true
		}
	}
	return false
}

// InAnyRegion reports whether CurrentRegions contains at least one
// non-empty entry.
func (f *Flight) InAnyRegion() bool {
	for _, r := range f.CurrentRegions {
		if r != "" {
			return true
		}
	}
	return false
}

// Note returns the value set for name and whether it is currently set.
func (f *Flight) Note(name string) (string, bool) {
	v, ok := f.notes[name]
	return v, ok
}

// SetNote records a note, or clears it if value is nil.
func (f *Flight) SetNote(name string, value *string) {
	if value == nil {
		delete(f.notes, name)
		return
	}
	f.notes[name] = *value
}

// Notes returns a copy of the current notes map, safe for callback code to
// retain past the callback invocation.
func (f *Flight) Notes() map[string]string {
	out := make(map[string]string, len(f.notes))
	for k, v := range f.notes {
		out[k] = v
	}
	return out
}

// RuleCooldown returns the last-fire timestamp recorded for ruleIdx on this
// flight, or -1 if the rule has never fired for it.
func (f *Flight) RuleCooldown(ruleIdx int) float64 {
	if ruleIdx < 0 || ruleIdx >= len(f.ruleCooldowns) {
		return -1
	}
	return f.ruleCooldowns[ruleIdx]
}

// SetRuleCooldown records now as the last-fire timestamp for ruleIdx.
func (f *Flight) SetRuleCooldown(ruleIdx int, now float64) {
	if ruleIdx < 0 || ruleIdx >= len(f.ruleCooldowns) {
		return
	}
	f.ruleCooldowns[ruleIdx] = now
}

// AddExpireCallback registers name to fire once when this flight is
// evicted by the expiration sweep.
func (f *Flight) AddExpireCallback(name string) {
	for _, existing := range f.expireCallbacks {
		if existing == name {
			return
		}
	}
	f.expireCallbacks = append(f.expireCallbacks, name)
}

// ExpireCallbacks returns the names registered via AddExpireCallback.
func (f *Flight) ExpireCallbacks() []string {
	return f.expireCallbacks
}

// AltitudeTrend records alt into the rolling altitude window and returns
// +1/0/-1 depending on whether alt is above/equal/below the rolling
// average of the preceding window, mirroring the original tool's
// Flight.track_alt climb/level/descend detector (a feature the spec.md
// distillation dropped but airport-ops callers rely on for trend glyphs).
func (f *Flight) AltitudeTrend(alt float64) int {
	avg := alt
	if len(f.altHistory) > 0 {
		var sum float64
		for _, a := range f.altHistory {
			sum += a
		}
		avg = sum / float64(len(f.altHistory))
	}
	if len(f.altHistory) == altTrackEntries {
		f.altHistory = f.altHistory[1:]
	}
	f.altHistory = append(f.altHistory, alt)

	switch {
	case alt > avg:
		return 1
	case alt < avg:
		return -1
	default:
		return 0
	}
}

// View is the narrow, read-only snapshot handed to user callbacks, per
// spec.md §6 ("a narrow flight view value type that exposes only the
// fields §3 lists, decoupling user code from the internal flight
// aggregate").
type View struct {
	Identifier string
	LastReport report.Report
	PrevReport report.Report
	Notes      map[string]string
	AltTrend   int
}

// Snapshot builds a View of the flight's current state.
func (f *Flight) Snapshot() View {
	trend := 0
	if f.LastReport.HasAlt {
		trend = f.AltitudeTrend(f.LastReport.AltBaro)
	}
	return View{
		Identifier: f.Identifier,
		LastReport: f.LastReport,
		PrevReport: f.PrevReport,
		Notes:      f.Notes(),
		AltTrend:   trend,
	}
}
