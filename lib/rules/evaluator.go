package rules

import (
	"fmt"
	"time"

	"github.com/eastham/adsb-actions/lib/aclist"
	"github.com/eastham/adsb-actions/lib/flight"
	"github.com/eastham/adsb-actions/lib/proximity"
	"github.com/eastham/adsb-actions/lib/region"
	"github.com/rs/zerolog/log"
)

const noCooldown = -1

// CompiledActions is the per-rule action set, holding at most one action
// per kind (a repeated action key is a decode error; see rawActions).
type CompiledActions struct {
	Callback       string
	HasCallback    bool
	ExpireCallback string
	HasExpire      bool
	Print          bool
	Note           nullableString
	Track          bool
	Webhook        []string // [kind, target]
	Shell          string
	HasShell       bool
}

// Rule is one compiled rule: its AND-ed predicate set, its action set, and
// its own cooldown bookkeeping.
type Rule struct {
	Name  string
	Index int

	preds []predicate
	ring  *latLongRing
	prox  *proximitySpec

	cooldownFlightSecs float64
	cooldownRuleSecs   float64
	lastRuleFireTS      float64

	Actions CompiledActions
}

// RuleCounter mirrors the original tool's ExecutionCounter: how many
// times a rule has fired, broken down by the note attached at fire time.
type RuleCounter struct {
	Count    int
	ByNote   map[string]int
}

// RuleSet is the ordered, compiled form of a whole rule document. Order is
// observable: Process evaluates rules in this order for every flight
// update, per spec.md §3.
type RuleSet struct {
	Rules       []*Rule
	AircraftLists *aclist.Set
	Timezone    *time.Location

	grid         *spatialGrid
	gridEnabled  bool
	gridCellSize float64

	counters map[string]*RuleCounter
}

// Option configures a RuleSet at Compile time.
type Option func(*RuleSet)

// WithSpatialGrid enables or disables the latlongring spatial-grid
// optimization. Disabling it must never change which rules match, only
// how many are checked per point (spec.md §4.4).
func WithSpatialGrid(enabled bool, cellSizeDeg float64) Option {
	return func(rs *RuleSet) {
		rs.gridEnabled = enabled
		if enabled {
			rs.gridCellSize = cellSizeDeg
		}
	}
}

// WithTimezone sets the *time.Location min_time/max_time conditions are
// evaluated against; spec.md §9 resolves the original's ambiguity here by
// requiring an explicit zone, defaulting to UTC.
func WithTimezone(loc *time.Location) Option {
	return func(rs *RuleSet) { rs.Timezone = loc }
}

// Compile builds a RuleSet from a parsed rule document.
func Compile(doc *rawDocument, opts ...Option) (*RuleSet, error) {
	rs := &RuleSet{
		AircraftLists: aclist.NewSet(doc.AircraftLists),
		Timezone:      time.UTC,
		counters:      make(map[string]*RuleCounter),
		gridCellSize:  1.0,
	}

	idx := 0
	for name, raw := range doc.Rules {
		preds, ring, prox, err := compileConditions(raw.Conditions, name, doc)
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		if raw.Conditions.Regions != nil && len(raw.Conditions.TransitionRegions) > 0 {
			log.Warn().Str("rule", name).Msg("rule declares both regions and transition_regions; both must hold")
		}

		actions, err := compileActions(raw.Actions)
		if err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("rule %q: %w", name, err)}
		}

		r := &Rule{
			Name:                name,
			Index:               idx,
			preds:               preds,
			ring:                ring,
			prox:                prox,
			lastRuleFireTS:      noCooldown,
			cooldownFlightSecs:  noCooldown,
			cooldownRuleSecs:    noCooldown,
			Actions:             actions,
		}
		if raw.Conditions.Cooldown != nil {
			r.cooldownFlightSecs = *raw.Conditions.Cooldown * 60
		}
		if raw.Conditions.RuleCooldown != nil {
			r.cooldownRuleSecs = *raw.Conditions.RuleCooldown * 60
		}

		rs.Rules = append(rs.Rules, r)
		idx++
	}

	for _, opt := range opts {
		opt(rs)
	}
	if rs.gridEnabled {
		rs.grid = buildSpatialGrid(rs.Rules, rs.gridCellSize)
	}
	return rs, nil
}

func compileActions(ra rawActions) (CompiledActions, error) {
	ca := CompiledActions{}
	if ra.Callback != nil {
		ca.Callback, ca.HasCallback = *ra.Callback, true
	}
	if ra.ExpireCallback != nil {
		ca.ExpireCallback, ca.HasExpire = *ra.ExpireCallback, true
	}
	if ra.Print != nil {
		ca.Print = *ra.Print
	}
	ca.Note = ra.Note
	if ra.Track != nil {
		ca.Track = *ra.Track
	}
	if len(ra.Webhook) > 0 {
		if len(ra.Webhook) != 2 {
			return ca, fmt.Errorf("webhook action needs [kind, target]")
		}
		ca.Webhook = ra.Webhook
	}
	if ra.Shell != nil {
		ca.Shell, ca.HasShell = *ra.Shell, true
	}
	return ca, nil
}

// Match describes one rule firing: the rule, the subject flight, and
// (only for proximity rules) the nearby flight it paired with.
type Match struct {
	Rule    *Rule
	Flight  *flight.Flight
	Other   *flight.Flight // nil unless Rule has a proximity condition
}

// Process evaluates every rule in declared order against f at time now,
// applying cooldown gates and gathering every match (the caller dispatches
// actions via lib/actions; Process itself performs no side effects beyond
// updating cooldown and counter bookkeeping and registering the matched
// rules' expire_callback names on f, per spec.md §4.4's
// "condition evaluation never mutates state except through action
// dispatch" — cooldown stamps are bookkeeping for the next evaluation, not
// a dispatched action).
func (rs *RuleSet) Process(f *flight.Flight, regions *region.Set, now float64) []Match {
	var matches []Match

	candidateRing := rs.candidateRuleIndices(f)

	for _, idx := range candidateRing {
		r := rs.Rules[idx]
		if r.prox != nil {
			continue // proximity rules never fire synchronously
		}
		if rs.cooldownBlocks(r, f, now) {
			continue
		}
		ctx := evalContext{now: now, regions: regions, aclists: rs.AircraftLists, timezone: rs.Timezone}
		if !matchAll(r.preds, f, ctx) {
			continue
		}
		rs.fire(r, f, now)
		matches = append(matches, Match{Rule: r, Flight: f})
	}
	return matches
}

// ProcessProximity runs the asynchronous proximity scan described in
// spec.md §4.5: for every rule with a proximity condition, re-check its
// remaining conditions (with proximity forced true) and, if they hold,
// search store for nearby partners, producing one Match per partner found.
func (rs *RuleSet) ProcessProximity(f *flight.Flight, store proximityStore, regions *region.Set, now float64) []Match {
	var matches []Match
	for _, r := range rs.Rules {
		if r.prox == nil {
			continue
		}
		if rs.cooldownBlocks(r, f, now) {
			continue
		}
		ctx := evalContext{now: now, regions: regions, aclists: rs.AircraftLists, timezone: rs.Timezone, proximity: true}
		if !matchAll(r.preds, f, ctx) {
			continue
		}
		nearby := proximity.Find(store, f, r.prox.AltFt, r.prox.LatNM, now)
		if len(nearby) == 0 {
			continue
		}
		for _, n := range nearby {
			rs.fire(r, f, now)
			matches = append(matches, Match{Rule: r, Flight: f, Other: n.Other})
		}
	}
	return matches
}

// proximityStore is the store type the proximity scan reads, an alias of
// *flight.Store.
type proximityStore = *flight.Store

func matchAll(preds []predicate, f *flight.Flight, ctx evalContext) bool {
	for _, p := range preds {
		if !p(f, ctx) {
			return false
		}
	}
	return true
}

// cooldownBlocks implements spec.md §4.4 step 1: skip if the rule-global
// or per-flight cooldown hasn't lapsed yet.
func (rs *RuleSet) cooldownBlocks(r *Rule, f *flight.Flight, now float64) bool {
	if r.cooldownRuleSecs != noCooldown && r.lastRuleFireTS != noCooldown {
		if now-r.lastRuleFireTS < r.cooldownRuleSecs {
			return true
		}
	}
	if r.cooldownFlightSecs != noCooldown {
		last := f.RuleCooldown(r.Index)
		if last != noCooldown && now-last < r.cooldownFlightSecs {
			return true
		}
	}
	return false
}

// fire stamps cooldown state, registers the rule's expire_callback on f,
// and updates the rule's execution counter. Action
// dispatch itself is the caller's responsibility (lib/actions.Dispatcher),
// keeping this package free of the transports/IO that actions requires.
func (rs *RuleSet) fire(r *Rule, f *flight.Flight, now float64) {
	r.lastRuleFireTS = now
	f.SetRuleCooldown(r.Index, now)

	if r.Actions.HasExpire {
		f.AddExpireCallback(r.Actions.ExpireCallback)
	}

	if r.Actions.Track {
		c, ok := rs.counters[r.Name]
		if !ok {
			c = &RuleCounter{ByNote: make(map[string]int)}
			rs.counters[r.Name] = c
		}
		c.Count++
		if note, ok := f.Note(r.Name); ok && note != "" {
			c.ByNote[note]++
		}
	}
}

// Counters returns the per-rule execution counters accumulated for rules
// whose actions include track: true, for the statistics interface
// spec.md §6 describes.
func (rs *RuleSet) Counters() map[string]*RuleCounter {
	return rs.counters
}

// candidateRuleIndices returns which rule indices to evaluate for f,
// narrowed by the spatial grid when enabled. Rules without a latlongring
// condition are always candidates; only ring-bearing rules are filtered.
func (rs *RuleSet) candidateRuleIndices(f *flight.Flight) []int {
	if !rs.gridEnabled || rs.grid == nil {
		all := make([]int, len(rs.Rules))
		for i := range rs.Rules {
			all[i] = i
		}
		return all
	}

	ringCandidates := make(map[int]struct{})
	for _, idx := range rs.grid.candidates(f.LastReport.Lat, f.LastReport.Lon) {
		ringCandidates[idx] = struct{}{}
	}

	var out []int
	for i, r := range rs.Rules {
		if r.ring == nil {
			out = append(out, i)
			continue
		}
		if _, ok := ringCandidates[i]; ok {
			out = append(out, i)
		}
	}
	return out
}
