package rules

import (
	"testing"

	"github.com/eastham/adsb-actions/lib/flight"
	"github.com/eastham/adsb-actions/lib/region"
	"github.com/eastham/adsb-actions/lib/report"
)

func parseDoc(t *testing.T, src string) *rawDocument {
	t.Helper()
	doc, err := LoadFromReader(src)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return doc
}

func mkFlight(id string, alt, lat, lon, ts float64) *flight.Flight {
	return flight.New(report.Report{
		Identifier: id, Lat: lat, Lon: lon, AltBaro: alt, HasAlt: true, Timestamp: ts,
	}, 1, 4)
}

const minAltYAML = `
rules:
  high_flyer:
    conditions:
      min_alt: 10000
    actions:
      track: true
`

func TestMinAltMatches(t *testing.T) {
	rs, err := Compile(parseDoc(t, minAltYAML))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	regions, _ := region.Load(nil)

	low := mkFlight("N1", 5000, 0, 0, 0)
	if m := rs.Process(low, regions, 0); len(m) != 0 {
		t.Errorf("expected no match below min_alt, got %v", m)
	}

	high := mkFlight("N2", 15000, 0, 0, 0)
	if m := rs.Process(high, regions, 0); len(m) != 1 {
		t.Errorf("expected 1 match above min_alt, got %d", len(m))
	}
}

const aclistYAML = `
aircraft_lists:
  watch: [N12345]
rules:
  watched:
    conditions:
      aircraft_list: watch
    actions:
      track: true
`

func TestAircraftListCondition(t *testing.T) {
	rs, err := Compile(parseDoc(t, aclistYAML))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	regions, _ := region.Load(nil)

	watched := mkFlight("N12345", 1000, 0, 0, 0)
	if m := rs.Process(watched, regions, 0); len(m) != 1 {
		t.Errorf("expected match for watched aircraft, got %d", len(m))
	}
	other := mkFlight("N99999", 1000, 0, 0, 0)
	if m := rs.Process(other, regions, 0); len(m) != 0 {
		t.Errorf("expected no match for unwatched aircraft, got %d", len(m))
	}
}

func TestUnknownAircraftListIsConfigError(t *testing.T) {
	src := `
rules:
  bad:
    conditions:
      aircraft_list: nosuchlist
    actions:
      track: true
`
	_, err := Compile(parseDoc(t, src))
	if err == nil {
		t.Fatal("expected ConfigError for undeclared aircraft_list")
	}
}

const emptyRegionsYAML = `
rules:
  outside_all:
    conditions:
      regions: []
    actions:
      track: true
`

func TestRegionsEmptyMeansNoRegion(t *testing.T) {
	rs, err := Compile(parseDoc(t, emptyRegionsYAML))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	regions, _ := region.Load(nil)

	f := mkFlight("N1", 1000, 0, 0, 0)
	f.SetRegions([]string{""})
	if m := rs.Process(f, regions, 0); len(m) != 1 {
		t.Errorf("expected match when flight is in no region, got %d", len(m))
	}

	f.SetRegions([]string{"KSFO"})
	if m := rs.Process(f, regions, 1); len(m) != 0 {
		t.Errorf("expected no match once flight enters a region, got %d", len(m))
	}
}

const transitionYAML = `
rules:
  departed:
    conditions:
      transition_regions: ["KSFO", ""]
    actions:
      track: true
`

func TestTransitionRegionsFiresOnce(t *testing.T) {
	rs, err := Compile(parseDoc(t, transitionYAML))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	regions, _ := region.Load(nil)

	f := mkFlight("N1", 1000, 0, 0, 0)
	f.SetRegions([]string{"KSFO"})
	rs.Process(f, regions, 0) // no transition yet (prev is none, current is KSFO)

	f.SetRegions([]string{""})
	matches := rs.Process(f, regions, 1)
	if len(matches) != 1 {
		t.Fatalf("expected transition match, got %d", len(matches))
	}

	f.Update(report.Report{Identifier: "N1", Lat: 0, Lon: 0, AltBaro: 1000, HasAlt: true, Timestamp: 2})
	f.SetRegions([]string{""}) // no further transition
	if m := rs.Process(f, regions, 2); len(m) != 0 {
		t.Errorf("expected no repeated transition match, got %d", len(m))
	}
}

const cooldownYAML = `
rules:
  paged:
    conditions:
      min_alt: 0
      cooldown: 1
    actions:
      track: true
`

func TestFlightCooldownSuppressesRefire(t *testing.T) {
	rs, err := Compile(parseDoc(t, cooldownYAML))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	regions, _ := region.Load(nil)

	f := mkFlight("N1", 1000, 0, 0, 0)
	if m := rs.Process(f, regions, 0); len(m) != 1 {
		t.Fatalf("expected first match to fire, got %d", len(m))
	}
	if m := rs.Process(f, regions, 10); len(m) != 0 {
		t.Errorf("expected cooldown to suppress refire at t=10, got %d", len(m))
	}
	if m := rs.Process(f, regions, 70); len(m) != 1 {
		t.Errorf("expected refire once cooldown lapses at t=70, got %d", len(m))
	}
}

const ruleCooldownYAML = `
rules:
  global_once_per_min:
    conditions:
      min_alt: 0
      rule_cooldown: 1
    actions:
      track: true
`

func TestRuleCooldownIsGlobalAcrossFlights(t *testing.T) {
	rs, err := Compile(parseDoc(t, ruleCooldownYAML))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	regions, _ := region.Load(nil)

	a := mkFlight("N1", 1000, 0, 0, 0)
	b := mkFlight("N2", 1000, 0, 0, 0)

	if m := rs.Process(a, regions, 0); len(m) != 1 {
		t.Fatalf("expected a to fire, got %d", len(m))
	}
	if m := rs.Process(b, regions, 1); len(m) != 0 {
		t.Errorf("expected b suppressed by global rule_cooldown, got %d", len(m))
	}
}

func TestTrackActionCountsAndNotes(t *testing.T) {
	rs, err := Compile(parseDoc(t, minAltYAML))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	regions, _ := region.Load(nil)
	f := mkFlight("N1", 15000, 0, 0, 0)
	rs.Process(f, regions, 0)

	counters := rs.Counters()
	c, ok := counters["high_flyer"]
	if !ok || c.Count != 1 {
		t.Fatalf("expected 1 tracked execution, got %+v", counters)
	}
}

func TestGridParity(t *testing.T) {
	src := `
rules:
  near_kboi:
    conditions:
      latlongring: [5, 43.5, -116.2]
    actions:
      track: true
  far_elsewhere:
    conditions:
      latlongring: [5, 51.5, -0.1]
    actions:
      track: true
`
	doc := parseDoc(t, src)
	regions, _ := region.Load(nil)

	withoutGrid, err := Compile(doc)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	withGrid, err := Compile(doc, WithSpatialGrid(true, 1.0))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	f := mkFlight("N1", 1000, 43.51, -116.21, 0)
	a := withoutGrid.Process(f, regions, 0)
	b := withGrid.Process(f, regions, 0)
	if len(a) != len(b) || len(a) != 1 {
		t.Fatalf("grid parity mismatch: without=%d with=%d", len(a), len(b))
	}
}
