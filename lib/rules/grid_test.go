package rules

import "testing"

func TestSpatialGridCandidates(t *testing.T) {
	rules := []*Rule{
		{Index: 0, ring: &latLongRing{RadiusNM: 5, Lat: 43.5, Lon: -116.2}},
		{Index: 1, ring: nil},
	}
	g := buildSpatialGrid(rules, 1.0)

	if c := g.candidates(43.5, -116.2); len(c) != 1 || c[0] != 0 {
		t.Errorf("expected rule 0 as candidate near its ring, got %v", c)
	}
	if c := g.candidates(10, 10); len(c) != 0 {
		t.Errorf("expected no candidates far from any ring, got %v", c)
	}
}
