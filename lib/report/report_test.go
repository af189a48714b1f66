package report

import "testing"

func TestParseBasic(t *testing.T) {
	data := []byte(`{"hex":"a1b2c3","flight":"n12345 ","lat":37.5,"lon":-122.3,"alt_baro":4500,"now":1000.5,"squawk":"1200"}`)
	r, err := Parse(data, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Identifier != "N12345" {
		t.Errorf("expected trimmed/uppercased identifier, got %q", r.Identifier)
	}
	if !r.HasAlt || r.AltBaro != 4500 {
		t.Errorf("expected alt_baro 4500, got %v %v", r.HasAlt, r.AltBaro)
	}
	if r.Timestamp != 1000.5 {
		t.Errorf("expected timestamp from 'now', got %f", r.Timestamp)
	}
	if !r.HasAttr("squawk") {
		t.Error("expected squawk attr to be present")
	}
}

func TestParseGroundAltitude(t *testing.T) {
	data := []byte(`{"hex":"a1b2c3","lat":37.5,"lon":-122.3,"alt_baro":"ground","now":10}`)
	r, err := Parse(data, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.HasAlt {
		t.Error("'ground' altitude should resolve to HasAlt=false")
	}
}

func TestParseMissingPosition(t *testing.T) {
	data := []byte(`{"hex":"a1b2c3","now":10}`)
	if _, err := Parse(data, 0); err != ErrNoPosition {
		t.Errorf("expected ErrNoPosition, got %v", err)
	}
}

func TestParseMissingIdentifier(t *testing.T) {
	data := []byte(`{"lat":1,"lon":1,"now":10}`)
	if _, err := Parse(data, 0); err != ErrNoIdentifier {
		t.Errorf("expected ErrNoIdentifier, got %v", err)
	}
}

func TestParseFallbackTimestamp(t *testing.T) {
	data := []byte(`{"hex":"abc","lat":1,"lon":1}`)
	r, err := Parse(data, 55.5)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Timestamp != 55.5 {
		t.Errorf("expected fallback timestamp 55.5, got %f", r.Timestamp)
	}
}

func TestHasAttrTruthiness(t *testing.T) {
	r := Report{Attrs: map[string]any{
		"present":  "x",
		"empty":    "",
		"zero":     float64(0),
		"nonzero":  float64(3),
		"nilval":   nil,
		"flagtrue": true,
	}}
	cases := map[string]bool{
		"present": true, "empty": false, "zero": false,
		"nonzero": true, "nilval": false, "flagtrue": true, "absent": false,
	}
	for k, want := range cases {
		if got := r.HasAttr(k); got != want {
			t.Errorf("HasAttr(%q) = %v, want %v", k, got, want)
		}
	}
}
