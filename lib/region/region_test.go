package region

import (
	"os"
	"path/filepath"
	"testing"
)

const testKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark>
      <name>GROUND: 0-50 0-360</name>
      <Polygon>
        <outerBoundaryIs>
          <LinearRing>
            <coordinates>-122.0,37.0,0 -121.9,37.0,0 -121.9,37.1,0 -122.0,37.1,0</coordinates>
          </LinearRing>
        </outerBoundaryIs>
      </Polygon>
    </Placemark>
    <Folder>
      <Placemark>
        <name>AIR: 1000-99999 0-360</name>
        <Polygon>
          <outerBoundaryIs>
            <LinearRing>
              <coordinates>-123.0,38.0,0 -122.9,38.0,0 -122.9,38.1,0 -123.0,38.1,0</coordinates>
            </LinearRing>
          </outerBoundaryIs>
        </Polygon>
      </Placemark>
    </Folder>
  </Document>
</kml>`

func writeTempKML(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "regions.kml")
	if err := os.WriteFile(p, []byte(testKML), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadKMLAndQuery(t *testing.T) {
	p := writeTempKML(t)
	set, err := Load([]string{p})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(set.Files))
	}
	if len(set.Files[0].Regions) != 2 {
		t.Fatalf("expected 2 regions (including nested folder), got %d", len(set.Files[0].Regions))
	}

	ground := set.Files[0].Regions[0]
	if ground.Name != "GROUND" || !ground.HasAltHdg || ground.MinAlt != 0 || ground.MaxAlt != 50 {
		t.Errorf("unexpected ground region parse: %+v", ground)
	}

	got := set.Query(37.05, -121.95)
	if len(got) != 1 || got[0] != "GROUND" {
		t.Errorf("expected [GROUND], got %v", got)
	}

	got = set.Query(0, 0)
	if len(got) != 1 || got[0] != None {
		t.Errorf("expected [None], got %v", got)
	}
}

func TestNameExists(t *testing.T) {
	p := writeTempKML(t)
	set, err := Load([]string{p})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !set.NameExists("GROUND") {
		t.Error("GROUND should exist")
	}
	if set.NameExists("NOPE") {
		t.Error("NOPE should not exist")
	}
	if !set.NameExists(None) {
		t.Error("None should always exist (means 'no region')")
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "regions.txt")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load([]string{p}); err == nil {
		t.Error("expected error for unrecognized extension")
	}
}
