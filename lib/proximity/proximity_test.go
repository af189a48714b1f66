package proximity

import (
	"testing"

	"github.com/eastham/adsb-actions/lib/flight"
	"github.com/eastham/adsb-actions/lib/report"
)

func seed(store *flight.Store, id string, lat, lon, alt, ts float64) *flight.Flight {
	f, _ := store.GetOrCreate(id, func() *flight.Flight {
		return flight.New(report.Report{
			Identifier: id, Lat: lat, Lon: lon, AltBaro: alt, HasAlt: true, Timestamp: ts,
		}, 1, 1)
	})
	return f
}

func TestFindNearbyMatch(t *testing.T) {
	store := flight.NewStore(1, 1, 3600)
	a := seed(store, "AAL1", 37.0, -122.0, 5000, 100)
	seed(store, "UAL2", 37.001, -122.001, 5050, 100)

	matches := Find(store, a, 500, 5, 100)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Other.Identifier != "UAL2" {
		t.Errorf("expected UAL2, got %s", matches[0].Other.Identifier)
	}
}

func TestFindExcludesSelf(t *testing.T) {
	store := flight.NewStore(1, 1, 3600)
	a := seed(store, "AAL1", 37.0, -122.0, 5000, 100)

	matches := Find(store, a, 500, 5, 100)
	if len(matches) != 0 {
		t.Errorf("expected no self-match, got %v", matches)
	}
}

func TestFindRespectsAltitudeSeparation(t *testing.T) {
	store := flight.NewStore(1, 1, 3600)
	a := seed(store, "AAL1", 37.0, -122.0, 5000, 100)
	seed(store, "UAL2", 37.001, -122.001, 10000, 100)

	matches := Find(store, a, 500, 5, 100)
	if len(matches) != 0 {
		t.Errorf("expected no match outside altitude separation, got %v", matches)
	}
}

func TestFindRespectsStaleness(t *testing.T) {
	store := flight.NewStore(1, 1, 3600)
	a := seed(store, "AAL1", 37.0, -122.0, 5000, 200)
	seed(store, "UAL2", 37.001, -122.001, 5050, 100)

	matches := Find(store, a, 500, 5, 200)
	if len(matches) != 0 {
		t.Errorf("expected stale candidate excluded, got %v", matches)
	}
}

func TestFindRequiresAltitude(t *testing.T) {
	store := flight.NewStore(1, 1, 3600)
	a, _ := store.GetOrCreate("AAL1", func() *flight.Flight {
		return flight.New(report.Report{Identifier: "AAL1", Lat: 37, Lon: -122, Timestamp: 100}, 1, 1)
	})
	seed(store, "UAL2", 37.001, -122.001, 5050, 100)

	matches := Find(store, a, 500, 5, 100)
	if matches != nil {
		t.Errorf("expected nil matches for subject with no altitude, got %v", matches)
	}
}
