package actions

import (
	"testing"

	"github.com/eastham/adsb-actions/lib/flight"
	"github.com/eastham/adsb-actions/lib/report"
)

func TestExpandShellTemplate(t *testing.T) {
	f := flight.New(report.Report{
		Identifier: "N12345", Lat: 37.5, Lon: -122.3, AltBaro: 4500, HasAlt: true, Timestamp: 0,
	}, 1, 1).Snapshot()

	got := expandShellTemplate("notify.sh {flight_id} {lat} {lon} {alt}", f)
	want := "notify.sh N12345 37.500000 -122.300000 4500"
	if got != want {
		t.Errorf("expandShellTemplate = %q, want %q", got, want)
	}
}

func TestRunShell(t *testing.T) {
	if err := runShell("true"); err != nil {
		t.Errorf("runShell: %v", err)
	}
}
