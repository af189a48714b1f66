package main

import (
	"encoding/json"
	"net/http"

	"github.com/eastham/adsb-actions/lib/engine"
	"github.com/eastham/adsb-actions/lib/flight"
)

// flightsDebugHandler renders every currently-tracked flight as JSON, the
// debug surface the teacher's dashboard websocket covers in a GUI; this is
// the plain-JSON equivalent monitoring exposes instead.
func flightsDebugHandler(e *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		live := e.Store().IterLive()
		views := make([]flight.View, 0, len(live))
		for _, f := range live {
			views = append(views, f.Snapshot())
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(views)
	}
}
