// Package monitoring exposes /metrics, /healthz, and an extensible debug
// mux, rebuilt from the call sites every cmd/pw_* binary in the teacher's
// toolchain shares (IncludeMonitoringFlags/RunWebServer/AddHealthCheck);
// the package itself was not among the retrieved files.
package monitoring

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// HealthCheck is implemented by any component that wants to contribute to
// /healthz, mirroring the teacher's lib/tracker and lib/sink components.
type HealthCheck interface {
	HealthCheckName() string
	HealthCheck() bool
}

var (
	mu           sync.Mutex
	healthChecks []HealthCheck
	mux          = chi.NewRouter()
)

func init() {
	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/healthz", healthzHandler)
}

// IncludeMonitoringFlags adds --prometheus-port to app, defaulting to
// defaultPort, the same per-binary default every cmd/pw_* main.go passes.
func IncludeMonitoringFlags(app *cli.App, defaultPort int) {
	app.Flags = append(app.Flags, &cli.IntFlag{
		Name:    "prometheus-port",
		Usage:   "port to serve /metrics and /healthz on",
		Value:   defaultPort,
		EnvVars: []string{"ADSB_PROMETHEUS_PORT"},
	})
}

// AddHealthCheck registers hc to be polled by /healthz.
func AddHealthCheck(hc HealthCheck) {
	mu.Lock()
	defer mu.Unlock()
	healthChecks = append(healthChecks, hc)
}

// Handle registers an additional debug route on the monitoring mux, used
// by cmd/adsb-actions to expose /flights.
func Handle(pattern string, h http.Handler) {
	mux.Handle(pattern, h)
}

// HandleFunc is the http.HandlerFunc convenience form of Handle.
func HandleFunc(pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, h)
}

// RunWebServer starts the monitoring HTTP server on a background
// goroutine, bound to --prometheus-port. It never blocks the caller.
func RunWebServer(c *cli.Context) {
	addr := fmt.Sprintf(":%d", c.Int("prometheus-port"))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Str("addr", addr).Msg("monitoring web server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("monitoring web server listening")
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	mu.Lock()
	checks := append([]HealthCheck(nil), healthChecks...)
	mu.Unlock()

	allHealthy := true
	for _, hc := range checks {
		if !hc.HealthCheck() {
			allHealthy = false
			break
		}
	}
	if !allHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unhealthy\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}
