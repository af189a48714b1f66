package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeHealthCheck struct {
	name    string
	healthy bool
}

func (f *fakeHealthCheck) HealthCheckName() string { return f.name }
func (f *fakeHealthCheck) HealthCheck() bool        { return f.healthy }

func TestHealthzAllHealthy(t *testing.T) {
	mu.Lock()
	healthChecks = nil
	mu.Unlock()
	AddHealthCheck(&fakeHealthCheck{name: "a", healthy: true})
	AddHealthCheck(&fakeHealthCheck{name: "b", healthy: true})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	healthzHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestHealthzUnhealthy(t *testing.T) {
	mu.Lock()
	healthChecks = nil
	mu.Unlock()
	AddHealthCheck(&fakeHealthCheck{name: "a", healthy: true})
	AddHealthCheck(&fakeHealthCheck{name: "b", healthy: false})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	healthzHandler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
