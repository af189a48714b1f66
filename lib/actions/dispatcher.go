// Package actions resolves matched rules into side effects: user
// callbacks, console prints, flight notes, webhook enqueues, and shell
// commands.
package actions

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/eastham/adsb-actions/lib/flight"
	"github.com/eastham/adsb-actions/lib/rules"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Dispatcher executes the action set of a matched rule, per spec.md
// §4.6. It never blocks on webhook/shell side effects longer than it
// takes to enqueue or spawn them; callback panics are recovered and
// logged so one bad handler cannot take down the driver loop.
type Dispatcher struct {
	callbacks *Registry
	webhooks  *webhookQueue
	stdout    io.Writer
	log       zerolog.Logger
	shellOK   bool
}

// ruleFiredCounter is a package-level metric (registered once at package
// init, matching plane.watch's setup package convention of package-level
// promauto vars) rather than per-Dispatcher, since promauto panics on a
// second registration of the same metric name against the default
// registry.
var ruleFiredCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "adsb_actions_rule_fired_total",
	Help: "Total number of times each rule's actions were dispatched.",
}, []string{"rule"})

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithStdout overrides the print action's destination (default
// os.Stdout), used by tests to capture output.
func WithStdout(w io.Writer) Option {
	return func(d *Dispatcher) { d.stdout = w }
}

// WithShellEnabled toggles whether shell: actions actually spawn a
// process; disabled by default so an untrusted rule-set can't execute
// commands unless the host explicitly opts in.
func WithShellEnabled(enabled bool) Option {
	return func(d *Dispatcher) { d.shellOK = enabled }
}

// WithLogger sets the zerolog.Logger used for dispatch-time warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// New creates a Dispatcher with the given callback registry and webhook
// transports (name -> Transport, e.g. "nats", "amqp", "redis", "discord").
func New(callbacks *Registry, transports map[string]Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		callbacks: callbacks,
		stdout:    os.Stdout,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.webhooks = newWebhookQueue(d.log, 4, transports)
	return d
}

// Dispatch executes every action configured on m.Rule against m.Flight
// (and m.Other, for a proximity match).
func (d *Dispatcher) Dispatch(m rules.Match) {
	r := m.Rule
	f := m.Flight
	ruleFiredCounter.WithLabelValues(r.Name).Inc()

	if r.Actions.Note.Present {
		f.SetNote(r.Name, r.Actions.Note.Value)
	}

	if r.Actions.Print {
		d.printSummary(r.Name, f)
	}

	if r.Actions.HasCallback {
		d.invokeCallback(r.Actions.Callback, f, m.Other)
	}

	if len(r.Actions.Webhook) == 2 {
		d.webhooks.enqueue(r.Actions.Webhook[0], r.Actions.Webhook[1], webhookPayload(r.Name, f))
	}

	if r.Actions.HasShell && d.shellOK {
		cmd := expandShellTemplate(r.Actions.Shell, f.Snapshot())
		if err := runShell(cmd); err != nil {
			d.log.Warn().Err(err).Str("rule", r.Name).Msg("shell action failed to start")
		}
	}
	// Track and ExpireCallback are handled by the evaluator itself
	// (counter bookkeeping and flight-side registration respectively);
	// there is no dispatch-time effect for either.
}

func (d *Dispatcher) invokeCallback(name string, f *flight.Flight, other *flight.Flight) {
	handler, ok := d.callbacks.Lookup(name)
	if !ok {
		d.log.Debug().Str("callback", name).Str("flight", f.Identifier).Msg("no callback registered")
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error().Interface("panic", rec).Str("callback", name).
				Str("flight", f.Identifier).Msg("callback panicked")
		}
	}()

	var otherView *flight.View
	if other != nil {
		v := other.Snapshot()
		otherView = &v
	}
	handler(f.Snapshot(), otherView)
}

func (d *Dispatcher) printSummary(ruleName string, f *flight.Flight) {
	ts := time.Unix(int64(f.LastReport.Timestamp), 0).Format("01/02/06 15:04")
	note, _ := f.Note(ruleName)
	fmt.Fprintf(d.stdout, "%s: Rule %s matched for %s alt=%.0f hdg=%.0f gs=%.0f lat=%.4f lon=%.4f %s\n",
		ts, ruleName, f.Identifier, f.LastReport.AltBaro, f.LastReport.Track,
		f.LastReport.GroundSpeed, f.LastReport.Lat, f.LastReport.Lon, note)
}

// FireExpireCallbacks invokes every expire_callback registered on f,
// called by the driver loop's expiration sweep immediately before f is
// discarded, per spec.md §4.6.
func (d *Dispatcher) FireExpireCallbacks(f *flight.Flight) {
	for _, name := range f.ExpireCallbacks() {
		handler, ok := d.callbacks.Lookup(name)
		if !ok {
			continue
		}
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					d.log.Error().Interface("panic", rec).Str("callback", name).
						Str("flight", f.Identifier).Msg("expire_callback panicked")
				}
			}()
			handler(f.Snapshot(), nil)
		}()
	}
}

// Close shuts down the webhook worker pool and every transport.
func (d *Dispatcher) Close() {
	d.webhooks.close()
}

func webhookPayload(ruleName string, f *flight.Flight) []byte {
	return []byte(fmt.Sprintf(`{"rule":%q,"flight":%q,"lat":%f,"lon":%f,"alt":%f}`,
		ruleName, f.Identifier, f.LastReport.Lat, f.LastReport.Lon, f.LastReport.AltBaro))
}
