// Package engine drives the streaming rule loop: it reads reports from a
// Source, advances flight state, runs the rule evaluator, dispatches
// actions, and performs periodic stream-time-driven expiration.
package engine

import (
	"context"

	"github.com/eastham/adsb-actions/lib/actions"
	"github.com/eastham/adsb-actions/lib/flight"
	"github.com/eastham/adsb-actions/lib/region"
	"github.com/eastham/adsb-actions/lib/report"
	"github.com/eastham/adsb-actions/lib/rules"
	"github.com/rs/zerolog"
)

// checkpointIntervalSeconds is the stream-time cadence of the expiration
// sweep, per spec.md §4.7 ("every 30 s of stream time, run expiration
// sweep").
const checkpointIntervalSeconds = 30

// maxOutOfOrderSeconds bounds how far behind the stream's high-water mark
// a report's timestamp may be before it is dropped as out of order,
// rather than rewinding the stream clock, per spec.md §4.7.
const maxOutOfOrderSeconds = 60

// Engine is the single-writer driver loop. It owns the flight store and
// every piece of mutable rule-evaluation state; nothing else may mutate
// them while Run is executing, per spec.md §5.
type Engine struct {
	regions    *region.Set
	rules      *rules.RuleSet
	store      *flight.Store
	dispatcher *actions.Dispatcher
	log        zerolog.Logger

	source Source

	streamNow      float64
	lastCheckpoint float64

	stopped chan struct{}
	done    chan struct{}
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger sets the zerolog.Logger used for driver-loop diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an Engine over the given region set, compiled rule set,
// flight store, and action dispatcher.
func New(regions *region.Set, rs *rules.RuleSet, store *flight.Store, dispatcher *actions.Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		regions:    regions,
		rules:      rs,
		store:      store,
		dispatcher: dispatcher,
		log:        zerolog.Nop(),
		stopped:    make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetSource installs the input Source for Run to consume.
func (e *Engine) SetSource(s Source) {
	e.source = s
}

// Store returns the flight store this Engine drives, used by a host's
// debug/introspection endpoints (e.g. a /flights JSON dump).
func (e *Engine) Store() *flight.Store {
	return e.store
}

// Run consumes e.source until it is exhausted or ctx is cancelled,
// processing one report at a time. It returns once the driver loop has
// fully stopped, having already performed the terminal expiration sweep.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	lines := e.source.Lines()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-e.stopped:
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			e.processLine(line)
		}
	}

	e.source.Stop()
	e.finalSweep()
	return e.source.Err()
}

// Stop requests the driver loop to exit before its next report, per
// spec.md §5's "observes a cancellation signal between reports".
func (e *Engine) Stop() {
	select {
	case <-e.stopped:
	default:
		close(e.stopped)
	}
}

// Wait blocks until Run has returned.
func (e *Engine) Wait() {
	<-e.done
}

func (e *Engine) processLine(line []byte) {
	r, err := report.Parse(line, e.streamNow)
	if err != nil {
		e.log.Debug().Err(err).Msg("dropping unparsable report")
		return
	}

	if e.streamNow > 0 && r.Timestamp < e.streamNow-maxOutOfOrderSeconds {
		e.log.Warn().Str("flight", r.Identifier).Float64("ts", r.Timestamp).
			Float64("stream_now", e.streamNow).Msg("dropping out-of-order report")
		return
	}
	if r.Timestamp > e.streamNow {
		e.streamNow = r.Timestamp
	}

	f, created := e.store.GetOrCreate(r.Identifier, func() *flight.Flight {
		return flight.New(r, e.regions.NumFiles(), len(e.rules.Rules))
	})
	if !created {
		f.Update(r)
	}
	f.SetRegions(e.regions.Query(r.Lat, r.Lon))

	for _, m := range e.rules.Process(f, e.regions, e.streamNow) {
		e.dispatcher.Dispatch(m)
	}
	for _, m := range e.rules.ProcessProximity(f, e.store, e.regions, e.streamNow) {
		e.dispatcher.Dispatch(m)
	}

	if e.streamNow-e.lastCheckpoint >= checkpointIntervalSeconds {
		e.checkpoint()
	}
}

// checkpoint runs the periodic stream-time-driven expiration sweep.
func (e *Engine) checkpoint() {
	e.lastCheckpoint = e.streamNow
	e.store.Expire(e.streamNow, e.dispatcher.FireExpireCallbacks)
}

// finalSweep evicts every remaining flight on source exhaustion or
// cancellation, firing every registered expire_callback, per spec.md
// §4.7's terminal condition.
func (e *Engine) finalSweep() {
	e.store.ExpireAll(e.dispatcher.FireExpireCallbacks)
}
