package actions

import "github.com/eastham/adsb-actions/lib/flight"

// Handler is a user-registered callback. other is non-nil only when the
// matching rule carried a proximity condition, in which case it is the
// nearby flight the subject was paired with, per spec.md §6
// ("Handlers receive a flight snapshot ... and, for proximity rules, a
// second flight snapshot").
type Handler func(subject flight.View, other *flight.View)

// Registry is a name -> Handler mapping, populated by host code before
// the driver loop starts and read-only thereafter. Grounded on the
// original tool's register_callback/self.callbacks dict in rules.py.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty callback registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register associates name with fn. Registering the same name twice
// replaces the earlier handler.
func (r *Registry) Register(name string, fn Handler) {
	r.handlers[name] = fn
}

// Lookup returns the handler for name, if any.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}
