package flight

import (
	"sync"

	"github.com/google/btree"
)

// Store is the live flight table: one Flight per distinct aircraft
// identifier currently being tracked. It is keyed by identifier in a
// google/btree.BTreeG, the same structure lib/dedupe uses for its frame
// dedupe table, ordered so IterLive yields a stable, deterministic walk
// useful for tests and the /flights debug endpoint.
//
// Unlike lib/dedupe's sweeper, which evicts on a wall-clock time.Ticker,
// Store.Expire is driven entirely by stream timestamps the driver loop
// passes in: a replay of old data and a live feed both expire flights the
// same way, and a paused feed never spuriously evicts anything.
type Store struct {
	mu            sync.Mutex
	tree          *btree.BTreeG[*Flight]
	numRegions    int
	numRules      int
	expirySeconds float64
}

// NewStore creates an empty Store. numRegionFiles and numRules size every
// Flight's region/cooldown vectors; expirySeconds is the idle window after
// which a flight with no new reports is evicted by Expire.
func NewStore(numRegionFiles, numRules int, expirySeconds float64) *Store {
	return &Store{
		tree: btree.NewG[*Flight](32, func(a, b *Flight) bool {
			return a.Identifier < b.Identifier
		}),
		numRegions:    numRegionFiles,
		numRules:      numRules,
		expirySeconds: expirySeconds,
	}
}

// Get returns the flight for identifier, if tracked.
func (s *Store) Get(identifier string) (*Flight, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.tree.Get(&Flight{Identifier: identifier})
	return f, ok
}

// GetOrCreate returns the existing flight for identifier, creating one
// seeded from seed if none exists yet. created reports whether a new
// Flight was inserted.
func (s *Store) GetOrCreate(identifier string, seed func() *Flight) (f *Flight, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.tree.Get(&Flight{Identifier: identifier}); ok {
		return existing, false
	}
	nf := seed()
	s.tree.ReplaceOrInsert(nf)
	return nf, true
}

// Len returns the number of flights currently tracked.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Len()
}

// IterLive returns a stable-ordered snapshot of every tracked flight.
func (s *Store) IterLive() []*Flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Flight, 0, s.tree.Len())
	s.tree.Ascend(func(f *Flight) bool {
		out = append(out, f)
		return true
	})
	return out
}

// Expire evicts every flight whose LastSeenAt is more than expirySeconds
// behind now, invoking onExpire once per evicted flight (with the lock
// released) so the callback can run action dispatch without risking a
// deadlock against a re-entrant store call, per invariant I3.
func (s *Store) Expire(now float64, onExpire func(*Flight)) {
	var dead []*Flight

	s.mu.Lock()
	s.tree.Ascend(func(f *Flight) bool {
		if now-f.LastSeenAt > s.expirySeconds {
			dead = append(dead, f)
		}
		return true
	})
	for _, f := range dead {
		s.tree.Delete(f)
	}
	s.mu.Unlock()

	if onExpire == nil {
		return
	}
	for _, f := range dead {
		onExpire(f)
	}
}

// ExpireAll evicts every tracked flight unconditionally, invoking
// onExpire for each, the same way Expire does for flights that aged out.
// Used for the driver loop's terminal sweep on source exhaustion, per
// spec.md §4.7 ("final expiration sweep firing all registered
// expire_callbacks").
func (s *Store) ExpireAll(onExpire func(*Flight)) {
	s.mu.Lock()
	all := make([]*Flight, 0, s.tree.Len())
	s.tree.Ascend(func(f *Flight) bool {
		all = append(all, f)
		return true
	})
	s.tree.Clear(false)
	s.mu.Unlock()

	if onExpire == nil {
		return
	}
	for _, f := range all {
		onExpire(f)
	}
}

// NumRegionFiles returns the region-file count every Flight's region
// vectors are sized to.
func (s *Store) NumRegionFiles() int { return s.numRegions }

// NumRules returns the rule count every Flight's cooldown vector is sized
// to.
func (s *Store) NumRules() int { return s.numRules }
