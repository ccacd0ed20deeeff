package diagserver

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/kbukum/framegraph/dag"
)

// Store holds the latest diagnostics published by a graph. It is safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	snap    *dag.Snapshot
	last    *dag.Result
	updated time.Time

	events *hub
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{events: newHub()}
}

// Publish replaces the stored snapshot and, when res is non-nil, the last
// cycle result. Cycle results are also streamed to /events subscribers.
func (s *Store) Publish(snap dag.Snapshot, res *dag.Result) {
	var last *dag.Result
	if res != nil {
		cp := *res
		cp.NodeResults = slices.Clone(res.NodeResults)
		last = &cp
	}

	s.mu.Lock()
	s.snap = &snap
	if last != nil {
		s.last = last
	}
	s.updated = time.Now().UTC()
	s.mu.Unlock()

	if last != nil {
		s.events.broadcast(marshalEvent(newCycleEvent(snap.Name, last)))
	}
}

// Snapshot returns the stored snapshot.
func (s *Store) Snapshot() (dag.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return dag.Snapshot{}, false
	}
	return *s.snap, true
}

// LastResult returns the most recent cycle result, or nil before the first
// cycle.
func (s *Store) LastResult() *dag.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Updated is the time of the last Publish.
func (s *Store) Updated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Observer returns a dag.Observer that publishes g's snapshot after each
// cycle. Register it with g.AddObserver.
func (s *Store) Observer(g *dag.Graph) dag.Observer {
	return dag.ObserverFuncs{
		OnCycleFinished: func(_ context.Context, res *dag.Result) {
			s.Publish(g.Snapshot(), res)
		},
	}
}
