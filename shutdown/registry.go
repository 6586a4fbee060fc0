package shutdown

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// CloseFunc releases one resource at exit.
type CloseFunc func(ctx context.Context) error

type entry struct {
	name     string
	fn       CloseFunc
	priority int // lower = earlier execution
}

// Registry runs registered CloseFuncs once, in priority order.
//
// Typical priorities:
//   - 10-19: stores (history database)
//   - 90+: logger sync, so the other steps are still logged
type Registry struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds fn under name. Registration after Close is a no-op.
func (r *Registry) Register(name string, priority int, fn CloseFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.entries = append(r.entries, entry{name: name, fn: fn, priority: priority})
}

// Close calls every registered function, even after failures, and returns
// the failures labelled with their names. Later calls return nil.
func (r *Registry) Close(ctx context.Context) []error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sorted := r.sortedLocked()
	r.mu.Unlock()

	var errs []error
	for _, e := range sorted {
		if err := e.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}
	return errs
}

// Names returns the registered names in execution order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := r.sortedLocked()
	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.name
	}
	return names
}

func (r *Registry) sortedLocked() []entry {
	sorted := make([]entry, len(r.entries))
	copy(sorted, r.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})
	return sorted
}
