// Package registry owns the materialized engine instances, one per external
// database id.
//
// The registry is an explicit dependency with a defined lifecycle: construct
// one per host session and pass it by reference. There is no package-level
// singleton, which keeps tests isolated and permits multiple hosts in one
// process.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Registry maps external database ids to their engine handles. At most one
// handle exists per id: storing a new one destroys and replaces the previous
// handle. Memory is bounded by the number of distinct ids touched during the
// process lifetime.
type Registry struct {
	// Params tunes every instance opened through the registry. Set it
	// before the first Open; changes do not retune live instances.
	Params Params

	mu      sync.RWMutex
	handles map[int64]*Handle
	logger  *slog.Logger
}

// New creates an empty registry. A nil logger discards output.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		handles: make(map[int64]*Handle),
		logger:  logger,
	}
}

// Get returns the handle registered for id, or core.ErrNotInitialized when
// no instance has been materialized for it. Callers recover by materializing
// and retrying.
func (r *Registry) Get(id int64) (*Handle, error) {
	r.mu.RLock()
	h, ok := r.handles[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("database %d: %w", id, core.ErrNotInitialized)
	}
	return h, nil
}

// Put registers a handle under id, replacing and closing any predecessor.
// Concurrent materializations for the same id race here; the last writer
// wins and the loser's instance is torn down. Closing waits for the
// predecessor's in-flight sequence, so a replacement cannot destroy an
// instance mid-operation.
func (r *Registry) Put(id int64, h *Handle) {
	r.mu.Lock()
	old := r.handles[id]
	r.handles[id] = h
	r.mu.Unlock()

	if old != nil {
		r.logger.Debug("replacing engine instance", "database_id", id, "old", old.UID(), "new", h.UID())
		if err := old.Close(); err != nil {
			r.logger.Error("failed to close replaced engine instance", "database_id", id, "error", err)
		}
	}
}

// Evict removes and closes the handle for id. It reports whether a handle
// was registered.
func (r *Registry) Evict(id int64) bool {
	r.mu.Lock()
	h, ok := r.handles[id]
	delete(r.handles, id)
	r.mu.Unlock()

	if !ok {
		return false
	}

	r.logger.Debug("evicting engine instance", "database_id", id, "handle", h.UID())
	if err := h.Close(); err != nil {
		r.logger.Error("failed to close evicted engine instance", "database_id", id, "error", err)
	}
	return true
}

// IDs returns the registered database ids in ascending order.
func (r *Registry) IDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close tears down every registered instance and empties the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	handles := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		handles = append(handles, h)
	}
	r.handles = make(map[int64]*Handle)
	r.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database %d: %w", h.ID(), err))
		}
	}
	return errors.Join(errs...)
}
