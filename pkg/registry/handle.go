package registry

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Handle owns one materialized in-memory engine instance for one external
// database id. The instance lives until the handle is replaced, evicted, or
// closed with the registry; nothing survives a process restart.
type Handle struct {
	id  int64
	uid string
	db  *sql.DB

	// mu is the exclusive execution scope. Multi-statement sequences
	// (materialization, count-mutate-snapshot) are only correct when nothing
	// interleaves with them, so every operation on the instance runs under
	// this lock.
	mu     sync.Mutex
	closed bool
}

// Open creates a fresh, empty in-memory engine instance tuned with the
// registry's params. The instance is not registered; Put it once populated.
func (r *Registry) Open(id int64) (*Handle, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open engine instance: %w", err)
	}

	// The pool must hold exactly one connection for the handle's lifetime:
	// every additional or recycled connection would open a distinct, empty
	// in-memory database. Pinning also matches the engine's single-threaded
	// execution model, and makes per-connection pragmas instance-wide.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping engine instance: %w", err)
	}

	for _, pragma := range r.Params.pragmas() {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	h := &Handle{id: id, uid: uuid.New().String(), db: db}
	r.logger.Debug("opened engine instance", "database_id", id, "handle", h.uid)
	return h, nil
}

// ID returns the external database id the handle is keyed by.
func (h *Handle) ID() int64 {
	return h.id
}

// UID returns the handle's instance id, used for log correlation across
// replacements of the same database id.
func (h *Handle) UID() string {
	return h.uid
}

// Exclusive runs fn while holding the handle's execution lock. A closed
// handle fails with core.ErrNotInitialized: the caller raced a replacement
// or eviction and should re-materialize.
func (h *Handle) Exclusive(fn func(db *sql.DB) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return fmt.Errorf("database %d: engine handle closed: %w", h.id, core.ErrNotInitialized)
	}
	return fn(h.db)
}

// Close tears down the instance. It waits for an in-flight exclusive
// sequence to finish, so teardown cannot interleave with a running
// materialization or mutation report. Close is idempotent.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	if err := h.db.Close(); err != nil {
		return fmt.Errorf("failed to close engine instance: %w", err)
	}
	return nil
}
