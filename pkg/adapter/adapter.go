// Package adapter is the embedded query engine adapter: the facade that
// materializes externally-fetched table specs into in-process engine
// instances and executes ad hoc SQL against them.
//
// The adapter synthesizes two capabilities the engine does not provide
// natively: affected-row reporting for raw UPDATE/DELETE execution, and
// case-insensitive identifier resolution for user- and AI-generated SQL.
// It owns no data: every instance is an ephemeral cache rebuilt from the
// caller's source of truth.
package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/leapstack-labs/leapgrid/pkg/registry"
	"github.com/leapstack-labs/leapgrid/pkg/synth"
)

// Adapter executes materialization, queries, and mutation reports against
// the engine instances held by an explicitly owned registry. Construct one
// per host session; the registry's lifecycle belongs to the caller.
type Adapter struct {
	registry *registry.Registry
	synth    *synth.Synthesizer
	logger   *slog.Logger
}

// New creates an Adapter on top of reg. A nil logger discards output.
func New(reg *registry.Registry, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		registry: reg,
		synth:    synth.New(logger),
		logger:   logger,
	}
}

// Materialize builds a fresh engine instance from the supplied table specs
// and registers it under databaseID, destroying and replacing any previous
// instance for that id. Per-table failures do not abort the batch: the
// report carries one entry per eligible table and the names of zero-column
// tables that were skipped. An error is returned only when the instance
// itself cannot be created.
func (a *Adapter) Materialize(ctx context.Context, databaseID int64, tables []core.TableSpec) (core.MaterializeReport, error) {
	h, err := a.registry.Open(databaseID)
	if err != nil {
		return core.MaterializeReport{}, fmt.Errorf("failed to create engine instance for database %d: %w", databaseID, err)
	}

	var report core.MaterializeReport
	if err := h.Exclusive(func(db *sql.DB) error {
		report = a.synth.Materialize(ctx, db, tables)
		return nil
	}); err != nil {
		_ = h.Close()
		return core.MaterializeReport{}, err
	}
	report.DatabaseID = databaseID

	a.registry.Put(databaseID, h)

	if report.Ok() {
		a.logger.Info("materialized database",
			"database_id", databaseID,
			"tables", len(report.Tables),
			"skipped", len(report.Skipped),
			"handle", h.UID())
	} else {
		a.logger.Warn("materialized database with failures",
			"database_id", databaseID,
			"tables", len(report.Tables),
			"failed", len(report.Failed()),
			"skipped", len(report.Skipped),
			"handle", h.UID())
	}
	return report, nil
}

// Catalog returns the live table names of the instance registered for
// databaseID, in the engine's catalog order.
func (a *Adapter) Catalog(ctx context.Context, databaseID int64) ([]string, error) {
	h, err := a.registry.Get(databaseID)
	if err != nil {
		return nil, err
	}

	var tables []string
	err = h.Exclusive(func(db *sql.DB) error {
		var err error
		tables, err = listTables(ctx, db)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// Evict tears down the instance registered for databaseID. It reports
// whether an instance existed.
func (a *Adapter) Evict(databaseID int64) bool {
	return a.registry.Evict(databaseID)
}

// listTables reads the live table catalog. The set changes with every
// materialization and with any DDL a caller smuggles through Execute, so it
// is read fresh inside the same exclusive scope as the statement that
// depends on it.
func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to read table catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table catalog: %w", err)
	}
	return tables, nil
}
