// Package synth builds the embedded engine's schema from external table
// specs: CREATE TABLE statements from attribute metadata and parameterized
// inserts from row data.
//
// Materialization is best-effort per table. A table that cannot be created or
// loaded is reported and dropped; its siblings in the same batch still
// materialize, because a dashboard rendering many tables degrades more
// gracefully with most of its data than with none of it.
package synth

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/leapstack-labs/leapgrid/pkg/dialect"
	"github.com/leapstack-labs/leapgrid/pkg/typemap"
)

// Synthesizer turns table specs into engine schema and data.
type Synthesizer struct {
	logger *slog.Logger
}

// New creates a Synthesizer. A nil logger discards output.
func New(logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Synthesizer{logger: logger}
}

// CreateTableSQL builds the CREATE TABLE statement for one table spec.
// Every identifier is quoted. The synthesized schema carries storage classes
// only: nullability and key flags from the external metadata are not enforced
// because externally-sourced rows must load even when they violate them. The
// engine is a query sandbox, not an integrity enforcer.
//
// Returns core.ErrNoColumns for a spec without columns and an error for
// duplicate column names (case-insensitive).
func (s *Synthesizer) CreateTableSQL(spec core.TableSpec) (string, error) {
	if !spec.HasColumns() {
		return "", core.ErrNoColumns
	}

	seen := make(map[string]struct{}, len(spec.Columns))
	defs := make([]string, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		key := dialect.NormalizeName(col.Name)
		if _, dup := seen[key]; dup {
			return "", fmt.Errorf("duplicate column name %q", col.Name)
		}
		seen[key] = struct{}{}

		defs = append(defs, fmt.Sprintf("%s %s", dialect.Quote(col.Name), typemap.StorageClass(col.Type)))
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", dialect.Quote(spec.Name), strings.Join(defs, ", ")), nil
}

// InsertSQL builds one parameterized INSERT for the spec's column list plus
// the argument slice for every row, cells coerced to their storage
// representation. Row keys that match no declared column are ignored; missing
// keys insert as null (or the numeric zero sentinel, per the coercion rules).
// Values are always bound as parameters, never interpolated: row content is
// externally sourced.
func (s *Synthesizer) InsertSQL(spec core.TableSpec) (string, [][]any) {
	cols := make([]string, len(spec.Columns))
	holes := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		cols[i] = dialect.Quote(col.Name)
		holes[i] = "?"
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		dialect.Quote(spec.Name), strings.Join(cols, ", "), strings.Join(holes, ", "))

	args := make([][]any, len(spec.Rows))
	for i, row := range spec.Rows {
		vals := make([]any, len(spec.Columns))
		for j, col := range spec.Columns {
			vals[j] = typemap.Coerce(row[col.Name], col.Type, typemap.ModeStore)
		}
		args[i] = vals
	}

	return query, args
}

// Materialize creates and loads every eligible table spec into db.
// Zero-column tables are skipped with a warning. Per-table failures are
// recorded in the report and the offending table is dropped so the resulting
// catalog never holds a half-loaded table.
func (s *Synthesizer) Materialize(ctx context.Context, db *sql.DB, specs []core.TableSpec) core.MaterializeReport {
	var report core.MaterializeReport

	for _, spec := range specs {
		if !spec.HasColumns() {
			s.logger.Warn("skipping table with no columns", "table", spec.Name)
			report.Skipped = append(report.Skipped, spec.Name)
			continue
		}

		rows, err := s.materializeTable(ctx, db, spec)
		if err != nil {
			s.logger.Error("table materialization failed", "table", spec.Name, "error", err)
		} else {
			s.logger.Debug("materialized table", "table", spec.Name, "rows", rows)
		}
		report.Tables = append(report.Tables, core.TableReport{Table: spec.Name, Rows: rows, Err: err})
	}

	return report
}

func (s *Synthesizer) materializeTable(ctx context.Context, db *sql.DB, spec core.TableSpec) (int, error) {
	createSQL, err := s.CreateTableSQL(spec)
	if err != nil {
		return 0, err
	}
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return 0, fmt.Errorf("failed to create table: %w", err)
	}

	if len(spec.Rows) == 0 {
		return 0, nil
	}

	if err := s.insertRows(ctx, db, spec); err != nil {
		// A failed load leaves the freshly created table behind; drop it so
		// failure means absent, not empty.
		dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", dialect.Quote(spec.Name))
		if _, dropErr := db.ExecContext(ctx, dropSQL); dropErr != nil {
			s.logger.Error("failed to drop partially loaded table", "table", spec.Name, "error", dropErr)
		}
		return 0, err
	}

	return len(spec.Rows), nil
}

// insertRows loads the spec's rows inside one transaction so a bad row
// aborts the whole table instead of leaving it half loaded.
func (s *Synthesizer) insertRows(ctx context.Context, db *sql.DB, spec core.TableSpec) error {
	insertSQL, rowArgs := s.InsertSQL(spec)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, args := range rowArgs {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit inserts: %w", err)
	}
	return nil
}
