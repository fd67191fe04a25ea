package adapter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/leapstack-labs/leapgrid/pkg/dialect"
	"github.com/leapstack-labs/leapgrid/pkg/statement"
)

// RunUpdate executes a single-table UPDATE and reports the affected-row
// count plus the post-mutation state of the target table.
func (a *Adapter) RunUpdate(ctx context.Context, databaseID int64, sqlText string) (core.MutationOutcome, error) {
	st, err := statement.ParseUpdate(sqlText)
	if err != nil {
		return core.MutationOutcome{}, err
	}
	return a.report(ctx, databaseID, sqlText, st)
}

// RunDelete executes a single-table DELETE and reports the affected-row
// count plus the post-mutation state of the target table.
func (a *Adapter) RunDelete(ctx context.Context, databaseID int64, sqlText string) (core.MutationOutcome, error) {
	st, err := statement.ParseDelete(sqlText)
	if err != nil {
		return core.MutationOutcome{}, err
	}
	return a.report(ctx, databaseID, sqlText, st)
}

// report runs the count-mutate-snapshot sequence. The engine's raw execution
// path does not return affected-row counts, so the count is taken with a
// SELECT COUNT(*) against the pre-mutation state using the statement's own
// predicate. The whole sequence holds the handle's exclusive lock: the count
// is only honest while nothing mutates the table between the three steps.
func (a *Adapter) report(ctx context.Context, databaseID int64, sqlText string, st statement.Statement) (core.MutationOutcome, error) {
	h, err := a.registry.Get(databaseID)
	if err != nil {
		return core.MutationOutcome{}, err
	}

	var outcome core.MutationOutcome
	err = h.Exclusive(func(db *sql.DB) error {
		catalog, err := listTables(ctx, db)
		if err != nil {
			return err
		}

		target := dialect.Resolve(st.Target(), catalog)
		predicate := dialect.Resolve(st.Where(), catalog)
		mutation := dialect.Resolve(sqlText, catalog)

		countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s", target)
		if predicate != "" {
			countSQL += " WHERE " + predicate
		}
		var count int64
		if err := db.QueryRowContext(ctx, countSQL).Scan(&count); err != nil {
			return &core.EngineError{SQL: countSQL, Err: err}
		}

		if _, err := db.ExecContext(ctx, mutation); err != nil {
			return &core.EngineError{SQL: mutation, Err: err}
		}

		snapshotSQL := fmt.Sprintf("SELECT * FROM %s", target)
		rows, err := db.QueryContext(ctx, snapshotSQL)
		if err != nil {
			return &core.EngineError{SQL: snapshotSQL, Err: err}
		}
		defer func() { _ = rows.Close() }()

		snapshot, err := scanRows(rows)
		if err != nil {
			return err
		}

		outcome = core.MutationOutcome{AffectedRowCount: count, ResultingRows: snapshot}
		return nil
	})
	if err != nil {
		return core.MutationOutcome{}, err
	}

	a.logger.Debug("reported mutation",
		"database_id", databaseID,
		"table", st.Target(),
		"affected", outcome.AffectedRowCount,
		"handle", h.UID())
	return outcome, nil
}
