package adapter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/leapstack-labs/leapgrid/pkg/dialect"
)

// Execute runs a raw SQL statement against the instance registered for
// databaseID and normalizes the result set. Identifier case is resolved
// against the live catalog before execution, so `select * from CUSTOMERS`
// reaches a table materialized as `Customers`.
//
// Values stay in their coerced storage form: display formatting belongs to
// the caller, keyed by the original external type tags the executor does not
// know. Engine rejections surface as *core.EngineError with the native
// message preserved; nothing is retried.
func (a *Adapter) Execute(ctx context.Context, databaseID int64, sqlText string) (core.QueryResult, error) {
	h, err := a.registry.Get(databaseID)
	if err != nil {
		return core.QueryResult{}, err
	}

	var result core.QueryResult
	err = h.Exclusive(func(db *sql.DB) error {
		catalog, err := listTables(ctx, db)
		if err != nil {
			return err
		}
		resolved := dialect.Resolve(sqlText, catalog)

		rows, err := db.QueryContext(ctx, resolved)
		if err != nil {
			return &core.EngineError{SQL: resolved, Err: err}
		}
		defer func() { _ = rows.Close() }()

		result, err = scanRows(rows)
		return err
	})
	if err != nil {
		return core.QueryResult{}, err
	}

	a.logger.Debug("executed query",
		"database_id", databaseID,
		"columns", len(result.Columns),
		"rows", len(result.Rows),
		"handle", h.UID())
	return result, nil
}

// scanRows normalizes a result set into the uniform tabular shape,
// preserving the engine-reported column order. Byte slices become strings;
// everything else keeps its native scanned type.
func scanRows(rows *sql.Rows) (core.QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return core.QueryResult{}, fmt.Errorf("failed to read result columns: %w", err)
	}

	result := core.QueryResult{
		Columns: columns,
		Rows:    []core.Row{},
	}

	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return core.QueryResult{}, fmt.Errorf("failed to scan result row: %w", err)
		}

		row := make(core.Row, len(columns))
		for i, col := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return core.QueryResult{}, fmt.Errorf("error iterating result rows: %w", err)
	}
	return result, nil
}
