package core

import (
	"errors"
	"fmt"
)

// TableReport records the outcome of materializing a single table.
type TableReport struct {
	// Table is the external table name.
	Table string

	// Rows is the number of rows inserted. Zero when Err is set.
	Rows int

	// Err is the per-table failure, nil on success.
	Err error
}

// Ok reports whether the table materialized successfully.
func (r TableReport) Ok() bool {
	return r.Err == nil
}

// MaterializeReport is the per-table accounting for one best-effort
// materialization batch. Failed tables do not prevent their siblings from
// materializing; callers inspect the report to degrade gracefully.
type MaterializeReport struct {
	// DatabaseID is the external database id the batch targeted.
	DatabaseID int64

	// Tables holds one report per eligible table, in input order.
	Tables []TableReport

	// Skipped lists tables excluded because they declare no columns.
	Skipped []string
}

// Ok reports whether every eligible table materialized.
func (r MaterializeReport) Ok() bool {
	for _, t := range r.Tables {
		if !t.Ok() {
			return false
		}
	}
	return true
}

// Failed returns the reports for tables that did not materialize.
func (r MaterializeReport) Failed() []TableReport {
	var failed []TableReport
	for _, t := range r.Tables {
		if !t.Ok() {
			failed = append(failed, t)
		}
	}
	return failed
}

// Err joins the per-table failures into a single error, or nil when the
// whole batch succeeded.
func (r MaterializeReport) Err() error {
	var errs []error
	for _, t := range r.Tables {
		if t.Err != nil {
			errs = append(errs, fmt.Errorf("table %s: %w", t.Table, t.Err))
		}
	}
	return errors.Join(errs...)
}
