package core

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when a query or mutation targets a database
// id for which no engine instance has been materialized. Recoverable: the
// caller re-invokes materialization and retries.
var ErrNotInitialized = errors.New("engine instance not initialized")

// ErrNoColumns marks a table spec that declares no columns. Such tables are
// skipped during materialization, never materialized empty.
var ErrNoColumns = errors.New("table declares no columns")

// MalformedStatementError is returned when the target table cannot be parsed
// out of an UPDATE or DELETE statement. Surfaced verbatim to the caller, not
// retried.
type MalformedStatementError struct {
	SQL    string
	Reason string
}

func (e *MalformedStatementError) Error() string {
	return fmt.Sprintf("malformed statement: %s", e.Reason)
}

// EngineError wraps a rejection from the embedded engine: syntax errors, type
// mismatches, missing tables. The native message is preserved because ad hoc
// SQL errors are meaningful to the end user or the assistant that generated
// the query. Never retried.
type EngineError struct {
	SQL string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine rejected statement: %v", e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
