// Package core defines the shared language of the LeapGrid adapter.
//
// This package contains:
//   - External schema descriptors (ColumnSpec, TableSpec)
//   - Result shapes (QueryResult, MutationOutcome)
//   - Materialization reports (TableReport, MaterializeReport)
//   - The error taxonomy shared by all adapter operations
//
// The Golden Rule: pkg/core imports ONLY the standard library.
// All other packages depend on core, not the reverse.
package core
