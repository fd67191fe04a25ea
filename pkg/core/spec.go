package core

import "strings"

// =============================================================================
// External types
// =============================================================================

// ExternalType is the caller-facing logical column type, independent of how
// the embedded engine stores it. Attribute metadata originates from a remote
// store whose type tags are free-form strings; ParseExternalType folds those
// onto the five canonical tags.
type ExternalType string

// Canonical external type tags.
const (
	TypeInteger   ExternalType = "INTEGER"
	TypeNumeric   ExternalType = "NUMERIC"
	TypeTimestamp ExternalType = "TIMESTAMP"
	TypeBoolean   ExternalType = "BOOLEAN"
	TypeVarchar   ExternalType = "VARCHAR"
)

// externalTypeAliases maps lowercased free-form tags onto canonical types.
// Anything absent from this table is treated as VARCHAR: the metadata source
// may be stale or ahead of us, and an unknown tag must degrade to text rather
// than fail the whole table.
var externalTypeAliases = map[string]ExternalType{
	"int":       TypeInteger,
	"integer":   TypeInteger,
	"bigint":    TypeInteger,
	"smallint":  TypeInteger,
	"tinyint":   TypeInteger,
	"serial":    TypeInteger,
	"numeric":   TypeNumeric,
	"decimal":   TypeNumeric,
	"float":     TypeNumeric,
	"double":    TypeNumeric,
	"real":      TypeNumeric,
	"number":    TypeNumeric,
	"timestamp": TypeTimestamp,
	"datetime":  TypeTimestamp,
	"date":      TypeTimestamp,
	"time":      TypeTimestamp,
	"bool":      TypeBoolean,
	"boolean":   TypeBoolean,
	"bit":       TypeBoolean,
	"varchar":   TypeVarchar,
	"text":      TypeVarchar,
	"string":    TypeVarchar,
	"char":      TypeVarchar,
	"character": TypeVarchar,
}

// ParseExternalType normalizes a free-form attribute type tag onto one of the
// five canonical external types. Parameterized tags such as "varchar(255)" or
// "numeric(10,2)" match on their base name. Unrecognized tags fall back to
// VARCHAR; this function never fails.
func ParseExternalType(tag string) ExternalType {
	base := strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	if t, ok := externalTypeAliases[base]; ok {
		return t
	}
	return TypeVarchar
}

// =============================================================================
// Schema descriptors
// =============================================================================

// Row is one row of cell values keyed by column name.
type Row = map[string]any

// ColumnSpec describes one attribute of an external table. It is immutable
// once handed to the synthesizer.
type ColumnSpec struct {
	// Name is the attribute name. Unique within a table, case-insensitively.
	Name string

	// Type is the canonical external type tag.
	Type ExternalType

	// Nullable indicates whether the attribute admits NULL.
	Nullable bool

	// PrimaryKey indicates the attribute is part of the table's primary key.
	PrimaryKey bool

	// ForeignKey indicates the attribute references another table. Carried
	// through for callers; the synthesized schema does not enforce it.
	ForeignKey bool
}

// TableSpec carries the metadata and row data for one external table.
// Every key in every row should correspond to a declared column name:
// extra keys are ignored, missing keys are treated as null.
type TableSpec struct {
	Name    string
	Columns []ColumnSpec
	Rows    []Row
}

// HasColumns reports whether the table declares at least one column.
// A table with no attributes cannot back any query and is skipped during
// materialization rather than failing the batch.
func (t TableSpec) HasColumns() bool {
	return len(t.Columns) > 0
}
