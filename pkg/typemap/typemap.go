// Package typemap maps external attribute types onto the embedded engine's
// reduced storage-class system and coerces cell values to match.
//
// The engine stores everything as integer, real, or text. Booleans narrow to
// integer 0/1 and timestamps to RFC3339 text. The mapping is total: a tag the
// table does not know degrades to text with no coercion, because attribute
// metadata originates from a possibly-stale external source and must never
// fail materialization on its own.
package typemap

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Storage is one of the embedded engine's storage classes. The string value
// is the exact DDL type token.
type Storage string

// Storage classes.
const (
	StorageInteger Storage = "INTEGER"
	StorageReal    Storage = "REAL"
	StorageText    Storage = "TEXT"
)

// Mode selects the sentinel substituted for empty or null numeric cells.
type Mode int

const (
	// ModeStore coerces empty numeric cells to 0. Used for insertion and
	// display-oriented reads.
	ModeStore Mode = iota

	// ModeSort coerces empty numeric cells to null so they order after
	// every concrete value. Used only when preparing values for ordering
	// comparisons, never for storage.
	ModeSort
)

// storageClasses is the whole type-narrowing story. Extending the external
// type system is a one-line addition here.
var storageClasses = map[core.ExternalType]Storage{
	core.TypeInteger:   StorageInteger,
	core.TypeNumeric:   StorageReal,
	core.TypeBoolean:   StorageInteger,
	core.TypeTimestamp: StorageText,
	core.TypeVarchar:   StorageText,
}

// StorageClass returns the engine storage class for an external type.
// Unmapped types default to text.
func StorageClass(t core.ExternalType) Storage {
	if s, ok := storageClasses[t]; ok {
		return s
	}
	return StorageText
}

// Coerce converts one cell value to the representation the engine stores for
// the given external type. It never fails: values that cannot be interpreted
// degrade to null (or to the mode sentinel for empty numerics) instead of
// raising, and unknown external types pass through as text.
func Coerce(v any, t core.ExternalType, mode Mode) any {
	switch t {
	case core.TypeInteger:
		return coerceInteger(v, mode)
	case core.TypeNumeric:
		return coerceReal(v, mode)
	case core.TypeBoolean:
		return coerceBool(v)
	case core.TypeTimestamp:
		return coerceTimestamp(v)
	default:
		return coerceText(v)
	}
}

func coerceInteger(v any, mode Mode) any {
	switch x := v.(type) {
	case nil:
		return intSentinel(mode)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return intSentinel(mode)
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return losslessInt(f)
		}
		return nil
	default:
		if f, ok := toFloat(v); ok {
			return losslessInt(f)
		}
		return nil
	}
}

func coerceReal(v any, mode Mode) any {
	switch x := v.(type) {
	case nil:
		return realSentinel(mode)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return realSentinel(mode)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return nil
	default:
		if f, ok := toFloat(v); ok {
			return f
		}
		return nil
	}
}

// coerceBool narrows truthy forms to integer 0/1. Unrecognized values become
// null rather than guessing.
func coerceBool(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		if b, err := strconv.ParseBool(s); err == nil {
			if b {
				return int64(1)
			}
			return int64(0)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if f != 0 {
				return int64(1)
			}
			return int64(0)
		}
		return nil
	default:
		if f, ok := toFloat(v); ok {
			if f != 0 {
				return int64(1)
			}
			return int64(0)
		}
		return nil
	}
}

// coerceTimestamp targets the text storage class: time values format to
// RFC3339 UTC, numeric values are interpreted as Unix seconds, and strings
// pass through untouched for the engine to store verbatim.
func coerceTimestamp(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		return x
	default:
		if f, ok := toFloat(v); ok {
			sec, frac := math.Modf(f)
			return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC().Format(time.RFC3339)
		}
		return fmt.Sprint(v)
	}
}

func coerceText(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(v)
	}
}

func intSentinel(mode Mode) any {
	if mode == ModeSort {
		return nil
	}
	return int64(0)
}

func realSentinel(mode Mode) any {
	if mode == ModeSort {
		return nil
	}
	return float64(0)
}

// losslessInt keeps fractional values as real rather than silently
// truncating them into an integer column. The engine's type affinity accepts
// either representation.
func losslessInt(f float64) any {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return int64(f)
	}
	return f
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
