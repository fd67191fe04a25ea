// Package dialect implements the identifier policy for the embedded engine:
// quoting rules for synthesized DDL and case-insensitive resolution of table
// references in caller-supplied SQL.
package dialect

import (
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/sqltoken"
)

// Quote wraps an identifier in the engine's quoting syntax, escaping embedded
// quote characters by doubling them. Quoting is unconditional: names that
// collide with engine keywords, contain special characters, or look like
// numbers stay valid without any keyword table to maintain.
func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// NormalizeName normalizes an identifier for case-insensitive comparison.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

// Resolve substitutes the exact stored casing of catalog table names into a
// caller-supplied SQL string. The engine's identifier matching is
// case-sensitive while user- and AI-generated SQL routinely mismatches case,
// so `select * from CUSTOMERS` must reach the engine as the materialized
// `Customers`.
//
// Substitution is whole-token: the SQL is scanned and only bare identifier
// tokens are eligible, so occurrences inside string literals, comments, and
// already-quoted identifiers are never rewritten.
func Resolve(sql string, catalog []string) string {
	if len(catalog) == 0 {
		return sql
	}

	stored := make(map[string]string, len(catalog))
	for _, name := range catalog {
		stored[NormalizeName(name)] = name
	}

	var out strings.Builder
	last := 0
	for _, tok := range sqltoken.Scan(sql) {
		if tok.Kind != sqltoken.Ident {
			continue
		}
		actual, ok := stored[NormalizeName(tok.Text)]
		if !ok || actual == tok.Text {
			continue
		}
		out.WriteString(sql[last:tok.Start])
		out.WriteString(actual)
		last = tok.End
	}

	if last == 0 {
		return sql
	}
	out.WriteString(sql[last:])
	return out.String()
}
