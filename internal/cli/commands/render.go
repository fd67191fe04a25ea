package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// renderResult writes a query result to w in the requested format. The limit
// caps table output only; json and csv are meant for piping and always emit
// every row. A limit of zero disables truncation.
func renderResult(w io.Writer, res *core.QueryResult, format string, limit int) error {
	switch format {
	case "json":
		return renderJSON(w, res.Rows)
	case "csv":
		return renderCSV(w, res)
	default:
		return renderTable(w, res, limit)
	}
}

func renderTable(w io.Writer, res *core.QueryResult, limit int) error {
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	shown := res.Rows
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, row := range shown {
		cells := make(table.Row, len(res.Columns))
		for i, col := range res.Columns {
			cells[i] = formatValue(row[col])
		}
		t.AppendRow(cells)
	}

	t.Render()
	if len(shown) < len(res.Rows) {
		_, _ = fmt.Fprintf(w, "(showing first %d of %d rows)\n", len(shown), len(res.Rows))
	} else {
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
	}
	return nil
}

func renderJSON(w io.Writer, rows []core.Row) error {
	if rows == nil {
		rows = []core.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func renderCSV(w io.Writer, res *core.QueryResult) error {
	_, _ = fmt.Fprintln(w, strings.Join(res.Columns, ","))

	for _, row := range res.Rows {
		values := make([]string, len(res.Columns))
		for i, col := range res.Columns {
			values[i] = escapeCSV(formatValue(row[col]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

// renderOutcome writes a mutation outcome: the affected-row count followed by
// the post-mutation snapshot of the target table.
func renderOutcome(w io.Writer, out *core.MutationOutcome, format string, limit int) error {
	_, _ = fmt.Fprintf(w, "(%d rows affected)\n", out.AffectedRowCount)
	return renderResult(w, &out.ResultingRows, format, limit)
}

// renderReport summarizes a materialization batch, one line per table.
func renderReport(w io.Writer, report core.MaterializeReport) {
	for _, t := range report.Tables {
		if t.Ok() {
			_, _ = fmt.Fprintf(w, "  %s: %d rows\n", t.Table, t.Rows)
		} else {
			_, _ = fmt.Fprintf(w, "  %s: FAILED (%v)\n", t.Table, t.Err)
		}
	}
	for _, name := range report.Skipped {
		_, _ = fmt.Fprintf(w, "  %s: skipped (no columns)\n", name)
	}
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
