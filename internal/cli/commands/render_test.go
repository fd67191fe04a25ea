package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

func sampleResult() *core.QueryResult {
	return &core.QueryResult{
		Columns: []string{"id", "name"},
		Rows: []core.Row{
			{"id": int64(1), "name": "hammer"},
			{"id": int64(2), "name": "wrench"},
		},
	}
}

func TestRenderTable(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, sampleResult(), "table", 0))

	output := buf.String()
	assert.Contains(t, output, "hammer")
	assert.Contains(t, output, "wrench")
	assert.Contains(t, output, "(2 rows)")
}

func TestRenderTableEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	res := &core.QueryResult{Columns: []string{"id"}}
	require.NoError(t, renderResult(buf, res, "table", 0))
	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestRenderTableTruncates(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, sampleResult(), "table", 1))

	output := buf.String()
	assert.Contains(t, output, "hammer")
	assert.NotContains(t, output, "wrench")
	assert.Contains(t, output, "(showing first 1 of 2 rows)")
}

func TestRenderJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, sampleResult(), "json", 0))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "hammer", rows[0]["name"])
	assert.Equal(t, float64(1), rows[0]["id"])
}

func TestRenderJSONEmptyIsArray(t *testing.T) {
	buf := new(bytes.Buffer)
	res := &core.QueryResult{Columns: []string{"id"}}
	require.NoError(t, renderResult(buf, res, "json", 0))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRenderCSV(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, sampleResult(), "csv", 0))
	assert.Equal(t, "id,name\n1,hammer\n2,wrench\n", buf.String())
}

func TestRenderCSVEscapes(t *testing.T) {
	res := &core.QueryResult{
		Columns: []string{"note"},
		Rows:    []core.Row{{"note": `say "hi", ok`}},
	}

	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, res, "csv", 0))
	assert.Equal(t, "note\n\"say \"\"hi\"\", ok\"\n", buf.String())
}

func TestRenderOutcome(t *testing.T) {
	out := &core.MutationOutcome{
		AffectedRowCount: 2,
		ResultingRows: core.QueryResult{
			Columns: []string{"id"},
			Rows:    []core.Row{{"id": int64(3)}},
		},
	}

	buf := new(bytes.Buffer)
	require.NoError(t, renderOutcome(buf, out, "table", 0))

	output := buf.String()
	assert.Contains(t, output, "(2 rows affected)")
	assert.Contains(t, output, "3")
}

func TestRenderReport(t *testing.T) {
	report := core.MaterializeReport{
		DatabaseID: 7,
		Tables: []core.TableReport{
			{Table: "Customers", Rows: 12},
			{Table: "broken", Err: errors.New("duplicate column name: a")},
		},
		Skipped: []string{"ghost"},
	}

	buf := new(bytes.Buffer)
	renderReport(buf, report)

	output := buf.String()
	assert.Contains(t, output, "Customers: 12 rows")
	assert.Contains(t, output, "broken: FAILED (duplicate column name: a)")
	assert.Contains(t, output, "ghost: skipped (no columns)")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", formatValue(nil))
	assert.Equal(t, "12", formatValue(int64(12)))
	assert.Equal(t, "10.5", formatValue(10.5))
	assert.Equal(t, "ada", formatValue("ada"))
}
