package adapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/internal/testutil"
	"github.com/leapstack-labs/leapgrid/pkg/adapter"
	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/leapstack-labs/leapgrid/pkg/registry"
)

func newTestAdapter(t *testing.T) *adapter.Adapter {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	reg := registry.New(logger)
	t.Cleanup(func() { _ = reg.Close() })
	return adapter.New(reg, logger)
}

func customersSpec() core.TableSpec {
	return core.TableSpec{
		Name: "Customers",
		Columns: []core.ColumnSpec{
			{Name: "id", Type: core.TypeInteger, PrimaryKey: true},
			{Name: "name", Type: core.TypeVarchar},
			{Name: "balance", Type: core.TypeNumeric},
		},
		Rows: []core.Row{
			{"id": 1, "name": "ada", "balance": 10.5},
			{"id": 2, "name": "grace", "balance": ""},
			{"id": 3, "name": "alan"},
		},
	}
}

// firstValue returns the single value of a one-row, one-column result.
func firstValue(t *testing.T, res core.QueryResult) any {
	t.Helper()
	require.Len(t, res.Columns, 1)
	require.Len(t, res.Rows, 1)
	return res.Rows[0][res.Columns[0]]
}

func TestMaterializeAndCount(t *testing.T) {
	ctx := context.Background()
	ad := newTestAdapter(t)

	report, err := ad.Materialize(ctx, 1, []core.TableSpec{customersSpec()})
	require.NoError(t, err)
	require.True(t, report.Ok())
	assert.Equal(t, int64(1), report.DatabaseID)

	res, err := ad.Execute(ctx, 1, "SELECT COUNT(*) FROM Customers")
	require.NoError(t, err)
	assert.Equal(t, int64(3), firstValue(t, res))
}

func TestMaterializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ad := newTestAdapter(t)

	specs := []core.TableSpec{customersSpec()}
	_, err := ad.Materialize(ctx, 1, specs)
	require.NoError(t, err)

	// Replace semantics: a second materialization with identical input must
	// be indistinguishable from a single one, never a duplication.
	_, err = ad.Materialize(ctx, 1, specs)
	require.NoError(t, err)

	res, err := ad.Execute(ctx, 1, "SELECT COUNT(*) FROM Customers")
	require.NoError(t, err)
	assert.Equal(t, int64(3), firstValue(t, res))
}

func TestMaterializeSkipsZeroColumnTables(t *testing.T) {
	ctx := context.Background()
	ad := newTestAdapter(t)

	report, err := ad.Materialize(ctx, 1, []core.TableSpec{
		customersSpec(),
		{Name: "attributeless"},
	})
	require.NoError(t, err)
	require.True(t, report.Ok())
	assert.Equal(t, []string{"attributeless"}, report.Skipped)

	tables, err := ad.Catalog(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Customers"}, tables)
}

func TestMaterializePartialFailure(t *testing.T) {
	ctx := context.Background()
	ad := newTestAdapter(t)

	broken := core.TableSpec{
		Name: "broken",
		Columns: []core.ColumnSpec{
			{Name: "ID", Type: core.TypeInteger},
			{Name: "id", Type: core.TypeVarchar},
		},
	}

	report, err := ad.Materialize(ctx, 1, []core.TableSpec{broken, customersSpec()})
	require.NoError(t, err, "partial failure reports, it does not throw")
	assert.False(t, report.Ok())

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken", failed[0].Table)

	// The healthy sibling still materialized and is queryable.
	tables, err := ad.Catalog(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Customers"}, tables)

	res, err := ad.Execute(ctx, 1, "SELECT COUNT(*) FROM Customers")
	require.NoError(t, err)
	assert.Equal(t, int64(3), firstValue(t, res))
}

func TestExecuteRequiresMaterialization(t *testing.T) {
	ad := newTestAdapter(t)

	_, err := ad.Execute(context.Background(), 99, "SELECT 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotInitialized)
}

func TestExecuteResolvesIdentifierCase(t *testing.T) {
	ctx := context.Background()
	ad := newTestAdapter(t)

	_, err := ad.Materialize(ctx, 1, []core.TableSpec{customersSpec()})
	require.NoError(t, err)

	upper, err := ad.Execute(ctx, 1, "select * from CUSTOMERS")
	require.NoError(t, err)

	exact, err := ad.Execute(ctx, 1, "select * from Customers")
	require.NoError(t, err)

	assert.Equal(t, exact.Columns, upper.Columns)
	assert.ElementsMatch(t, exact.Rows, upper.Rows)
	assert.Len(t, upper.Rows, 3)
}

func TestExecuteReservedWordColumn(t *testing.T) {
	ctx := context.Background()
	ad := newTestAdapter(t)

	spec := core.TableSpec{
		Name: "orders",
		Columns: []core.ColumnSpec{
			{Name: "id", Type: core.TypeInteger},
			{Name: "order", Type: core.TypeVarchar},
		},
		Rows: []core.Row{{"id": 1, "order": "first"}},
	}

	report, err := ad.Materialize(ctx, 1, []core.TableSpec{spec})
	require.NoError(t, err)
	require.True(t, report.Ok(), "a column named after a keyword must round-trip through quoting")

	res, err := ad.Execute(ctx, 1, `SELECT "order" FROM orders`)
	require.NoError(t, err)
	assert.Equal(t, "first", firstValue(t, res))
}

func TestExecutePreservesEngineColumnOrder(t *testing.T) {
	ctx := context.Background()
	ad := newTestAdapter(t)

	_, err := ad.Materialize(ctx, 1, []core.TableSpec{customersSpec()})
	require.NoError(t, err)

	res, err := ad.Execute(ctx, 1, "SELECT name, id FROM Customers WHERE id = 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "id"}, res.Columns)
}

func TestExecuteEmptyNumericCellsReadAsZero(t *testing.T) {
	ctx := context.Background()
	ad := newTestAdapter(t)

	_, err := ad.Materialize(ctx, 1, []core.TableSpec{customersSpec()})
	require.NoError(t, err)

	res, err := ad.Execute(ctx, 1, "SELECT balance FROM Customers ORDER BY id")
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	// Empty and missing numeric cells were stored as the display sentinel.
	assert.Equal(t, 10.5, res.Rows[0]["balance"])
	assert.Equal(t, float64(0), res.Rows[1]["balance"])
	assert.Equal(t, float64(0), res.Rows[2]["balance"])
}

func TestExecuteEngineRejection(t *testing.T) {
	ctx := context.Background()
	ad := newTestAdapter(t)

	_, err := ad.Materialize(ctx, 1, []core.TableSpec{customersSpec()})
	require.NoError(t, err)

	tests := []struct {
		name string
		sql  string
	}{
		{name: "syntax error", sql: "SELEKT 1"},
		{name: "missing table", sql: "SELECT * FROM missing"},
		{name: "missing column", sql: "SELECT nope FROM Customers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ad.Execute(ctx, 1, tt.sql)
			require.Error(t, err)

			var engineErr *core.EngineError
			require.ErrorAs(t, err, &engineErr, "engine rejections surface with the native message")
			assert.NotEmpty(t, engineErr.Error())
		})
	}
}

func TestEvict(t *testing.T) {
	ctx := context.Background()
	ad := newTestAdapter(t)

	_, err := ad.Materialize(ctx, 1, []core.TableSpec{customersSpec()})
	require.NoError(t, err)

	assert.True(t, ad.Evict(1))

	_, err = ad.Execute(ctx, 1, "SELECT 1")
	assert.ErrorIs(t, err, core.ErrNotInitialized)

	assert.False(t, ad.Evict(1))
}

func TestCatalogListsLiveTables(t *testing.T) {
	ctx := context.Background()
	ad := newTestAdapter(t)

	second := core.TableSpec{
		Name:    "archive",
		Columns: []core.ColumnSpec{{Name: "id", Type: core.TypeInteger}},
	}

	_, err := ad.Materialize(ctx, 1, []core.TableSpec{customersSpec(), second})
	require.NoError(t, err)

	tables, err := ad.Catalog(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Customers", "archive"}, tables)
}

func TestDatabasesAreIndependent(t *testing.T) {
	ctx := context.Background()
	ad := newTestAdapter(t)

	_, err := ad.Materialize(ctx, 1, []core.TableSpec{customersSpec()})
	require.NoError(t, err)

	other := core.TableSpec{
		Name:    "events",
		Columns: []core.ColumnSpec{{Name: "id", Type: core.TypeInteger}},
	}
	_, err = ad.Materialize(ctx, 2, []core.TableSpec{other})
	require.NoError(t, err)

	_, err = ad.Execute(ctx, 2, "SELECT * FROM Customers")
	require.Error(t, err, "tables from one database id must not leak into another")

	tables, err := ad.Catalog(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Customers"}, tables)
}
