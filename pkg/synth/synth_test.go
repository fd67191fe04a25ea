package synth

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

func usersSpec() core.TableSpec {
	return core.TableSpec{
		Name: "users",
		Columns: []core.ColumnSpec{
			{Name: "id", Type: core.TypeInteger, PrimaryKey: true},
			{Name: "name", Type: core.TypeVarchar},
		},
		Rows: []core.Row{
			{"id": 1, "name": "ada"},
			{"id": 2, "name": "grace"},
		},
	}
}

func TestCreateTableSQL(t *testing.T) {
	s := New(nil)

	tests := []struct {
		name    string
		spec    core.TableSpec
		want    string
		wantErr string
	}{
		{
			name: "storage classes per external type",
			spec: core.TableSpec{
				Name: "events",
				Columns: []core.ColumnSpec{
					{Name: "id", Type: core.TypeInteger},
					{Name: "amount", Type: core.TypeNumeric},
					{Name: "active", Type: core.TypeBoolean},
					{Name: "created_at", Type: core.TypeTimestamp},
					{Name: "note", Type: core.TypeVarchar},
				},
			},
			want: `CREATE TABLE "events" ("id" INTEGER, "amount" REAL, "active" INTEGER, "created_at" TEXT, "note" TEXT)`,
		},
		{
			name: "reserved word column quoted",
			spec: core.TableSpec{
				Name:    "t",
				Columns: []core.ColumnSpec{{Name: "order", Type: core.TypeVarchar}},
			},
			want: `CREATE TABLE "t" ("order" TEXT)`,
		},
		{
			name: "mixed case table name preserved",
			spec: core.TableSpec{
				Name:    "Customers",
				Columns: []core.ColumnSpec{{Name: "id", Type: core.TypeInteger}},
			},
			want: `CREATE TABLE "Customers" ("id" INTEGER)`,
		},
		{
			name:    "zero columns",
			spec:    core.TableSpec{Name: "empty"},
			wantErr: core.ErrNoColumns.Error(),
		},
		{
			name: "duplicate column names case-insensitive",
			spec: core.TableSpec{
				Name: "t",
				Columns: []core.ColumnSpec{
					{Name: "ID", Type: core.TypeInteger},
					{Name: "id", Type: core.TypeVarchar},
				},
			},
			wantErr: "duplicate column name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.CreateTableSQL(tt.spec)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInsertSQL(t *testing.T) {
	s := New(nil)

	t.Run("parameterized statement and coerced args", func(t *testing.T) {
		query, args := s.InsertSQL(usersSpec())

		assert.Equal(t, `INSERT INTO "users" ("id", "name") VALUES (?, ?)`, query)
		require.Len(t, args, 2)
		assert.Equal(t, []any{int64(1), "ada"}, args[0])
		assert.Equal(t, []any{int64(2), "grace"}, args[1])
	})

	t.Run("missing and extra row keys", func(t *testing.T) {
		spec := core.TableSpec{
			Name: "t",
			Columns: []core.ColumnSpec{
				{Name: "n", Type: core.TypeNumeric},
				{Name: "s", Type: core.TypeVarchar},
			},
			Rows: []core.Row{
				{"s": "only-s", "ignored": "dropped"},
			},
		}

		_, args := s.InsertSQL(spec)
		require.Len(t, args, 1)
		// The missing numeric key takes the storage sentinel, the extra key vanishes.
		assert.Equal(t, []any{float64(0), "only-s"}, args[0])
	})

	t.Run("empty numeric cell stored as zero", func(t *testing.T) {
		spec := core.TableSpec{
			Name:    "t",
			Columns: []core.ColumnSpec{{Name: "n", Type: core.TypeNumeric}},
			Rows:    []core.Row{{"n": ""}},
		}

		_, args := s.InsertSQL(spec)
		assert.Equal(t, []any{float64(0)}, args[0])
	})
}

func TestMaterialize(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and loads eligible tables", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "users" ("id" INTEGER, "name" TEXT)`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO "users" ("id", "name") VALUES (?, ?)`))
		prep.ExpectExec().WithArgs(int64(1), "ada").WillReturnResult(sqlmock.NewResult(1, 1))
		prep.ExpectExec().WithArgs(int64(2), "grace").WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		report := New(nil).Materialize(ctx, db, []core.TableSpec{usersSpec()})

		require.True(t, report.Ok())
		require.Len(t, report.Tables, 1)
		assert.Equal(t, "users", report.Tables[0].Table)
		assert.Equal(t, 2, report.Tables[0].Rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero-column table skipped, siblings proceed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "t" ("id" INTEGER)`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		specs := []core.TableSpec{
			{Name: "attributeless"},
			{Name: "t", Columns: []core.ColumnSpec{{Name: "id", Type: core.TypeInteger}}},
		}

		report := New(nil).Materialize(ctx, db, specs)

		assert.Equal(t, []string{"attributeless"}, report.Skipped)
		require.Len(t, report.Tables, 1)
		assert.True(t, report.Ok())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create failure aborts that table only", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "bad"`)).
			WillReturnError(errors.New("disk I/O error"))
		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "good" ("id" INTEGER)`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		specs := []core.TableSpec{
			{Name: "bad", Columns: []core.ColumnSpec{{Name: "x", Type: core.TypeVarchar}}},
			{Name: "good", Columns: []core.ColumnSpec{{Name: "id", Type: core.TypeInteger}}},
		}

		report := New(nil).Materialize(ctx, db, specs)

		require.Len(t, report.Tables, 2)
		assert.False(t, report.Ok())

		failed := report.Failed()
		require.Len(t, failed, 1)
		assert.Equal(t, "bad", failed[0].Table)
		assert.ErrorContains(t, failed[0].Err, "disk I/O error")

		assert.True(t, report.Tables[1].Ok())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back and drops the table", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "users"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO "users"`))
		prep.ExpectExec().WithArgs(int64(1), "ada").WillReturnError(errors.New("unsupported value"))
		mock.ExpectRollback()
		mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "users"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		report := New(nil).Materialize(ctx, db, []core.TableSpec{usersSpec()})

		require.Len(t, report.Tables, 1)
		require.Error(t, report.Tables[0].Err)
		assert.ErrorContains(t, report.Tables[0].Err, "failed to insert row 0")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
