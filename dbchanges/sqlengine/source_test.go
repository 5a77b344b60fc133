package sqlengine_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dbchanges-go/dbchanges"
	. "github.com/AntonStoeckl/dbchanges-go/dbchanges/sqlengine" //nolint:revive
	"github.com/AntonStoeckl/dbchanges-go/testutil/sqlengine/config"
	"github.com/AntonStoeckl/dbchanges-go/testutil/sqlengine/helper"
)

func givenSQLiteLibrary(t *testing.T) *sql.DB {
	t.Helper()

	db, err := config.SQLiteInMemoryDB(context.Background())
	require.NoError(t, err, "error in arranging test data")
	t.Cleanup(func() { _ = db.Close() })

	helper.GivenStatementsExecuted(t, db, helper.LibrarySchemaSQLite...)
	helper.GivenStatementsExecuted(t, db,
		`INSERT INTO books (id, title, price, published, updated_at) VALUES
			(1, 'Dune', 9.5, '1965-08-01', '2024-01-02 10:00:00'),
			(2, 'Emma', 12, '1815-12-23', NULL)`,
		`INSERT INTO loans (book_id, reader, lent_on) VALUES (1, 'ann', '2024-01-01')`,
		`INSERT INTO tags (label, weight) VALUES ('scifi', 1.0), ('classic', 2.0)`,
	)

	return db
}

func givenSQLiteSource(t *testing.T, db *sql.DB, options ...Option) Source {
	t.Helper()

	source, err := NewSourceFromSQLDB(db, append([]Option{WithDialect(DialectSQLite)}, options...)...)
	require.NoError(t, err, "error in arranging test data")

	return source
}

func givenTable(t *testing.T, name string, options ...TableOption) Table {
	t.Helper()

	table, err := NewTable(name, options...)
	require.NoError(t, err, "error in arranging test data")

	return table
}

func cell(t *testing.T, snapshot dbchanges.Snapshot, rowIndex int, column string) dbchanges.Value {
	t.Helper()

	row, err := snapshot.Row(rowIndex)
	require.NoError(t, err)

	value, err := row.ValueOf(column)
	require.NoError(t, err)

	return value
}

func Test_NewSource_When_Connection_Is_Nil(t *testing.T) {
	_, err := NewSourceFromPGXPool(nil)
	assert.ErrorIs(t, err, dbchanges.ErrNilDatabaseConnection)

	_, err = NewSourceFromPGXPoolWithReplica(nil, &pgxpool.Pool{})
	assert.ErrorIs(t, err, dbchanges.ErrNilDatabaseConnection)

	_, err = NewSourceFromSQLDB(nil)
	assert.ErrorIs(t, err, dbchanges.ErrNilDatabaseConnection)

	_, err = NewSourceFromSQLX(nil)
	assert.ErrorIs(t, err, dbchanges.ErrNilDatabaseConnection)
}

func Test_NewSource_When_Option_Is_Invalid(t *testing.T) {
	db := givenSQLiteLibrary(t)

	testCases := []struct {
		name        string
		option      Option
		expectedErr error
	}{
		{name: "unknown dialect", option: WithDialect("mysql"), expectedErr: dbchanges.ErrUnsupportedDialect},
		{name: "zero concurrency", option: WithCaptureConcurrency(0), expectedErr: dbchanges.ErrInvalidConcurrency},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSourceFromSQLDB(db, tc.option)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_NewTable_And_NewRequest_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		build       func() error
		expectedErr error
	}{
		{
			name:        "empty table name",
			build:       func() error { _, err := NewTable(""); return err },
			expectedErr: dbchanges.ErrEmptyTableName,
		},
		{
			name:        "empty column to check",
			build:       func() error { _, err := NewTable("books", WithColumnsToCheck("id", "")); return err },
			expectedErr: dbchanges.ErrEmptyColumnName,
		},
		{
			name:        "empty column to exclude",
			build:       func() error { _, err := NewTable("books", WithColumnsToExclude("")); return err },
			expectedErr: dbchanges.ErrEmptyColumnName,
		},
		{
			name:        "empty column to order",
			build:       func() error { _, err := NewTable("books", WithColumnsToOrder("")); return err },
			expectedErr: dbchanges.ErrEmptyColumnName,
		},
		{
			name:        "empty primary key of table",
			build:       func() error { _, err := NewTable("books", WithPrimaryKey("")); return err },
			expectedErr: dbchanges.ErrEmptyPrimaryKeyName,
		},
		{
			name:        "empty request name",
			build:       func() error { _, err := NewRequest("", "SELECT 1"); return err },
			expectedErr: dbchanges.ErrEmptyDataName,
		},
		{
			name:        "empty query",
			build:       func() error { _, err := NewRequest("r", ""); return err },
			expectedErr: dbchanges.ErrEmptyQuery,
		},
		{
			name:        "empty primary key of request",
			build:       func() error { _, err := NewRequest("r", "SELECT 1", WithPrimaryKeyColumns("")); return err },
			expectedErr: dbchanges.ErrEmptyPrimaryKeyName,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.build(), tc.expectedErr)
		})
	}
}

func Test_ListTables(t *testing.T) {
	source := givenSQLiteSource(t, givenSQLiteLibrary(t))

	tables, err := source.ListTables(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"books", "loans", "tags"}, tables)
}

func Test_CaptureTable_Reads_Columns_Primary_Key_And_Typed_Values(t *testing.T) {
	source := givenSQLiteSource(t, givenSQLiteLibrary(t))

	snapshot, err := source.CaptureTable(context.Background(), givenTable(t, "books"))

	require.NoError(t, err)
	assert.Equal(t, "books", snapshot.DataName())
	assert.Equal(t, dbchanges.TableKind, snapshot.Kind())
	assert.Equal(t, []string{"id", "title", "price", "published", "updated_at"}, snapshot.ColumnNames())
	assert.Equal(t, []string{"id"}, snapshot.PrimaryKeyNames())
	require.Equal(t, 2, snapshot.RowCount())

	assert.Equal(t, "1", cell(t, snapshot, 0, "id").String())
	assert.Equal(t, "Dune", cell(t, snapshot, 0, "title").String())
	assert.Equal(t, dbchanges.TypeNumber, cell(t, snapshot, 0, "price").Type())
	assert.Equal(t, "9.5", cell(t, snapshot, 0, "price").String())
	assert.Equal(t, dbchanges.TypeDate, cell(t, snapshot, 0, "published").Type())
	assert.Equal(t, "1965-08-01", cell(t, snapshot, 0, "published").String())
	assert.Equal(t, dbchanges.TypeDateTime, cell(t, snapshot, 0, "updated_at").Type())

	assert.Equal(t, "Emma", cell(t, snapshot, 1, "title").String())
	assert.True(t, cell(t, snapshot, 1, "updated_at").IsNull())

	equal, err := dbchanges.AreEqual(cell(t, snapshot, 1, "price"), 12.0)
	require.NoError(t, err)
	assert.True(t, equal)
}

func Test_CaptureTable_Finds_Table_Ignoring_Case_And_Reads_Composite_Primary_Key(t *testing.T) {
	source := givenSQLiteSource(t, givenSQLiteLibrary(t))

	snapshot, err := source.Capture(context.Background(), givenTable(t, "LOANS"))

	require.NoError(t, err)
	assert.Equal(t, "LOANS", snapshot.DataName())
	assert.Equal(t, []string{"reader", "book_id"}, snapshot.PrimaryKeyNames())
	assert.Equal(t, 1, snapshot.RowCount())
}

func Test_CaptureTable_With_Column_Selection(t *testing.T) {
	db := givenSQLiteLibrary(t)
	source := givenSQLiteSource(t, db)
	ctx := context.Background()

	t.Run("columns to check keep the table order", func(t *testing.T) {
		snapshot, err := source.CaptureTable(ctx, givenTable(t, "books", WithColumnsToCheck("TITLE", "id")))

		require.NoError(t, err)
		assert.Equal(t, []string{"id", "title"}, snapshot.ColumnNames())
		assert.Equal(t, []string{"id"}, snapshot.PrimaryKeyNames())
	})

	t.Run("excluding a key column drops the primary key", func(t *testing.T) {
		snapshot, err := source.CaptureTable(ctx, givenTable(t, "books", WithColumnsToExclude("id", "updated_at")))

		require.NoError(t, err)
		assert.Equal(t, []string{"title", "price", "published"}, snapshot.ColumnNames())
		assert.Empty(t, snapshot.PrimaryKeyNames())
	})

	t.Run("primary key override", func(t *testing.T) {
		snapshot, err := source.CaptureTable(ctx, givenTable(t, "tags", WithPrimaryKey("label")))

		require.NoError(t, err)
		assert.Equal(t, []string{"label"}, snapshot.PrimaryKeyNames())
	})

	t.Run("columns to order", func(t *testing.T) {
		snapshot, err := source.CaptureTable(ctx, givenTable(t, "tags", WithColumnsToOrder("label")))

		require.NoError(t, err)
		assert.Equal(t, "classic", cell(t, snapshot, 0, "label").String())
		assert.Equal(t, "scifi", cell(t, snapshot, 1, "label").String())
	})
}

func Test_CaptureTable_When_Table_Or_Column_Is_Unknown(t *testing.T) {
	source := givenSQLiteSource(t, givenSQLiteLibrary(t))
	ctx := context.Background()

	testCases := []struct {
		name        string
		table       Table
		expectedErr []error
	}{
		{
			name:        "unknown table",
			table:       givenTable(t, "members"),
			expectedErr: []error{dbchanges.ErrTableNotFound, dbchanges.ErrIntrospectionFailed},
		},
		{
			name:        "unknown column to check",
			table:       givenTable(t, "books", WithColumnsToCheck("isbn")),
			expectedErr: []error{dbchanges.ErrColumnNotFound},
		},
		{
			name:        "unknown column to exclude",
			table:       givenTable(t, "books", WithColumnsToExclude("isbn")),
			expectedErr: []error{dbchanges.ErrColumnNotFound},
		},
		{
			name:        "unknown column to order",
			table:       givenTable(t, "books", WithColumnsToOrder("isbn")),
			expectedErr: []error{dbchanges.ErrColumnNotFound},
		},
		{
			name:        "unknown primary key column",
			table:       givenTable(t, "books", WithPrimaryKey("isbn")),
			expectedErr: []error{dbchanges.ErrColumnNotFound},
		},
		{
			name:        "every column excluded",
			table:       givenTable(t, "tags", WithColumnsToExclude("label", "weight")),
			expectedErr: []error{dbchanges.ErrColumnNotFound},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := source.CaptureTable(ctx, tc.table)

			assert.ErrorIs(t, err, dbchanges.ErrCapturingSnapshotFailed)
			for _, expectedErr := range tc.expectedErr {
				assert.ErrorIs(t, err, expectedErr)
			}
		})
	}
}

func Test_CaptureRequest(t *testing.T) {
	db := givenSQLiteLibrary(t)
	source := givenSQLiteSource(t, db)

	request, err := NewRequest(
		"cheap books",
		"SELECT id, title FROM books WHERE price < ? ORDER BY id",
		WithParameters(10),
		WithPrimaryKeyColumns("ID"),
	)
	require.NoError(t, err)

	snapshot, err := source.Capture(context.Background(), request)

	require.NoError(t, err)
	assert.Equal(t, "cheap books", snapshot.DataName())
	assert.Equal(t, dbchanges.RequestKind, snapshot.Kind())
	assert.Equal(t, []string{"id", "title"}, snapshot.ColumnNames())
	assert.Equal(t, []string{"id"}, snapshot.PrimaryKeyNames())
	require.Equal(t, 1, snapshot.RowCount())
	assert.Equal(t, "Dune", cell(t, snapshot, 0, "title").String())
}

func Test_CaptureRequest_When_Query_Fails(t *testing.T) {
	source := givenSQLiteSource(t, givenSQLiteLibrary(t))

	request, err := NewRequest("broken", "SELECT nope FROM nowhere")
	require.NoError(t, err)

	_, err = source.CaptureRequest(context.Background(), request)

	assert.ErrorIs(t, err, dbchanges.ErrCapturingSnapshotFailed)
	assert.ErrorIs(t, err, dbchanges.ErrQueryingFailed)
}

func Test_CaptureRequest_When_Primary_Key_Is_Not_A_Result_Column(t *testing.T) {
	source := givenSQLiteSource(t, givenSQLiteLibrary(t))

	request, err := NewRequest("titles", "SELECT title FROM books", WithPrimaryKeyColumns("id"))
	require.NoError(t, err)

	_, err = source.CaptureRequest(context.Background(), request)

	assert.ErrorIs(t, err, dbchanges.ErrCapturingSnapshotFailed)
	assert.ErrorIs(t, err, dbchanges.ErrUnknownPrimaryKeyColumn)
}

func Test_Capture_With_SQLX_And_Upper_Case_Letter_Case(t *testing.T) {
	db, err := config.SQLiteInMemorySQLX(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	helper.GivenStatementsExecuted(t, db.DB, helper.LibrarySchemaSQLite...)
	helper.GivenStatementsExecuted(t, db.DB, `INSERT INTO tags (label, weight) VALUES ('scifi', 1.5)`)

	upper := dbchanges.NewLetterCase(dbchanges.UpperCase, dbchanges.IgnoreCase)
	source, err := NewSourceFromSQLX(
		db,
		WithDialect(DialectSQLite),
		WithTableLetterCase(upper),
		WithColumnLetterCase(upper),
		WithPrimaryKeyLetterCase(upper),
	)
	require.NoError(t, err)

	snapshot, err := source.CaptureTable(context.Background(), givenTable(t, "tags"))

	require.NoError(t, err)
	assert.Equal(t, "TAGS", snapshot.DataName())
	assert.Equal(t, []string{"LABEL", "WEIGHT"}, snapshot.ColumnNames())
	assert.Equal(t, "1.5", cell(t, snapshot, 0, "weight").String())

	request, err := NewRequest("weights", "SELECT weight FROM tags WHERE label = ?", WithParameters("scifi"))
	require.NoError(t, err)

	requested, err := source.CaptureRequest(context.Background(), request)

	require.NoError(t, err)
	assert.Equal(t, 1, requested.RowCount())
}
