package helper

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// LibrarySchemaSQLite creates the library test tables in a SQLite database.
var LibrarySchemaSQLite = []string{
	`CREATE TABLE books (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		price NUMERIC,
		published DATE,
		updated_at DATETIME
	)`,
	`CREATE TABLE loans (
		book_id INTEGER NOT NULL,
		reader TEXT NOT NULL,
		lent_on DATE,
		PRIMARY KEY (reader, book_id)
	)`,
	`CREATE TABLE tags (
		label TEXT,
		weight REAL
	)`,
}

// LibrarySchemaPostgres creates the library test tables in a PostgreSQL database.
var LibrarySchemaPostgres = []string{
	`DROP TABLE IF EXISTS books, loans, tags`,
	`CREATE TABLE books (
		id BIGINT PRIMARY KEY,
		title TEXT NOT NULL,
		price NUMERIC(10, 2),
		published DATE,
		updated_at TIMESTAMP
	)`,
	`CREATE TABLE loans (
		book_id BIGINT NOT NULL,
		reader TEXT NOT NULL,
		lent_on DATE,
		PRIMARY KEY (reader, book_id)
	)`,
	`CREATE TABLE tags (
		label TEXT,
		weight DOUBLE PRECISION
	)`,
}

// GivenStatementsExecuted executes the statements one by one and fails the test on the first error.
func GivenStatementsExecuted(t testing.TB, db *sql.DB, statements ...string) {
	t.Helper()

	for _, statement := range statements {
		_, err := db.ExecContext(context.Background(), statement)
		require.NoError(t, err, "error in arranging test data: %s", statement)
	}
}
