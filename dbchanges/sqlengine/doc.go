// Package sqlengine captures dbchanges Snapshots from SQL databases and tracks Changes between two points in time.
//
// A Source wraps a pgx Pool, a database/sql DB or a sqlx DB. Statements are built with goqu for
// the PostgreSQL dialect (default) or the SQLite dialect:
//
//	source, err := sqlengine.NewSourceFromPGXPool(pool, sqlengine.WithLogger(slog.Default()))
//
//	books, _ := sqlengine.NewTable("books", sqlengine.WithColumnsToExclude("updated_at"))
//	lent, _ := sqlengine.NewRequest("lent books", "SELECT b.id, b.title FROM books b JOIN loans l ON l.book_id = b.id")
//
//	tracker, err := source.Track(books, lent)
//	err = tracker.SetStartPointNow(ctx)
//	// ... exercise the code under test ...
//	err = tracker.SetEndPointNow(ctx)
//	changes, err := tracker.Changes(ctx)
//
// Table columns and primary keys are read from the database metadata (information_schema for PostgreSQL,
// sqlite_master and pragma_table_info for SQLite). Captures of one point run concurrently,
// bounded by WithCaptureConcurrency.
package sqlengine
