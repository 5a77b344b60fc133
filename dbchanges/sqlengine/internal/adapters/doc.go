// Package adapters provide database adapter implementations for capturing snapshots.
//
// This package implements the adapter pattern to support multiple database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters hand back result sets through the common
// DBRows interface: the column names with their database type names, and every row as
// a slice of untyped driver values, ready to be classified.
package adapters
