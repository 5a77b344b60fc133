package adapters

import "context"

// DBAdapter defines the interface for database operations needed to capture snapshots.
type DBAdapter interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
}

// Column describes one column of a result set.
type Column struct {
	Name             string
	DatabaseTypeName string
}

// DBRows defines the interface for query result rows of unknown shape.
type DBRows interface {
	Columns() ([]Column, error)
	Next() bool
	Values() ([]any, error)
	Err() error
	Close() error
}
