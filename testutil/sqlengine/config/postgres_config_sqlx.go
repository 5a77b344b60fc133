package config

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// PostgresSQLX creates a connected *sqlx.DB for the given DSN using lib/pq.
func PostgresSQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := PostgresSQLDB(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return sqlx.NewDb(db, "postgres"), nil
}
