package config

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

const (
	sqliteDriverName = "sqlite"
	sqliteInMemory   = ":memory:"
)

// SQLiteInMemoryDB creates a private in-memory SQLite database.
// It is limited to one connection, as every connection to ":memory:" would see its own database.
func SQLiteInMemoryDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, sqliteInMemory)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}

// SQLiteInMemorySQLX creates a private in-memory SQLite database wrapped by sqlx.
func SQLiteInMemorySQLX(ctx context.Context) (*sqlx.DB, error) {
	db, err := SQLiteInMemoryDB(ctx)
	if err != nil {
		return nil, err
	}

	return sqlx.NewDb(db, sqliteDriverName), nil
}
