// Package config provides database connections for the tests of the sqlengine package.
//
// SQLite connections run fully in memory and are always available.
// PostgreSQL connections require DBCHANGES_POSTGRES_DSN (and DBCHANGES_POSTGRES_REPLICA_DSN for replica tests);
// tests needing them are skipped when the variables are not set.
package config
