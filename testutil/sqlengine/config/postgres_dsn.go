package config

import "os"

const (
	envPostgresDSN        = "DBCHANGES_POSTGRES_DSN"
	envPostgresReplicaDSN = "DBCHANGES_POSTGRES_REPLICA_DSN"
)

// PostgresDSN returns the DSN of the test database and whether it is configured.
func PostgresDSN() (string, bool) {
	return os.LookupEnv(envPostgresDSN)
}

// PostgresReplicaDSN returns the DSN of a replica of the test database and whether it is configured.
func PostgresReplicaDSN() (string, bool) {
	return os.LookupEnv(envPostgresReplicaDSN)
}
