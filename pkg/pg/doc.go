// Package pg provides the PostgreSQL connection pool and migration helpers
// behind the Postgres-backed usage store.
package pg
