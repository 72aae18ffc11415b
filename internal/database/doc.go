// Package database provides the connection pool and schema migrations for
// the optional price snapshot store.
//
// Snapshots go to a single PostgreSQL or TimescaleDB database. The schema
// lives in migrations/ and is embedded into the binary; goose applies it.
package database
