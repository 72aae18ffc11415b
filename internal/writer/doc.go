// Package writer records refreshed coin lists to the database.
//
// The snapshot writer subscribes to the store, turns every successful
// batch into one row per coin and inserts them in pgx batches. Writes are
// append-only: a row that already exists for (coin_id, fetched_at) is
// skipped and counted as a conflict. Prices are stored as NUMERIC, never
// as floats.
package writer
