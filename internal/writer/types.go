package writer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// WriterConfig contains configuration for batch writers.
type WriterConfig struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration

	// BufferSize is the number of rows that may wait for the writer.
	// Rows arriving when the buffer is full are dropped.
	BufferSize int
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     500,
		FlushInterval: 5 * time.Second,
		BufferSize:    5000,
	}
}

// BatchSender sends a queued batch of statements. *pgxpool.Pool implements it.
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// snapshotRow represents a row for the price_snapshots table.
// Numeric columns are carried as decimal strings.
type snapshotRow struct {
	FetchID   string
	FetchedAt time.Time
	CoinID    string
	Symbol    string
	Rank      *int // nil when the provider gave no rank
	Price     string
	MarketCap string
	Volume    string
	Change24h *float64
}

// WriterMetrics holds metrics for a writer.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
	Dropped   int64
}
