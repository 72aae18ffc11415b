package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/coin-tracker/internal/model"
)

const insertSnapshotSQL = `
	INSERT INTO price_snapshots (fetch_id, fetched_at, coin_id, symbol, rank, price, market_cap, volume, change_24h)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (coin_id, fetched_at) DO NOTHING
`

// SnapshotWriter writes every fetched batch to the price_snapshots table.
type SnapshotWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Input from the store listener
	input chan snapshotRow

	// Database
	db BatchSender

	// Batching
	batch   []snapshotRow
	batchMu sync.Mutex

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewSnapshotWriter creates a new SnapshotWriter.
func NewSnapshotWriter(cfg WriterConfig, db BatchSender, logger *slog.Logger) *SnapshotWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.BufferSize < 0 {
		cfg.BufferSize = 0
	}
	return &SnapshotWriter{
		cfg:    cfg,
		input:  make(chan snapshotRow, cfg.BufferSize),
		db:     db,
		logger: logger,
		batch:  make([]snapshotRow, 0, cfg.BatchSize),
	}
}

// HandleBatch queues the rows of a fetched batch without blocking. It is
// meant to be registered with store.Subscribe.
func (w *SnapshotWriter) HandleBatch(b model.Batch) {
	var dropped int64
	for _, inst := range b.Instruments {
		select {
		case w.input <- w.transform(b, inst):
		default:
			dropped++
		}
	}

	if dropped > 0 {
		w.batchMu.Lock()
		w.metrics.Dropped += dropped
		w.batchMu.Unlock()

		w.logger.Warn("snapshot buffer full, rows dropped",
			"fetch_id", b.ID,
			"dropped", dropped,
		)
	}
}

// Start begins consuming rows and writing to the database.
func (w *SnapshotWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("snapshot writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop shuts down the writer, writing queued rows before it returns.
func (w *SnapshotWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping snapshot writer")

	if w.cancel != nil {
		w.cancel()
	}

	// Wait for goroutines
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("snapshot writer stop timed out")
		return ctx.Err()
	}

	// Drain and final flush
	w.drain()
	w.flush(ctx)

	w.logger.Info("snapshot writer stopped", "stats", w.Stats())
	return nil
}

// Stats returns current metrics.
func (w *SnapshotWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop reads queued rows and accumulates batches.
func (w *SnapshotWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case row := <-w.input:
			w.handleRow(row)
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *SnapshotWriter) flushLoop() {
	defer w.wg.Done()

	if w.cfg.FlushInterval <= 0 {
		return
	}

	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.flush(w.ctx)
		}
	}
}

// drain moves rows still queued into the batch.
func (w *SnapshotWriter) drain() {
	for {
		select {
		case row := <-w.input:
			w.batchMu.Lock()
			w.batch = append(w.batch, row)
			w.batchMu.Unlock()
		default:
			return
		}
	}
}

// handleRow adds a row to the batch, flushing when it is full.
func (w *SnapshotWriter) handleRow(row snapshotRow) {
	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(w.ctx)
	}
}

// transform converts one instrument of a batch to a snapshotRow.
func (w *SnapshotWriter) transform(b model.Batch, inst model.Instrument) snapshotRow {
	row := snapshotRow{
		FetchID:   b.ID.String(),
		FetchedAt: b.FetchedAt,
		CoinID:    inst.ID,
		Symbol:    inst.Symbol,
		Price:     inst.CurrentPrice.String(),
		MarketCap: inst.MarketCap.String(),
		Volume:    inst.TotalVolume.String(),
		Change24h: inst.Change24h,
	}
	if inst.MarketCapRank > 0 {
		rank := inst.MarketCapRank
		row.Rank = &rank
	}
	return row
}

// flush writes the current batch to the database.
func (w *SnapshotWriter) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]snapshotRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(ctx, batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed snapshots",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *SnapshotWriter) batchInsert(ctx context.Context, rows []snapshotRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertSnapshotSQL,
			r.FetchID, r.FetchedAt, r.CoinID, r.Symbol, r.Rank,
			r.Price, r.MarketCap, r.Volume, r.Change24h,
		)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
