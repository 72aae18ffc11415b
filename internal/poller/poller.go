package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Refresher is refreshed on every tick. *store.Store implements it.
type Refresher interface {
	Fetch(ctx context.Context)
}

// RefresherFunc is a function adapter for Refresher.
type RefresherFunc func(ctx context.Context)

func (f RefresherFunc) Fetch(ctx context.Context) {
	f(ctx)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Poll interval (default: 60s)
	Timeout  time.Duration // Per-poll timeout (default: 15s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 60 * time.Second,
		Timeout:  15 * time.Second,
	}
}

// Poller periodically refreshes a Refresher.
type Poller struct {
	cfg    Config
	target Refresher
	logger *slog.Logger

	polls atomic.Int64

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, target Refresher, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:    cfg,
		target: target,
		logger: logger,
	}
}

// Start refreshes immediately and then every Interval until Stop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return nil
	}
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run(p.ctx)

	p.logger.Info("market poller started",
		"interval", p.cfg.Interval,
		"timeout", p.cfg.Timeout,
	)

	return nil
}

// Stop cancels the loop and waits for an in-flight poll to finish. No
// refresh is started once Stop returns. Stop is safe to call more than once
// and before Start.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("market poller stopped", "polls", p.polls.Load())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Polls returns the number of completed polls.
func (p *Poller) Polls() int64 {
	return p.polls.Load()
}

// run is the main polling loop.
func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Stop may race with the tick.
			if ctx.Err() != nil {
				return
			}
			p.poll(ctx)
		}
	}
}

// poll runs one refresh bounded by the per-poll timeout.
func (p *Poller) poll(parent context.Context) {
	start := time.Now()

	ctx := parent
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, p.cfg.Timeout)
		defer cancel()
	}

	p.target.Fetch(ctx)
	n := p.polls.Add(1)

	p.logger.Debug("poll complete",
		"poll", n,
		"duration", time.Since(start),
	)
}
