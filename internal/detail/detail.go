// Package detail assembles the per-coin view: descriptive data and price
// history for a selected timeframe, cached briefly to spare the
// rate-limited provider.
package detail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/coin-tracker/internal/model"
)

// CoinSource fetches coin details and history. *api.Client implements it.
type CoinSource interface {
	GetCoin(ctx context.Context, id string) (*model.CoinDetail, error)
	GetMarketChartForTimeframe(ctx context.Context, id string, tf model.Timeframe) (*model.MarketChart, error)
}

// Config holds detail service configuration.
type Config struct {
	CacheTTL time.Duration // How long successful responses are reused (default: 60s); 0 disables caching
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{CacheTTL: 60 * time.Second}
}

// View is everything the coin page shows.
type View struct {
	Coin      *model.CoinDetail
	Chart     *model.MarketChart
	Timeframe model.Timeframe
	Change    *float64 // Change over Timeframe; nil when the provider reports none
}

// Service loads coin views.
type Service struct {
	source CoinSource
	cfg    Config
	logger *slog.Logger
	cache  *cache.Cache
}

// NewService creates a Service.
func NewService(source CoinSource, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		source: source,
		cfg:    cfg,
		logger: logger,
	}
	if cfg.CacheTTL > 0 {
		s.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return s
}

// Load fetches the detail record and the history for timeframe concurrently.
// Either failure fails the whole view with the client's error preserved.
// An unknown timeframe fails with ErrUnknownTimeframe before any request.
func (s *Service) Load(ctx context.Context, id, timeframe string) (*View, error) {
	tf, err := model.ParseTimeframe(timeframe)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimeframe, timeframe)
	}

	var (
		coin  *model.CoinDetail
		chart *model.MarketChart
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		coin, err = s.coin(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		chart, err = s.chart(gctx, id, tf)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("load coin view failed",
			"coin", id,
			"timeframe", tf.Name,
			"error", err,
		)
		return nil, err
	}

	return &View{
		Coin:      coin,
		Chart:     chart,
		Timeframe: tf,
		Change:    coin.ChangeFor(tf),
	}, nil
}

func (s *Service) coin(ctx context.Context, id string) (*model.CoinDetail, error) {
	key := "coin:" + id
	if v, ok := s.lookup(key); ok {
		return v.(*model.CoinDetail), nil
	}

	coin, err := s.source.GetCoin(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(key, coin)
	return coin, nil
}

func (s *Service) chart(ctx context.Context, id string, tf model.Timeframe) (*model.MarketChart, error) {
	key := "chart:" + id + ":" + tf.Name
	if v, ok := s.lookup(key); ok {
		return v.(*model.MarketChart), nil
	}

	chart, err := s.source.GetMarketChartForTimeframe(ctx, id, tf)
	if err != nil {
		return nil, err
	}
	s.store(key, chart)
	return chart, nil
}

func (s *Service) lookup(key string) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	v, ok := s.cache.Get(key)
	if ok {
		s.logger.Debug("detail cache hit", "key", key)
	}
	return v, ok
}

func (s *Service) store(key string, v any) {
	if s.cache != nil {
		s.cache.SetDefault(key, v)
	}
}

// Flush drops every cached response.
func (s *Service) Flush() {
	if s.cache != nil {
		s.cache.Flush()
	}
}
