package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickgao/coin-tracker/internal/api"
	"github.com/rickgao/coin-tracker/internal/config"
	"github.com/rickgao/coin-tracker/internal/database"
	"github.com/rickgao/coin-tracker/internal/detail"
	"github.com/rickgao/coin-tracker/internal/poller"
	"github.com/rickgao/coin-tracker/internal/server"
	"github.com/rickgao/coin-tracker/internal/store"
	"github.com/rickgao/coin-tracker/internal/version"
	"github.com/rickgao/coin-tracker/internal/writer"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	flag.Parse()

	// .env is optional; values referenced as ${VAR} in the config file.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		slog.Error("invalid log config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	logger.Info("starting tracker",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("tracker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("tracker stopped")
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts)), nil
}

func run(ctx context.Context, cfg *config.TrackerConfig, logger *slog.Logger) error {
	client := api.NewClient(
		cfg.API.BaseURL,
		cfg.API.APIKey,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetryDelay(cfg.API.RetryDelay),
	)

	st := store.New(client, store.Config{
		Markets: api.MarketsOptions{
			Page:      cfg.Store.Page,
			PerPage:   cfg.Store.PerPage,
			Sparkline: cfg.Store.Sparkline,
		},
		DisplayLimit: cfg.Store.DisplayLimit,
		FetchTimeout: store.DefaultFetchTimeout,
	}, logger)

	if cfg.Database.Enabled {
		stopWriter, err := startWriter(ctx, cfg, st, logger)
		if err != nil {
			return err
		}
		defer stopWriter()
	}

	p := poller.New(poller.Config{
		Interval: cfg.Poller.Interval,
		Timeout:  cfg.Poller.Timeout,
	}, st, logger)
	if err := p.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer stopCancel()
		p.Stop(stopCtx)
	}()

	views := detail.NewService(client, detail.Config{CacheTTL: cfg.Detail.CacheTTL}, logger)

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = cfg.Server.Addr
	srvCfg.ReadTimeout = cfg.Server.ReadTimeout
	srvCfg.WriteTimeout = cfg.Server.WriteTimeout
	srvCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	srvCfg.AllowedOrigins = cfg.Server.AllowedOrigins

	srv := server.New(srvCfg, st, views, client, logger)

	logger.Info("tracker running",
		"addr", cfg.Server.Addr,
		"poll_interval", cfg.Poller.Interval,
		"per_page", cfg.Store.PerPage,
		"database", cfg.Database.Enabled,
	)

	return srv.ListenAndServe(ctx)
}

// startWriter connects to the database, applies migrations when enabled and
// records every successful fetch. The returned func flushes and closes.
func startWriter(ctx context.Context, cfg *config.TrackerConfig, st *store.Store, logger *slog.Logger) (func(), error) {
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, database.BuildConnString(cfg.Database), logger); err != nil {
			return nil, err
		}
	}

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected")

	w := writer.NewSnapshotWriter(writer.WriterConfig{
		BatchSize:     cfg.Writer.BatchSize,
		FlushInterval: cfg.Writer.FlushInterval,
		BufferSize:    cfg.Writer.BufferSize,
	}, pool, logger)
	if err := w.Start(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	unsubscribe := st.Subscribe(w.HandleBatch)

	return func() {
		unsubscribe()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		if err := w.Stop(stopCtx); err != nil {
			logger.Warn("snapshot writer stop", "error", err)
		}
		stats := w.Stats()
		logger.Info("snapshot writer stopped",
			"inserts", stats.Inserts,
			"conflicts", stats.Conflicts,
			"errors", stats.Errors,
			"dropped", stats.Dropped,
		)
		pool.Close()
	}, nil
}
