package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rickgao/coin-tracker/internal/detail"
	"github.com/rickgao/coin-tracker/internal/store"
)

// ViewLoader loads a coin page. *detail.Service implements it.
type ViewLoader interface {
	Load(ctx context.Context, id, timeframe string) (*detail.View, error)
}

// Pinger checks provider reachability. *api.Client implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds HTTP server configuration.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string // Websocket origins; "*" allows any, empty allows same host
	PingTimeout     time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		PingTimeout:     3 * time.Second,
	}
}

// Server serves the coin tracker API.
type Server struct {
	cfg    Config
	store  *store.Store
	views  ViewLoader
	pinger Pinger
	hub    *Hub
	logger *slog.Logger

	startedAt   time.Time
	unsubscribe func()
}

// New creates a Server and subscribes its websocket hub to the store.
// pinger may be nil, in which case /health skips the provider check.
func New(cfg Config, st *store.Store, views ViewLoader, pinger Pinger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PingTimeout == 0 {
		cfg.PingTimeout = 3 * time.Second
	}

	s := &Server{
		cfg:       cfg,
		store:     st,
		views:     views,
		pinger:    pinger,
		logger:    logger,
		startedAt: time.Now(),
	}
	s.hub = NewHub(cfg.AllowedOrigins, s.stateMessage, logger)
	s.unsubscribe = st.Subscribe(s.hub.HandleBatch)

	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP handler with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/coins", s.handleCoins)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/coins/{id}", s.handleCoin)
	mux.HandleFunc("GET /api/favorites", s.handleFavorites)
	mux.HandleFunc("PUT /api/favorites/{id}", s.handleSetFavorite)
	mux.HandleFunc("DELETE /api/favorites/{id}", s.handleUnsetFavorite)
	mux.HandleFunc("GET /ws", s.hub.ServeWS)

	return s.logRequests(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) close() {
	s.unsubscribe()
	s.hub.Close()
}

// logRequests logs every request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
