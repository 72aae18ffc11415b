// Package store holds the refreshed list of top coins and the view state
// derived from it: search term, favorites, loading and error status.
//
// A Store is owned by its caller. cmd/tracker creates one, hands it to the
// poller for periodic refreshes and to the HTTP server for reads.
package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/rickgao/coin-tracker/internal/api"
	"github.com/rickgao/coin-tracker/internal/model"
)

// MarketSource fetches one page of instruments. *api.Client implements it.
type MarketSource interface {
	GetMarkets(ctx context.Context, opts api.MarketsOptions) ([]model.Instrument, error)
}

// Listener is called after every successful fetch. The batch must be
// treated as read-only.
type Listener func(batch model.Batch)

// Config holds store configuration.
type Config struct {
	Markets      api.MarketsOptions // Request issued by Fetch
	DisplayLimit int                // Max instruments shown with no search term; 0 = all
	FetchTimeout time.Duration      // Bound on one shared fetch; 0 = none
}

// DefaultFetchTimeout covers two provider attempts and the retry delay.
const DefaultFetchTimeout = 30 * time.Second

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Markets: api.MarketsOptions{
			Page:      1,
			PerPage:   api.DefaultPerPage,
			Order:     api.DefaultOrder,
			Sparkline: true,
		},
		FetchTimeout: DefaultFetchTimeout,
	}
}

// Snapshot is a point-in-time copy of the store state.
type Snapshot struct {
	Instruments []model.Instrument
	Loading     bool
	Err         string   // User-facing message; empty when the last fetch succeeded
	ErrKind     api.Kind // Kind of the last failure; empty when none
	SearchTerm  string
	FetchID     uuid.UUID // Batch currently held; uuid.Nil before the first success
	UpdatedAt   time.Time
}

// Store is safe for concurrent use.
type Store struct {
	source MarketSource
	cfg    Config
	logger *slog.Logger

	group singleflight.Group

	mu          sync.RWMutex
	instruments []model.Instrument
	loading     bool
	err         string
	errKind     api.Kind
	searchTerm  string
	fetchID     uuid.UUID
	updatedAt   time.Time
	favorites   map[string]struct{}

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// New creates a Store. The list starts empty and is filled by Fetch.
func New(source MarketSource, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		source:    source,
		cfg:       cfg,
		logger:    logger,
		favorites: make(map[string]struct{}),
		listeners: make(map[int]Listener),
	}
}

// Fetch refreshes the instrument list. On failure the previous list is
// kept and the error is recorded in the state; Fetch itself never fails.
//
// A call made while another Fetch is in flight issues no request. It waits
// for the running fetch and observes its outcome.
//
// The request is shared by every waiting caller, so it does not inherit the
// caller's cancellation or deadline; it is bounded by Config.FetchTimeout
// instead. A caller whose ctx ends stops waiting while the fetch completes.
func (s *Store) Fetch(ctx context.Context) {
	ch := s.group.DoChan("markets", func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if s.cfg.FetchTimeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, s.cfg.FetchTimeout)
			defer cancel()
		}
		s.fetch(fetchCtx)
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("fetch coalesced with in-flight request")
		}
	case <-ctx.Done():
		s.logger.Debug("fetch caller gone, request continues", "error", ctx.Err())
	}
}

func (s *Store) fetch(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.errKind = ""
	s.mu.Unlock()

	start := time.Now()
	instruments, err := s.source.GetMarkets(ctx, s.cfg.Markets)

	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.err = api.UserMessage(err)
		s.errKind = api.KindOf(err)
		held := len(s.instruments)
		s.mu.Unlock()

		s.logger.Warn("fetch failed",
			"error", err,
			"kind", api.KindOf(err),
			"held", held,
		)
		return
	}

	batch := model.Batch{
		ID:          uuid.New(),
		FetchedAt:   time.Now().UTC(),
		Instruments: slices.Clone(instruments),
	}

	s.mu.Lock()
	s.loading = false
	s.instruments = instruments
	s.fetchID = batch.ID
	s.updatedAt = batch.FetchedAt
	s.mu.Unlock()

	s.logger.Debug("fetch complete",
		"fetch_id", batch.ID,
		"instruments", len(instruments),
		"duration", time.Since(start),
	)

	s.notify(batch)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Instruments: slices.Clone(s.instruments),
		Loading:     s.loading,
		Err:         s.err,
		ErrKind:     s.errKind,
		SearchTerm:  s.searchTerm,
		FetchID:     s.fetchID,
		UpdatedAt:   s.updatedAt,
	}
}

// SetSearchTerm replaces the search term. It never fetches.
func (s *Store) SetSearchTerm(term string) {
	s.mu.Lock()
	s.searchTerm = term
	s.mu.Unlock()
}

// SearchTerm returns the current search term.
func (s *Store) SearchTerm() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchTerm
}

// Filtered returns FilterBy applied to the store's search term.
func (s *Store) Filtered() []model.Instrument {
	return s.FilterBy(s.SearchTerm())
}

// FilterBy returns the held instruments whose name or symbol contains term,
// ignoring case, in held order. An empty term yields the full list,
// truncated to DisplayLimit when one is set. The store's own search term is
// neither read nor changed.
func (s *Store) FilterBy(term string) []model.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if term == "" {
		list := s.instruments
		if s.cfg.DisplayLimit > 0 && len(list) > s.cfg.DisplayLimit {
			list = list[:s.cfg.DisplayLimit]
		}
		return slices.Clone(list)
	}

	out := make([]model.Instrument, 0)
	for _, inst := range s.instruments {
		if inst.Matches(term) {
			out = append(out, inst)
		}
	}
	return out
}

// Len returns the number of held instruments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instruments)
}

// Get returns a held instrument by id.
func (s *Store) Get(id string) (model.Instrument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inst := range s.instruments {
		if inst.ID == id {
			return inst, true
		}
	}
	return model.Instrument{}, false
}

// Subscribe registers l for successful fetches and returns a function that
// removes it. Listeners run on the fetching goroutine and must not block.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store) notify(batch model.Batch) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(batch)
	}
}
