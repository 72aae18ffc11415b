package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/rickgao/coin-tracker/internal/api"
	"github.com/rickgao/coin-tracker/internal/detail"
	"github.com/rickgao/coin-tracker/internal/model"
	"github.com/rickgao/coin-tracker/internal/store"
)

type fakeMarkets struct {
	mu          sync.Mutex
	instruments []model.Instrument
	err         error
	calls       atomic.Int32
}

func (f *fakeMarkets) GetMarkets(ctx context.Context, opts api.MarketsOptions) ([]model.Instrument, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.instruments, nil
}

func (f *fakeMarkets) set(list []model.Instrument, err error) {
	f.mu.Lock()
	f.instruments, f.err = list, err
	f.mu.Unlock()
}

type fakeViews struct {
	view *detail.View
	err  error
}

func (f *fakeViews) Load(ctx context.Context, id, timeframe string) (*detail.View, error) {
	return f.view, f.err
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func coins() []model.Instrument {
	return []model.Instrument{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: decimal.NewFromInt(43000), MarketCap: decimal.NewFromInt(840_000_000_000), MarketCapRank: 1, Change24h: model.Float64(1.5)},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: decimal.NewFromInt(2500), MarketCapRank: 2, Change24h: model.Float64(-2)},
		{ID: "wrapped-bitcoin", Symbol: "wbtc", Name: "Wrapped Bitcoin", CurrentPrice: decimal.NewFromInt(42990), MarketCapRank: 15},
	}
}

type testEnv struct {
	srv     *Server
	store   *store.Store
	markets *fakeMarkets
	views   *fakeViews
	pinger  *fakePinger
	http    *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		markets: &fakeMarkets{instruments: coins()},
		views:   &fakeViews{},
		pinger:  &fakePinger{},
	}
	env.store = store.New(env.markets, store.DefaultConfig(), nil)
	env.srv = New(DefaultConfig(), env.store, env.views, env.pinger, nil)
	env.http = httptest.NewServer(env.srv.Handler())
	t.Cleanup(func() {
		env.srv.close()
		env.http.Close()
	})
	return env
}

func (e *testEnv) get(t *testing.T, path string, out any) int {
	t.Helper()
	return e.do(t, http.MethodGet, path, out)
}

func (e *testEnv) do(t *testing.T, method, path string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, e.http.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestCoins(t *testing.T) {
	t.Run("lists held coins in provider order", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.Fetch(context.Background())

		var body coinListJSON
		if status := env.get(t, "/api/coins", &body); status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		if body.Total != 3 || len(body.Coins) != 3 {
			t.Fatalf("total/len = %d/%d, want 3/3", body.Total, len(body.Coins))
		}
		if body.Coins[0].ID != "bitcoin" || body.Coins[2].ID != "wrapped-bitcoin" {
			t.Errorf("order = %s..%s", body.Coins[0].ID, body.Coins[2].ID)
		}
		if body.Coins[0].Display.Price != "$43,000.00" {
			t.Errorf("Display.Price = %q", body.Coins[0].Display.Price)
		}
		if body.Coins[0].Display.Change24h != "+1.50%" || body.Coins[2].Display.Change24h != "n/a" {
			t.Errorf("Display.Change24h = %q / %q", body.Coins[0].Display.Change24h, body.Coins[2].Display.Change24h)
		}
		if body.FetchID == nil || body.UpdatedAt == nil {
			t.Error("fetch_id/updated_at missing after a successful fetch")
		}
	})

	t.Run("search filters per request without fetching", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.Fetch(context.Background())

		var body coinListJSON
		env.get(t, "/api/coins?search=BTC", &body)
		if body.Total != 2 || body.Search != "BTC" {
			t.Errorf("total/search = %d/%q, want 2/BTC", body.Total, body.Search)
		}
		if got := env.markets.calls.Load(); got != 1 {
			t.Errorf("fetches = %d, want 1", got)
		}
		if got := env.store.SearchTerm(); got != "" {
			t.Errorf("store SearchTerm = %q, want empty", got)
		}

		// A later request without a term sees the whole list.
		env.get(t, "/api/coins", &body)
		if body.Total != 3 || body.Search != "" {
			t.Errorf("total/search = %d/%q, want 3/empty", body.Total, body.Search)
		}
	})

	t.Run("concurrent searches get their own results", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.Fetch(context.Background())

		want := map[string]int{"eth": 1, "btc": 2, "": 3, "doge": 0}
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			for term, total := range want {
				wg.Add(1)
				go func() {
					defer wg.Done()
					var body coinListJSON
					resp, err := http.Get(env.http.URL + "/api/coins?search=" + term)
					if err != nil {
						t.Errorf("get %q: %v", term, err)
						return
					}
					defer resp.Body.Close()
					if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
						t.Errorf("decode %q: %v", term, err)
						return
					}
					if body.Total != total || body.Search != term {
						t.Errorf("search %q: total/search = %d/%q, want %d/%q", term, body.Total, body.Search, total, term)
					}
				}()
			}
		}
		wg.Wait()
	})

	t.Run("pagination", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.Fetch(context.Background())

		var body coinListJSON
		env.get(t, "/api/coins?page=2&per_page=2", &body)
		if body.Page != 2 || body.Pages != 2 || len(body.Coins) != 1 {
			t.Errorf("page/pages/len = %d/%d/%d, want 2/2/1", body.Page, body.Pages, len(body.Coins))
		}
	})

	t.Run("sorting", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.Fetch(context.Background())

		var body coinListJSON
		env.get(t, "/api/coins?sort=change_24h&order=desc", &body)
		got := []string{body.Coins[0].ID, body.Coins[1].ID, body.Coins[2].ID}
		want := []string{"bitcoin", "ethereum", "wrapped-bitcoin"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("order = %v, want %v", got, want)
				break
			}
		}

		env.get(t, "/api/coins?sort=price", &body)
		if body.Coins[0].ID != "ethereum" {
			t.Errorf("first by price asc = %s, want ethereum", body.Coins[0].ID)
		}

		// The held list keeps provider order.
		if env.store.Snapshot().Instruments[0].ID != "bitcoin" {
			t.Error("sorting reordered the held list")
		}
	})

	t.Run("bad parameters", func(t *testing.T) {
		env := newTestEnv(t)
		for _, path := range []string{
			"/api/coins?page=x",
			"/api/coins?per_page=0",
			"/api/coins?per_page=251",
			"/api/coins?sort=volume24",
			"/api/coins?order=sideways",
		} {
			var body errorJSON
			if status := env.get(t, path, &body); status != http.StatusBadRequest {
				t.Errorf("%s: status = %d, want 400", path, status)
			}
			if body.Error == "" {
				t.Errorf("%s: empty error message", path)
			}
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		env := newTestEnv(t)
		if status := env.do(t, http.MethodPost, "/api/coins", nil); status != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", status)
		}
	})
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)

	var st stateJSON
	if status := env.do(t, http.MethodPost, "/api/refresh", &st); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if st.Count != 3 || st.Error != "" || st.Loading {
		t.Errorf("state = %+v", st)
	}

	env.markets.set(nil, &api.Error{Kind: api.KindRateLimited, Attempts: 2})
	env.do(t, http.MethodPost, "/api/refresh", &st)
	if st.Count != 3 {
		t.Errorf("Count = %d, want 3 (list kept on failure)", st.Count)
	}
	if st.Error != "Rate limit reached. Please wait a moment and try again." {
		t.Errorf("Error = %q", st.Error)
	}
	if st.ErrorKind != string(api.KindRateLimited) {
		t.Errorf("ErrorKind = %q", st.ErrorKind)
	}
}

func TestCoinDetail(t *testing.T) {
	view := &detail.View{
		Coin: &model.CoinDetail{
			ID:   "bitcoin",
			Name: "Bitcoin",
			MarketData: model.MarketData{
				CurrentPrice: decimal.NewFromInt(43000),
				Change7d:     model.Float64(-3.25),
			},
		},
		Chart: &model.MarketChart{
			Prices: []model.ChartPoint{{Time: time.UnixMilli(1705320000000), Value: decimal.NewFromInt(43000)}},
		},
		Timeframe: model.Timeframes[2],
		Change:    model.Float64(-3.25),
	}

	t.Run("ok", func(t *testing.T) {
		env := newTestEnv(t)
		env.views.view = view
		env.store.SetFavorite("bitcoin", true)

		var body coinViewJSON
		if status := env.get(t, "/api/coins/bitcoin?timeframe=7d", &body); status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		if body.ID != "bitcoin" || body.Timeframe != "7d" {
			t.Errorf("id/timeframe = %s/%s", body.ID, body.Timeframe)
		}
		if body.ChangeDisplay != "-3.25%" {
			t.Errorf("ChangeDisplay = %q, want -3.25%%", body.ChangeDisplay)
		}
		if len(body.Prices) != 1 || body.Prices[0].T != 1705320000000 {
			t.Errorf("Prices = %+v", body.Prices)
		}
		if !body.Favorite {
			t.Error("Favorite = false, want true")
		}
		if body.Market.Display.MaxSupply != "∞" {
			t.Errorf("MaxSupply display = %q", body.Market.Display.MaxSupply)
		}
	})

	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"not found", fmt.Errorf("get coin x: %w", &api.Error{Kind: api.KindNotFound, StatusCode: 404}), http.StatusNotFound, "not_found"},
		{"rate limited", &api.Error{Kind: api.KindRateLimited, Attempts: 2}, http.StatusTooManyRequests, "rate_limited"},
		{"remote", &api.Error{Kind: api.KindRemote, StatusCode: 500}, http.StatusBadGateway, "remote"},
		{"network", &api.Error{Kind: api.KindNetwork}, http.StatusBadGateway, "network"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "unknown"},
		{"bad timeframe", fmt.Errorf("%w: %q", detail.ErrUnknownTimeframe, "3w"), http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.views.err = tt.err

			var body errorJSON
			if status := env.get(t, "/api/coins/x", &body); status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if body.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", body.Kind, tt.kind)
			}
			if body.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestFavorites(t *testing.T) {
	env := newTestEnv(t)
	env.store.Fetch(context.Background())

	var fav favoriteJSON
	if status := env.do(t, http.MethodPut, "/api/favorites/ethereum", &fav); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if fav.ID != "ethereum" || !fav.Favorite {
		t.Errorf("fav = %+v", fav)
	}

	var list struct {
		Coins []coinJSON `json:"coins"`
	}
	env.get(t, "/api/favorites", &list)
	if len(list.Coins) != 1 || list.Coins[0].ID != "ethereum" || !list.Coins[0].Favorite {
		t.Errorf("favorites = %+v", list.Coins)
	}

	env.do(t, http.MethodDelete, "/api/favorites/ethereum", &fav)
	if fav.Favorite {
		t.Error("Favorite = true after DELETE")
	}
	env.get(t, "/api/favorites", &list)
	if len(list.Coins) != 0 {
		t.Errorf("favorites = %+v, want empty", list.Coins)
	}
}

func TestHealth(t *testing.T) {
	type healthBody struct {
		Status string `json:"status"`
	}

	t.Run("healthy", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.Fetch(context.Background())

		var body healthBody
		if status := env.get(t, "/health", &body); status != http.StatusOK || body.Status != "healthy" {
			t.Errorf("status = %d %q, want 200 healthy", status, body.Status)
		}
	})

	t.Run("degraded when provider unreachable with data held", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.Fetch(context.Background())
		env.pinger.err = &api.Error{Kind: api.KindNetwork}

		var body healthBody
		if status := env.get(t, "/health", &body); status != http.StatusOK || body.Status != "degraded" {
			t.Errorf("status = %d %q, want 200 degraded", status, body.Status)
		}
	})

	t.Run("unhealthy when empty and unreachable", func(t *testing.T) {
		env := newTestEnv(t)
		env.pinger.err = &api.Error{Kind: api.KindNetwork}

		var body healthBody
		if status := env.get(t, "/health", &body); status != http.StatusServiceUnavailable || body.Status != "unhealthy" {
			t.Errorf("status = %d %q, want 503 unhealthy", status, body.Status)
		}
	})
}

func TestWebSocket(t *testing.T) {
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var initial pushJSON
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if initial.Type != "coins" || len(initial.Coins) != 0 {
		t.Errorf("initial = %+v, want empty coins message", initial)
	}

	// Wait for registration before fetching.
	deadline := time.Now().Add(time.Second)
	for env.srv.Hub().Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	env.store.Fetch(context.Background())

	var update pushJSON
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if update.Type != "coins" || len(update.Coins) != 3 {
		t.Errorf("update type/len = %s/%d, want coins/3", update.Type, len(update.Coins))
	}
	if update.FetchID == nil || *update.FetchID != env.store.Snapshot().FetchID {
		t.Errorf("update fetch_id = %v", update.FetchID)
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := NewHub(nil, func() pushJSON { return pushJSON{Type: "coins"} }, nil)

	slow := &wsClient{send: make(chan []byte, 1)}
	slow.send <- []byte("pending")
	fast := &wsClient{send: make(chan []byte, 1)}
	h.clients[slow] = struct{}{}
	h.clients[fast] = struct{}{}

	h.Broadcast([]byte("update"))

	if got := h.Clients(); got != 1 {
		t.Errorf("Clients() = %d, want 1", got)
	}
	if _, ok := h.clients[fast]; !ok {
		t.Error("fast client was dropped")
	}
	if msg := <-fast.send; string(msg) != "update" {
		t.Errorf("fast got %q", msg)
	}
}

func TestHub_Close(t *testing.T) {
	h := NewHub(nil, func() pushJSON { return pushJSON{} }, nil)
	c := &wsClient{send: make(chan []byte, 1)}
	h.clients[c] = struct{}{}

	h.Close()
	h.Close()

	if h.Clients() != 0 {
		t.Errorf("Clients() = %d, want 0", h.Clients())
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel not closed")
	}
}

func TestStatusForKind(t *testing.T) {
	tests := map[api.Kind]int{
		api.KindNotFound:    http.StatusNotFound,
		api.KindRateLimited: http.StatusTooManyRequests,
		api.KindRemote:      http.StatusBadGateway,
		api.KindNetwork:     http.StatusBadGateway,
		api.KindUnknown:     http.StatusInternalServerError,
	}
	for kind, want := range tests {
		if got := statusForKind(kind); got != want {
			t.Errorf("statusForKind(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestServe_Shutdown(t *testing.T) {
	st := store.New(&fakeMarkets{}, store.DefaultConfig(), nil)
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	srv := New(cfg, st, &fakeViews{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
