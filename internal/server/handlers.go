package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rickgao/coin-tracker/internal/api"
	"github.com/rickgao/coin-tracker/internal/detail"
	"github.com/rickgao/coin-tracker/internal/model"
	"github.com/rickgao/coin-tracker/internal/store"
	"github.com/rickgao/coin-tracker/internal/version"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, kind api.Kind) {
	writeJSON(w, status, errorJSON{Error: msg, Kind: string(kind)})
}

// statusForKind maps a client error kind to an HTTP status.
func statusForKind(k api.Kind) int {
	switch k {
	case api.KindNotFound:
		return http.StatusNotFound
	case api.KindRateLimited:
		return http.StatusTooManyRequests
	case api.KindRemote, api.KindNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func toStateJSON(snap store.Snapshot) stateJSON {
	st := stateJSON{
		Loading:   snap.Loading,
		Error:     snap.Err,
		ErrorKind: string(snap.ErrKind),
		Count:     len(snap.Instruments),
	}
	if !snap.UpdatedAt.IsZero() {
		id, at := snap.FetchID, snap.UpdatedAt
		st.FetchID, st.UpdatedAt = &id, &at
	}
	return st
}

func (s *Server) coinsJSON(list []model.Instrument) []coinJSON {
	out := make([]coinJSON, len(list))
	for i, inst := range list {
		out[i] = toCoinJSON(inst, s.store.IsFavorite(inst.ID))
	}
	return out
}

// stateMessage builds the websocket message for the held list.
func (s *Server) stateMessage() pushJSON {
	snap := s.store.Snapshot()
	return pushJSON{
		Type:      "coins",
		Coins:     s.coinsJSON(snap.Instruments),
		stateJSON: toStateJSON(snap),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()

	health := struct {
		Status     string         `json:"status"`
		Version    version.Info   `json:"version"`
		Uptime     string         `json:"uptime"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Version:    version.Current(),
		Uptime:     time.Since(s.startedAt).Round(time.Second).String(),
		Components: make(map[string]any),
	}

	health.Components["store"] = toStateJSON(snap)
	health.Components["websocket"] = map[string]int{"clients": s.hub.Clients()}

	providerOK := true
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.PingTimeout)
		defer cancel()

		if err := s.pinger.Ping(ctx); err != nil {
			providerOK = false
			health.Components["provider"] = map[string]string{
				"status": "unreachable",
				"error":  api.UserMessage(err),
			}
		} else {
			health.Components["provider"] = "reachable"
		}
	}

	status := http.StatusOK
	switch {
	case len(snap.Instruments) == 0 && !providerOK:
		health.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	case !providerOK || snap.Err != "":
		health.Status = "degraded"
	}

	writeJSON(w, status, health)
}

func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be an integer", "")
		return
	}
	perPage, err := intParam(q.Get("per_page"), store.DefaultPageSize)
	if err != nil || perPage < 1 || perPage > api.MaxPerPage {
		writeError(w, http.StatusBadRequest, "per_page must be between 1 and 250", "")
		return
	}
	key, err := model.ParseSortKey(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	var descending bool
	switch q.Get("order") {
	case "", "asc":
	case "desc":
		descending = true
	default:
		writeError(w, http.StatusBadRequest, "order must be asc or desc", "")
		return
	}

	term := q.Get("search")
	list := s.store.FilterBy(term)
	if key != "" {
		list = model.SortInstruments(list, key, descending)
	}
	result := store.Paginate(list, page, perPage)
	snap := s.store.Snapshot()

	writeJSON(w, http.StatusOK, coinListJSON{
		Coins:     s.coinsJSON(result.Items),
		Page:      result.Page,
		PerPage:   result.PerPage,
		Total:     result.Total,
		Pages:     result.Pages,
		Search:    term,
		stateJSON: toStateJSON(snap),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.store.Fetch(r.Context())
	writeJSON(w, http.StatusOK, toStateJSON(s.store.Snapshot()))
}

func (s *Server) handleCoin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tf := r.URL.Query().Get("timeframe")

	view, err := s.views.Load(r.Context(), id, tf)
	if err != nil {
		if errors.Is(err, detail.ErrUnknownTimeframe) {
			writeError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		kind := api.KindOf(err)
		writeError(w, statusForKind(kind), api.UserMessage(err), kind)
		return
	}

	writeJSON(w, http.StatusOK, toCoinViewJSON(view, s.store.IsFavorite(id)))
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"coins": s.coinsJSON(s.store.Favorites()),
	})
}

func (s *Server) handleSetFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.store.SetFavorite(id, true)
	writeJSON(w, http.StatusOK, favoriteJSON{ID: id, Favorite: true})
}

func (s *Server) handleUnsetFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.store.SetFavorite(id, false)
	writeJSON(w, http.StatusOK, favoriteJSON{ID: id, Favorite: false})
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
