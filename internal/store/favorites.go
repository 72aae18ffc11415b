package store

import "github.com/rickgao/coin-tracker/internal/model"

// ToggleFavorite flips the favorite flag for id and returns the new value.
func (s *Store) ToggleFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.favorites[id]; ok {
		delete(s.favorites, id)
		return false
	}
	s.favorites[id] = struct{}{}
	return true
}

// SetFavorite marks or unmarks id.
func (s *Store) SetFavorite(id string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if on {
		s.favorites[id] = struct{}{}
	} else {
		delete(s.favorites, id)
	}
}

// IsFavorite reports whether id is marked.
func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.favorites[id]
	return ok
}

// Favorites returns the held instruments that are marked, in held order.
// Marked ids missing from the current list are skipped but stay marked.
func (s *Store) Favorites() []model.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Instrument, 0, len(s.favorites))
	for _, inst := range s.instruments {
		if _, ok := s.favorites[inst.ID]; ok {
			out = append(out, inst)
		}
	}
	return out
}
