package store

import (
	"sync"

	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
)

// PlayerStore keeps the last loaded player collection in index order.
// It is replaced wholesale on every load and never merged.
type PlayerStore struct {
	mu      sync.RWMutex
	players []players.Player
	byID    map[string]int
	loaded  bool
}

// NewPlayerStore constructs an empty store.
func NewPlayerStore() *PlayerStore {
	return &PlayerStore{byID: make(map[string]int)}
}

// ListPlayers returns a copy of the collection and whether one has been loaded.
func (s *PlayerStore) ListPlayers() ([]players.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, false
	}
	out := make([]players.Player, len(s.players))
	copy(out, s.players)
	return out, true
}

// GetPlayer retrieves a player by id.
func (s *PlayerStore) GetPlayer(id string) (players.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return players.Player{}, false
	}
	return s.players[idx], true
}

// SetPlayers replaces the collection. Later duplicates of an id are ignored.
func (s *PlayerStore) SetPlayers(list []players.Player) {
	next := make([]players.Player, 0, len(list))
	index := make(map[string]int, len(list))
	for _, p := range list {
		if _, dup := index[p.ID]; dup {
			continue
		}
		index[p.ID] = len(next)
		next = append(next, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = next
	s.byID = index
	s.loaded = true
}

// Loaded reports whether a collection is cached.
func (s *PlayerStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Len returns the number of cached players.
func (s *PlayerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Reset drops the cached collection.
func (s *PlayerStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = nil
	s.byID = make(map[string]int)
	s.loaded = false
}
