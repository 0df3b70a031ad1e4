// Package saved keeps the user's set of saved player ids, persisted as one
// JSON array under a fixed key.
package saved

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/preston-bernstein/prospect-scout/internal/logging"
)

// StorageKey is the key the saved set is persisted under.
const StorageKey = "proscout-saved-players"

// Store is an ordered set of player ids. Ids are not checked against the
// collection, so entries for players that no longer exist are kept.
type Store struct {
	mu     sync.Mutex
	kv     KV
	logger *slog.Logger
	ids    []string
	index  map[string]struct{}
}

// New loads the saved set from kv. An absent or unreadable value yields an
// empty set; the problem is logged, never returned.
func New(kv KV, logger *slog.Logger) *Store {
	if kv == nil {
		kv = NewMemoryKV()
	}
	s := &Store{kv: kv, logger: logger, index: make(map[string]struct{})}
	s.load()
	return s
}

func (s *Store) load() {
	raw, ok, err := s.kv.Get(StorageKey)
	if err != nil {
		logging.Warn(s.logger, "saved set unreadable, starting empty", slog.Any(logging.FieldError, err))
		return
	}
	if !ok {
		return
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logging.Warn(s.logger, "saved set corrupt, starting empty", slog.Any(logging.FieldError, err))
		return
	}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := s.index[id]; dup {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
}

// IsSaved reports whether id is in the set.
func (s *Store) IsSaved(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[strings.TrimSpace(id)]
	return ok
}

// Toggle adds id when absent and removes it when present, then persists.
// It returns whether id is saved afterwards. Blank ids are ignored.
func (s *Store) Toggle(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, saved := s.index[id]
	if saved {
		delete(s.index, id)
		for i, existing := range s.ids {
			if existing == id {
				s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
				break
			}
		}
	} else {
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	s.persist()
	return !saved
}

// List returns the saved ids in the order they were added.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len reports how many ids are saved.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func (s *Store) persist() {
	ids := s.ids
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		logging.Error(s.logger, "saved set encode failed", err)
		return
	}
	if err := s.kv.Set(StorageKey, string(raw)); err != nil {
		logging.Error(s.logger, "saved set persist failed", err, slog.Int(logging.FieldCount, len(ids)))
	}
}
