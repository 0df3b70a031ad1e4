package testutil

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/preston-bernstein/prospect-scout/internal/backend"
)

// StubBackend is an in-memory stand-in for the scouting backend. Lookups
// are keyed by lower-cased, space-separated name; unknown keys answer 404.
type StubBackend struct {
	mu sync.Mutex

	Names      []string
	IndexErr   error
	Profiles   map[string]map[string]any
	Archetypes map[string]map[string]any
	CompRows   map[string][]map[string]any
	Failures   map[string]error
	// Delay, when set, stalls each per-player call.
	Delay func(key string) time.Duration
	// IndexGate, when set, blocks Index until it is closed.
	IndexGate chan struct{}

	indexCalls int
	fetchCalls map[string]int
}

// Key normalizes a name or slug to the stub's lookup key.
func Key(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(name, "-", " "))), " ")
}

func (s *StubBackend) PlayerIndex(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	s.indexCalls++
	gate := s.IndexGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.IndexErr != nil {
		return nil, s.IndexErr
	}
	out := make([]string, len(s.Names))
	copy(out, s.Names)
	return out, nil
}

func (s *StubBackend) PlayerProfile(ctx context.Context, name string) (map[string]any, error) {
	key, err := s.enter(ctx, "player", name)
	if err != nil {
		return nil, err
	}
	if fields, ok := s.Profiles[key]; ok {
		return fields, nil
	}
	return nil, notFound("/player/" + key)
}

func (s *StubBackend) Archetype(ctx context.Context, name string) (map[string]any, error) {
	key, err := s.enter(ctx, "archetype", name)
	if err != nil {
		return nil, err
	}
	if fields, ok := s.Archetypes[key]; ok {
		return fields, nil
	}
	return nil, notFound("/archetype/" + key)
}

func (s *StubBackend) Comps(ctx context.Context, name string) ([]map[string]any, error) {
	key, err := s.enter(ctx, "comps", name)
	if err != nil {
		return nil, err
	}
	if rows, ok := s.CompRows[key]; ok {
		return rows, nil
	}
	return nil, notFound("/comps/" + key)
}

// IndexCalls reports how many times the index was requested.
func (s *StubBackend) IndexCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexCalls
}

// FetchCalls reports per-player calls made for an endpoint ("player",
// "archetype" or "comps") across all keys.
func (s *StubBackend) FetchCalls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchCalls[endpoint]
}

func (s *StubBackend) enter(ctx context.Context, endpoint, name string) (string, error) {
	key := Key(name)
	s.mu.Lock()
	if s.fetchCalls == nil {
		s.fetchCalls = make(map[string]int)
	}
	s.fetchCalls[endpoint]++
	delay := s.Delay
	failure := s.Failures[key]
	s.mu.Unlock()

	if delay != nil {
		if d := delay(key); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return key, ctx.Err()
			}
		}
	}
	return key, failure
}

func notFound(path string) error {
	return &backend.StatusError{Method: http.MethodGet, Path: path, StatusCode: http.StatusNotFound}
}
