package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/prospect-scout/internal/backend"
	"github.com/preston-bernstein/prospect-scout/internal/normalize"
)

// Source is one way of loading raw player records from the backend.
type Source interface {
	Name() string
	Index(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, key string) (normalize.Record, error)
}

// Backend is the subset of the backend client the sources use.
type Backend interface {
	PlayerIndex(ctx context.Context) ([]string, error)
	PlayerProfile(ctx context.Context, name string) (map[string]any, error)
	Archetype(ctx context.Context, name string) (map[string]any, error)
	Comps(ctx context.Context, name string) ([]map[string]any, error)
}

var (
	errEmptyRecord  = errors.New("backend returned an empty record")
	errUnknownShape = errors.New("unknown backend shape")
)

// NewSource picks the source for a configured backend shape.
func NewSource(shape string, b Backend) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(shape)) {
	case "", string(normalize.ShapeProfile):
		return ProfileSource{Backend: b}, nil
	case string(normalize.ShapeArchetype):
		return ArchetypeSource{Backend: b}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownShape, shape)
	}
}

// ProfileSource reads full Player-shaped records from /player/{slug}.
type ProfileSource struct {
	Backend Backend
}

func (ProfileSource) Name() string { return string(normalize.ShapeProfile) }

func (s ProfileSource) Index(ctx context.Context) ([]string, error) {
	return s.Backend.PlayerIndex(ctx)
}

func (s ProfileSource) Fetch(ctx context.Context, key string) (normalize.Record, error) {
	fields, err := s.Backend.PlayerProfile(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errEmptyRecord
	}
	return normalize.Detect(fields), nil
}

// ArchetypeSource combines /archetype/{name} with /comps/{name}. A player
// whose either call fails is treated as unavailable.
type ArchetypeSource struct {
	Backend Backend
}

func (ArchetypeSource) Name() string { return string(normalize.ShapeArchetype) }

func (s ArchetypeSource) Index(ctx context.Context) ([]string, error) {
	return s.Backend.PlayerIndex(ctx)
}

func (s ArchetypeSource) Fetch(ctx context.Context, key string) (normalize.Record, error) {
	var (
		fields map[string]any
		comps  []map[string]any
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fields, err = s.Backend.Archetype(gctx, key)
		return err
	})
	g.Go(func() error {
		var err error
		comps, err = s.Backend.Comps(gctx, key)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errEmptyRecord
	}
	return normalize.ArchetypeRecord{Fields: fields, Comps: comps}, nil
}

var (
	_ Backend = (*backend.Client)(nil)
	_ Source  = ProfileSource{}
	_ Source  = ArchetypeSource{}
)
