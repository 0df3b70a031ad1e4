// Package repository owns the prospect collection: it loads from the
// backend, caches the result and falls back to the bundled dataset.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/preston-bernstein/prospect-scout/internal/backend"
	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
	"github.com/preston-bernstein/prospect-scout/internal/fallback"
	"github.com/preston-bernstein/prospect-scout/internal/logging"
	"github.com/preston-bernstein/prospect-scout/internal/metrics"
	"github.com/preston-bernstein/prospect-scout/internal/normalize"
	"github.com/preston-bernstein/prospect-scout/internal/store"
)

const (
	defaultConcurrency = 8
	loadKey            = "load"
	refreshKey         = "refresh"
)

// Fallback reasons, also used as metric labels.
const (
	ReasonIndexFailed = "index_failed"
	ReasonEmptyIndex  = "empty_index"
	ReasonNoPlayers   = "no_players"
	ReasonCanceled    = "canceled"
	ReasonByID        = "by_id"
)

var (
	// ErrNotFound means no source knows the requested player.
	ErrNotFound = errors.New("player not found")
	// ErrUnavailable means the backend could not be asked and no fallback matched.
	ErrUnavailable = backend.ErrUnavailable

	errEmptyIndex = errors.New("backend index is empty")
	errNoPlayers  = errors.New("no players could be loaded")
)

// Origin says where a collection came from.
type Origin string

const (
	OriginLive     Origin = "live"
	OriginCache    Origin = "cache"
	OriginFallback Origin = "fallback"
)

// Collection is an ordered player list and its origin.
type Collection struct {
	Players []players.Player
	Origin  Origin
}

// Config wires the repository's collaborators.
type Config struct {
	Source      Source
	Store       *store.PlayerStore
	Fallback    *fallback.Dataset
	Concurrency int
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
}

// Repository produces the authoritative player collection.
type Repository struct {
	source      Source
	store       *store.PlayerStore
	fallback    *fallback.Dataset
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Recorder
	group       singleflight.Group
}

// New constructs a repository. A nil store gets a fresh one.
func New(cfg Config) *Repository {
	st := cfg.Store
	if st == nil {
		st = store.NewPlayerStore()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Repository{
		source:      cfg.Source,
		store:       st,
		fallback:    cfg.Fallback,
		concurrency: concurrency,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}
}

// FetchAll returns the cached collection, loading it on first use.
// Concurrent callers share one in-flight load. It never fails: when the
// backend produces nothing the bundled dataset is returned uncached.
func (r *Repository) FetchAll(ctx context.Context) Collection {
	if list, ok := r.store.ListPlayers(); ok {
		r.metrics.RecordCacheHit()
		return Collection{Players: list, Origin: OriginCache}
	}

	ch := r.group.DoChan(loadKey, func() (any, error) {
		if list, ok := r.store.ListPlayers(); ok {
			return Collection{Players: list, Origin: OriginCache}, nil
		}
		c, _ := r.load(context.WithoutCancel(ctx))
		return c, nil
	})

	select {
	case res := <-ch:
		return res.Val.(Collection)
	case <-ctx.Done():
		return r.fallbackCollection(ctx, ReasonCanceled, ctx.Err())
	}
}

type refreshResult struct {
	collection Collection
	err        error
}

// Refresh rebuilds the collection from the backend, bypassing the cache.
// On failure the previous cache stays in place and is returned when present.
func (r *Repository) Refresh(ctx context.Context) (Collection, error) {
	ch := r.group.DoChan(refreshKey, func() (any, error) {
		c, err := r.load(context.WithoutCancel(ctx))
		if err != nil {
			if cached, ok := r.store.ListPlayers(); ok {
				c = Collection{Players: cached, Origin: OriginCache}
			}
		}
		return refreshResult{collection: c, err: err}, nil
	})

	select {
	case res := <-ch:
		out := res.Val.(refreshResult)
		return out.collection, out.err
	case <-ctx.Done():
		return Collection{}, ctx.Err()
	}
}

// Invalidate drops the cached collection.
func (r *Repository) Invalidate() {
	r.store.Reset()
}

// Cached reports whether a live collection is cached.
func (r *Repository) Cached() bool {
	return r.store.Loaded()
}

// FetchByID resolves one player from the cache, then the backend, then the
// bundled dataset. It returns ErrNotFound when none match and an error
// wrapping ErrUnavailable when the backend could not answer.
func (r *Repository) FetchByID(ctx context.Context, id string) (players.Player, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return players.Player{}, ErrNotFound
	}
	logger := logging.FromContext(ctx, r.logger)

	if p, ok := r.store.GetPlayer(id); ok {
		r.metrics.RecordCacheHit()
		logging.Debug(logger, "player served from cache", slog.String(logging.FieldPlayerID, id))
		return p, nil
	}

	key := players.NameFromSlug(id)
	var lookupErr error
	if r.source == nil {
		lookupErr = fmt.Errorf("%w: no source configured", ErrUnavailable)
	} else {
		rec, err := r.source.Fetch(ctx, key)
		if err == nil {
			if p := normalize.Normalize(rec); p.ID != "" {
				return p, nil
			}
			err = errEmptyRecord
		}
		lookupErr = err
		logging.Warn(logger, "player lookup failed",
			slog.String(logging.FieldPlayerID, id),
			slog.String(logging.FieldPlayerKey, key),
			slog.Any(logging.FieldError, err),
		)
	}

	if p, ok := r.fallback.Player(id); ok {
		r.metrics.RecordFallback(ReasonByID)
		return p, nil
	}

	if backend.IsNotFound(lookupErr) || errors.Is(lookupErr, errEmptyRecord) {
		return players.Player{}, ErrNotFound
	}
	return players.Player{}, fmt.Errorf("repository: lookup %s: %w", id, errors.Join(ErrUnavailable, lookupErr))
}

// load builds a collection from the source. The returned error explains a
// fallback; the collection is always usable.
func (r *Repository) load(ctx context.Context) (Collection, error) {
	logger := logging.FromContext(ctx, r.logger)
	if r.source == nil {
		return r.fallbackCollection(ctx, ReasonIndexFailed, errors.New("no source configured")), errNoPlayers
	}

	start := time.Now()
	names, err := r.source.Index(ctx)
	if err != nil {
		err = fmt.Errorf("repository: index: %w", err)
		return r.fallbackCollection(ctx, ReasonIndexFailed, err), err
	}
	if len(names) == 0 {
		return r.fallbackCollection(ctx, ReasonEmptyIndex, errEmptyIndex), errEmptyIndex
	}

	results := make([]*players.Player, len(names))
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, name := range names {
		g.Go(func() error {
			rec, err := r.source.Fetch(ctx, name)
			if err != nil {
				logging.Warn(logger, "dropping player",
					slog.String(logging.FieldPlayerKey, name),
					slog.String(logging.FieldSource, r.source.Name()),
					slog.Any(logging.FieldError, err),
				)
				return nil
			}
			p := normalize.Normalize(rec)
			if p.ID == "" {
				logging.Warn(logger, "dropping player without identity", slog.String(logging.FieldPlayerKey, name))
				return nil
			}
			results[i] = &p
			return nil
		})
	}
	_ = g.Wait()

	collected := make([]players.Player, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, p := range results {
		if p == nil {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		collected = append(collected, *p)
	}
	r.metrics.RecordDroppedPlayers(len(names) - len(collected))

	if len(collected) == 0 {
		return r.fallbackCollection(ctx, ReasonNoPlayers, errNoPlayers), errNoPlayers
	}

	r.store.SetPlayers(collected)
	logging.Info(logger, "player collection loaded",
		slog.String(logging.FieldSource, r.source.Name()),
		slog.Int(logging.FieldCount, len(collected)),
		slog.Int(logging.FieldDropped, len(names)-len(collected)),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
	return Collection{Players: collected, Origin: OriginLive}, nil
}

func (r *Repository) fallbackCollection(ctx context.Context, reason string, cause error) Collection {
	r.metrics.RecordFallback(reason)
	logging.Warn(logging.FromContext(ctx, r.logger), "serving fallback dataset",
		slog.String("reason", reason),
		slog.Int(logging.FieldCount, r.fallback.Len()),
		slog.Any(logging.FieldError, cause),
	)
	return Collection{Players: r.fallback.Players(), Origin: OriginFallback}
}
