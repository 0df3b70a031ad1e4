package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/prospect-scout/internal/backend"
	"github.com/preston-bernstein/prospect-scout/internal/fallback"
	"github.com/preston-bernstein/prospect-scout/internal/metrics"
	"github.com/preston-bernstein/prospect-scout/internal/store"
	"github.com/preston-bernstein/prospect-scout/internal/testutil"
)

var fiveNames = []string{"alpha one", "bravo two", "charlie three", "delta four", "echo five"}

func profileBackend(names ...string) *testutil.StubBackend {
	stub := &testutil.StubBackend{
		Names:    names,
		Profiles: map[string]map[string]any{},
		Failures: map[string]error{},
	}
	for i, n := range names {
		stub.Profiles[testutil.Key(n)] = testutil.ProfilePayload(n, "Duke", float64(50+i))
	}
	return stub
}

func newRepo(t *testing.T, b Backend, rec *metrics.Recorder) (*Repository, *store.PlayerStore) {
	t.Helper()
	logger, _ := testutil.NewBufferLogger()
	st := store.NewPlayerStore()
	return New(Config{
		Source:   ProfileSource{Backend: b},
		Store:    st,
		Fallback: fallback.MustLoad(),
		Logger:   logger,
		Metrics:  rec,
	}), st
}

func ids(c Collection) []string {
	out := make([]string, len(c.Players))
	for i, p := range c.Players {
		out[i] = p.ID
	}
	return out
}

func TestFetchAllDropsFailedPlayersAndKeepsIndexOrder(t *testing.T) {
	stub := profileBackend(fiveNames...)
	stub.Failures[testutil.Key("charlie three")] = errors.New("boom")
	// Finish out of order to prove results follow the index.
	stub.Delay = func(key string) time.Duration {
		if key == "alpha one" {
			return 20 * time.Millisecond
		}
		return 0
	}
	rec := metrics.NewRecorder()
	repo, st := newRepo(t, stub, rec)

	c := repo.FetchAll(context.Background())

	assert.Equal(t, OriginLive, c.Origin)
	assert.Equal(t, []string{"alpha-one", "bravo-two", "delta-four", "echo-five"}, ids(c))
	assert.True(t, st.Loaded())
	assert.Equal(t, 1, rec.Repository().DroppedPlayers)
}

func TestFetchAllFallsBackWhenIndexFails(t *testing.T) {
	stub := profileBackend(fiveNames...)
	stub.IndexErr = errors.New("connection refused")
	rec := metrics.NewRecorder()
	repo, st := newRepo(t, stub, rec)

	c := repo.FetchAll(context.Background())

	assert.Equal(t, OriginFallback, c.Origin)
	assert.Equal(t, fallback.MustLoad().Len(), len(c.Players))
	assert.NotEmpty(t, c.Players)
	assert.False(t, st.Loaded(), "fallback must not be cached")
	assert.Equal(t, 1, rec.Repository().Fallbacks[ReasonIndexFailed])

	stub.IndexErr = nil
	c = repo.FetchAll(context.Background())
	assert.Equal(t, OriginLive, c.Origin, "a later success supersedes the fallback")
	assert.Len(t, c.Players, 5)
}

func TestFetchAllFallsBackOnEmptyIndex(t *testing.T) {
	repo, _ := newRepo(t, profileBackend(), nil)
	c := repo.FetchAll(context.Background())
	assert.Equal(t, OriginFallback, c.Origin)
	assert.NotEmpty(t, c.Players)
}

func TestFetchAllFallsBackWhenEveryPlayerFails(t *testing.T) {
	stub := profileBackend(fiveNames...)
	for _, n := range fiveNames {
		stub.Failures[testutil.Key(n)] = errors.New("boom")
	}
	rec := metrics.NewRecorder()
	repo, st := newRepo(t, stub, rec)

	c := repo.FetchAll(context.Background())

	assert.Equal(t, OriginFallback, c.Origin)
	assert.NotEmpty(t, c.Players)
	assert.False(t, st.Loaded())
	assert.Equal(t, 1, rec.Repository().Fallbacks[ReasonNoPlayers])
	assert.Equal(t, 5, rec.Repository().DroppedPlayers)
}

func TestFetchAllServesCacheWithoutNetwork(t *testing.T) {
	stub := profileBackend(fiveNames...)
	rec := metrics.NewRecorder()
	repo, _ := newRepo(t, stub, rec)

	first := repo.FetchAll(context.Background())
	second := repo.FetchAll(context.Background())

	assert.Equal(t, OriginLive, first.Origin)
	assert.Equal(t, OriginCache, second.Origin)
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, 1, stub.IndexCalls())
	assert.Equal(t, 5, stub.FetchCalls("player"))
	assert.Equal(t, 1, rec.Repository().CacheHits)
}

func TestFetchAllCoalescesConcurrentLoads(t *testing.T) {
	stub := profileBackend(fiveNames...)
	stub.IndexGate = make(chan struct{})
	repo, _ := newRepo(t, stub, nil)

	const callers = 10
	var wg sync.WaitGroup
	results := make([]Collection, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = repo.FetchAll(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return stub.IndexCalls() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(stub.IndexGate)
	wg.Wait()

	assert.Equal(t, 1, stub.IndexCalls())
	assert.Equal(t, 5, stub.FetchCalls("player"))
	for _, c := range results {
		assert.Len(t, c.Players, 5)
	}
}

func TestFetchAllCanceledCallerGetsFallbackWhileLoadContinues(t *testing.T) {
	stub := profileBackend(fiveNames...)
	stub.IndexGate = make(chan struct{})
	repo, st := newRepo(t, stub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Collection)
	go func() { done <- repo.FetchAll(ctx) }()

	require.Eventually(t, func() bool { return stub.IndexCalls() == 1 }, time.Second, time.Millisecond)
	cancel()
	c := <-done
	assert.Equal(t, OriginFallback, c.Origin)

	close(stub.IndexGate)
	require.Eventually(t, st.Loaded, time.Second, time.Millisecond, "detached load should still fill the cache")
}

func TestFetchAllDropsDuplicateIDs(t *testing.T) {
	stub := profileBackend("alpha one", "Alpha One", "bravo two")
	repo, _ := newRepo(t, stub, nil)

	c := repo.FetchAll(context.Background())
	assert.Equal(t, []string{"alpha-one", "bravo-two"}, ids(c))
}

func TestRefreshBypassesAndReplacesCache(t *testing.T) {
	stub := profileBackend("alpha one", "bravo two")
	repo, _ := newRepo(t, stub, nil)
	repo.FetchAll(context.Background())

	stub.Names = []string{"charlie three"}
	stub.Profiles[testutil.Key("charlie three")] = testutil.ProfilePayload("charlie three", "UCLA", 90)

	c, err := repo.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OriginLive, c.Origin)
	assert.Equal(t, []string{"charlie-three"}, ids(c))

	cached := repo.FetchAll(context.Background())
	assert.Equal(t, OriginCache, cached.Origin)
	assert.Equal(t, []string{"charlie-three"}, ids(cached))
}

func TestRefreshFailureKeepsPreviousCache(t *testing.T) {
	stub := profileBackend("alpha one", "bravo two")
	repo, st := newRepo(t, stub, nil)
	repo.FetchAll(context.Background())

	stub.IndexErr = errors.New("down")
	c, err := repo.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, OriginCache, c.Origin)
	assert.Equal(t, []string{"alpha-one", "bravo-two"}, ids(c))
	assert.Equal(t, 2, st.Len())
}

func TestInvalidateForcesReload(t *testing.T) {
	stub := profileBackend("alpha one")
	repo, _ := newRepo(t, stub, nil)
	repo.FetchAll(context.Background())
	require.True(t, repo.Cached())

	repo.Invalidate()
	assert.False(t, repo.Cached())
	c := repo.FetchAll(context.Background())
	assert.Equal(t, OriginLive, c.Origin)
	assert.Equal(t, 2, stub.IndexCalls())
}

func TestFetchByIDPrefersCache(t *testing.T) {
	stub := profileBackend("alpha one")
	repo, _ := newRepo(t, stub, nil)
	repo.FetchAll(context.Background())
	calls := stub.FetchCalls("player")

	p, err := repo.FetchByID(context.Background(), "alpha-one")
	require.NoError(t, err)
	assert.Equal(t, "alpha-one", p.ID)
	assert.Equal(t, calls, stub.FetchCalls("player"), "cache hit must not touch the backend")
}

func TestFetchByIDQueriesBackendBySlugName(t *testing.T) {
	stub := profileBackend("alpha one")
	repo, st := newRepo(t, stub, nil)

	p, err := repo.FetchByID(context.Background(), "alpha-one")
	require.NoError(t, err)
	assert.Equal(t, "Alpha One", p.Name)
	assert.Equal(t, 1, stub.FetchCalls("player"))
	assert.False(t, st.Loaded(), "single lookups do not populate the collection cache")
}

func TestFetchByIDFallsBackToBundledDataset(t *testing.T) {
	stub := profileBackend()
	stub.Failures[testutil.Key("marcus williams")] = errors.Join(backend.ErrUnavailable, errors.New("refused"))
	rec := metrics.NewRecorder()
	repo, _ := newRepo(t, stub, rec)

	p, err := repo.FetchByID(context.Background(), "marcus-williams")
	require.NoError(t, err)
	assert.Equal(t, "Marcus Williams", p.Name)
	assert.Equal(t, 1, rec.Repository().Fallbacks[ReasonByID])
}

func TestFetchByIDDistinguishesNotFoundFromUnavailable(t *testing.T) {
	stub := profileBackend()
	repo, _ := newRepo(t, stub, nil)

	_, err := repo.FetchByID(context.Background(), "nobody-here")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnavailable)

	stub.Failures[testutil.Key("nobody here")] = errors.Join(backend.ErrUnavailable, errors.New("refused"))
	_, err = repo.FetchByID(context.Background(), "nobody-here")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = repo.FetchByID(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNilSourceServesFallback(t *testing.T) {
	repo := New(Config{Fallback: fallback.MustLoad()})
	c := repo.FetchAll(context.Background())
	assert.Equal(t, OriginFallback, c.Origin)

	p, err := repo.FetchByID(context.Background(), "jaylen-carter")
	require.NoError(t, err)
	assert.Equal(t, "Kentucky", p.School)
}
