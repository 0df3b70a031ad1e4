package warmer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
	"github.com/preston-bernstein/prospect-scout/internal/metrics"
	"github.com/preston-bernstein/prospect-scout/internal/repository"
	"github.com/preston-bernstein/prospect-scout/internal/testutil"
)

type stubLoader struct {
	mu         sync.Mutex
	collection repository.Collection
	refreshErr error
	gate       chan struct{}
	fetches    int
	refreshes  int
	notify     chan struct{}
}

func (s *stubLoader) FetchAll(ctx context.Context) repository.Collection {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
		}
	}
	s.mu.Lock()
	s.fetches++
	c := s.collection
	s.mu.Unlock()
	if s.notify != nil {
		s.notify <- struct{}{}
	}
	return c
}

func (s *stubLoader) Refresh(context.Context) (repository.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	if s.refreshErr != nil {
		return repository.Collection{}, s.refreshErr
	}
	return s.collection, nil
}

func liveCollection() repository.Collection {
	return repository.Collection{
		Players: []players.Player{testutil.SamplePlayer("Marcus Williams", "Duke", "PG", 18.5, 88)},
		Origin:  repository.OriginLive,
	}
}

func TestWarmerWarmsOnStart(t *testing.T) {
	loader := &stubLoader{collection: liveCollection(), notify: make(chan struct{}, 1)}
	w, err := New(loader, Config{WarmOnStart: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.IsReady() {
		t.Fatal("expected not ready before warm-up")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	w.Start(ctx)

	select {
	case <-loader.notify:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for warm-up")
	}
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	status := w.Status()
	if !status.IsReady() || status.Origin != repository.OriginLive || status.Players != 1 {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.LastSuccess.IsZero() {
		t.Fatal("expected last success to be recorded")
	}
	if loader.fetches != 1 {
		t.Fatalf("expected one warm-up fetch, got %d", loader.fetches)
	}
}

func TestWarmerReadyOnFallbackButNotSuccessful(t *testing.T) {
	loader := &stubLoader{
		collection: repository.Collection{Players: []players.Player{{ID: "x"}}, Origin: repository.OriginFallback},
		notify:     make(chan struct{}, 1),
	}
	w, _ := New(loader, Config{WarmOnStart: true})
	w.Start(context.Background())
	<-loader.notify
	_ = w.Stop(context.Background())

	status := w.Status()
	if !status.IsReady() {
		t.Fatal("fallback data is servable, expected ready")
	}
	if !status.LastSuccess.IsZero() {
		t.Fatalf("fallback must not count as a live success: %+v", status)
	}
}

func TestWarmerWithoutWarmOnStartIsReadyImmediately(t *testing.T) {
	loader := &stubLoader{}
	w, err := New(loader, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Start(context.Background())
	_ = w.Stop(context.Background())

	if !w.IsReady() {
		t.Fatal("expected lazy mode to report ready")
	}
	if loader.fetches != 0 {
		t.Fatalf("expected no warm-up fetch, got %d", loader.fetches)
	}
}

func TestRefreshNowTracksFailures(t *testing.T) {
	loader := &stubLoader{collection: liveCollection(), refreshErr: errors.New("backend down")}
	rec := metrics.NewRecorder()
	logger, buf := testutil.NewBufferLogger()
	w, _ := New(loader, Config{Logger: logger, Metrics: rec})

	for i := 0; i < unhealthyAfter; i++ {
		if _, err := w.RefreshNow(context.Background()); err == nil {
			t.Fatal("expected refresh error")
		}
	}
	status := w.Status()
	if !status.Degraded() || status.LastError != "backend down" {
		t.Fatalf("unexpected status %+v", status)
	}
	if got := rec.Repository().RefreshErrors; got != unhealthyAfter {
		t.Fatalf("expected %d refresh errors recorded, got %d", unhealthyAfter, got)
	}
	if !strings.Contains(buf.String(), "player cache refresh failed") {
		t.Fatalf("expected failure to be logged, got %s", buf.String())
	}

	loader.refreshErr = nil
	c, err := w.RefreshNow(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Players) != 1 {
		t.Fatalf("expected refreshed collection, got %+v", c)
	}
	status = w.Status()
	if status.Degraded() || status.ConsecutiveFailures != 0 || status.LastError != "" {
		t.Fatalf("expected recovery, got %+v", status)
	}
	if rec.Repository().Refreshes != unhealthyAfter+1 {
		t.Fatalf("expected %d refresh cycles, got %d", unhealthyAfter+1, rec.Repository().Refreshes)
	}
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	if _, err := New(&stubLoader{}, Config{Schedule: "every tuesday"}); err == nil {
		t.Fatal("expected invalid cron schedule to fail")
	}
}

func TestScheduledWarmerStartsAndStops(t *testing.T) {
	loader := &stubLoader{collection: liveCollection()}
	w, err := New(loader, Config{Schedule: "0 3 * * *"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.scheduler == nil {
		t.Fatal("expected scheduler for a valid schedule")
	}
	w.Start(context.Background())
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("second stop should be a no-op: %v", err)
	}
}

func TestScheduledRefreshRunsWithStartContext(t *testing.T) {
	loader := &stubLoader{collection: liveCollection()}
	w, _ := New(loader, Config{})

	w.scheduledRefresh()
	if loader.refreshes != 0 {
		t.Fatal("refresh before Start should be skipped")
	}

	w.Start(context.Background())
	w.scheduledRefresh()
	_ = w.Stop(context.Background())
	if loader.refreshes != 1 {
		t.Fatalf("expected one refresh, got %d", loader.refreshes)
	}
}

func TestStopHonorsContextWhileWarming(t *testing.T) {
	loader := &stubLoader{collection: liveCollection(), gate: make(chan struct{})}
	w, _ := New(loader, Config{WarmOnStart: true})
	w.Start(context.Background())

	// Cancelling the warmer context releases the gated FetchAll.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("expected warm-up to observe cancellation, got %v", err)
	}
	close(loader.gate)
}
