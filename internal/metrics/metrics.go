package metrics

import (
	"sync"
	"time"
)

type endpointStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type repositoryStats struct {
	cacheHits      int
	fallbacks      map[string]int
	droppedPlayers int
	refreshes      int
	refreshErrors  int
}

// Recorder keeps in-memory counters for backend calls and repository
// outcomes, and mirrors them to OpenTelemetry instruments when configured.
type Recorder struct {
	mu        sync.Mutex
	endpoints map[string]*endpointStats
	repo      repositoryStats
	otel      *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		endpoints: make(map[string]*endpointStats),
		repo:      repositoryStats{fallbacks: make(map[string]int)},
		otel:      otel,
	}
}

// RecordBackendAttempt counts one backend request and keeps its latency.
func (r *Recorder) RecordBackendAttempt(endpoint string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(endpoint)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordBackendAttempt(endpoint, duration, err)
	}
}

// RecordRateLimit tracks a 429 from the backend and the last Retry-After.
func (r *Recorder) RecordRateLimit(endpoint string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(endpoint)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(endpoint, retryAfter)
	}
}

// RecordCacheHit counts a collection served from memory.
func (r *Recorder) RecordCacheHit() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.repo.cacheHits++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.cacheHits, 1)
	}
}

// RecordFallback counts a response served from the bundled dataset.
func (r *Recorder) RecordFallback(reason string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.repo.fallbacks[reason]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordFallback(reason)
	}
}

// RecordDroppedPlayers counts index entries that could not be loaded.
func (r *Recorder) RecordDroppedPlayers(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.mu.Lock()
	r.repo.droppedPlayers += n
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.droppedPlayers, int64(n))
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordRefreshCycle tracks warm and scheduled refresh runs.
func (r *Recorder) RecordRefreshCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.repo.refreshes++
	if err != nil {
		r.repo.refreshErrors++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordRefresh(duration, err)
	}
}

// Snapshot is a copy of the counters for one backend endpoint.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(endpoint string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.endpoints[endpoint]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// RepositorySnapshot is a copy of the repository counters.
type RepositorySnapshot struct {
	CacheHits      int
	Fallbacks      map[string]int
	DroppedPlayers int
	Refreshes      int
	RefreshErrors  int
}

func (r *Recorder) Repository() RepositorySnapshot {
	if r == nil {
		return RepositorySnapshot{Fallbacks: map[string]int{}}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	fallbacks := make(map[string]int, len(r.repo.fallbacks))
	for k, v := range r.repo.fallbacks {
		fallbacks[k] = v
	}
	return RepositorySnapshot{
		CacheHits:      r.repo.cacheHits,
		Fallbacks:      fallbacks,
		DroppedPlayers: r.repo.droppedPlayers,
		Refreshes:      r.repo.refreshes,
		RefreshErrors:  r.repo.refreshErrors,
	}
}

// TotalFallbacks sums fallbacks across reasons.
func (s RepositorySnapshot) TotalFallbacks() int {
	total := 0
	for _, n := range s.Fallbacks {
		total += n
	}
	return total
}

// caller holds r.mu.
func (r *Recorder) ensureStats(endpoint string) *endpointStats {
	stats, ok := r.endpoints[endpoint]
	if !ok {
		stats = &endpointStats{}
		r.endpoints[endpoint] = stats
	}
	return stats
}
