// Package warmer fills the player cache on boot and refreshes it on a cron
// schedule.
package warmer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/preston-bernstein/prospect-scout/internal/logging"
	"github.com/preston-bernstein/prospect-scout/internal/metrics"
	"github.com/preston-bernstein/prospect-scout/internal/repository"
)

// unhealthyAfter is the number of consecutive refresh failures after which
// Status reports the warmer as degraded.
const unhealthyAfter = 3

var errNotStarted = errors.New("warmer not started")

// Loader is the repository surface the warmer drives.
type Loader interface {
	FetchAll(ctx context.Context) repository.Collection
	Refresh(ctx context.Context) (repository.Collection, error)
}

// Config controls warming behavior.
type Config struct {
	WarmOnStart bool
	// Schedule is a five-field cron expression; empty disables refresh.
	Schedule string
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

// Warmer keeps the collection cache populated.
type Warmer struct {
	loader      Loader
	logger      *slog.Logger
	metrics     *metrics.Recorder
	warmOnStart bool
	scheduler   gocron.Scheduler
	now         func() time.Time

	startMu  sync.Mutex
	started  bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of warming and refresh.
type Status struct {
	Warmed              bool              `json:"warmed"`
	Origin              repository.Origin `json:"origin,omitempty"`
	Players             int               `json:"players"`
	ConsecutiveFailures int               `json:"consecutiveFailures"`
	LastError           string            `json:"lastError,omitempty"`
	LastAttempt         time.Time         `json:"lastAttempt"`
	LastSuccess         time.Time         `json:"lastSuccess"`
}

// IsReady reports whether a collection has been produced.
func (s Status) IsReady() bool {
	return s.Warmed
}

// Degraded reports repeated refresh failures.
func (s Status) Degraded() bool {
	return s.ConsecutiveFailures >= unhealthyAfter
}

// New constructs a Warmer. An invalid cron schedule is an error. When
// warming on start is disabled the warmer reports ready at once and the
// first request loads lazily.
func New(loader Loader, cfg Config) (*Warmer, error) {
	w := &Warmer{
		loader:      loader,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		warmOnStart: cfg.WarmOnStart,
		now:         time.Now,
	}
	w.status.Warmed = !cfg.WarmOnStart

	schedule := strings.TrimSpace(cfg.Schedule)
	if schedule == "" {
		return w, nil
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("warmer: create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.CronJob(schedule, false),
		gocron.NewTask(w.scheduledRefresh),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("warmer: schedule %q: %w", schedule, err)
	}
	w.scheduler = s
	return w, nil
}

// Start warms the cache in the background and starts the schedule. It is a
// no-op after the first call.
func (w *Warmer) Start(ctx context.Context) {
	w.startMu.Lock()
	defer w.startMu.Unlock()
	if w.started {
		return
	}
	w.started = true
	w.ctx, w.cancel = context.WithCancel(ctx)

	logging.Info(w.logger, "warmer started",
		slog.Bool("warm_on_start", w.warmOnStart),
		slog.Bool("scheduled", w.scheduler != nil),
	)
	if w.warmOnStart {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.warm(w.ctx)
		}()
	}
	if w.scheduler != nil {
		w.scheduler.Start()
	}
}

// Stop halts the schedule and waits for the boot warm-up, up to ctx.
// Scheduler shutdown waits for a running refresh on its own.
func (w *Warmer) Stop(ctx context.Context) error {
	var err error
	w.stopOnce.Do(func() {
		w.startMu.Lock()
		cancel := w.cancel
		w.startMu.Unlock()
		if cancel != nil {
			cancel()
		}
		if w.scheduler != nil {
			if shutdownErr := w.scheduler.Shutdown(); shutdownErr != nil {
				err = fmt.Errorf("warmer: shutdown scheduler: %w", shutdownErr)
			}
		}

		done := make(chan struct{})
		go func() {
			w.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = errors.Join(err, ctx.Err())
		}
		logging.Info(w.logger, "warmer stopped")
	})
	return err
}

// RefreshNow rebuilds the collection immediately, bypassing the cache.
func (w *Warmer) RefreshNow(ctx context.Context) (repository.Collection, error) {
	return w.refresh(ctx)
}

// Status returns a snapshot of the warmer's recent health.
func (w *Warmer) Status() Status {
	w.statusMu.RLock()
	defer w.statusMu.RUnlock()
	return w.status
}

// IsReady reports whether the service has a collection to serve.
func (w *Warmer) IsReady() bool {
	return w.Status().IsReady()
}

func (w *Warmer) warm(ctx context.Context) {
	start := w.now()
	w.recordAttempt(start)
	c := w.loader.FetchAll(ctx)
	w.recordCollection(c, start)
	logging.Info(logging.FromContext(ctx, w.logger), "player cache warmed",
		slog.String(logging.FieldOrigin, string(c.Origin)),
		slog.Int(logging.FieldCount, len(c.Players)),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
}

func (w *Warmer) scheduledRefresh() {
	w.startMu.Lock()
	ctx := w.ctx
	w.startMu.Unlock()
	if ctx == nil {
		logging.Warn(w.logger, "scheduled refresh skipped", slog.Any(logging.FieldError, errNotStarted))
		return
	}
	_, _ = w.refresh(ctx)
}

func (w *Warmer) refresh(ctx context.Context) (repository.Collection, error) {
	start := w.now()
	w.recordAttempt(start)
	c, err := w.loader.Refresh(ctx)
	w.metrics.RecordRefreshCycle(time.Since(start), err)
	logger := logging.FromContext(ctx, w.logger)
	if err != nil {
		w.recordFailure(err, c)
		logging.Error(logger, "player cache refresh failed", err,
			slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
		)
		return c, err
	}
	w.recordCollection(c, start)
	logging.Info(logger, "player cache refreshed",
		slog.Int(logging.FieldCount, len(c.Players)),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
	return c, nil
}

func (w *Warmer) recordAttempt(at time.Time) {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	w.status.LastAttempt = at
}

func (w *Warmer) recordCollection(c repository.Collection, at time.Time) {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	w.status.Warmed = true
	w.status.Origin = c.Origin
	w.status.Players = len(c.Players)
	if c.Origin == repository.OriginFallback {
		return
	}
	w.status.ConsecutiveFailures = 0
	w.status.LastError = ""
	w.status.LastSuccess = at
}

func (w *Warmer) recordFailure(err error, c repository.Collection) {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	w.status.ConsecutiveFailures++
	w.status.LastError = err.Error()
	if len(c.Players) > 0 {
		w.status.Warmed = true
		w.status.Origin = c.Origin
		w.status.Players = len(c.Players)
	}
}
