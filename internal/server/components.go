package server

import (
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/prospect-scout/internal/backend"
	"github.com/preston-bernstein/prospect-scout/internal/config"
	"github.com/preston-bernstein/prospect-scout/internal/fallback"
	"github.com/preston-bernstein/prospect-scout/internal/metrics"
	"github.com/preston-bernstein/prospect-scout/internal/repository"
	"github.com/preston-bernstein/prospect-scout/internal/saved"
	"github.com/preston-bernstein/prospect-scout/internal/store"
)

// Components are the domain objects shared by the HTTP server and the CLI.
type Components struct {
	Repository *repository.Repository
	Saved      *saved.Store

	closeSaved func() error
}

// NewComponents builds the repository and saved set from configuration.
func NewComponents(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Components, error) {
	client := backend.NewClient(backend.Config{
		BaseURL:     cfg.Backend.BaseURL,
		Timeout:     cfg.Backend.Timeout,
		RateLimit:   cfg.Backend.RateLimit,
		Burst:       cfg.Backend.Burst,
		MaxAttempts: cfg.Backend.MaxAttempts,
		Backoff:     cfg.Backend.Backoff,
		Logger:      logger,
		Metrics:     recorder,
	})
	return newComponentsWithBackend(cfg, client, logger, recorder)
}

func newComponentsWithBackend(cfg config.Config, b repository.Backend, logger *slog.Logger, recorder *metrics.Recorder) (*Components, error) {
	source, err := repository.NewSource(cfg.Backend.Shape, b)
	if err != nil {
		return nil, err
	}
	dataset, err := fallback.Load()
	if err != nil {
		return nil, fmt.Errorf("load fallback dataset: %w", err)
	}
	repo := repository.New(repository.Config{
		Source:      source,
		Store:       store.NewPlayerStore(),
		Fallback:    dataset,
		Concurrency: cfg.Backend.Concurrency,
		Logger:      logger,
		Metrics:     recorder,
	})

	kv, closeKV, err := saved.Open(cfg.Saved.Driver, cfg.Saved.Path)
	if err != nil {
		return nil, fmt.Errorf("open saved set: %w", err)
	}
	return &Components{
		Repository: repo,
		Saved:      saved.New(kv, logger),
		closeSaved: closeKV,
	}, nil
}

// Close releases the saved-set storage.
func (c *Components) Close() error {
	if c == nil || c.closeSaved == nil {
		return nil
	}
	err := c.closeSaved()
	c.closeSaved = nil
	if err != nil {
		return fmt.Errorf("close saved set: %w", err)
	}
	return nil
}
