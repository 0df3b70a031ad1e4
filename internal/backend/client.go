// Package backend is the HTTP client for the scouting model API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/preston-bernstein/prospect-scout/internal/logging"
	"github.com/preston-bernstein/prospect-scout/internal/metrics"
)

// Config controls how the client reaches the backend.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
	// MaxAttempts defaults to a single attempt.
	MaxAttempts int
	Backoff     time.Duration
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
}

// Client issues JSON requests against the backend base URL.
type Client struct {
	baseURL     string
	httpClient  httpDoer
	limiter     *rate.Limiter
	maxAttempts int
	backoffFn   func(attempt int) time.Duration
	logger      *slog.Logger
	metrics     *metrics.Recorder
}

// NewClient constructs a backend client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:     normalizeBaseURL(cfg.BaseURL),
		httpClient:  resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		limiter:     resolveLimiter(cfg.RateLimit, cfg.Burst),
		maxAttempts: resolveAttempts(cfg.MaxAttempts),
		backoffFn:   resolveBackoff(cfg.Backoff),
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: encode %s %s body: %w", method, path, err)
		}
		payload = encoded
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		retryable, err := c.attempt(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable || attempt == c.maxAttempts {
			break
		}

		c.logWarn(ctx, "backend request retry",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.maxAttempts),
			slog.String(logging.FieldPath, path),
			slog.Any(logging.FieldError, err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoffFn(attempt)):
		}
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, out any) (bool, error) {
	endpoint := endpointName(path)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return false, fmt.Errorf("backend: rate limit wait: %w", err)
		}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return false, fmt.Errorf("backend: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordBackendAttempt(endpoint, time.Since(start), err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return true, fmt.Errorf("backend: %s %s: %w: %w", method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		statusErr := &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
		c.metrics.RecordBackendAttempt(endpoint, time.Since(start), statusErr)
		if resp.StatusCode == http.StatusTooManyRequests {
			c.metrics.RecordRateLimit(endpoint, parseRetryAfter(resp.Header.Get("Retry-After")))
		}
		return statusErr.Retryable(), statusErr
	}

	err = decodeBody(resp.Body, out)
	c.metrics.RecordBackendAttempt(endpoint, time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("backend: decode %s %s: %w", method, path, err)
	}
	return false, nil
}

// decodeBody keeps numbers as json.Number so loosely typed payloads stay lossless.
func decodeBody(r io.Reader, out any) error {
	if out == nil {
		_, err := io.Copy(io.Discard, r)
		return err
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Client) logWarn(ctx context.Context, msg string, args ...any) {
	logging.Warn(logging.FromContext(ctx, c.logger), msg, args...)
}
