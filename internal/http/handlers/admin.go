package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/prospect-scout/internal/http/requestutil"
	"github.com/preston-bernstein/prospect-scout/internal/logging"
	"github.com/preston-bernstein/prospect-scout/internal/repository"
)

// Refresher rebuilds the player collection on demand.
type Refresher interface {
	RefreshNow(ctx context.Context) (repository.Collection, error)
}

// AdminHandler exposes admin-only endpoints.
type AdminHandler struct {
	refresher Refresher
	token     string
	logger    *slog.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(refresher Refresher, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		refresher: refresher,
		token:     token,
		logger:    logger,
	}
}

// Refresh rebuilds the collection from the backend, bypassing the cache.
// Guarded by the admin bearer token; returns 401 if missing/invalid.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	if !h.authorize(r) {
		logging.Warn(logger, "admin unauthorized",
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", logger)
		return
	}
	if h.refresher == nil {
		writeError(w, r, http.StatusServiceUnavailable, "refresh not configured", logger)
		return
	}

	c, err := h.refresher.RefreshNow(r.Context())
	if err != nil {
		logging.Warn(logger, "admin refresh failed",
			slog.Int("kept", len(c.Players)),
			slog.Any(logging.FieldError, err),
		)
		writeErrorWith(w, r, http.StatusBadGateway, "refresh failed", map[string]any{
			"players": len(c.Players),
			"origin":  c.Origin,
		}, logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"players": len(c.Players),
		"origin":  c.Origin,
	}, logger)
	logging.Info(logger, "admin refresh complete", slog.Int(logging.FieldCount, len(c.Players)))
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	got := requestutil.BearerToken(r)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}
