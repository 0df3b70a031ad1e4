package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
	"github.com/preston-bernstein/prospect-scout/internal/logging"
	"github.com/preston-bernstein/prospect-scout/internal/query"
	"github.com/preston-bernstein/prospect-scout/internal/repository"
	"github.com/preston-bernstein/prospect-scout/internal/warmer"
)

const suggestionLimit = 3

// PlayerReader is the repository surface the handlers read from.
type PlayerReader interface {
	FetchAll(ctx context.Context) repository.Collection
	FetchByID(ctx context.Context, id string) (players.Player, error)
}

// SavedSet is the saved-player store.
type SavedSet interface {
	IsSaved(id string) bool
	Toggle(id string) bool
	List() []string
}

// Handler wires HTTP routes to the repository, query layer and saved set.
type Handler struct {
	players  PlayerReader
	saved    SavedSet
	logger   *slog.Logger
	statusFn func() warmer.Status
}

// NewHandler constructs a Handler. A nil statusFn reports ready.
func NewHandler(players PlayerReader, saved SavedSet, logger *slog.Logger, statusFn func() warmer.Status) *Handler {
	return &Handler{
		players:  players,
		saved:    saved,
		logger:   logger,
		statusFn: statusFn,
	}
}

type listResponse struct {
	query.Page
	Origin repository.Origin `json:"origin"`
}

type facetsResponse struct {
	Schools   []string `json:"schools"`
	Positions []string `json:"positions"`
}

type savedResponse struct {
	IDs     []string         `json:"ids"`
	Players []players.Player `json:"players"`
	Missing []string         `json:"missing"`
}

type savedStatus struct {
	ID    string `json:"id"`
	Saved bool   `json:"saved"`
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "warmer": status}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// ListPlayers returns one page of the searched, filtered and ranked collection.
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	view, err := parseView(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
		return
	}

	c := h.players.FetchAll(r.Context())
	page := query.Apply(c.Players, view, h.isSaved)
	logging.Info(logger, "served players",
		slog.String(logging.FieldOrigin, string(c.Origin)),
		slog.Int(logging.FieldCount, len(page.Items)),
		slog.Int("total", page.TotalItems),
	)
	writeJSON(w, http.StatusOK, listResponse{Page: page, Origin: c.Origin}, logger)
}

// PlayerByID returns a single player, with suggestions when it is unknown.
func (h *Handler) PlayerByID(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid player id", logger)
		return
	}

	p, err := h.players.FetchByID(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, p, logger)
	case errors.Is(err, repository.ErrNotFound):
		suggestions := query.Suggest(h.players.FetchAll(r.Context()).Players, id, suggestionLimit)
		writeErrorWith(w, r, http.StatusNotFound, "player not found", map[string]any{"suggestions": suggestions}, logger)
	case errors.Is(err, repository.ErrUnavailable):
		logging.Warn(logger, "player lookup unavailable", slog.String(logging.FieldPlayerID, id), slog.Any(logging.FieldError, err))
		writeError(w, r, http.StatusServiceUnavailable, "backend unavailable", logger)
	default:
		logging.Error(logger, "player lookup failed", err, slog.String(logging.FieldPlayerID, id))
		writeError(w, r, http.StatusInternalServerError, "internal error", logger)
	}
}

// Facets lists the schools and positions present in the collection.
func (h *Handler) Facets(w http.ResponseWriter, r *http.Request) {
	c := h.players.FetchAll(r.Context())
	writeJSON(w, http.StatusOK, facetsResponse{
		Schools:   query.Schools(c.Players),
		Positions: query.Positions(c.Players),
	}, loggerFromContext(r, h.logger))
}

// SavedPlayers resolves the saved ids against the collection. Ids with no
// matching player are reported as missing.
func (h *Handler) SavedPlayers(w http.ResponseWriter, r *http.Request) {
	ids := h.savedIDs()
	resp := savedResponse{IDs: ids, Players: []players.Player{}, Missing: []string{}}
	if len(ids) > 0 {
		resp.Players, resp.Missing = query.Resolve(h.players.FetchAll(r.Context()).Players, ids)
	}
	writeJSON(w, http.StatusOK, resp, loggerFromContext(r, h.logger))
}

// SavedStatus reports whether one id is saved.
func (h *Handler) SavedStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid player id", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, savedStatus{ID: id, Saved: h.isSaved(id)}, loggerFromContext(r, h.logger))
}

// ToggleSaved flips one id in the saved set.
func (h *Handler) ToggleSaved(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid player id", logger)
		return
	}
	if h.saved == nil {
		writeError(w, r, http.StatusServiceUnavailable, "saved set not configured", logger)
		return
	}
	saved := h.saved.Toggle(id)
	logging.Info(logger, "saved set toggled", slog.String(logging.FieldPlayerID, id), slog.Bool("saved", saved))
	writeJSON(w, http.StatusOK, savedStatus{ID: id, Saved: saved}, logger)
}

func (h *Handler) isSaved(id string) bool {
	return h.saved != nil && h.saved.IsSaved(id)
}

func (h *Handler) savedIDs() []string {
	if h.saved == nil {
		return []string{}
	}
	return h.saved.List()
}

// pathID reads and unescapes the {id} route parameter.
func pathID(r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "id")
	id, err := url.PathUnescape(raw)
	if err != nil {
		return "", false
	}
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "/\t") {
		return "", false
	}
	return id, true
}
