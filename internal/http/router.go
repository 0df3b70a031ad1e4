package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/preston-bernstein/prospect-scout/internal/http/handlers"
	"github.com/preston-bernstein/prospect-scout/internal/http/middleware"
	"github.com/preston-bernstein/prospect-scout/internal/metrics"
)

// RouterConfig collects what the router mounts. Admin is optional; the
// admin routes exist only when it is set.
type RouterConfig struct {
	Handler        *handlers.Handler
	Admin          *handlers.AdminHandler
	Logger         *slog.Logger
	Metrics        *metrics.Recorder
	AllowedOrigins []string
}

// NewRouter registers HTTP routes on a chi router.
func NewRouter(cfg RouterConfig) nethttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(cfg.Logger, cfg.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(corsHandler(cfg.AllowedOrigins))

	h := cfg.Handler
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Get("/players", h.ListPlayers)
		r.Get("/players/{id}", h.PlayerByID)
		r.Get("/facets", h.Facets)
		r.Get("/saved", h.SavedPlayers)
		r.Get("/saved/{id}", h.SavedStatus)
		r.Post("/saved/{id}", h.ToggleSaved)
	})

	if cfg.Admin != nil {
		r.Post("/admin/refresh", cfg.Admin.Refresh)
	}
	return r
}

func corsHandler(origins []string) func(nethttp.Handler) nethttp.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{nethttp.MethodGet, nethttp.MethodPost, nethttp.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
	return c.Handler
}
