package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/preston-bernstein/prospect-scout/internal/backend"
)

// NewBackendServer serves the backend HTTP contract from stub. The server
// is closed when the test ends.
func NewBackendServer(t *testing.T, stub *StubBackend) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /players", func(w http.ResponseWriter, r *http.Request) {
		names, err := stub.PlayerIndex(r.Context())
		respond(w, names, err)
	})
	mux.HandleFunc("GET /player/{slug}", func(w http.ResponseWriter, r *http.Request) {
		p, err := stub.PlayerProfile(r.Context(), r.PathValue("slug"))
		respond(w, p, err)
	})
	mux.HandleFunc("GET /archetype/{name}", func(w http.ResponseWriter, r *http.Request) {
		a, err := stub.Archetype(r.Context(), r.PathValue("name"))
		respond(w, a, err)
	})
	mux.HandleFunc("GET /comps/{name}", func(w http.ResponseWriter, r *http.Request) {
		c, err := stub.Comps(r.Context(), r.PathValue("name"))
		respond(w, c, err)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func respond(w http.ResponseWriter, body any, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		var se *backend.StatusError
		if errors.As(err, &se) {
			status = se.StatusCode
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
