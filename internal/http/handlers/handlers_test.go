package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
	"github.com/preston-bernstein/prospect-scout/internal/repository"
	"github.com/preston-bernstein/prospect-scout/internal/saved"
	"github.com/preston-bernstein/prospect-scout/internal/testutil"
	"github.com/preston-bernstein/prospect-scout/internal/warmer"
)

type stubReader struct {
	collection repository.Collection
	byIDErr    error
	fetchAll   int
}

func (s *stubReader) FetchAll(context.Context) repository.Collection {
	s.fetchAll++
	return s.collection
}

func (s *stubReader) FetchByID(_ context.Context, id string) (players.Player, error) {
	if s.byIDErr != nil {
		return players.Player{}, s.byIDErr
	}
	for _, p := range s.collection.Players {
		if p.ID == id {
			return p, nil
		}
	}
	return players.Player{}, repository.ErrNotFound
}

func sampleCollection() repository.Collection {
	return repository.Collection{
		Origin: repository.OriginLive,
		Players: []players.Player{
			testutil.SamplePlayer("Marcus Williams", "Duke", "PG", 18.5, 88),
			testutil.SamplePlayer("Jaylen Carter", "Kentucky", "SG", 16.2, 82),
			testutil.SamplePlayer("Derek Johnson", "Duke", "C", 11.4, 75),
		},
	}
}

// routes mirrors the production route table for handler tests.
func routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Get("/api/players", h.ListPlayers)
	r.Get("/api/players/{id}", h.PlayerByID)
	r.Get("/api/facets", h.Facets)
	r.Get("/api/saved", h.SavedPlayers)
	r.Get("/api/saved/{id}", h.SavedStatus)
	r.Post("/api/saved/{id}", h.ToggleSaved)
	return r
}

func newTestHandler(reader PlayerReader, set SavedSet, statusFn func() warmer.Status) (*Handler, http.Handler) {
	logger, _ := testutil.NewBufferLogger()
	h := NewHandler(reader, set, logger, statusFn)
	return h, routes(h)
}

func TestHealth(t *testing.T) {
	_, router := newTestHandler(&stubReader{}, nil, nil)

	rr := testutil.Serve(router, http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestHealthShuttingDownReturnsServiceUnavailable(t *testing.T) {
	h, _ := newTestHandler(&stubReader{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	req = req.WithContext(ctx)
	rr := testutil.ServeRequest(http.HandlerFunc(h.Health), req)

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["error"] != "shutting down" {
		t.Fatalf("unexpected error %q", resp["error"])
	}
}

func TestReady(t *testing.T) {
	_, router := newTestHandler(&stubReader{}, nil, nil)
	testutil.AssertStatus(t, testutil.Serve(router, http.MethodGet, "/ready", nil), http.StatusOK)

	status := warmer.Status{}
	_, router = newTestHandler(&stubReader{}, nil, func() warmer.Status { return status })
	rr := testutil.Serve(router, http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["error"] != "not ready" {
		t.Fatalf("unexpected error %q", resp["error"])
	}

	status = warmer.Status{Warmed: true, Origin: repository.OriginFallback, Players: 20}
	testutil.AssertStatus(t, testutil.Serve(router, http.MethodGet, "/ready", nil), http.StatusOK)
}

func TestListPlayersDefaults(t *testing.T) {
	_, router := newTestHandler(&stubReader{collection: sampleCollection()}, nil, nil)

	rr := testutil.Serve(router, http.MethodGet, "/api/players", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp listResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.TotalItems != 3 || resp.TotalPages != 1 || resp.Number != 1 || resp.Size != 10 {
		t.Fatalf("unexpected page metadata %+v", resp.Page)
	}
	if resp.Origin != repository.OriginLive {
		t.Fatalf("expected origin live, got %s", resp.Origin)
	}
	if resp.Items[0].ID != "marcus-williams" || resp.Items[2].ID != "derek-johnson" {
		t.Fatalf("expected ranked items, got %+v", resp.Items)
	}
}

func TestListPlayersAppliesQueryParams(t *testing.T) {
	set := saved.New(saved.NewMemoryKV(), nil)
	set.Toggle("derek-johnson")
	_, router := newTestHandler(&stubReader{collection: sampleCollection()}, set, nil)

	cases := []struct {
		path string
		want []string
	}{
		{"/api/players?q=duke", []string{"marcus-williams", "derek-johnson"}},
		{"/api/players?school=kentucky", []string{"jaylen-carter"}},
		{"/api/players?school=all&position=C", []string{"derek-johnson"}},
		{"/api/players?minPpg=16", []string{"marcus-williams", "jaylen-carter"}},
		{"/api/players?saved=true", []string{"derek-johnson"}},
		{"/api/players?pageSize=1&page=2", []string{"jaylen-carter"}},
		{"/api/players?pageSize=1&page=99", []string{"derek-johnson"}},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rr := testutil.Serve(router, http.MethodGet, tc.path, nil)
			testutil.AssertStatus(t, rr, http.StatusOK)
			var resp listResponse
			testutil.DecodeJSON(t, rr, &resp)
			got := make([]string, len(resp.Items))
			for i, p := range resp.Items {
				got[i] = p.ID
			}
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestListPlayersRejectsInvalidNumbers(t *testing.T) {
	_, router := newTestHandler(&stubReader{collection: sampleCollection()}, nil, nil)

	for _, path := range []string{
		"/api/players?minPpg=lots",
		"/api/players?minRpg=NaN",
		"/api/players?page=two",
		"/api/players?pageSize=1.5",
		"/api/players?saved=maybe",
	} {
		rr := testutil.Serve(router, http.MethodGet, path, nil)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	}
}

func TestPlayerByID(t *testing.T) {
	_, router := newTestHandler(&stubReader{collection: sampleCollection()}, nil, nil)

	rr := testutil.Serve(router, http.MethodGet, "/api/players/jaylen-carter", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var p players.Player
	testutil.DecodeJSON(t, rr, &p)
	if p.Name != "Jaylen Carter" {
		t.Fatalf("unexpected player %+v", p)
	}
}

func TestPlayerByIDNotFoundIncludesSuggestions(t *testing.T) {
	_, router := newTestHandler(&stubReader{collection: sampleCollection()}, nil, nil)

	rr := testutil.Serve(router, http.MethodGet, "/api/players/jaylen-carte", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)

	var resp struct {
		Error       string `json:"error"`
		Suggestions []struct {
			ID string `json:"id"`
		} `json:"suggestions"`
	}
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Error != "player not found" {
		t.Fatalf("unexpected error %q", resp.Error)
	}
	if len(resp.Suggestions) == 0 || resp.Suggestions[0].ID != "jaylen-carter" {
		t.Fatalf("expected jaylen-carter suggested, got %+v", resp.Suggestions)
	}
}

func TestPlayerByIDUnavailable(t *testing.T) {
	reader := &stubReader{byIDErr: fmt.Errorf("lookup: %w", repository.ErrUnavailable)}
	_, router := newTestHandler(reader, nil, nil)

	rr := testutil.Serve(router, http.MethodGet, "/api/players/anyone", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}

func TestPlayerByIDUnexpectedError(t *testing.T) {
	reader := &stubReader{byIDErr: errors.New("boom")}
	_, router := newTestHandler(reader, nil, nil)

	rr := testutil.Serve(router, http.MethodGet, "/api/players/anyone", nil)
	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
}

func TestPlayerByIDRejectsInvalidID(t *testing.T) {
	_, router := newTestHandler(&stubReader{}, nil, nil)

	rr := testutil.Serve(router, http.MethodGet, "/api/players/%20", nil)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	rr = testutil.Serve(router, http.MethodGet, "/api/players/a%2Fb", nil)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestFacets(t *testing.T) {
	_, router := newTestHandler(&stubReader{collection: sampleCollection()}, nil, nil)

	rr := testutil.Serve(router, http.MethodGet, "/api/facets", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var resp facetsResponse
	testutil.DecodeJSON(t, rr, &resp)
	if strings.Join(resp.Schools, ",") != "Duke,Kentucky" || strings.Join(resp.Positions, ",") != "C,PG,SG" {
		t.Fatalf("unexpected facets %+v", resp)
	}
}

func TestSavedEndpoints(t *testing.T) {
	set := saved.New(saved.NewMemoryKV(), nil)
	reader := &stubReader{collection: sampleCollection()}
	_, router := newTestHandler(reader, set, nil)

	rr := testutil.Serve(router, http.MethodGet, "/api/saved", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var empty savedResponse
	testutil.DecodeJSON(t, rr, &empty)
	if len(empty.IDs) != 0 || empty.Players == nil || empty.Missing == nil {
		t.Fatalf("expected empty non-nil lists, got %+v", empty)
	}
	if reader.fetchAll != 0 {
		t.Fatalf("empty saved set should not load the collection")
	}

	for _, id := range []string{"jaylen-carter", "retired-player"} {
		rr = testutil.Serve(router, http.MethodPost, "/api/saved/"+id, nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		var st savedStatus
		testutil.DecodeJSON(t, rr, &st)
		if st.ID != id || !st.Saved {
			t.Fatalf("expected %s saved, got %+v", id, st)
		}
	}

	rr = testutil.Serve(router, http.MethodGet, "/api/saved/jaylen-carter", nil)
	var st savedStatus
	testutil.DecodeJSON(t, rr, &st)
	if !st.Saved {
		t.Fatalf("expected saved status true")
	}

	rr = testutil.Serve(router, http.MethodGet, "/api/saved", nil)
	var resp savedResponse
	testutil.DecodeJSON(t, rr, &resp)
	if strings.Join(resp.IDs, ",") != "jaylen-carter,retired-player" {
		t.Fatalf("unexpected ids %v", resp.IDs)
	}
	if len(resp.Players) != 1 || resp.Players[0].ID != "jaylen-carter" {
		t.Fatalf("unexpected players %+v", resp.Players)
	}
	if strings.Join(resp.Missing, ",") != "retired-player" {
		t.Fatalf("unexpected missing %v", resp.Missing)
	}

	rr = testutil.Serve(router, http.MethodPost, "/api/saved/jaylen-carter", nil)
	testutil.DecodeJSON(t, rr, &st)
	if st.Saved {
		t.Fatalf("expected second toggle to unsave")
	}
}

func TestToggleSavedWithoutStore(t *testing.T) {
	_, router := newTestHandler(&stubReader{}, nil, nil)
	rr := testutil.Serve(router, http.MethodPost, "/api/saved/a", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}
