package backend

import (
	"context"
	"net/http"
	"reflect"
	"testing"
)

func TestPlayerIndexStringifiesEntries(t *testing.T) {
	client := newTestClient(Config{}, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/players" {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `["marcus williams", 42, "  ", null, "jaylen carter"]`), nil
	})

	names, err := client.PlayerIndex(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"marcus williams", "42", "jaylen carter"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
}

func TestEndpointPaths(t *testing.T) {
	var paths []string
	client := newTestClient(Config{}, func(req *http.Request) (*http.Response, error) {
		paths = append(paths, req.URL.EscapedPath())
		if req.URL.Path == "/api/comps/marcus williams" {
			return jsonResponse(http.StatusOK, `[{"Player":"Jalen Brunson","similarity_score":0.9}]`), nil
		}
		return jsonResponse(http.StatusOK, `{"player":"marcus williams"}`), nil
	})
	ctx := context.Background()

	if _, err := client.PlayerProfile(ctx, " marcus  williams "); err != nil {
		t.Fatalf("profile: %v", err)
	}
	if _, err := client.Archetype(ctx, "marcus williams"); err != nil {
		t.Fatalf("archetype: %v", err)
	}
	comps, err := client.Comps(ctx, "marcus  williams")
	if err != nil {
		t.Fatalf("comps: %v", err)
	}
	if len(comps) != 1 || comps[0]["Player"] != "Jalen Brunson" {
		t.Fatalf("unexpected comps %+v", comps)
	}

	want := []string{
		"/api/player/marcus-williams",
		"/api/archetype/marcus%20williams",
		"/api/comps/marcus%20williams",
	}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
}

func TestEndpointName(t *testing.T) {
	cases := map[string]string{
		"/players":       "players",
		"/player/marcus": "player",
		"/comps/a?x=1":   "comps",
		"":               "root",
		"/archetype/a/b": "archetype",
	}
	for path, want := range cases {
		if got := endpointName(path); got != want {
			t.Fatalf("endpointName(%q) expected %q, got %q", path, want, got)
		}
	}
}
