package query

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
)

// suggestThreshold is the minimum similarity for a fuzzy suggestion.
const suggestThreshold = 0.5

// Schools lists the distinct schools, sorted. Placeholders are skipped.
func Schools(items []players.Player) []string {
	return distinct(items, func(p players.Player) string { return p.School })
}

// Positions lists the distinct positions, sorted. Placeholders are skipped.
func Positions(items []players.Player) []string {
	return distinct(items, func(p players.Player) string { return p.Position })
}

func distinct(items []players.Player, field func(players.Player) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range items {
		v := strings.TrimSpace(field(p))
		if v == "" || v == players.Placeholder {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Suggestion is a player id close to a requested one.
type Suggestion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Suggest returns up to limit players whose slug is close to q,
// closest first. Slugs containing the query's letters in order always
// qualify.
func Suggest(items []players.Player, q string, limit int) []Suggestion {
	needle := players.Slugify(q)
	if needle == "" || limit <= 0 {
		return []Suggestion{}
	}

	type scored struct {
		player   players.Player
		distance int
	}
	var candidates []scored
	for _, p := range items {
		if p.ID == "" {
			continue
		}
		distance := fuzzy.LevenshteinDistance(needle, p.ID)
		longest := float64(max(len(needle), len(p.ID)))
		similarity := 1 - float64(distance)/longest
		if similarity < suggestThreshold && !fuzzy.MatchFold(needle, p.ID) {
			continue
		}
		candidates = append(candidates, scored{player: p, distance: distance})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	out := make([]Suggestion, 0, min(limit, len(candidates)))
	for _, c := range candidates {
		if len(out) == limit {
			break
		}
		out = append(out, Suggestion{ID: c.player.ID, Name: c.player.Name})
	}
	return out
}
