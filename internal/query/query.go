// Package query implements the read-side view over a player collection:
// search, filter, rank and paginate. All functions are pure and return
// new slices; inputs are never reordered.
package query

import (
	"math"
	"sort"
	"strings"

	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
)

// DefaultPageSize is the page size used when none is given.
const DefaultPageSize = 10

const allOption = "all"

// Criteria is a conjunction of optional filters. Blank or "all" school and
// position are ignored; nil thresholds are ignored.
type Criteria struct {
	School   string
	Position string
	MinPPG   *float64
	MinRPG   *float64
	MinAPG   *float64
}

// Page is one slice of a ranked result.
type Page struct {
	Items      []players.Player `json:"items"`
	Number     int              `json:"page"`
	Size       int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
	TotalItems int              `json:"totalItems"`
}

// Search keeps players whose name, school, position or archetype contains
// q, ignoring case. A blank query keeps everything.
func Search(items []players.Player, q string) []players.Player {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return clone(items)
	}
	out := make([]players.Player, 0, len(items))
	for _, p := range items {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p players.Player, q string) bool {
	for _, field := range []string{p.Name, p.School, p.Position, p.Archetype} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Filter keeps players satisfying every set criterion.
func Filter(items []players.Player, c Criteria) []players.Player {
	school := selected(c.School)
	position := selected(c.Position)
	out := make([]players.Player, 0, len(items))
	for _, p := range items {
		if school != "" && !strings.EqualFold(strings.TrimSpace(p.School), school) {
			continue
		}
		if position != "" && !strings.EqualFold(strings.TrimSpace(p.Position), position) {
			continue
		}
		if !atLeast(p.Stats.PPG, c.MinPPG) || !atLeast(p.Stats.RPG, c.MinRPG) || !atLeast(p.Stats.APG, c.MinAPG) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func selected(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, allOption) {
		return ""
	}
	return v
}

func atLeast(v float64, floor *float64) bool {
	return floor == nil || v >= *floor
}

// Rank orders players by descending draftability score. Ties keep their
// input order.
func Rank(items []players.Player) []players.Player {
	out := clone(items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DraftabilityScore > out[j].DraftabilityScore
	})
	return out
}

// Paginate returns page number (1-based) of size items. Size <= 0 uses
// DefaultPageSize; the number is clamped to [1, TotalPages]. TotalPages is
// at least 1 even for an empty list.
func Paginate(items []players.Player, size, number int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := int(math.Ceil(float64(total) / float64(size)))
	if pages < 1 {
		pages = 1
	}
	number = max(1, min(number, pages))

	start := (number - 1) * size
	end := min(start+size, total)
	page := make([]players.Player, 0, max(0, end-start))
	if start < total {
		page = append(page, items[start:end]...)
	}
	return Page{Items: page, Number: number, Size: size, TotalPages: pages, TotalItems: total}
}

func clone(items []players.Player) []players.Player {
	out := make([]players.Player, len(items))
	copy(out, items)
	return out
}
