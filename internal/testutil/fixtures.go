package testutil

import (
	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
)

// SamplePlayer returns a minimal normalized player with the given name.
func SamplePlayer(name, school, position string, ppg, score float64) players.Player {
	id := players.Slugify(name)
	return players.Player{
		ID:                id,
		Name:              name,
		HeadshotURL:       players.ProspectHeadshot(id),
		School:            school,
		Year:              "Junior",
		Position:          position,
		Height:            players.Placeholder,
		Weight:            players.Placeholder,
		Archetype:         "Two-Way Wing",
		NBAComp:           players.Placeholder,
		NBAComparisons:    []players.Comparison{},
		Stats:             players.Stats{PPG: ppg},
		CareerOutcomes:    []players.CareerOutcome{},
		SeasonLog:         []players.SeasonLog{},
		Strengths:         []string{},
		Weaknesses:        []string{},
		DraftabilityScore: score,
	}
}

// ProfilePayload is a backend /player response for the given name.
func ProfilePayload(name, school string, score float64) map[string]any {
	return map[string]any{
		"id":                players.Slugify(name),
		"name":              name,
		"school":            school,
		"position":          "PG",
		"archetype":         "Floor General",
		"draftabilityScore": score,
		"stats":             map[string]any{"ppg": 15.0, "rpg": 4.0, "apg": 5.0},
	}
}
