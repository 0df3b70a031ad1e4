package normalize

import (
	"fmt"
	"math"

	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
)

func fromLegacy(fields map[string]any) players.Player {
	if fields == nil {
		return Empty()
	}
	id, name := identity(fields, "name")
	ncaa, _ := object(fields["ncaaStats"])

	p := players.Player{
		ID:                  id,
		Name:                name,
		School:              textOr(fields, "college", "school"),
		Year:                textOr(fields, "year"),
		Position:            textOr(fields, "position"),
		Height:              legacyHeight(fields["height"]),
		Weight:              legacyWeight(fields["weight"]),
		Archetype:           textOr(fields, "predictedArchetype", "archetype"),
		ArchetypeConfidence: numberOr(fields, "archetypeConfidence"),
		Stats: players.Stats{
			PPG:      numberOr(ncaa, "ppg"),
			RPG:      numberOr(ncaa, "rpg"),
			APG:      numberOr(ncaa, "apg"),
			SPG:      numberOr(ncaa, "spg"),
			BPG:      numberOr(ncaa, "bpg"),
			FGPct:    players.NormalizeProbability(numberOr(ncaa, "fg_percentage")),
			ThreePct: players.NormalizeProbability(numberOr(ncaa, "three_pt_percentage")),
			FTPct:    players.NormalizeProbability(numberOr(ncaa, "ft_percentage")),
		},
		Strengths:         texts(fields["strengths"]),
		Weaknesses:        texts(fields["concerns"]),
		DraftabilityScore: numberOr(fields, "draftabilityScore"),
	}
	p.HeadshotURL, _ = firstText(fields, "headshotUrl")

	var comps []compDraft
	if comp, ok := firstText(fields, "nbaComparison", "nbaComp"); ok {
		comps = append(comps, newComparison(players.DisplayName(comp), "", "", "", 0, false, nil, nil, players.ComparisonStats{}))
	}
	return finish(p, comps)
}

// legacyHeight renders bare inches as feet and inches; strings pass through.
func legacyHeight(val any) string {
	if s, ok := val.(string); ok {
		if t, ok := text(s); ok {
			return t
		}
		return players.Placeholder
	}
	inches, ok := number(val)
	if !ok || inches <= 0 {
		return players.Placeholder
	}
	total := int(math.Round(inches))
	return fmt.Sprintf("%d'%d\"", total/12, total%12)
}

func legacyWeight(val any) string {
	if s, ok := val.(string); ok {
		if t, ok := text(s); ok {
			return t
		}
		return players.Placeholder
	}
	lbs, ok := number(val)
	if !ok || lbs <= 0 {
		return players.Placeholder
	}
	return fmt.Sprintf("%d lbs", int(math.Round(lbs)))
}
