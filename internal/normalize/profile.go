package normalize

import "github.com/preston-bernstein/prospect-scout/internal/domain/players"

func fromProfile(fields map[string]any) players.Player {
	if fields == nil {
		return Empty()
	}
	id, name := identity(fields, "name")
	p := players.Player{
		ID:                  id,
		Name:                name,
		School:              textOr(fields, "school"),
		Year:                textOr(fields, "year"),
		Position:            textOr(fields, "position"),
		Height:              textOr(fields, "height"),
		Weight:              textOr(fields, "weight"),
		Archetype:           textOr(fields, "archetype"),
		ArchetypeConfidence: numberOr(fields, "archetypeConfidence"),
		Stats:               profileStats(fields["stats"]),
		CareerOutcomes:      outcomes(fields["careerOutcomes"]),
		CareerProjections:   projections(fields["careerProjections"]),
		SeasonLog:           seasons(fields["seasonLog"]),
		Strengths:           texts(fields["strengths"]),
		Weaknesses:          texts(fields["weaknesses"]),
		DraftabilityScore:   numberOr(fields, "draftabilityScore"),
	}
	p.HeadshotURL, _ = firstText(fields, "headshotUrl")
	p.NBAComp, _ = firstText(fields, "nbaComp")

	rows := objects(fields["nbaComparisons"])
	comps := make([]compDraft, 0, len(rows))
	for _, row := range rows {
		compName, _ := firstText(row, "name")
		team, _ := firstText(row, "team")
		pos, _ := firstText(row, "position")
		headshot, _ := firstText(row, "headshotUrl")
		score, hasScore := firstNumber(row, "matchScore")
		stats, _ := object(row["stats"])
		comps = append(comps, newComparison(
			players.DisplayName(compName), team, pos, headshot,
			score, hasScore,
			texts(row["similarities"]), texts(row["differences"]),
			players.ComparisonStats{
				PPG: numberOr(stats, "ppg"),
				RPG: numberOr(stats, "rpg"),
				APG: numberOr(stats, "apg"),
			},
		))
	}
	return finish(p, comps)
}

func profileStats(val any) players.Stats {
	m, _ := object(val)
	return players.Stats{
		PPG:      numberOr(m, "ppg"),
		RPG:      numberOr(m, "rpg"),
		APG:      numberOr(m, "apg"),
		SPG:      numberOr(m, "spg"),
		BPG:      numberOr(m, "bpg"),
		FGPct:    numberOr(m, "fgPct"),
		ThreePct: numberOr(m, "threePct"),
		FTPct:    numberOr(m, "ftPct"),
		TOPG:     numberOr(m, "topg"),
		MPG:      numberOr(m, "mpg"),
	}
}
