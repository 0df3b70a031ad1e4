package normalize

import "github.com/preston-bernstein/prospect-scout/internal/domain/players"

// minutesPerTeamGame converts Min_per (share of team minutes) into minutes.
const minutesPerTeamGame = 40.0

func fromArchetype(fields map[string]any, compRows []map[string]any) players.Player {
	if fields == nil {
		fields = map[string]any{}
	}
	id, name := identity(fields, "player", "player_name", "name")
	stats, ok := object(fields["stats"])
	if !ok {
		stats = fields
	}

	p := players.Player{
		ID:                  id,
		Name:                name,
		School:              textOr(fields, "school", "team"),
		Year:                textOr(fields, "year", "yr"),
		Position:            textOr(fields, "position", "pos"),
		Height:              textOr(fields, "height", "ht"),
		Weight:              textOr(fields, "weight"),
		Archetype:           textOr(fields, "archetype"),
		ArchetypeConfidence: numberOr(fields, "confidence", "archetypeConfidence"),
		Stats:               totalsToStats(stats),
		CareerOutcomes:      outcomes(fields["careerOutcomes"]),
		CareerProjections:   projections(firstObject(fields, "projections", "careerProjections")),
		SeasonLog:           seasons(fields["seasonLog"]),
		Strengths:           texts(fields["strengths"]),
		Weaknesses:          texts(fields["weaknesses"]),
		DraftabilityScore:   numberOr(fields, "draftability_score", "draftabilityScore"),
	}
	if p.DraftabilityScore == 0 {
		if proj, ok := object(fields["projections"]); ok {
			p.DraftabilityScore = numberOr(proj, "draftability_score")
		}
	}
	p.HeadshotURL, _ = firstText(fields, "headshotUrl", "headshot_url")

	comps := make([]compDraft, 0, len(compRows))
	for _, row := range compRows {
		if row == nil {
			continue
		}
		compName, _ := firstText(row, "Player", "player", "name")
		team, _ := firstText(row, "Team", "team")
		pos, _ := firstText(row, "Pos", "pos", "position")
		headshot, _ := firstText(row, "headshotUrl", "headshot_url")
		score, hasScore := firstNumber(row, "similarity_score", "matchScore")
		games, _ := firstNumber(row, "G", "GP")
		comps = append(comps, newComparison(
			players.DisplayName(compName), team, pos, headshot,
			score, hasScore,
			texts(row["similarities"]), texts(row["differences"]),
			players.ComparisonStats{
				PPG: players.PerGame(numberOr(row, "PTS"), games),
				RPG: players.PerGame(numberOr(row, "TRB"), games),
				APG: players.PerGame(numberOr(row, "AST"), games),
			},
		))
	}
	return finish(p, comps)
}

// totalsToStats derives per-game numbers from season totals.
func totalsToStats(m map[string]any) players.Stats {
	games, _ := firstNumber(m, "GP", "G")
	s := players.Stats{
		PPG:      players.PerGame(numberOr(m, "PTS"), games),
		RPG:      players.PerGame(numberOr(m, "TRB"), games),
		APG:      players.PerGame(numberOr(m, "AST"), games),
		SPG:      players.PerGame(numberOr(m, "STL"), games),
		BPG:      players.PerGame(numberOr(m, "BLK"), games),
		TOPG:     players.PerGame(numberOr(m, "TOV"), games),
		FGPct:    players.Round1(players.NormalizeProbability(numberOr(m, "FG_per"))),
		ThreePct: players.Round1(players.NormalizeProbability(numberOr(m, "TP_per"))),
		FTPct:    players.Round1(players.NormalizeProbability(numberOr(m, "FT_per"))),
	}
	if minutes, ok := firstNumber(m, "MP"); ok {
		s.MPG = players.PerGame(minutes, games)
	} else {
		s.MPG = players.Round1(numberOr(m, "Min_per") * minutesPerTeamGame / 100)
	}
	return s
}

func firstObject(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if obj, ok := object(m[k]); ok {
			return obj
		}
	}
	return nil
}
