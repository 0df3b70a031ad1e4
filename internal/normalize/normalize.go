package normalize

import (
	"cmp"
	"slices"

	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
)

// Normalize turns any raw record into a fully populated Player. It never
// fails: missing or malformed fields fall back to defaults.
func Normalize(r Record) players.Player {
	switch v := r.(type) {
	case ProfileRecord:
		return fromProfile(v.Fields)
	case *ProfileRecord:
		if v != nil {
			return fromProfile(v.Fields)
		}
	case ArchetypeRecord:
		return fromArchetype(v.Fields, v.Comps)
	case *ArchetypeRecord:
		if v != nil {
			return fromArchetype(v.Fields, v.Comps)
		}
	case LegacyRecord:
		return fromLegacy(v.Fields)
	case *LegacyRecord:
		if v != nil {
			return fromLegacy(v.Fields)
		}
	}
	return Empty()
}

// Empty is the all-defaults Player produced for an absent record.
func Empty() players.Player {
	return finish(players.Player{
		Name:      players.Placeholder,
		School:    players.Placeholder,
		Year:      players.Placeholder,
		Position:  players.Placeholder,
		Height:    players.Placeholder,
		Weight:    players.Placeholder,
		Archetype: players.Placeholder,
		NBAComp:   players.Placeholder,
	}, nil)
}

// identity resolves display name and id. The id is always the slug of the
// display name; a payload carrying only an id gets its name from that slug.
func identity(fields map[string]any, nameKeys ...string) (id, name string) {
	if raw, ok := firstText(fields, nameKeys...); ok {
		name = players.DisplayName(raw)
	} else if rawID, ok := text(fields["id"]); ok {
		name = players.DisplayName(players.NameFromSlug(rawID))
	}
	id = players.Slugify(name)
	if id == "" {
		return "", players.Placeholder
	}
	return id, name
}

// compDraft is a comparison before synthetic scores are assigned.
type compDraft struct {
	comp     players.Comparison
	hasScore bool
}

func newComparison(name, team, position, headshot string, score float64, hasScore bool, sims, diffs []string, stats players.ComparisonStats) compDraft {
	if name == "" {
		name = players.Placeholder
	}
	if team == "" {
		team = players.Placeholder
	}
	if position == "" {
		position = players.Placeholder
	}
	if headshot == "" {
		headshot = players.ComparisonHeadshot(name)
	}
	if sims == nil {
		sims = []string{}
	}
	if diffs == nil {
		diffs = []string{}
	}
	if hasScore {
		score = players.Clamp(players.NormalizeProbability(score), 0, 100)
	}
	return compDraft{
		comp: players.Comparison{
			Name:         name,
			Team:         team,
			Position:     position,
			MatchScore:   score,
			HeadshotURL:  headshot,
			Similarities: sims,
			Differences:  diffs,
			Stats:        stats,
		},
		hasScore: hasScore,
	}
}

// syntheticScore is the default match score for the comparison at rank i.
func syntheticScore(i int) float64 {
	return max(0, 90-5*float64(i))
}

// rankComparisons fills missing scores by input position. Input order is
// kept; a synthetic score never exceeds the score of the entry before it.
func rankComparisons(drafts []compDraft) []players.Comparison {
	out := make([]players.Comparison, len(drafts))
	for i, d := range drafts {
		out[i] = d.comp
		if !d.hasScore {
			score := syntheticScore(i)
			if i > 0 {
				score = min(score, out[i-1].MatchScore)
			}
			out[i].MatchScore = score
		}
	}
	return out
}

// finish applies the rules shared by every adapter.
func finish(p players.Player, comps []compDraft) players.Player {
	if p.HeadshotURL == "" {
		p.HeadshotURL = players.ProspectHeadshot(p.ID)
	}
	p.NBAComparisons = rankComparisons(comps)
	if len(p.NBAComparisons) > 0 {
		p.NBAComp = p.NBAComparisons[0].Name
	} else if p.NBAComp == "" {
		p.NBAComp = players.Placeholder
	}
	if p.CareerOutcomes == nil {
		p.CareerOutcomes = []players.CareerOutcome{}
	}
	if p.SeasonLog == nil {
		p.SeasonLog = []players.SeasonLog{}
	}
	slices.SortStableFunc(p.SeasonLog, func(a, b players.SeasonLog) int {
		return cmp.Compare(a.Season, b.Season)
	})
	if p.Strengths == nil {
		p.Strengths = []string{}
	}
	if p.Weaknesses == nil {
		p.Weaknesses = []string{}
	}
	p.ArchetypeConfidence = players.NormalizeProbability(p.ArchetypeConfidence)
	p.DraftabilityScore = players.Clamp(p.DraftabilityScore, 0, 100)
	return p
}

func outcomes(val any) []players.CareerOutcome {
	rows := objects(val)
	out := make([]players.CareerOutcome, 0, len(rows))
	for _, row := range rows {
		out = append(out, players.CareerOutcome{
			Outcome:     textOr(row, "outcome", "label"),
			Probability: players.NormalizeProbability(numberOr(row, "probability")),
			Description: textOr(row, "description"),
		})
	}
	return out
}

func projections(val any) *players.CareerProjections {
	m, ok := object(val)
	if !ok {
		return nil
	}
	if _, found := firstNumber(m, "peak_bpm", "peak_vorp", "peak_pts", "peak_mp"); !found {
		return nil
	}
	return &players.CareerProjections{
		PeakBPM:  players.Round1(numberOr(m, "peak_bpm")),
		PeakVORP: players.Round1(numberOr(m, "peak_vorp")),
		PeakPTS:  players.Round1(numberOr(m, "peak_pts")),
		PeakMP:   players.Round1(numberOr(m, "peak_mp")),
	}
}

func seasons(val any) []players.SeasonLog {
	rows := objects(val)
	out := make([]players.SeasonLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, players.SeasonLog{
			Season: textOr(row, "season"),
			PPG:    numberOr(row, "ppg"),
			RPG:    numberOr(row, "rpg"),
			APG:    numberOr(row, "apg"),
			FGPct:  numberOr(row, "fgPct"),
		})
	}
	return out
}
