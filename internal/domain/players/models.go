package players

// Placeholder is shown for descriptive fields the upstream data did not provide.
const Placeholder = "—"

// Stats is the fixed-shape per-game stat line for a prospect's current season.
type Stats struct {
	PPG      float64 `json:"ppg" yaml:"ppg"`
	RPG      float64 `json:"rpg" yaml:"rpg"`
	APG      float64 `json:"apg" yaml:"apg"`
	SPG      float64 `json:"spg" yaml:"spg"`
	BPG      float64 `json:"bpg" yaml:"bpg"`
	FGPct    float64 `json:"fgPct" yaml:"fgPct"`
	ThreePct float64 `json:"threePct" yaml:"threePct"`
	FTPct    float64 `json:"ftPct" yaml:"ftPct"`
	TOPG     float64 `json:"topg" yaml:"topg"`
	MPG      float64 `json:"mpg" yaml:"mpg"`
}

// ComparisonStats is the abbreviated per-game line shown for an NBA comparison.
type ComparisonStats struct {
	PPG float64 `json:"ppg" yaml:"ppg"`
	RPG float64 `json:"rpg" yaml:"rpg"`
	APG float64 `json:"apg" yaml:"apg"`
}

// Comparison is an NBA player judged similar to a prospect.
type Comparison struct {
	Name         string          `json:"name" yaml:"name"`
	Team         string          `json:"team" yaml:"team"`
	Position     string          `json:"position" yaml:"position"`
	MatchScore   float64         `json:"matchScore" yaml:"matchScore"`
	HeadshotURL  string          `json:"headshotUrl" yaml:"headshotUrl"`
	Similarities []string        `json:"similarities" yaml:"similarities"`
	Differences  []string        `json:"differences" yaml:"differences"`
	Stats        ComparisonStats `json:"stats" yaml:"stats"`
}

// CareerOutcome is one named probability bucket. Buckets are reported as
// given and are not guaranteed to sum to 100.
type CareerOutcome struct {
	Outcome     string  `json:"outcome" yaml:"outcome"`
	Probability float64 `json:"probability" yaml:"probability"`
	Description string  `json:"description" yaml:"description"`
}

// CareerProjections holds projected NBA peak numbers from the draftability model.
type CareerProjections struct {
	PeakBPM  float64 `json:"peak_bpm" yaml:"peak_bpm"`
	PeakVORP float64 `json:"peak_vorp" yaml:"peak_vorp"`
	PeakPTS  float64 `json:"peak_pts" yaml:"peak_pts"`
	PeakMP   float64 `json:"peak_mp" yaml:"peak_mp"`
}

// SeasonLog is a per-season snapshot.
type SeasonLog struct {
	Season string  `json:"season" yaml:"season"`
	PPG    float64 `json:"ppg" yaml:"ppg"`
	RPG    float64 `json:"rpg" yaml:"rpg"`
	APG    float64 `json:"apg" yaml:"apg"`
	FGPct  float64 `json:"fgPct" yaml:"fgPct"`
}

// Player is the normalized prospect view-model. Values are built once by the
// normalizer and treated as read-only afterwards.
type Player struct {
	ID                  string             `json:"id" yaml:"id"`
	Name                string             `json:"name" yaml:"name"`
	HeadshotURL         string             `json:"headshotUrl" yaml:"headshotUrl"`
	School              string             `json:"school" yaml:"school"`
	Year                string             `json:"year" yaml:"year"`
	Position            string             `json:"position" yaml:"position"`
	Height              string             `json:"height" yaml:"height"`
	Weight              string             `json:"weight" yaml:"weight"`
	Archetype           string             `json:"archetype" yaml:"archetype"`
	ArchetypeConfidence float64            `json:"archetypeConfidence" yaml:"archetypeConfidence"`
	NBAComp             string             `json:"nbaComp" yaml:"nbaComp"`
	NBAComparisons      []Comparison       `json:"nbaComparisons" yaml:"nbaComparisons"`
	Stats               Stats              `json:"stats" yaml:"stats"`
	CareerOutcomes      []CareerOutcome    `json:"careerOutcomes" yaml:"careerOutcomes"`
	CareerProjections   *CareerProjections `json:"careerProjections" yaml:"careerProjections"`
	SeasonLog           []SeasonLog        `json:"seasonLog" yaml:"seasonLog"`
	Strengths           []string           `json:"strengths" yaml:"strengths"`
	Weaknesses          []string           `json:"weaknesses" yaml:"weaknesses"`
	DraftabilityScore   float64            `json:"draftabilityScore" yaml:"draftabilityScore"`
}

// LatestSeason returns the most recent season snapshot, if any.
func (p Player) LatestSeason() (SeasonLog, bool) {
	if len(p.SeasonLog) == 0 {
		return SeasonLog{}, false
	}
	return p.SeasonLog[len(p.SeasonLog)-1], true
}
