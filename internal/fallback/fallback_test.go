package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
)

func TestBundledDatasetLoads(t *testing.T) {
	ds, err := Load()
	require.NoError(t, err)
	require.Equal(t, 20, ds.Len())

	list := ds.Players()
	assert.Equal(t, "marcus-williams", list[0].ID)
	assert.Equal(t, "michael-sanders", list[len(list)-1].ID)

	seen := map[string]bool{}
	for _, p := range list {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		assert.Equal(t, players.Slugify(p.Name), p.ID, "id should be the slug of the name")
		assert.NotEmpty(t, p.NBAComparisons, "player %s should carry comparisons", p.ID)
		assert.Equal(t, p.NBAComparisons[0].Name, p.NBAComp)
		assert.NotEmpty(t, p.SeasonLog)
		assert.GreaterOrEqual(t, p.DraftabilityScore, 0.0)
		assert.LessOrEqual(t, p.DraftabilityScore, 100.0)
	}
}

func TestBundledPlayerFields(t *testing.T) {
	ds := MustLoad()
	p, ok := ds.Player("marcus-williams")
	require.True(t, ok)

	assert.Equal(t, "Duke", p.School)
	assert.Equal(t, "PG", p.Position)
	assert.Equal(t, "Point Guard Playmaker", p.Archetype)
	assert.Equal(t, 87.0, p.ArchetypeConfidence)
	assert.Equal(t, 18.5, p.Stats.PPG)
	assert.Equal(t, 78.0, p.DraftabilityScore)
	require.NotNil(t, p.CareerProjections)
	assert.Equal(t, 2100.0, p.CareerProjections.PeakMP)
	latest, ok := p.LatestSeason()
	require.True(t, ok)
	assert.Equal(t, "2024-25", latest.Season)

	other, ok := ds.Player("jaylen-carter")
	require.True(t, ok)
	assert.Nil(t, other.CareerProjections)

	_, ok = ds.Player("nobody")
	assert.False(t, ok)
}

func TestPlayersReturnsCopy(t *testing.T) {
	ds := MustLoad()
	list := ds.Players()
	list[0].Name = "mutated"

	p, _ := ds.Player(list[0].ID)
	assert.NotEqual(t, "mutated", p.Name)
}

func TestParseDerivesMissingIDs(t *testing.T) {
	ds, err := Parse([]byte("players:\n- name: Test Prospect\n  school: Duke\n"))
	require.NoError(t, err)
	p, ok := ds.Player("test-prospect")
	require.True(t, ok)
	assert.Equal(t, "Duke", p.School)
}

func TestParseFillsDefaultsForSparseEntries(t *testing.T) {
	raw := `players:
- name: SPARSE PROSPECT
  archetypeConfidence: 0.6
  nbaComparisons:
  - name: First Comp
  - name: Second Comp
    matchScore: 95
  seasonLog:
  - {season: 2024-25, ppg: 12}
  - {season: 2023-24, ppg: 8}
`
	ds, err := Parse([]byte(raw))
	require.NoError(t, err)
	p, ok := ds.Player("sparse-prospect")
	require.True(t, ok)

	assert.Equal(t, "Sparse Prospect", p.Name)
	assert.Equal(t, players.Placeholder, p.School)
	assert.Equal(t, players.Placeholder, p.Position)
	assert.NotNil(t, p.Strengths)
	assert.Empty(t, p.Strengths)
	assert.NotNil(t, p.Weaknesses)
	assert.NotNil(t, p.CareerOutcomes)
	assert.Nil(t, p.CareerProjections)
	assert.InDelta(t, 60, p.ArchetypeConfidence, 1e-9)
	assert.Contains(t, p.HeadshotURL, "seed=sparse-prospect")

	require.Len(t, p.NBAComparisons, 2)
	assert.Equal(t, "First Comp", p.NBAComp)
	assert.Equal(t, 90.0, p.NBAComparisons[0].MatchScore)
	assert.Equal(t, players.Placeholder, p.NBAComparisons[0].Team)
	assert.Equal(t, 95.0, p.NBAComparisons[1].MatchScore)

	require.Len(t, p.SeasonLog, 2)
	assert.Equal(t, "2023-24", p.SeasonLog[0].Season)
}

func TestParseRejectsBrokenDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":       "players: []\n",
		"malformed":   "players: [\n",
		"no identity": "players:\n- school: Duke\n",
		"duplicate":   "players:\n- id: a\n- id: a\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestNilDatasetIsSafe(t *testing.T) {
	var ds *Dataset
	assert.Nil(t, ds.Players())
	assert.Zero(t, ds.Len())
	_, ok := ds.Player("a")
	assert.False(t, ok)
}
