// Package normalize converts the backend's divergent response shapes into the
// canonical players.Player view-model.
package normalize

// Shape names a raw response variant.
type Shape string

const (
	ShapeProfile   Shape = "profile"
	ShapeArchetype Shape = "archetype"
	ShapeLegacy    Shape = "legacy"
)

// Record is one raw backend response. The set of variants is closed.
type Record interface {
	Shape() Shape
	sealed()
}

// ProfileRecord is the full Player-shaped payload from GET /player/{slug}.
type ProfileRecord struct {
	Fields map[string]any
}

// ArchetypeRecord pairs GET /archetype/{name} with the GET /comps/{name} rows.
type ArchetypeRecord struct {
	Fields map[string]any
	Comps  []map[string]any
}

// LegacyRecord is the earliest backend payload (college, ncaaStats,
// predictedArchetype, nbaComparison, concerns).
type LegacyRecord struct {
	Fields map[string]any
}

func (ProfileRecord) Shape() Shape   { return ShapeProfile }
func (ArchetypeRecord) Shape() Shape { return ShapeArchetype }
func (LegacyRecord) Shape() Shape    { return ShapeLegacy }

func (ProfileRecord) sealed()   {}
func (ArchetypeRecord) sealed() {}
func (LegacyRecord) sealed()    {}

// Detect sniffs an untyped payload and wraps it in the matching variant.
// Anything unrecognized is treated as a profile.
func Detect(fields map[string]any) Record {
	if fields == nil {
		return ProfileRecord{}
	}
	_, hasNCAA := fields["ncaaStats"]
	_, hasPredicted := fields["predictedArchetype"]
	_, hasCollege := fields["college"]
	_, hasSchool := fields["school"]
	if hasNCAA || hasPredicted || (hasCollege && !hasSchool) {
		return LegacyRecord{Fields: fields}
	}
	_, hasPlayer := fields["player"]
	_, hasConfidence := fields["confidence"]
	if hasPlayer || hasConfidence {
		return ArchetypeRecord{Fields: fields, Comps: objects(fields["comps"])}
	}
	return ProfileRecord{Fields: fields}
}
