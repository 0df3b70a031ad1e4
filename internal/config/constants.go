package config

const (
	envPrefix = "SCOUT"
	envFile   = ".env"
)

// Backend shapes.
const (
	ShapeProfile   = "profile"
	ShapeArchetype = "archetype"
)

// Saved-set drivers.
const (
	SavedDriverFile   = "file"
	SavedDriverSQLite = "sqlite"
	SavedDriverMemory = "memory"
)
