package testdata

// Config holds configuration for archive generation.
type Config struct {
	Players       int     // Number of roster players
	Matches       int     // Number of matches across the whole archive
	Years         int     // Number of yearly archive files
	FirstYear     int     // Year of the first archive file
	Seed          int64   // RNG seed; same seed, same archive
	DuplicateRate float64 // Fraction of matches re-emitted with the same document code
	TieRate       float64 // Fraction of matches recorded as ties
	DNFRate       float64 // Fraction of matches flagged did-not-finish
	OutDir        string  // Output directory for CSV files
}

// DefaultConfig returns a small but realistic archive shape.
func DefaultConfig() *Config {
	return &Config{
		Players:       64,
		Matches:       2000,
		Years:         3,
		FirstYear:     2022,
		Seed:          1,
		DuplicateRate: 0.01,
		TieRate:       0.002,
		DNFRate:       0.015,
		OutDir:        "testdata-out",
	}
}
