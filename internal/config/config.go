// Package config defines service configuration and loading.
//
// Conventions:
// - New() builds a Config carrying the defaults.
// - Load() layers an optional YAML file and environment variables on top.
// - External errors are wrapped via this package's sentinels.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RosterPath locates the player roster CSV.
	RosterPath string `koanf:"roster_path"`

	// MatchGlob selects the match archive files, e.g. "data/matches_*.csv".
	MatchGlob string `koanf:"match_glob"`

	// Tau bounds volatility change per match. Smaller is more conservative.
	Tau float64 `koanf:"tau"`

	// IngestWorkers sets how many archive files decode concurrently.
	IngestWorkers int `koanf:"ingest_workers"`

	// DedupeSize caps the document-code cache. Zero means unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// MinMatches hides players with fewer rated matches from the leaderboard.
	MinMatches int `koanf:"min_matches"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		RosterPath:          "data/players.csv",
		MatchGlob:           "data/matches_*.csv",
		Tau:                 0.5,
		IngestWorkers:       runtime.NumCPU(),
		MaxLeaderboardLimit: 100,
	}
}
