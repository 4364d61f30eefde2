package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if RALLYRANK_CONFIG is set
//  3. env (prefix RALLYRANK_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("RALLYRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RALLYRANK_ADDR, RALLYRANK_MATCH_GLOB, ...
	// Map env keys like RALLYRANK_MATCH_GLOB -> match_glob (flat keys).
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("RALLYRANK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "rallyrank_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.RosterPath == "" {
		return fmt.Errorf("%w: roster_path must not be empty", ErrInvalidConfig)
	}
	if c.MatchGlob == "" {
		return fmt.Errorf("%w: match_glob must not be empty", ErrInvalidConfig)
	}
	if c.Tau <= 0 {
		return fmt.Errorf("%w: tau must be positive", ErrInvalidConfig)
	}
	if c.MaxLeaderboardLimit < 1 {
		return fmt.Errorf("%w: max_leaderboard_limit must be at least 1", ErrInvalidConfig)
	}
	if c.MinMatches < 0 {
		return fmt.Errorf("%w: min_matches must not be negative", ErrInvalidConfig)
	}
	return nil
}
