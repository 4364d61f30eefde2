// Package repository holds the rating state arena and the leaderboard index.
package repository

import (
	"context"

	"github.com/rallyrank/rallyrank/internal/domain/model"
)

// StateStore is the per-player rating state arena used by the replayer.
// Exactly one live state exists per player id for the duration of a
// replay; the replayer owns the store exclusively while it runs.
type StateStore interface {
	// Init creates one default rating state per roster player.
	Init(ctx context.Context, roster []model.Player)

	// Get returns the current state for a player.
	// Returns ErrUnknownPlayer if the id has no state.
	Get(ctx context.Context, playerID string) (model.Rating, error)

	// Apply overwrites the stored state for a player.
	// Returns ErrUnknownPlayer if the id has no state.
	Apply(ctx context.Context, playerID string, state model.Rating) error

	// Len returns the number of players with live state.
	Len(ctx context.Context) int
}

// Entry is one leaderboard row served to readers.
type Entry struct {
	Rank          int     `json:"rank"`
	PlayerID      string  `json:"player_id"`
	Name          string  `json:"name"`
	Country       string  `json:"country"`
	Rating        float64 `json:"rating"`
	Deviation     float64 `json:"deviation"`
	MatchesPlayed int     `json:"matches_played"`
	WinRate       float64 `json:"win_rate"`
}

// Leaderboard is the ordered read index over final player summaries.
// It is rebuilt wholesale after each replay and never mutated mid-replay.
type Leaderboard interface {
	// Rebuild replaces the index contents with the given summaries.
	Rebuild(ctx context.Context, summaries []model.Summary)

	// Rank returns the current rank entry for a player.
	// Returns ErrUnknownPlayer if the id is not on the board.
	Rank(ctx context.Context, playerID string) (Entry, error)

	// TopN returns the top-N entries ordered by rating desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of players on the board.
	Count(ctx context.Context) int
}
