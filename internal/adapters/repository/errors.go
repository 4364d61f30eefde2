package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
)
