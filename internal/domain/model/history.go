package model

import "time"

// HistoryRow is the immutable record emitted for every rated match:
// match metadata plus both players' states before and after the update.
// Created once during replay, never mutated afterward.
type HistoryRow struct {
	EventID       string    `json:"event_id"`
	EventName     string    `json:"event_name"`
	DocumentCode  string    `json:"document_code"`
	Date          time.Time `json:"date"`
	WinnerID      string    `json:"winner_id"`
	WinnerName    string    `json:"winner_name"`
	WinnerCountry string    `json:"winner_country"`
	LoserID       string    `json:"loser_id"`
	LoserName     string    `json:"loser_name"`
	LoserCountry  string    `json:"loser_country"`
	Outcome       Outcome   `json:"outcome"`

	WinnerPre Rating `json:"winner_pre"`
	LoserPre  Rating `json:"loser_pre"`

	// Expected is the winner's pre-match win probability from the
	// logistic rating-difference model.
	Expected      float64 `json:"expected"`
	RatingDiffPre float64 `json:"rating_diff_pre"` // winner pre minus loser pre

	WinnerPost Rating `json:"winner_post"`
	LoserPost  Rating `json:"loser_post"`

	WinnerDelta float64 `json:"winner_delta"` // post minus pre rating
	LoserDelta  float64 `json:"loser_delta"`

	// Running rated-match counts after this match.
	WinnerMatches int `json:"winner_matches"`
	LoserMatches  int `json:"loser_matches"`
}

// Summary is the reduced, final view of one player: last known rating
// state joined with win-rate aggregates and roster identity metadata.
type Summary struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Country  string `json:"country"`

	Rating        float64   `json:"rating"`
	Deviation     float64   `json:"deviation"`
	Volatility    float64   `json:"volatility"`
	MatchesPlayed int       `json:"matches_played"`
	LastPlayed    time.Time `json:"last_played"`

	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	TotalMatches int     `json:"total_matches"`
	WinRate      float64 `json:"win_rate"` // percent, two decimals

	SetWins    int     `json:"set_wins"`
	SetLosses  int     `json:"set_losses"`
	TotalSets  int     `json:"total_sets"`
	SetWinRate float64 `json:"set_win_rate"`
}
