// Package model contains domain models passed between layers.
package model

import "time"

// Outcome tags how a match ended. The source data carries no explicit
// "win" tag; any value other than "tie" means the winner column won.
type Outcome string

// Known outcome tags.
const (
	OutcomeWin Outcome = "win"
	OutcomeTie Outcome = "tie"
)

// Match represents one completed singles contest from the match archive.
// Metadata fields are carried through to history rows unchanged.
type Match struct {
	EventID       string    // owning event
	EventName     string    // display name of the event
	DocumentCode  string    // unique code of the match document
	Date          time.Time // completion time, the replay ordering key
	WinnerID      string    // winner's player id
	WinnerName    string
	WinnerCountry string
	LoserID       string // loser's player id
	LoserName     string
	LoserCountry  string
	Outcome       Outcome // OutcomeTie for draws, OutcomeWin otherwise
	DNF           bool    // true if the match was recorded but not completed
	WinnerSets    int     // sets taken by the winner, 0 when unknown
	LoserSets     int     // sets taken by the loser, 0 when unknown
}

// Rateable reports whether the match may contribute to the rating pass:
// both participants known and the match actually finished.
func (m Match) Rateable() bool {
	return !m.DNF && m.WinnerID != "" && m.LoserID != ""
}

// Results returns the score values for winner and loser: 1/0 for a
// normal result, 0.5/0.5 for a tie.
func (m Match) Results() (winner, loser float64) {
	if m.Outcome == OutcomeTie {
		return 0.5, 0.5
	}
	return 1.0, 0.0
}
