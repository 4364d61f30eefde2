// Package winrate aggregates win/loss counts per player over a match
// list, independently of the rating pass. Two aggregation shapes exist:
// whole matches and individual sets. Both read the same immutable slice
// and can run alongside each other.
package winrate

import (
	"math"
	"sort"

	"github.com/rallyrank/rallyrank/internal/domain/model"
)

// Tally holds one player's aggregate for a single pass. Rate is a
// percentage rounded to two decimals; zero when Total is zero.
type Tally struct {
	PlayerID string  `json:"player_id"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Total    int     `json:"total"`
	Rate     float64 `json:"rate"`
}

// Matches tallies whole-match wins and losses per player. Matches with
// a missing participant id are ignored; a recorded result counts even
// when the match was cut short.
func Matches(matches []model.Match) map[string]Tally {
	tallies := make(map[string]Tally)
	for _, m := range matches {
		if m.WinnerID == "" || m.LoserID == "" {
			continue
		}
		add(tallies, m.WinnerID, 1, 0)
		add(tallies, m.LoserID, 0, 1)
	}
	finalize(tallies)
	return tallies
}

// Sets tallies individual set wins and losses per player using the
// per-match set scores. The match winner's sets won are the loser's
// sets lost and vice versa.
func Sets(matches []model.Match) map[string]Tally {
	tallies := make(map[string]Tally)
	for _, m := range matches {
		if m.WinnerID == "" || m.LoserID == "" {
			continue
		}
		if m.WinnerSets == 0 && m.LoserSets == 0 {
			continue
		}
		add(tallies, m.WinnerID, m.WinnerSets, m.LoserSets)
		add(tallies, m.LoserID, m.LoserSets, m.WinnerSets)
	}
	finalize(tallies)
	return tallies
}

// Ranked flattens a tally map into a slice sorted by rate descending,
// then total descending, then player id ascending.
func Ranked(tallies map[string]Tally) []Tally {
	out := make([]Tally, 0, len(tallies))
	for _, t := range tallies {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rate != out[j].Rate {
			return out[i].Rate > out[j].Rate
		}
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

func add(tallies map[string]Tally, playerID string, wins, losses int) {
	t := tallies[playerID]
	t.PlayerID = playerID
	t.Wins += wins
	t.Losses += losses
	tallies[playerID] = t
}

func finalize(tallies map[string]Tally) {
	for id, t := range tallies {
		t.Total = t.Wins + t.Losses
		if t.Total > 0 {
			t.Rate = math.Round(float64(t.Wins)/float64(t.Total)*100*100) / 100
		}
		tallies[id] = t
	}
}
