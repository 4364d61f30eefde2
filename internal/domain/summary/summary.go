// Package summary reduces a full rating history to one final row per
// player: the state from that player's most recent rated match, joined
// with win-rate aggregates and roster identity metadata.
package summary

import (
	"sort"
	"time"

	"github.com/rallyrank/rallyrank/internal/domain/model"
	"github.com/rallyrank/rallyrank/internal/domain/winrate"
)

type lastSeen struct {
	state   model.Rating
	date    time.Time
	matches int
	name    string
	country string
}

// Reduce collapses the history to one row per player, keeping the row
// with the maximum match date. Dates tie in favor of the later history
// position. Win-rate tallies and roster metadata are joined by player
// id; players absent from the history produce no row here. Output is
// sorted by rating descending with player id as the tie-break.
func Reduce(history []model.HistoryRow, matchTallies, setTallies map[string]winrate.Tally, roster []model.Player) []model.Summary {
	latest := make(map[string]lastSeen)
	for _, row := range history {
		keep(latest, row.WinnerID, lastSeen{
			state:   row.WinnerPost,
			date:    row.Date,
			matches: row.WinnerMatches,
			name:    row.WinnerName,
			country: row.WinnerCountry,
		})
		keep(latest, row.LoserID, lastSeen{
			state:   row.LoserPost,
			date:    row.Date,
			matches: row.LoserMatches,
			name:    row.LoserName,
			country: row.LoserCountry,
		})
	}

	players := make(map[string]model.Player, len(roster))
	for _, p := range roster {
		players[p.PlayerID] = p
	}

	out := make([]model.Summary, 0, len(latest))
	for id, seen := range latest {
		s := model.Summary{
			PlayerID:      id,
			Name:          seen.name,
			Country:       seen.country,
			Rating:        seen.state.Rating,
			Deviation:     seen.state.Deviation,
			Volatility:    seen.state.Volatility,
			MatchesPlayed: seen.matches,
			LastPlayed:    seen.date,
		}
		if p, ok := players[id]; ok {
			if p.Name != "" {
				s.Name = p.Name
			}
			if p.Country != "" {
				s.Country = p.Country
			}
		}
		if t, ok := matchTallies[id]; ok {
			s.Wins = t.Wins
			s.Losses = t.Losses
			s.TotalMatches = t.Total
			s.WinRate = t.Rate
		}
		if t, ok := setTallies[id]; ok {
			s.SetWins = t.Wins
			s.SetLosses = t.Losses
			s.TotalSets = t.Total
			s.SetWinRate = t.Rate
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

// FillRoster appends zero-metric rows for roster players missing from
// the reduced summaries, so roster-driven views never drop a player
// who has yet to play a rated match.
func FillRoster(summaries []model.Summary, roster []model.Player) []model.Summary {
	present := make(map[string]struct{}, len(summaries))
	for _, s := range summaries {
		present[s.PlayerID] = struct{}{}
	}

	out := summaries
	for _, p := range roster {
		if p.PlayerID == "" {
			continue
		}
		if _, ok := present[p.PlayerID]; ok {
			continue
		}
		out = append(out, model.Summary{
			PlayerID:   p.PlayerID,
			Name:       p.Name,
			Country:    p.Country,
			Rating:     model.DefaultRating,
			Deviation:  model.DefaultDeviation,
			Volatility: model.DefaultVolatility,
		})
	}
	return out
}

func keep(latest map[string]lastSeen, playerID string, candidate lastSeen) {
	if playerID == "" {
		return
	}
	current, ok := latest[playerID]
	if ok && candidate.date.Before(current.date) {
		return
	}
	latest[playerID] = candidate
}
