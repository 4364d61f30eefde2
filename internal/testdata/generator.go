// Package testdata generates seeded synthetic rosters and match
// archives in the CSV layout the ingest loader consumes, and verifies
// that replaying them behaves deterministically.
package testdata

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rallyrank/rallyrank/internal/domain/model"
)

// Archive is one generated roster plus its match list.
type Archive struct {
	Roster  []model.Player
	Matches []model.Match
}

var countries = []string{"CHN", "JPN", "GER", "SWE", "FRA", "KOR", "BRA", "NGA", "USA", "IND"}

var givenNames = []string{
	"Wei", "Hana", "Lena", "Erik", "Chloe", "Jun", "Rafa", "Ada", "Maya", "Tom",
	"Ines", "Koji", "Sara", "Nils", "Omar", "Lin",
}

var familyNames = []string{
	"Zhang", "Sato", "Muller", "Berg", "Dubois", "Kim", "Silva", "Okafor",
	"Carter", "Rao", "Lindqvist", "Tanaka",
}

// Generate builds a deterministic archive from the config. Player
// strengths are hidden; stronger players win more often, so generated
// archives produce plausible rating spreads.
func Generate(cfg *Config) *Archive {
	rng := rand.New(rand.NewSource(cfg.Seed))

	roster := make([]model.Player, cfg.Players)
	strengths := make([]float64, cfg.Players)
	for i := range roster {
		roster[i] = model.Player{
			PlayerID: fmt.Sprintf("%d", 100+i),
			Name:     givenNames[rng.Intn(len(givenNames))] + " " + familyNames[rng.Intn(len(familyNames))],
			Country:  countries[rng.Intn(len(countries))],
			Gender:   pick(rng, "F", "M"),
		}
		strengths[i] = rng.NormFloat64()
	}

	start := time.Date(cfg.FirstYear, time.January, 1, 10, 0, 0, 0, time.UTC)
	span := time.Duration(cfg.Years) * 365 * 24 * time.Hour

	matches := make([]model.Match, 0, cfg.Matches)
	for i := 0; i < cfg.Matches; i++ {
		a := rng.Intn(cfg.Players)
		b := rng.Intn(cfg.Players)
		for b == a {
			b = rng.Intn(cfg.Players)
		}

		// Logistic win model over the hidden strengths.
		pA := 1.0 / (1.0 + math.Exp(strengths[b]-strengths[a]))
		winner, loser := a, b
		if rng.Float64() > pA {
			winner, loser = b, a
		}

		date := start.Add(time.Duration(float64(span) * float64(i) / float64(cfg.Matches))).Truncate(time.Second)
		outcome := model.OutcomeWin
		if rng.Float64() < cfg.TieRate {
			outcome = model.OutcomeTie
		}

		winnerSets := 3
		loserSets := rng.Intn(3)

		m := model.Match{
			EventID:       fmt.Sprintf("%d", 1+i/64),
			EventName:     fmt.Sprintf("Generated Open %d", date.Year()),
			DocumentCode:  fmt.Sprintf("GEN%d-M%04d", date.Year(), i),
			Date:          date,
			WinnerID:      roster[winner].PlayerID,
			WinnerName:    roster[winner].Name,
			WinnerCountry: roster[winner].Country,
			LoserID:       roster[loser].PlayerID,
			LoserName:     roster[loser].Name,
			LoserCountry:  roster[loser].Country,
			Outcome:       outcome,
			DNF:           rng.Float64() < cfg.DNFRate,
			WinnerSets:    winnerSets,
			LoserSets:     loserSets,
		}
		matches = append(matches, m)

		// Re-emit a few matches under the same document code, as
		// happens when an event is exported into two yearly files.
		if rng.Float64() < cfg.DuplicateRate {
			matches = append(matches, m)
		}
	}

	return &Archive{Roster: roster, Matches: matches}
}

func pick(rng *rand.Rand, a, b string) string {
	if rng.Intn(2) == 0 {
		return a
	}
	return b
}
