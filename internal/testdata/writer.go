package testdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rallyrank/rallyrank/internal/domain/model"
)

const dirPermission = 0o750

// Write lays the archive out on disk the way the ingest loader expects
// it: one players.csv plus one matches_<year>.csv per year.
func Write(archive *Archive, outDir string) error {
	if err := os.MkdirAll(outDir, dirPermission); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeRoster(archive.Roster, filepath.Join(outDir, "players.csv")); err != nil {
		return err
	}

	byYear := make(map[int][]model.Match)
	for _, m := range archive.Matches {
		byYear[m.Date.Year()] = append(byYear[m.Date.Year()], m)
	}
	for year, matches := range byYear {
		path := filepath.Join(outDir, fmt.Sprintf("matches_%d.csv", year))
		if err := writeMatches(matches, path); err != nil {
			return err
		}
	}
	return nil
}

func writeRoster(roster []model.Player, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"playerId", "playerName", "country", "gender"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range roster {
		if err := w.Write([]string{p.PlayerID, p.Name, p.Country, p.Gender}); err != nil {
			return fmt.Errorf("write roster row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeMatches(matches []model.Match, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"eventId", "eventName", "documentCode", "matchDate",
		"winnerId", "winnerName", "winnerCountry",
		"loserId", "loserName", "loserCountry",
		"result", "dnf", "winnerSets", "loserSets",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range matches {
		result := "win"
		if m.Outcome == model.OutcomeTie {
			result = "tie"
		}
		row := []string{
			m.EventID, m.EventName, m.DocumentCode,
			m.Date.Format("2006-01-02 15:04:05"),
			m.WinnerID, m.WinnerName, m.WinnerCountry,
			m.LoserID, m.LoserName, m.LoserCountry,
			result, strconv.FormatBool(m.DNF),
			strconv.Itoa(m.WinnerSets), strconv.Itoa(m.LoserSets),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write match row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
