package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rallyrank/rallyrank/internal/domain/model"
)

// Roster CSV column names.
const (
	colPlayerID   = "playerId"
	colPlayerName = "playerName"
	colCountry    = "country"
	colGender     = "gender"
)

var requiredRosterColumns = []string{colPlayerID}

// decodeRoster reads the roster CSV. Rows without a player id are
// dropped; duplicate ids keep their first row.
func decodeRoster(r io.Reader) ([]model.Player, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header, requiredRosterColumns)
	if err != nil {
		return nil, 0, err
	}

	var players []model.Player
	seen := make(map[string]struct{})
	dropped := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dropped++
			continue
		}

		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		id := get(colPlayerID)
		if id == "" {
			dropped++
			continue
		}
		if _, dup := seen[id]; dup {
			dropped++
			continue
		}
		seen[id] = struct{}{}

		players = append(players, model.Player{
			PlayerID: id,
			Name:     get(colPlayerName),
			Country:  get(colCountry),
			Gender:   get(colGender),
		})
	}
	return players, dropped, nil
}
