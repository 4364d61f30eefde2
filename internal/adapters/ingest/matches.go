package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rallyrank/rallyrank/internal/domain/model"
)

// Match CSV column names as published by the archive exporter.
const (
	colEventID       = "eventId"
	colEventName     = "eventName"
	colDocumentCode  = "documentCode"
	colMatchDate     = "matchDate"
	colWinnerID      = "winnerId"
	colWinnerName    = "winnerName"
	colWinnerCountry = "winnerCountry"
	colLoserID       = "loserId"
	colLoserName     = "loserName"
	colLoserCountry  = "loserCountry"
	colResult        = "result"
	colDNF           = "dnf"
	colWinnerSets    = "winnerSets"
	colLoserSets     = "loserSets"
)

// Columns a match file must carry. The rest are optional metadata.
var requiredMatchColumns = []string{
	colDocumentCode, colMatchDate, colWinnerID, colLoserID,
}

// dropFunc is called once per dropped row with the offending field.
type dropFunc func(line int, field string, cause error)

// decodeMatches reads one match CSV. Rows that fail to parse are
// dropped and reported through onDrop; a broken header or unreadable
// stream fails the whole file.
func decodeMatches(r io.Reader, onDrop dropFunc) ([]model.Match, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header, requiredMatchColumns)
	if err != nil {
		return nil, 0, err
	}

	var matches []model.Match
	malformed := 0
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			malformed++
			onDrop(line, "row", err)
			continue
		}

		m, field, err := decodeMatchRow(record, cols)
		if err != nil {
			malformed++
			onDrop(line, field, err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, malformed, nil
}

// decodeMatchRow builds one match from a record. On failure it names
// the offending field.
func decodeMatchRow(record []string, cols map[string]int) (model.Match, string, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	m := model.Match{
		EventID:       get(colEventID),
		EventName:     get(colEventName),
		DocumentCode:  get(colDocumentCode),
		WinnerID:      get(colWinnerID),
		WinnerName:    get(colWinnerName),
		WinnerCountry: get(colWinnerCountry),
		LoserID:       get(colLoserID),
		LoserName:     get(colLoserName),
		LoserCountry:  get(colLoserCountry),
	}

	date, err := parseDate(get(colMatchDate))
	if err != nil {
		return model.Match{}, colMatchDate, err
	}
	m.Date = date

	m.Outcome, err = parseOutcome(get(colResult))
	if err != nil {
		return model.Match{}, colResult, err
	}

	m.DNF, err = parseDNF(get(colDNF))
	if err != nil {
		return model.Match{}, colDNF, err
	}

	if m.WinnerSets, err = parseSets(get(colWinnerSets)); err != nil {
		return model.Match{}, colWinnerSets, err
	}
	if m.LoserSets, err = parseSets(get(colLoserSets)); err != nil {
		return model.Match{}, colLoserSets, err
	}

	return m, "", nil
}

func indexColumns(header, required []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return cols, nil
}

// Date layouts seen in the archive, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func parseOutcome(s string) (model.Outcome, error) {
	switch strings.ToLower(s) {
	case "", "win":
		return model.OutcomeWin, nil
	case "tie", "draw":
		return model.OutcomeTie, nil
	default:
		return "", fmt.Errorf("unknown result %q", s)
	}
}

// parseDNF folds the archive's mixed boolean encodings ("True"/"true"
// alongside real booleans serialized as strings) into one bool.
func parseDNF(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "false", "0":
		return false, nil
	case "true", "1":
		return true, nil
	default:
		return false, fmt.Errorf("unparseable dnf flag %q", s)
	}
}

func parseSets(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unparseable set count %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative set count %d", n)
	}
	return n, nil
}
