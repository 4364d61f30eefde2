package testdata

import (
	"context"
	"fmt"
	"reflect"

	"github.com/rallyrank/rallyrank/internal/adapters/repository"
	"github.com/rallyrank/rallyrank/internal/domain/glicko"
	"github.com/rallyrank/rallyrank/internal/domain/model"
	"github.com/rallyrank/rallyrank/internal/domain/replay"
)

// Verify replays the archive twice and checks the invariants the
// rating pipeline promises: identical histories across runs, and a
// match count per player that equals their non-skipped appearances.
func Verify(ctx context.Context, archive *Archive) error {
	first, firstFinal := replayOnce(ctx, archive)
	second, _ := replayOnce(ctx, archive)

	if !reflect.DeepEqual(first, second) {
		return fmt.Errorf("replay is not deterministic: histories differ across runs")
	}

	counts := make(map[string]int)
	for _, row := range first {
		counts[row.WinnerID]++
		counts[row.LoserID]++
	}
	for id, state := range firstFinal {
		if state.MatchesPlayed != counts[id] {
			return fmt.Errorf("match count mismatch for player %s: state says %d, history says %d",
				id, state.MatchesPlayed, counts[id])
		}
	}
	return nil
}

func replayOnce(ctx context.Context, archive *Archive) ([]model.HistoryRow, map[string]model.Rating) {
	store := repository.NewArenaStore()
	store.Init(ctx, archive.Roster)

	r := replay.New(store, glicko.New())
	history, _ := r.Run(ctx, archive.Matches)
	return history, store.States(ctx)
}
