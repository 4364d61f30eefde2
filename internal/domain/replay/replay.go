// Package replay drives the chronological rating pass over a match
// history. It owns the rating state arena for the duration of one run:
// matches are applied strictly in date order because every update
// depends on the exact rating values produced by all earlier matches
// involving either participant.
package replay

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rallyrank/rallyrank/internal/domain/glicko"
	"github.com/rallyrank/rallyrank/internal/domain/model"
	"github.com/rallyrank/rallyrank/pkg/logger"
	"github.com/rallyrank/rallyrank/pkg/metrics"
)

// StateStore is the slice of the rating arena the replayer needs.
type StateStore interface {
	Get(ctx context.Context, playerID string) (model.Rating, error)
	Apply(ctx context.Context, playerID string, state model.Rating) error
}

// Updater computes a new rating state from pre-match inputs.
// Both arguments must be pre-match states; the boolean reports whether
// the volatility solve converged.
type Updater interface {
	Update(player, opponent model.Rating, score float64) (model.Rating, bool)
}

// SkipReason classifies why a match was excluded from the rating pass.
type SkipReason string

// Known skip reasons.
const (
	SkipDNF           SkipReason = "dnf"
	SkipMissingID     SkipReason = "missing_id"
	SkipUnknownPlayer SkipReason = "unknown_player"
	SkipStoreFailure  SkipReason = "store_failure"
)

// Skip records one excluded match and why it was excluded.
type Skip struct {
	DocumentCode string     `json:"document_code"`
	Date         time.Time  `json:"date"`
	Reason       SkipReason `json:"reason"`
	Detail       string     `json:"detail,omitempty"`
}

// Report summarizes one replay run. Skips never abort a run; the worst
// outcome is a shorter history table plus these diagnostics.
type Report struct {
	Total               int           `json:"total"`
	Rated               int           `json:"rated"`
	Skips               []Skip        `json:"skips"`
	ConvergenceWarnings int           `json:"convergence_warnings"`
	Duration            time.Duration `json:"duration"`
}

// Replayer applies a match history to a rating state store.
type Replayer struct {
	store   StateStore
	updater Updater
	logger  logger.Logger
}

// New constructs a Replayer with configuration options.
func New(store StateStore, updater Updater, opts ...Option) *Replayer {
	r := &Replayer{
		store:   store,
		updater: updater,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("replay")
	}
	return r
}

// Run replays the full match list in ascending date order and returns
// one immutable history row per rated match. Ties on the date keep the
// original input order. The input slice is not mutated.
func (r *Replayer) Run(ctx context.Context, matches []model.Match) ([]model.HistoryRow, Report) {
	start := time.Now()

	ordered := make([]model.Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	history := make([]model.HistoryRow, 0, len(ordered))
	report := Report{Total: len(ordered)}

	for _, m := range ordered {
		row, skip, warnings := r.apply(ctx, m)
		report.ConvergenceWarnings += warnings
		if skip != nil {
			report.Skips = append(report.Skips, *skip)
			metrics.RecordMatchSkipped(string(skip.Reason))
			r.logger.Warn(ctx, "match skipped",
				logger.String("documentCode", skip.DocumentCode),
				logger.String("reason", string(skip.Reason)),
				logger.String("detail", skip.Detail),
			)
			continue
		}
		history = append(history, row)
		report.Rated++
		metrics.RecordMatchRated()
	}

	report.Duration = time.Since(start)
	metrics.RecordReplayDuration(float64(report.Duration.Milliseconds()))
	r.logger.Info(ctx, "replay finished",
		logger.Int("total", report.Total),
		logger.Int("rated", report.Rated),
		logger.Int("skipped", len(report.Skips)),
		logger.Int("convergenceWarnings", report.ConvergenceWarnings),
		logger.Duration("duration", report.Duration),
	)
	return history, report
}

// apply processes a single match. It returns either a history row or a
// skip record, plus the number of convergence warnings raised. Every
// per-match failure is isolated here; nothing propagates to the batch.
func (r *Replayer) apply(ctx context.Context, m model.Match) (model.HistoryRow, *Skip, int) {
	if m.DNF {
		return model.HistoryRow{}, &Skip{DocumentCode: m.DocumentCode, Date: m.Date, Reason: SkipDNF}, 0
	}
	if m.WinnerID == "" || m.LoserID == "" {
		return model.HistoryRow{}, &Skip{DocumentCode: m.DocumentCode, Date: m.Date, Reason: SkipMissingID}, 0
	}

	winnerPre, err := r.store.Get(ctx, m.WinnerID)
	if err != nil {
		return model.HistoryRow{}, r.skipUnknown(m, m.WinnerID, err), 0
	}
	loserPre, err := r.store.Get(ctx, m.LoserID)
	if err != nil {
		return model.HistoryRow{}, r.skipUnknown(m, m.LoserID, err), 0
	}

	expected := glicko.WinProbability(winnerPre.Rating, loserPre.Rating)
	winnerScore, loserScore := m.Results()

	// Both updates read the opponent's PRE-match state. Neither side may
	// observe the other's already-updated values.
	winnerPost, winnerOK := r.updater.Update(winnerPre, loserPre, winnerScore)
	loserPost, loserOK := r.updater.Update(loserPre, winnerPre, loserScore)
	warnings := 0
	if !winnerOK {
		warnings++
	}
	if !loserOK {
		warnings++
	}
	for i := 0; i < warnings; i++ {
		metrics.RecordConvergenceWarning()
	}

	winnerPost.MatchesPlayed = winnerPre.MatchesPlayed + 1
	loserPost.MatchesPlayed = loserPre.MatchesPlayed + 1

	if err := r.store.Apply(ctx, m.WinnerID, winnerPost); err != nil {
		return model.HistoryRow{}, r.skipStore(m, m.WinnerID, err), warnings
	}
	if err := r.store.Apply(ctx, m.LoserID, loserPost); err != nil {
		// A skipped match must leave no state mutation behind; undo the
		// winner's committed update.
		if rbErr := r.store.Apply(ctx, m.WinnerID, winnerPre); rbErr != nil {
			r.logger.Error(ctx, "failed to restore winner state after skip",
				logger.String("documentCode", m.DocumentCode),
				logger.String("playerId", m.WinnerID),
				logger.Error(rbErr),
			)
		}
		return model.HistoryRow{}, r.skipStore(m, m.LoserID, err), warnings
	}

	row := model.HistoryRow{
		EventID:       m.EventID,
		EventName:     m.EventName,
		DocumentCode:  m.DocumentCode,
		Date:          m.Date,
		WinnerID:      m.WinnerID,
		WinnerName:    m.WinnerName,
		WinnerCountry: m.WinnerCountry,
		LoserID:       m.LoserID,
		LoserName:     m.LoserName,
		LoserCountry:  m.LoserCountry,
		Outcome:       m.Outcome,
		WinnerPre:     winnerPre,
		LoserPre:      loserPre,
		Expected:      expected,
		RatingDiffPre: winnerPre.Rating - loserPre.Rating,
		WinnerPost:    winnerPost,
		LoserPost:     loserPost,
		WinnerDelta:   winnerPost.Rating - winnerPre.Rating,
		LoserDelta:    loserPost.Rating - loserPre.Rating,
		WinnerMatches: winnerPost.MatchesPlayed,
		LoserMatches:  loserPost.MatchesPlayed,
	}
	return row, nil, warnings
}

func (r *Replayer) skipUnknown(m model.Match, playerID string, err error) *Skip {
	return &Skip{
		DocumentCode: m.DocumentCode,
		Date:         m.Date,
		Reason:       SkipUnknownPlayer,
		Detail:       fmt.Sprintf("player %s: %v", playerID, err),
	}
}

func (r *Replayer) skipStore(m model.Match, playerID string, err error) *Skip {
	return &Skip{
		DocumentCode: m.DocumentCode,
		Date:         m.Date,
		Reason:       SkipStoreFailure,
		Detail:       fmt.Sprintf("player %s: %v", playerID, err),
	}
}
