// Package service orchestrates the rating pipeline and implements the
// dependencies required by the HTTP API: load the archive, replay it
// chronologically, reduce it to summaries, and serve the results.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rallyrank/rallyrank/internal/adapters/ingest"
	"github.com/rallyrank/rallyrank/internal/adapters/repository"
	"github.com/rallyrank/rallyrank/internal/domain/dedupe"
	"github.com/rallyrank/rallyrank/internal/domain/glicko"
	"github.com/rallyrank/rallyrank/internal/domain/model"
	"github.com/rallyrank/rallyrank/internal/domain/replay"
	"github.com/rallyrank/rallyrank/internal/domain/summary"
	"github.com/rallyrank/rallyrank/internal/domain/winrate"
	"github.com/rallyrank/rallyrank/pkg/logger"
	"github.com/rallyrank/rallyrank/pkg/metrics"
)

// fileStamp identifies one source file version.
type fileStamp struct {
	size    int64
	modTime time.Time
}

// snapshot holds one fully computed view of the archive. Immutable
// once published; Refresh swaps the whole snapshot.
type snapshot struct {
	runID     string
	loadedAt  time.Time
	sources   map[string]fileStamp
	roster    []model.Player
	history   []model.HistoryRow
	byPlayer  map[string][]model.HistoryRow
	summaries map[string]model.Summary
	report    replay.Report
	ingest    ingest.Stats
}

// Service implements the API dependencies for the rating system.
type Service struct {
	mu sync.RWMutex

	// recomputeMu serializes full pipeline runs. The replayer owns its
	// state arena exclusively for the duration of one run, and the board
	// rebuild must publish together with the snapshot it was built from.
	recomputeMu sync.Mutex

	// Core components
	board repository.Leaderboard

	// Configuration
	rosterPath    string
	matchGlob     string
	tau           float64
	ingestWorkers int
	dedupeSize    int
	minMatches    int

	// State
	started bool
	current *snapshot

	// Logging
	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		rosterPath: "data/players.csv",
		matchGlob:  "data/matches_*.csv",
		tau:        0.5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes components and computes the first snapshot.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting rating service...")

	s.board = repository.NewTreapBoard()

	s.started = true
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}

	s.logger.Info(ctx, "rating service started",
		logger.String("roster", s.rosterPath),
		logger.String("matches", s.matchGlob),
	)
	return nil
}

// Stop shuts the service down. The last snapshot stays readable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "rating service stopped")
}

// Refresh recomputes only if a source file changed since the current
// snapshot. Identity is file path plus size and modification time.
func (s *Service) Refresh(ctx context.Context) error {
	stamps, err := s.sourceStamps()
	if err != nil {
		return err
	}

	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()

	if cur != nil && stampsEqual(cur.sources, stamps) {
		s.logger.Debug(ctx, "sources unchanged, keeping snapshot",
			logger.String("run_id", cur.runID),
		)
		return nil
	}
	return s.Recompute(ctx)
}

// Recompute runs the full pipeline unconditionally and publishes a
// fresh snapshot.
func (s *Service) Recompute(ctx context.Context) error {
	s.recomputeMu.Lock()
	defer s.recomputeMu.Unlock()

	stamps, err := s.sourceStamps()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := s.logger.Named("run")
	log.Info(ctx, "recomputing ratings", logger.String("run_id", runID))

	// A fresh deduper per run keeps recomputes deterministic.
	loaderOpts := []ingest.Option{
		ingest.WithDeduper(dedupe.New(dedupe.WithMaxSize(s.dedupeSize))),
		ingest.WithLogger(s.logger.Named("ingest")),
	}
	if s.ingestWorkers > 0 {
		loaderOpts = append(loaderOpts, ingest.WithWorkers(s.ingestWorkers))
	}
	loader := ingest.New(loaderOpts...)

	roster, err := loader.LoadRoster(ctx, s.rosterPath)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	matches, stats, err := loader.LoadMatches(ctx, s.matchGlob)
	if err != nil {
		return fmt.Errorf("load matches: %w", err)
	}

	// Each run replays into its own arena; nothing else may touch the
	// state store while the replay is in flight.
	store := repository.NewArenaStore()
	store.Init(ctx, roster)
	replayer := replay.New(store, glicko.New(glicko.WithTau(s.tau)),
		replay.WithLogger(s.logger.Named("replay")),
	)
	history, report := replayer.Run(ctx, matches)

	// The two win-rate passes read the same slice and write disjoint
	// outputs.
	var matchTallies, setTallies map[string]winrate.Tally
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		matchTallies = winrate.Matches(matches)
	}()
	go func() {
		defer wg.Done()
		setTallies = winrate.Sets(matches)
	}()
	wg.Wait()

	summaries := summary.Reduce(history, matchTallies, setTallies, roster)
	summaries = summary.FillRoster(summaries, roster)

	s.board.Rebuild(ctx, s.boardRows(summaries))

	snap := &snapshot{
		runID:     runID,
		loadedAt:  time.Now(),
		sources:   stamps,
		roster:    roster,
		history:   history,
		byPlayer:  indexHistory(history),
		summaries: indexSummaries(summaries),
		report:    report,
		ingest:    stats,
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	metrics.UpdatePlayersTracked(len(roster))
	metrics.UpdateHistoryRows(len(history))

	log.Info(ctx, "ratings recomputed",
		logger.String("run_id", runID),
		logger.Int("players", len(roster)),
		logger.Int("matches", len(matches)),
		logger.Int("rated", report.Rated),
		logger.Int("skipped", len(report.Skips)),
		logger.Duration("took", report.Duration),
	)
	return nil
}

// boardRows filters summaries for leaderboard inclusion.
func (s *Service) boardRows(summaries []model.Summary) []model.Summary {
	if s.minMatches <= 0 {
		return summaries
	}
	rows := make([]model.Summary, 0, len(summaries))
	for _, sum := range summaries {
		if sum.MatchesPlayed >= s.minMatches {
			rows = append(rows, sum)
		}
	}
	return rows
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.board.TopN(ctx, n)
}

// Rank returns the rank entry for one player.
func (s *Service) Rank(ctx context.Context, playerID string) (repository.Entry, error) {
	return s.board.Rank(ctx, playerID)
}

// PlayerHistory returns every rated match the player appears in, in
// chronological order.
func (s *Service) PlayerHistory(ctx context.Context, playerID string) ([]model.HistoryRow, error) {
	snap := s.snap()
	if snap == nil {
		return nil, ErrNotReady
	}
	rows, ok := snap.byPlayer[playerID]
	if !ok {
		// Roster players with no rated matches have an empty history,
		// mirroring the default summary row they get.
		if _, known := snap.summaries[playerID]; known {
			return []model.HistoryRow{}, nil
		}
		return nil, repository.ErrUnknownPlayer
	}
	return rows, nil
}

// PlayerSummary returns the final reduced row for one player.
func (s *Service) PlayerSummary(ctx context.Context, playerID string) (model.Summary, error) {
	snap := s.snap()
	if snap == nil {
		return model.Summary{}, ErrNotReady
	}
	sum, ok := snap.summaries[playerID]
	if !ok {
		return model.Summary{}, repository.ErrUnknownPlayer
	}
	return sum, nil
}

// Report returns the replay report of the current snapshot.
func (s *Service) Report() replay.Report {
	snap := s.snap()
	if snap == nil {
		return replay.Report{}
	}
	return snap.report
}

// Stats is the monitoring view of the service and its current snapshot.
// The snapshot fields stay zero until the first recompute finishes.
type Stats struct {
	Started             bool      `json:"started"`
	RunID               string    `json:"run_id,omitempty"`
	LoadedAt            time.Time `json:"loaded_at"`
	Players             int       `json:"players"`
	HistoryRows         int       `json:"history_rows"`
	MatchesRated        int       `json:"matches_rated"`
	MatchesSkipped      int       `json:"matches_skipped"`
	ConvergenceWarnings int       `json:"convergence_warnings"`
	IngestFiles         int       `json:"ingest_files"`
	IngestRows          int       `json:"ingest_rows"`
	MalformedRows       int       `json:"malformed_rows"`
	DuplicateMatches    int       `json:"duplicate_matches"`
	LeaderboardSize     int       `json:"leaderboard_size"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	started := s.started
	snap := s.current
	s.mu.RUnlock()

	stats := Stats{Started: started}
	if snap == nil {
		return stats
	}

	stats.RunID = snap.runID
	stats.LoadedAt = snap.loadedAt
	stats.Players = len(snap.roster)
	stats.HistoryRows = len(snap.history)
	stats.MatchesRated = snap.report.Rated
	stats.MatchesSkipped = len(snap.report.Skips)
	stats.ConvergenceWarnings = snap.report.ConvergenceWarnings
	stats.IngestFiles = snap.ingest.Files
	stats.IngestRows = snap.ingest.Rows
	stats.MalformedRows = snap.ingest.Malformed
	stats.DuplicateMatches = snap.ingest.Duplicates
	stats.LeaderboardSize = s.board.Count(context.Background())
	return stats
}

func (s *Service) snap() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// sourceStamps stats the roster and every match file.
func (s *Service) sourceStamps() (map[string]fileStamp, error) {
	paths, err := filepath.Glob(s.matchGlob)
	if err != nil {
		return nil, fmt.Errorf("bad match glob %q: %w", s.matchGlob, err)
	}
	paths = append(paths, s.rosterPath)
	sort.Strings(paths)

	stamps := make(map[string]fileStamp, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat source %s: %w", path, err)
		}
		stamps[path] = fileStamp{size: info.Size(), modTime: info.ModTime()}
	}
	return stamps, nil
}

func stampsEqual(a, b map[string]fileStamp) bool {
	if len(a) != len(b) {
		return false
	}
	for path, sa := range a {
		sb, ok := b[path]
		if !ok || sa.size != sb.size || !sa.modTime.Equal(sb.modTime) {
			return false
		}
	}
	return true
}

func indexHistory(history []model.HistoryRow) map[string][]model.HistoryRow {
	byPlayer := make(map[string][]model.HistoryRow)
	for _, row := range history {
		byPlayer[row.WinnerID] = append(byPlayer[row.WinnerID], row)
		byPlayer[row.LoserID] = append(byPlayer[row.LoserID], row)
	}
	return byPlayer
}

func indexSummaries(summaries []model.Summary) map[string]model.Summary {
	byID := make(map[string]model.Summary, len(summaries))
	for _, sum := range summaries {
		byID[sum.PlayerID] = sum
	}
	return byID
}
