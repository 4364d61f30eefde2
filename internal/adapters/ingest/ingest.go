// Package ingest loads the roster and match archive from CSV files.
// Match files are decoded by a bounded worker pool, one file per job,
// then merged in file order so repeated runs over the same archive
// produce the same match sequence.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/rallyrank/rallyrank/internal/domain/dedupe"
	"github.com/rallyrank/rallyrank/internal/domain/model"
	"github.com/rallyrank/rallyrank/pkg/logger"
	"github.com/rallyrank/rallyrank/pkg/metrics"
)

// Stats summarizes one load pass over the match archive.
type Stats struct {
	Files      int
	Rows       int
	Malformed  int
	Duplicates int
}

// Loader reads roster and match CSVs from disk.
type Loader struct {
	workers int
	deduper dedupe.Deduper
	logger  logger.Logger
}

// New creates a loader. Worker count defaults to the CPU count; the
// deduper defaults to an unbounded in-memory set.
func New(opts ...Option) *Loader {
	l := &Loader{
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.deduper == nil {
		l.deduper = dedupe.New()
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("ingest")
	}
	return l
}

// LoadRoster reads the player roster from a single CSV file.
func (l *Loader) LoadRoster(ctx context.Context, path string) ([]model.Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster %s: %w", path, err)
	}
	defer f.Close()

	players, dropped, err := decodeRoster(f)
	if err != nil {
		return nil, fmt.Errorf("decode roster %s: %w", path, err)
	}
	if dropped > 0 {
		l.logger.Warn(ctx, "dropped malformed roster rows",
			logger.String("file", path),
			logger.Int("dropped", dropped),
		)
	}

	l.logger.Info(ctx, "roster loaded",
		logger.String("file", path),
		logger.Int("players", len(players)),
	)
	return players, nil
}

// LoadMatches decodes every file matching the glob pattern and returns
// the merged, deduplicated match list. Files decode concurrently but
// merge in sorted path order, and within a file rows keep their
// original order. Duplicate document codes keep their first occurrence.
func (l *Loader) LoadMatches(ctx context.Context, glob string) ([]model.Match, Stats, error) {
	paths, err := filepath.Glob(glob)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("bad match glob %q: %w", glob, err)
	}
	if len(paths) == 0 {
		return nil, Stats{}, fmt.Errorf("%w: %q", ErrNoMatchFiles, glob)
	}
	sort.Strings(paths)

	type result struct {
		matches   []model.Match
		malformed int
		err       error
	}

	jobs := make(chan int, len(paths))
	results := make([]result, len(paths))

	workers := l.workers
	if workers > len(paths) {
		workers = len(paths)
	}
	metrics.UpdateIngestWorkers(workers)
	defer metrics.UpdateIngestWorkers(0)

	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for idx := range jobs {
				matches, malformed, err := l.decodeFile(ctx, paths[idx])
				results[idx] = result{matches: matches, malformed: malformed, err: err}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	for w := 0; w < workers; w++ {
		<-done
	}

	var stats Stats
	var matches []model.Match
	for i, res := range results {
		if res.err != nil {
			return nil, Stats{}, fmt.Errorf("decode %s: %w", paths[i], res.err)
		}
		stats.Files++
		stats.Rows += len(res.matches) + res.malformed
		stats.Malformed += res.malformed
		for _, m := range res.matches {
			if m.DocumentCode != "" && l.deduper.SeenAndRecord(ctx, m.DocumentCode) {
				stats.Duplicates++
				continue
			}
			matches = append(matches, m)
		}
		metrics.RecordIngestFile()
	}
	metrics.RecordIngestRows(stats.Rows)

	l.logger.Info(ctx, "match archive loaded",
		logger.Int("files", stats.Files),
		logger.Int("rows", stats.Rows),
		logger.Int("matches", len(matches)),
		logger.Int("malformed", stats.Malformed),
		logger.Int("duplicates", stats.Duplicates),
	)
	return matches, stats, nil
}

func (l *Loader) decodeFile(ctx context.Context, path string) ([]model.Match, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	return decodeMatches(f, func(line int, field string, cause error) {
		metrics.RecordMalformedRow(field)
		l.logger.Warn(ctx, "dropping malformed match row",
			logger.String("file", path),
			logger.Int("line", line),
			logger.String("field", field),
			logger.Error(cause),
		)
	})
}
