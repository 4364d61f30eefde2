package ingest

import (
	"github.com/rallyrank/rallyrank/internal/domain/dedupe"
	"github.com/rallyrank/rallyrank/pkg/logger"
)

// Option configures the loader.
type Option func(*Loader)

// WithWorkers sets how many files decode concurrently.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithDeduper sets the document-code deduper shared across loads.
func WithDeduper(d dedupe.Deduper) Option {
	return func(l *Loader) {
		l.deduper = d
	}
}

// WithLogger sets the loader's logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		l.logger = log
	}
}
