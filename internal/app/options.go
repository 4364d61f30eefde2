package service

import "github.com/rallyrank/rallyrank/pkg/logger"

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRosterPath sets the roster CSV path.
func WithRosterPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.rosterPath = path
		}
	}
}

// WithMatchGlob sets the match archive glob pattern.
func WithMatchGlob(glob string) Option {
	return func(s *Service) {
		if glob != "" {
			s.matchGlob = glob
		}
	}
}

// WithTau sets the volatility constraint for the rating updater.
func WithTau(tau float64) Option {
	return func(s *Service) {
		if tau > 0 {
			s.tau = tau
		}
	}
}

// WithIngestWorkers sets how many archive files decode concurrently.
func WithIngestWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.ingestWorkers = n
		}
	}
}

// WithDedupeSize caps the document-code cache. Zero means unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMinMatches hides players below the threshold from the leaderboard.
func WithMinMatches(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minMatches = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}
