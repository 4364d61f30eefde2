// Package replay drives the chronological rating pass over a match
// history.
package replay

import (
	"github.com/rallyrank/rallyrank/pkg/logger"
)

// Option applies a configuration option to the Replayer.
type Option func(*Replayer)

// WithLogger sets a custom logger for the replayer.
func WithLogger(l logger.Logger) Option {
	return func(r *Replayer) {
		if l != nil {
			r.logger = l
		}
	}
}
