package ingest

import "errors"

var (
	// ErrMissingColumn signals a CSV header without a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrNoMatchFiles signals a match glob that matched nothing.
	ErrNoMatchFiles = errors.New("no match files found")
)
