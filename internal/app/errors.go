package service

import "errors"

// ErrNotReady signals that no snapshot has been computed yet.
var ErrNotReady = errors.New("no snapshot computed yet")
