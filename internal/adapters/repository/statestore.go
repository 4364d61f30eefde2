package repository

import (
	"context"
	"sync"

	"github.com/rallyrank/rallyrank/internal/domain/model"
)

// ArenaStore is the in-memory StateStore: a keyed table holding exactly
// one mutable rating state per roster player. Ids absent from the roster
// never gain state; the replayer treats a failed Get as a skip signal.
type ArenaStore struct {
	mu     sync.RWMutex
	states map[string]model.Rating
}

// NewArenaStore constructs an empty arena store.
func NewArenaStore() *ArenaStore {
	return &ArenaStore{states: make(map[string]model.Rating)}
}

// Init creates one default state per roster id. Ids already present are
// reset to defaults; a repeated Init starts a fresh replay cleanly.
func (s *ArenaStore) Init(ctx context.Context, roster []model.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states = make(map[string]model.Rating, len(roster))
	for _, p := range roster {
		if p.PlayerID == "" {
			continue
		}
		s.states[p.PlayerID] = model.NewRating()
	}
}

// Get returns the current state for a player.
func (s *ArenaStore) Get(ctx context.Context, playerID string) (model.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[playerID]
	if !ok {
		return model.Rating{}, ErrUnknownPlayer
	}
	return state, nil
}

// Apply overwrites the stored state for a player.
func (s *ArenaStore) Apply(ctx context.Context, playerID string, state model.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[playerID]; !ok {
		return ErrUnknownPlayer
	}
	s.states[playerID] = state
	return nil
}

// Len returns the number of players with live state.
func (s *ArenaStore) Len(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// States returns a copy of all current states keyed by player id.
// Used after a replay to read final values without aliasing the arena.
func (s *ArenaStore) States(ctx context.Context) map[string]model.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.Rating, len(s.states))
	for id, state := range s.states {
		out[id] = state
	}
	return out
}
