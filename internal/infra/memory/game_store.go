package memory

import (
	"context"
	"fmt"
	"sync"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
)

// GameStore is an in-memory implementation of app.GameRepository.
type GameStore struct {
	mu       sync.RWMutex
	games    map[string]*app.Game
	active   map[string]string
	byPlayer map[string][]string
}

func NewGameStore() *GameStore {
	return &GameStore{
		games:    make(map[string]*app.Game),
		active:   make(map[string]string),
		byPlayer: make(map[string][]string),
	}
}

func (s *GameStore) Create(_ context.Context, g *app.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.active[g.PlayerID()]; ok {
		return fmt.Errorf("%w: player=%s game=%s", domain.ErrGameAlreadyInProgress, g.PlayerID(), id)
	}
	s.games[g.ID()] = g
	s.byPlayer[g.PlayerID()] = append(s.byPlayer[g.PlayerID()], g.ID())
	if !g.Finished() {
		s.active[g.PlayerID()] = g.ID()
	}
	return nil
}

func (s *GameStore) Save(_ context.Context, g *app.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[g.ID()]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrGameNotFound, g.ID())
	}
	s.games[g.ID()] = g
	if g.Finished() && s.active[g.PlayerID()] == g.ID() {
		delete(s.active, g.PlayerID())
	}
	return nil
}

func (s *GameStore) Get(_ context.Context, id string) (*app.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGameNotFound, id)
	}
	return g, nil
}

func (s *GameStore) ActiveGame(_ context.Context, playerID string) (*app.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.active[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: no active game for player %s", domain.ErrGameNotFound, playerID)
	}
	return s.games[id], nil
}

func (s *GameStore) ListByPlayer(_ context.Context, playerID string) ([]*app.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byPlayer[playerID]
	out := make([]*app.Game, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, s.games[ids[i]])
	}
	return out, nil
}
