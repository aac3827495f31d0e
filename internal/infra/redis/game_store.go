package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
)

// releaseActive deletes the player's active marker only if it still points at the game.
var releaseActive = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// GameStore is a Redis-backed implementation of app.GameRepository.
// Notes:
//   - Live games sit in a local map so every request in this process shares one *app.Game.
//     A game leaves the map once it is finished and settled; later reads restore it from Redis.
//   - Redis holds the JSON snapshot of each game, the player's active marker and
//     the player's history list, so a restarted process can pick games up again.
//   - The active marker is taken with SETNX, which makes Create atomic across instances.
type GameStore struct {
	client *redis.Client
	rules  app.Rules
	prefix string
	ttl    time.Duration

	mu    sync.Mutex
	games map[string]*app.Game
}

func NewGameStore(client *redis.Client, rules app.Rules, prefix string, ttl time.Duration) *GameStore {
	return &GameStore{
		client: client,
		rules:  rules,
		prefix: prefix,
		ttl:    ttl,
		games:  make(map[string]*app.Game),
	}
}

func (s *GameStore) Create(ctx context.Context, g *app.Game) error {
	ok, err := s.client.SetNX(ctx, s.activeKey(g.PlayerID()), g.ID(), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("mark active game: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: player=%s", domain.ErrGameAlreadyInProgress, g.PlayerID())
	}

	raw, err := json.Marshal(g.Snapshot())
	if err != nil {
		_ = releaseActive.Run(ctx, s.client, []string{s.activeKey(g.PlayerID())}, g.ID()).Err()
		return fmt.Errorf("encode game %s: %w", g.ID(), err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.gameKey(g.ID()), raw, s.ttl)
		pipe.LPush(ctx, s.historyKey(g.PlayerID()), g.ID())
		if s.ttl > 0 {
			pipe.Expire(ctx, s.historyKey(g.PlayerID()), s.ttl)
		}
		return nil
	})
	if err != nil {
		_ = releaseActive.Run(ctx, s.client, []string{s.activeKey(g.PlayerID())}, g.ID()).Err()
		return fmt.Errorf("store game %s: %w", g.ID(), err)
	}

	s.mu.Lock()
	s.games[g.ID()] = g
	s.mu.Unlock()
	return nil
}

func (s *GameStore) Save(ctx context.Context, g *app.Game) error {
	raw, err := json.Marshal(g.Snapshot())
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.ID(), err)
	}
	if err := s.client.Set(ctx, s.gameKey(g.ID()), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("store game %s: %w", g.ID(), err)
	}
	if g.Finished() {
		if err := releaseActive.Run(ctx, s.client, []string{s.activeKey(g.PlayerID())}, g.ID()).Err(); err != nil {
			return fmt.Errorf("release active game %s: %w", g.ID(), err)
		}
	}

	s.mu.Lock()
	if done(g) {
		delete(s.games, g.ID())
	} else {
		s.games[g.ID()] = g
	}
	s.mu.Unlock()
	return nil
}

// done reports whether nothing can change the game anymore.
func done(g *app.Game) bool {
	return g.Finished() && g.Settled()
}

func (s *GameStore) Get(ctx context.Context, id string) (*app.Game, error) {
	s.mu.Lock()
	g, ok := s.games[id]
	s.mu.Unlock()
	if ok {
		return g, nil
	}

	raw, err := s.client.Get(ctx, s.gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", domain.ErrGameNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}

	var snap app.GameSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	restored, err := app.RestoreGame(snap, s.rules)
	if err != nil {
		return nil, err
	}
	if done(restored) {
		return restored, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have restored it meanwhile; keep the first copy.
	if g, ok := s.games[id]; ok {
		return g, nil
	}
	s.games[id] = restored
	return restored, nil
}

func (s *GameStore) ActiveGame(ctx context.Context, playerID string) (*app.Game, error) {
	id, err := s.client.Get(ctx, s.activeKey(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: no active game for player %s", domain.ErrGameNotFound, playerID)
	}
	if err != nil {
		return nil, fmt.Errorf("load active game: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *GameStore) ListByPlayer(ctx context.Context, playerID string) ([]*app.Game, error) {
	ids, err := s.client.LRange(ctx, s.historyKey(playerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load game history: %w", err)
	}
	games := make([]*app.Game, 0, len(ids))
	for _, id := range ids {
		g, err := s.Get(ctx, id)
		if errors.Is(err, domain.ErrGameNotFound) {
			// expired snapshot
			continue
		}
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, nil
}

func (s *GameStore) gameKey(id string) string {
	return s.prefix + ":game:" + id
}

func (s *GameStore) activeKey(playerID string) string {
	return s.prefix + ":player:" + playerID + ":active"
}

func (s *GameStore) historyKey(playerID string) string {
	return s.prefix + ":player:" + playerID + ":games"
}
