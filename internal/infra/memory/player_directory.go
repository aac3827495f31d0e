package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"millionaire-service/internal/domain"
)

// PlayerDirectory keeps players and their balances in memory.
type PlayerDirectory struct {
	mu      sync.RWMutex
	players map[string]domain.Player
}

func NewPlayerDirectory(players ...domain.Player) *PlayerDirectory {
	d := &PlayerDirectory{players: make(map[string]domain.Player, len(players))}
	for _, p := range players {
		d.Register(p)
	}
	return d
}

// Register adds or replaces a player.
func (d *PlayerDirectory) Register(p domain.Player) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.players[p.ID] = p
}

func (d *PlayerDirectory) GetPlayer(_ context.Context, id string) (domain.Player, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.players[id]
	if !ok {
		return domain.Player{}, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, id)
	}
	return p, nil
}

func (d *PlayerDirectory) Credit(_ context.Context, id string, amount decimal.Decimal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.players[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, id)
	}
	p.Balance = p.Balance.Add(amount)
	d.players[id] = p
	return nil
}
