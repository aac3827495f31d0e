package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"millionaire-service/internal/domain"
)

// PlayerDirectory reads players and credits winnings in Postgres.
type PlayerDirectory struct {
	pool *pgxpool.Pool
}

func NewPlayerDirectory(pool *pgxpool.Pool) *PlayerDirectory {
	return &PlayerDirectory{pool: pool}
}

func (d *PlayerDirectory) GetPlayer(ctx context.Context, id string) (domain.Player, error) {
	var (
		p       domain.Player
		balance string
	)
	err := d.pool.QueryRow(ctx, `SELECT id, name, balance::text FROM players WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Player{}, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, id)
	}
	if err != nil {
		return domain.Player{}, fmt.Errorf("load player: %w", err)
	}
	p.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return domain.Player{}, fmt.Errorf("parse balance of %s: %w", id, err)
	}
	return p, nil
}

func (d *PlayerDirectory) Credit(ctx context.Context, id string, amount decimal.Decimal) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE players SET balance = balance + $2::numeric, updated_at = now() WHERE id = $1`,
		id, amount.String())
	if err != nil {
		return fmt.Errorf("credit player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, id)
	}
	return nil
}
