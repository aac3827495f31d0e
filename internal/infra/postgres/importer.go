package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"millionaire-service/internal/domain"
)

// ImportQuestions upserts questions by id in one transaction. Nothing is
// written if any question is invalid.
func ImportQuestions(ctx context.Context, pool *pgxpool.Pool, questions []domain.Question) error {
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}

	return pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, q := range questions {
			batch.Queue(`
				INSERT INTO questions (id, level, text, answer1, answer2, answer3, answer4, correct)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (id) DO UPDATE SET
					level = EXCLUDED.level,
					text = EXCLUDED.text,
					answer1 = EXCLUDED.answer1,
					answer2 = EXCLUDED.answer2,
					answer3 = EXCLUDED.answer3,
					answer4 = EXCLUDED.answer4,
					correct = EXCLUDED.correct`,
				q.ID, q.Level, q.Text, q.Answers[0], q.Answers[1], q.Answers[2], q.Answers[3], q.Correct)
		}
		return execBatch(ctx, tx, batch, "import questions")
	})
}

// UpsertPlayers creates players that do not exist yet. Balances of existing
// players are left alone.
func UpsertPlayers(ctx context.Context, pool *pgxpool.Pool, players []domain.Player) error {
	for _, p := range players {
		if p.ID == "" {
			return fmt.Errorf("import players: empty player id")
		}
	}

	return pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range players {
			batch.Queue(`
				INSERT INTO players (id, name) VALUES ($1, $2)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()`,
				p.ID, p.Name)
		}
		return execBatch(ctx, tx, batch, "import players")
	})
}

func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, op string) error {
	if batch.Len() == 0 {
		return nil
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
