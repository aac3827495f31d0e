package app

import (
	"context"
	"fmt"

	"millionaire-service/internal/domain"
)

// QuestionPool supplies candidate questions by level.
type QuestionPool interface {
	QuestionsByLevel(ctx context.Context, level int) ([]domain.Question, error)
}

// SelectQuestion picks uniformly among questions of exactly level whose ids are not excluded.
func SelectQuestion(ctx context.Context, pool QuestionPool, level int, excluded map[string]struct{}, rnd Rand) (domain.Question, error) {
	candidates, err := pool.QuestionsByLevel(ctx, level)
	if err != nil {
		return domain.Question{}, fmt.Errorf("load level %d: %w", level, err)
	}

	eligible := make([]domain.Question, 0, len(candidates))
	for _, q := range candidates {
		if q.Level != level {
			continue
		}
		if _, used := excluded[q.ID]; used {
			continue
		}
		eligible = append(eligible, q)
	}
	if len(eligible) == 0 {
		return domain.Question{}, fmt.Errorf("%w: level %d", domain.ErrPoolExhausted, level)
	}
	return eligible[rnd.Intn(len(eligible))], nil
}
