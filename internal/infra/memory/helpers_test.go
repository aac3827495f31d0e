package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
)

func sampleQuestions(perLevel int) []domain.Question {
	var qs []domain.Question
	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		for i := 0; i < perLevel; i++ {
			qs = append(qs, domain.Question{
				ID:      fmt.Sprintf("q-%d-%d", level, i),
				Level:   level,
				Text:    fmt.Sprintf("Question %d on level %d", i, level),
				Answers: [4]string{"one", "two", "three", "four"},
				Correct: i%4 + 1,
			})
		}
	}
	return qs
}

func newGame(t *testing.T, id, playerID string) *app.Game {
	t.Helper()
	pool := NewQuestionRepository(NewStaticQuestionLoader(sampleQuestions(1)), 0)
	g, err := app.NewGame(context.Background(), id, playerID, pool, app.Rules{Rand: app.NewRand(1)})
	require.NoError(t, err)
	return g
}
