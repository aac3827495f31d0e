package redis

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type staticLoader struct {
	calls int
}

func (l *staticLoader) LoadLevel(_ context.Context, level int) ([]domain.Question, error) {
	l.calls++
	return []domain.Question{{
		ID:      fmt.Sprintf("q-%d", level),
		Level:   level,
		Text:    fmt.Sprintf("Question on level %d", level),
		Answers: [4]string{"one", "two", "three", "four"},
		Correct: level%4 + 1,
	}}, nil
}

func newGame(t *testing.T, id, playerID string) *app.Game {
	t.Helper()
	g, err := app.NewGame(context.Background(), id, playerID, questionPool{}, app.Rules{Rand: app.NewRand(1)})
	require.NoError(t, err)
	return g
}

type questionPool struct{}

func (questionPool) QuestionsByLevel(ctx context.Context, level int) ([]domain.Question, error) {
	return (&staticLoader{}).LoadLevel(ctx, level)
}
