package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"millionaire-service/internal/domain"
)

type staticPool map[int][]domain.Question

func (p staticPool) QuestionsByLevel(_ context.Context, level int) ([]domain.Question, error) {
	return p[level], nil
}

// makePool builds perLevel questions on every level. The correct answer
// rotates through positions so shuffles are exercised for all of them.
func makePool(perLevel int) staticPool {
	p := make(staticPool, domain.QuestionsPerGame)
	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		for i := 0; i < perLevel; i++ {
			p[level] = append(p[level], domain.Question{
				ID:      fmt.Sprintf("q-%d-%d", level, i),
				Level:   level,
				Text:    fmt.Sprintf("Question %d on level %d", i, level),
				Answers: [4]string{"one", "two", "three", "four"},
				Correct: (level+i)%4 + 1,
			})
		}
	}
	return p
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2020, 7, 8, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testRules(clock *fakeClock) Rules {
	rnd := NewRand(42)
	return Rules{
		TimeLimit: DefaultTimeLimit,
		Ladder:    domain.DefaultLadder,
		Rand:      rnd,
		Lifelines: NewLifelines(rnd, LifelineConfig{}),
		Now:       clock.Now,
	}
}

func newTestGame(t *testing.T, clock *fakeClock) *Game {
	t.Helper()
	g, err := NewGame(context.Background(), "g1", "p1", makePool(2), testRules(clock))
	require.NoError(t, err)
	return g
}

// answerCorrectly answers the current question with its correct letter.
func answerCorrectly(t *testing.T, g *Game) bool {
	t.Helper()
	gq := g.CurrentGameQuestion()
	require.NotNil(t, gq)
	letter, ok := gq.CorrectAnswerKey()
	require.True(t, ok)
	return g.AnswerCurrentQuestion(letter)
}

func wrongLetter(t *testing.T, gq *GameQuestion) string {
	t.Helper()
	correct, ok := gq.CorrectAnswerKey()
	require.True(t, ok)
	return otherLetters(correct)[0]
}
