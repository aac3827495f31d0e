package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MinLevel and MaxLevel bound the difficulty ladder.
	MinLevel = 0
	MaxLevel = 14
	// QuestionsPerGame is the number of rungs a player has to clear to win.
	QuestionsPerGame = MaxLevel + 1
	// AnswersPerQuestion is fixed by the letter set a..d.
	AnswersPerQuestion = 4
)

// Letters is the presentation alphabet, in display order.
var Letters = []string{"a", "b", "c", "d"}

// IsLetter reports whether s is one of the presentation letters.
func IsLetter(s string) bool {
	for _, l := range Letters {
		if l == s {
			return true
		}
	}
	return false
}

// Question is immutable reference data owned by the question pool.
type Question struct {
	ID      string                     `json:"id" yaml:"id"`
	Level   int                        `json:"level" yaml:"level"`
	Text    string                     `json:"text" yaml:"text"`
	Answers [AnswersPerQuestion]string `json:"answers" yaml:"answers"`
	// Correct is the 1-based position of the right answer in Answers.
	Correct int `json:"correct" yaml:"correct"`
}

// Answer returns the answer text at a 1-based position, or "" when out of range.
func (q Question) Answer(position int) string {
	if position < 1 || position > AnswersPerQuestion {
		return ""
	}
	return q.Answers[position-1]
}

// Validate checks that the question can be played.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidQuestion)
	}
	if q.Level < MinLevel || q.Level > MaxLevel {
		return fmt.Errorf("%w: question %s level %d out of range", ErrInvalidQuestion, q.ID, q.Level)
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question %s has no text", ErrInvalidQuestion, q.ID)
	}
	for i, a := range q.Answers {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("%w: question %s answer %d is empty", ErrInvalidQuestion, q.ID, i+1)
		}
	}
	if q.Correct < 1 || q.Correct > AnswersPerQuestion {
		return fmt.Errorf("%w: question %s correct answer %d out of range", ErrInvalidQuestion, q.ID, q.Correct)
	}
	return nil
}

// Player is the account a game is played for.
type Player struct {
	ID      string          `json:"id" yaml:"id"`
	Name    string          `json:"name" yaml:"name"`
	Balance decimal.Decimal `json:"balance" yaml:"-"`
}
