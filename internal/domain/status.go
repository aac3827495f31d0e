package domain

import (
	"fmt"
	"time"
)

// Status is the derived state of a game.
type Status int

const (
	StatusInProgress Status = iota
	StatusWon
	StatusFailed
	StatusTimeout
	StatusCashedOut
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusWon:
		return "won"
	case StatusFailed:
		return "fail"
	case StatusTimeout:
		return "timeout"
	case StatusCashedOut:
		return "money"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further moves are possible.
func (s Status) Terminal() bool {
	return s != StatusInProgress
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for c := StatusInProgress; c <= StatusCashedOut; c++ {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown game status %q", b)
}

// StatusFacts is the stored state a status is derived from.
type StatusFacts struct {
	CreatedAt    time.Time
	FinishedAt   time.Time // zero while in progress
	IsFailed     bool
	CurrentLevel int
	TimeLimit    time.Duration
}

// DeriveStatus computes a game's status. A running game is always in progress:
// timeouts are only recorded when an answer arrives too late.
func DeriveStatus(f StatusFacts) Status {
	switch {
	case f.FinishedAt.IsZero():
		return StatusInProgress
	case f.CurrentLevel >= QuestionsPerGame:
		return StatusWon
	case f.IsFailed && f.FinishedAt.Sub(f.CreatedAt) > f.TimeLimit:
		return StatusTimeout
	case f.IsFailed:
		return StatusFailed
	default:
		return StatusCashedOut
	}
}
