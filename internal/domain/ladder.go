package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Ladder maps each level to its payout and marks fireproof checkpoints.
type Ladder struct {
	payouts   []decimal.Decimal
	fireproof map[int]bool
}

// DefaultLadder is the classic fifteen-rung ladder. Clearing the first level
// already locks in its payout; the other checkpoints are 4, 9 and 14.
var DefaultLadder = MustLadder(
	[]int64{100, 200, 300, 500, 1000, 2000, 4000, 8000, 16000, 32000, 64000, 125000, 250000, 500000, 1000000},
	[]int{0, 4, 9, 14},
)

// NewLadder validates payouts (one per level, strictly increasing) and checkpoint levels.
func NewLadder(payouts []int64, fireproof []int) (*Ladder, error) {
	if len(payouts) != QuestionsPerGame {
		return nil, fmt.Errorf("ladder: want %d payouts, got %d", QuestionsPerGame, len(payouts))
	}
	l := &Ladder{
		payouts:   make([]decimal.Decimal, len(payouts)),
		fireproof: make(map[int]bool, len(fireproof)),
	}
	for i, p := range payouts {
		if p <= 0 || (i > 0 && p <= payouts[i-1]) {
			return nil, fmt.Errorf("ladder: payout at level %d must be positive and increasing", i)
		}
		l.payouts[i] = decimal.NewFromInt(p)
	}
	for _, level := range fireproof {
		if level < MinLevel || level > MaxLevel {
			return nil, fmt.Errorf("ladder: fireproof level %d out of range", level)
		}
		l.fireproof[level] = true
	}
	return l, nil
}

// MustLadder is NewLadder that panics on invalid input.
func MustLadder(payouts []int64, fireproof []int) *Ladder {
	l, err := NewLadder(payouts, fireproof)
	if err != nil {
		panic(err)
	}
	return l
}

// Payout returns the reward for clearing level, or zero outside the ladder.
func (l *Ladder) Payout(level int) decimal.Decimal {
	if level < MinLevel || level >= len(l.payouts) {
		return decimal.Zero
	}
	return l.payouts[level]
}

// Max is the payout for clearing the whole ladder.
func (l *Ladder) Max() decimal.Decimal {
	return l.payouts[len(l.payouts)-1]
}

// IsFireproof reports whether level is a checkpoint.
func (l *Ladder) IsFireproof(level int) bool {
	return l.fireproof[level]
}

// FireproofPayout is what a player keeps after failing with clearedLevel as the last cleared level.
func (l *Ladder) FireproofPayout(clearedLevel int) decimal.Decimal {
	for level := clearedLevel; level >= MinLevel; level-- {
		if l.fireproof[level] {
			return l.Payout(level)
		}
	}
	return decimal.Zero
}
