package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"millionaire-service/internal/domain"
)

// DefaultTimeLimit is how long a game may run before an answer counts as late.
const DefaultTimeLimit = 35 * time.Minute

// Rules are shared, read-only settings every game is played under.
type Rules struct {
	TimeLimit time.Duration
	Ladder    *domain.Ladder
	Lifelines *Lifelines
	Rand      Rand
	Now       func() time.Time
}

func (r Rules) withDefaults() Rules {
	if r.TimeLimit <= 0 {
		r.TimeLimit = DefaultTimeLimit
	}
	if r.Ladder == nil {
		r.Ladder = domain.DefaultLadder
	}
	if r.Rand == nil {
		r.Rand = NewRand(0)
	}
	if r.Lifelines == nil {
		r.Lifelines = NewLifelines(r.Rand, LifelineConfig{})
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	return r
}

// Game is one play-through of the ladder. All methods are safe for concurrent
// use; mutations are serialized by the game's lock.
type Game struct {
	id       string
	playerID string

	ladder    *domain.Ladder
	lifelines *Lifelines
	now       func() time.Time

	mu           sync.RWMutex
	questions    []*GameQuestion
	currentLevel int
	createdAt    time.Time
	finishedAt   time.Time
	isFailed     bool
	prize        decimal.Decimal
	settled      bool
	timeLimit    time.Duration
	usedHelp     map[domain.HelpKind]bool
}

// NewGame draws one unused question per level and starts the clock.
// Nothing is returned if any level cannot be filled.
func NewGame(ctx context.Context, id, playerID string, pool QuestionPool, rules Rules) (*Game, error) {
	rules = rules.withDefaults()

	excluded := make(map[string]struct{}, domain.QuestionsPerGame)
	questions := make([]*GameQuestion, 0, domain.QuestionsPerGame)
	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		q, err := SelectQuestion(ctx, pool, level, excluded, rules.Rand)
		if err != nil {
			return nil, fmt.Errorf("new game: %w", err)
		}
		excluded[q.ID] = struct{}{}
		questions = append(questions, NewGameQuestion(q, rules.Rand))
	}

	g := newGame(id, playerID, rules)
	g.questions = questions
	g.createdAt = rules.Now()
	return g, nil
}

func newGame(id, playerID string, rules Rules) *Game {
	return &Game{
		id:        id,
		playerID:  playerID,
		ladder:    rules.Ladder,
		lifelines: rules.Lifelines,
		now:       rules.Now,
		timeLimit: rules.TimeLimit,
		prize:     decimal.Zero,
		usedHelp:  make(map[domain.HelpKind]bool, len(domain.HelpKinds)),
	}
}

func (g *Game) ID() string       { return g.id }
func (g *Game) PlayerID() string { return g.playerID }

// Ladder is the prize table this game pays out from.
func (g *Game) Ladder() *domain.Ladder { return g.ladder }

func (g *Game) CurrentLevel() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentLevel
}

// PreviousLevel is the last cleared level, or -1 before the first correct answer.
func (g *Game) PreviousLevel() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.previousLevelLocked()
}

func (g *Game) previousLevelLocked() int {
	if g.currentLevel > 0 {
		return g.currentLevel - 1
	}
	return -1
}

func (g *Game) CreatedAt() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.createdAt
}

// FinishedAt is zero while the game is in progress.
func (g *Game) FinishedAt() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.finishedAt
}

func (g *Game) Finished() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.finishedAt.IsZero()
}

func (g *Game) IsFailed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.isFailed
}

// Prize is zero until the game finishes and never changes afterwards.
func (g *Game) Prize() decimal.Decimal {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.prize
}

func (g *Game) TimeLimit() time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.timeLimit
}

func (g *Game) Status() domain.Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.statusLocked()
}

func (g *Game) statusLocked() domain.Status {
	return domain.DeriveStatus(domain.StatusFacts{
		CreatedAt:    g.createdAt,
		FinishedAt:   g.finishedAt,
		IsFailed:     g.isFailed,
		CurrentLevel: g.currentLevel,
		TimeLimit:    g.timeLimit,
	})
}

// HelpUsed reports whether the lifeline was consumed in this game.
func (g *Game) HelpUsed(kind domain.HelpKind) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.usedHelp[kind]
}

func (g *Game) FiftyFiftyUsed() bool   { return g.HelpUsed(domain.FiftyFifty) }
func (g *Game) AudienceHelpUsed() bool { return g.HelpUsed(domain.AudienceHelp) }
func (g *Game) FriendCallUsed() bool   { return g.HelpUsed(domain.FriendCall) }

// Questions returns the game questions in level order.
func (g *Game) Questions() []*GameQuestion {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*GameQuestion(nil), g.questions...)
}

// CurrentGameQuestion returns nil when the level pointer is outside the ladder.
func (g *Game) CurrentGameQuestion() *GameQuestion {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentQuestionLocked()
}

func (g *Game) currentQuestionLocked() *GameQuestion {
	if g.currentLevel < 0 || g.currentLevel >= len(g.questions) {
		return nil
	}
	return g.questions[g.currentLevel]
}

// AnswerOutcome describes what a single answer did to the game.
type AnswerOutcome struct {
	Correct bool
	// Ended is set only on the answer that finished the game.
	Ended  bool
	Status domain.Status
	Level  int
	Prize  decimal.Decimal
}

// AnswerCurrentQuestion answers with a letter and reports whether it was accepted.
// On a finished game it changes nothing and returns false.
func (g *Game) AnswerCurrentQuestion(letter string) bool {
	return g.Answer(letter).Correct
}

// Answer is AnswerCurrentQuestion with the full outcome.
func (g *Game) Answer(letter string) AnswerOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.finishedAt.IsZero() {
		return g.outcomeLocked(false, false)
	}

	now := g.now()
	if now.Sub(g.createdAt) > g.timeLimit {
		g.failLocked(now)
		return g.outcomeLocked(false, true)
	}

	gq := g.currentQuestionLocked()
	if gq == nil || !gq.AnswerCorrect(letter) {
		g.failLocked(now)
		return g.outcomeLocked(false, true)
	}

	g.currentLevel++
	if g.currentLevel >= domain.QuestionsPerGame {
		g.finishedAt = now
		g.prize = g.ladder.Max()
		return g.outcomeLocked(true, true)
	}
	return g.outcomeLocked(true, false)
}

func (g *Game) failLocked(now time.Time) {
	g.isFailed = true
	g.finishedAt = now
	g.prize = g.ladder.FireproofPayout(g.previousLevelLocked())
}

func (g *Game) outcomeLocked(correct, ended bool) AnswerOutcome {
	return AnswerOutcome{
		Correct: correct,
		Ended:   ended,
		Status:  g.statusLocked(),
		Level:   g.currentLevel,
		Prize:   g.prize,
	}
}

// TakeMoney ends the game paying out the last cleared level.
func (g *Game) TakeMoney() (decimal.Decimal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.finishedAt.IsZero() {
		return decimal.Zero, domain.ErrGameFinished
	}
	if g.currentLevel == 0 {
		return decimal.Zero, domain.ErrNothingToTake
	}

	g.finishedAt = g.now()
	g.prize = g.ladder.Payout(g.previousLevelLocked())
	return g.prize, nil
}

// Settled reports whether the prize of a finished game has been paid out.
func (g *Game) Settled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.settled
}

// Settle hands the prize of a finished game to pay and marks the game settled
// once pay succeeds. It does nothing for an unfinished or already settled game.
// pay runs under the game lock, so concurrent callers pay at most once.
func (g *Game) Settle(pay func(prize decimal.Decimal) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.finishedAt.IsZero() || g.settled {
		return nil
	}
	if g.prize.IsPositive() {
		if err := pay(g.prize); err != nil {
			return err
		}
	}
	g.settled = true
	return nil
}

// UseHelp consumes a lifeline on the current question. A rejected call leaves the game unchanged.
func (g *Game) UseHelp(kind domain.HelpKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrUnknownHelp, int(kind))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.finishedAt.IsZero() {
		return domain.ErrGameFinished
	}
	if g.usedHelp[kind] {
		return fmt.Errorf("%w: %s", domain.ErrHelpAlreadyUsed, kind)
	}
	gq := g.currentQuestionLocked()
	if gq == nil {
		return domain.ErrNoActiveQuestion
	}
	if err := gq.ApplyHelp(kind, g.lifelines); err != nil {
		return err
	}
	g.usedHelp[kind] = true
	return nil
}
