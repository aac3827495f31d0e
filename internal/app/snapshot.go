package app

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"millionaire-service/internal/domain"
)

// GameSnapshot is the storable form of a game.
type GameSnapshot struct {
	ID           string                   `json:"id"`
	PlayerID     string                   `json:"playerId"`
	CurrentLevel int                      `json:"currentLevel"`
	CreatedAt    time.Time                `json:"createdAt"`
	FinishedAt   *time.Time               `json:"finishedAt,omitempty"`
	IsFailed     bool                     `json:"isFailed"`
	Prize        decimal.Decimal          `json:"prize"`
	Settled      bool                     `json:"settled,omitempty"`
	TimeLimit    time.Duration            `json:"timeLimit"`
	UsedHelp     map[domain.HelpKind]bool `json:"usedHelp,omitempty"`
	Questions    []GameQuestionSnapshot   `json:"questions"`
}

type GameQuestionSnapshot struct {
	Question domain.Question `json:"question"`
	Mapping  map[string]int  `json:"mapping"`
	Help     HelpState       `json:"help"`
}

// Snapshot captures the game under its read lock.
func (g *Game) Snapshot() GameSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := GameSnapshot{
		ID:           g.id,
		PlayerID:     g.playerID,
		CurrentLevel: g.currentLevel,
		CreatedAt:    g.createdAt,
		IsFailed:     g.isFailed,
		Prize:        g.prize,
		Settled:      g.settled,
		TimeLimit:    g.timeLimit,
		UsedHelp:     make(map[domain.HelpKind]bool, len(g.usedHelp)),
		Questions:    make([]GameQuestionSnapshot, 0, len(g.questions)),
	}
	if !g.finishedAt.IsZero() {
		finished := g.finishedAt
		s.FinishedAt = &finished
	}
	for k, v := range g.usedHelp {
		if v {
			s.UsedHelp[k] = true
		}
	}
	for _, gq := range g.questions {
		s.Questions = append(s.Questions, GameQuestionSnapshot{
			Question: gq.Question,
			Mapping:  gq.Mapping(),
			Help:     gq.Help(),
		})
	}
	return s
}

// RestoreGame rebuilds a game from a snapshot. The ladder, lifelines and clock come from rules;
// the time limit stays the one the game was started with.
func RestoreGame(s GameSnapshot, rules Rules) (*Game, error) {
	rules = rules.withDefaults()

	if len(s.Questions) != domain.QuestionsPerGame {
		return nil, fmt.Errorf("restore game %s: want %d questions, got %d", s.ID, domain.QuestionsPerGame, len(s.Questions))
	}
	if s.CurrentLevel < 0 || s.CurrentLevel > domain.QuestionsPerGame {
		return nil, fmt.Errorf("restore game %s: level %d out of range", s.ID, s.CurrentLevel)
	}

	if s.TimeLimit > 0 {
		rules.TimeLimit = s.TimeLimit
	}
	g := newGame(s.ID, s.PlayerID, rules)
	g.currentLevel = s.CurrentLevel
	g.createdAt = s.CreatedAt
	g.isFailed = s.IsFailed
	g.prize = s.Prize
	g.settled = s.Settled && s.FinishedAt != nil
	if s.FinishedAt != nil {
		g.finishedAt = *s.FinishedAt
	}
	for k, v := range s.UsedHelp {
		if v && k.Valid() {
			g.usedHelp[k] = true
		}
	}
	for _, qs := range s.Questions {
		gq, err := RestoreGameQuestion(qs.Question, qs.Mapping, qs.Help)
		if err != nil {
			return nil, fmt.Errorf("restore game %s: %w", s.ID, err)
		}
		g.questions = append(g.questions, gq)
	}
	return g, nil
}
