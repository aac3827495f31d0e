package http

import (
	"time"

	"github.com/shopspring/decimal"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
)

// GameView is what a client may see of a game. The correct letter is never included.
type GameView struct {
	ID         string          `json:"id"`
	Status     domain.Status   `json:"status"`
	Level      int             `json:"level"`
	Prize      decimal.Decimal `json:"prize"`
	NextPrize  decimal.Decimal `json:"nextPrize"`
	SafePrize  decimal.Decimal `json:"safePrize"`
	CreatedAt  time.Time       `json:"createdAt"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
	Deadline   time.Time       `json:"deadline"`
	Lifelines  map[string]bool `json:"lifelines"`
	Question   *QuestionView   `json:"question,omitempty"`
}

type QuestionView struct {
	Level    int               `json:"level"`
	Text     string            `json:"text"`
	Variants map[string]string `json:"variants"`
	Help     app.HelpState     `json:"help"`
}

// GameSummary is one row of a player's history.
type GameSummary struct {
	ID        string          `json:"id"`
	Status    domain.Status   `json:"status"`
	Level     int             `json:"level"`
	Prize     decimal.Decimal `json:"prize"`
	CreatedAt time.Time       `json:"createdAt"`
}

func newGameView(g *app.Game) GameView {
	v := GameView{
		ID:        g.ID(),
		Status:    g.Status(),
		Level:     g.CurrentLevel(),
		Prize:     g.Prize(),
		NextPrize: g.Ladder().Payout(g.CurrentLevel()),
		SafePrize: g.Ladder().FireproofPayout(g.PreviousLevel()),
		CreatedAt: g.CreatedAt(),
		Deadline:  g.CreatedAt().Add(g.TimeLimit()),
		Lifelines: make(map[string]bool, len(domain.HelpKinds)),
	}
	if finished := g.FinishedAt(); !finished.IsZero() {
		v.FinishedAt = &finished
	}
	for _, k := range domain.HelpKinds {
		v.Lifelines[k.String()] = !g.HelpUsed(k)
	}
	if !g.Finished() {
		if gq := g.CurrentGameQuestion(); gq != nil {
			v.Question = &QuestionView{
				Level:    gq.Level(),
				Text:     gq.Text(),
				Variants: gq.Variants(),
				Help:     gq.Help(),
			}
		}
	}
	return v
}

func newGameSummaries(games []*app.Game) []GameSummary {
	out := make([]GameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, GameSummary{
			ID:        g.ID(),
			Status:    g.Status(),
			Level:     g.CurrentLevel(),
			Prize:     g.Prize(),
			CreatedAt: g.CreatedAt(),
		})
	}
	return out
}
