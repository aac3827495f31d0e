package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/telemetry"
)

// GameRepository abstracts how games are stored (in-memory, Redis, etc).
// Implementations keep at most one *Game per id in a process so the game's lock serializes moves.
type GameRepository interface {
	// Create stores a new game, failing with domain.ErrGameAlreadyInProgress
	// if the player already has an unfinished one.
	Create(ctx context.Context, g *Game) error
	Save(ctx context.Context, g *Game) error
	Get(ctx context.Context, id string) (*Game, error)
	// ActiveGame returns the player's unfinished game or domain.ErrGameNotFound.
	ActiveGame(ctx context.Context, playerID string) (*Game, error)
	// ListByPlayer returns the player's games, newest first.
	ListByPlayer(ctx context.Context, playerID string) ([]*Game, error)
}

// PlayerDirectory resolves players and pays out winnings.
type PlayerDirectory interface {
	GetPlayer(ctx context.Context, id string) (domain.Player, error)
	Credit(ctx context.Context, id string, amount decimal.Decimal) error
}

type Config struct {
	Games     GameRepository
	Players   PlayerDirectory
	Questions QuestionPool
	Rules     Rules
	Metrics   *telemetry.Metrics
	// NewID defaults to UUIDv7.
	NewID func() (string, error)
}

// GameService contains the game use cases.
type GameService struct {
	games     GameRepository
	players   PlayerDirectory
	questions QuestionPool
	rules     Rules
	metrics   *telemetry.Metrics
	newID     func() (string, error)
}

func NewGameService(c Config) *GameService {
	s := &GameService{
		games:     c.Games,
		players:   c.Players,
		questions: c.Questions,
		rules:     c.Rules.withDefaults(),
		metrics:   c.Metrics,
		newID:     c.NewID,
	}
	if s.newID == nil {
		s.newID = newGameID
	}
	return s
}

// Rules returns the rules new games are started with.
func (s *GameService) Rules() Rules {
	return s.rules
}

func newGameID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// StartGame creates a game for a player that has no unfinished one.
func (s *GameService) StartGame(ctx context.Context, playerID string) (*Game, error) {
	if _, err := s.players.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}

	active, err := s.games.ActiveGame(ctx, playerID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: player=%s game=%s", domain.ErrGameAlreadyInProgress, playerID, active.ID())
	case !errors.Is(err, domain.ErrGameNotFound):
		return nil, fmt.Errorf("find active game: %w", err)
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generate game ID: %w", err)
	}

	g, err := NewGame(ctx, id, playerID, s.questions, s.rules)
	if err != nil {
		return nil, err
	}
	if err := s.games.Create(ctx, g); err != nil {
		return nil, err
	}

	s.metrics.GameStarted()
	slog.InfoContext(ctx, "game service: game started", "game", g.ID(), "player", playerID)
	return g, nil
}

// Player returns the player with their current balance.
func (s *GameService) Player(ctx context.Context, playerID string) (domain.Player, error) {
	return s.players.GetPlayer(ctx, playerID)
}

// Game returns a game owned by the player.
func (s *GameService) Game(ctx context.Context, playerID, gameID string) (*Game, error) {
	g, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.PlayerID() != playerID {
		return nil, fmt.Errorf("%w: game=%s", domain.ErrNotGameOwner, gameID)
	}
	s.settlePending(ctx, g)
	return g, nil
}

// ActiveGame returns the player's unfinished game, if any.
func (s *GameService) ActiveGame(ctx context.Context, playerID string) (*Game, error) {
	return s.games.ActiveGame(ctx, playerID)
}

// ListGames returns every game of a player, newest first.
func (s *GameService) ListGames(ctx context.Context, playerID string) ([]*Game, error) {
	games, err := s.games.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	for _, g := range games {
		s.settlePending(ctx, g)
	}
	return games, nil
}

// AnswerResult summarizes an answer for the caller.
type AnswerResult struct {
	Correct bool            `json:"correct"`
	Status  domain.Status   `json:"status"`
	Level   int             `json:"level"`
	Prize   decimal.Decimal `json:"prize"`
}

// Answer submits a letter for the current question. Answering a finished game
// is not an error; it reports Correct=false and changes nothing.
func (s *GameService) Answer(ctx context.Context, playerID, gameID, letter string) (AnswerResult, error) {
	g, err := s.Game(ctx, playerID, gameID)
	if err != nil {
		return AnswerResult{}, err
	}

	out := g.Answer(letter)
	res := AnswerResult{Correct: out.Correct, Status: out.Status, Level: out.Level, Prize: out.Prize}
	if !out.Correct && !out.Ended {
		return res, nil
	}

	s.metrics.Answered(out.Correct)
	if out.Ended {
		return res, s.finish(ctx, g, out.Status)
	}
	if err := s.games.Save(ctx, g); err != nil {
		return res, fmt.Errorf("save game: %w", err)
	}
	return res, nil
}

// TakeMoney ends the game and credits the last cleared level's payout.
func (s *GameService) TakeMoney(ctx context.Context, playerID, gameID string) (decimal.Decimal, error) {
	g, err := s.Game(ctx, playerID, gameID)
	if err != nil {
		return decimal.Zero, err
	}

	prize, err := g.TakeMoney()
	if err != nil {
		return decimal.Zero, err
	}
	return prize, s.finish(ctx, g, domain.StatusCashedOut)
}

// UseHelp consumes a lifeline on the game's current question.
func (s *GameService) UseHelp(ctx context.Context, playerID, gameID string, kind domain.HelpKind) (*Game, error) {
	g, err := s.Game(ctx, playerID, gameID)
	if err != nil {
		return nil, err
	}
	if err := g.UseHelp(kind); err != nil {
		return nil, err
	}
	if err := s.games.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("save game: %w", err)
	}
	s.metrics.HelpUsed(kind)
	return g, nil
}

// finish pays out a game on the move that ended it, then saves it. The save runs
// even when the credit fails, leaving the game unsettled for a later retry.
func (s *GameService) finish(ctx context.Context, g *Game, status domain.Status) error {
	s.metrics.GameFinished(status)
	slog.InfoContext(ctx, "game service: game finished",
		"game", g.ID(),
		"player", g.PlayerID(),
		"status", status.String(),
		"prize", g.Prize().String(),
	)

	settleErr := s.settle(ctx, g)
	if err := s.games.Save(ctx, g); err != nil {
		slog.ErrorContext(ctx, "game service: save finished game failed", "game", g.ID(), "error", err)
		return errors.Join(settleErr, fmt.Errorf("save game: %w", err))
	}
	return settleErr
}

// settlePending retries the payout of a finished game whose credit failed earlier.
func (s *GameService) settlePending(ctx context.Context, g *Game) {
	if !g.Finished() || g.Settled() {
		return
	}
	if err := s.settle(ctx, g); err != nil {
		return
	}
	slog.InfoContext(ctx, "game service: pending payout settled", "game", g.ID(), "player", g.PlayerID())
	if err := s.games.Save(ctx, g); err != nil {
		slog.WarnContext(ctx, "game service: save settled game failed", "game", g.ID(), "error", err)
	}
}

// settle credits the prize of a finished game at most once.
func (s *GameService) settle(ctx context.Context, g *Game) error {
	return g.Settle(func(prize decimal.Decimal) error {
		if err := s.players.Credit(ctx, g.PlayerID(), prize); err != nil {
			slog.ErrorContext(ctx, "game service: credit failed", "game", g.ID(), "prize", prize.String(), "error", err)
			return fmt.Errorf("credit player %s: %w", g.PlayerID(), err)
		}
		return nil
	})
}
