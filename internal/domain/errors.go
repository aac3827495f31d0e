package domain

import "errors"

var (
	// ErrGameAlreadyInProgress is returned when a player tries to start a second unfinished game.
	ErrGameAlreadyInProgress = errors.New("game already in progress")
	// ErrPoolExhausted means the question pool has no unused question for a level.
	ErrPoolExhausted = errors.New("question pool exhausted")
	// ErrHelpAlreadyUsed is returned when a lifeline was already consumed in this game.
	ErrHelpAlreadyUsed = errors.New("help already used")
	// ErrNoActiveQuestion is returned when the game has no question to apply a lifeline to.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrMalformedQuestion means the correct answer does not resolve to exactly one letter.
	ErrMalformedQuestion = errors.New("malformed question data")
	// ErrGameFinished is returned for moves on a game that already ended.
	ErrGameFinished = errors.New("game finished")
	// ErrNothingToTake is returned when cashing out before any level is cleared.
	ErrNothingToTake = errors.New("no level cleared yet")
	// ErrUnknownHelp indicates a lifeline kind outside the closed set.
	ErrUnknownHelp = errors.New("unknown help kind")
	// ErrGameNotFound indicates the game id is unknown.
	ErrGameNotFound = errors.New("game not found")
	// ErrPlayerNotFound indicates the player id is unknown.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrNotGameOwner is returned when a player acts on someone else's game.
	ErrNotGameOwner = errors.New("game belongs to another player")
	// ErrInvalidQuestion rejects catalog entries that cannot be played.
	ErrInvalidQuestion = errors.New("invalid question")
)
