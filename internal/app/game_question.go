package app

import (
	"fmt"
	"sync"

	"millionaire-service/internal/domain"
)

// GameQuestion binds a question to a game with a shuffled letter mapping.
// Only the help state changes after construction.
type GameQuestion struct {
	Question domain.Question

	// letter -> 1-based answer position
	mapping map[string]int

	mu   sync.RWMutex
	help HelpState
}

// NewGameQuestion shuffles the four answers onto the letters a..d.
func NewGameQuestion(q domain.Question, rnd Rand) *GameQuestion {
	perm := rnd.Perm(domain.AnswersPerQuestion)
	mapping := make(map[string]int, len(domain.Letters))
	for i, letter := range domain.Letters {
		mapping[letter] = perm[i] + 1
	}
	return &GameQuestion{Question: q, mapping: mapping}
}

// RestoreGameQuestion rebuilds a question from stored state. The mapping is
// taken as-is, so damaged data shows up as a missing correct answer key.
func RestoreGameQuestion(q domain.Question, mapping map[string]int, help HelpState) (*GameQuestion, error) {
	m := make(map[string]int, len(mapping))
	for letter, pos := range mapping {
		if !domain.IsLetter(letter) {
			return nil, fmt.Errorf("restore question %s: unknown letter %q", q.ID, letter)
		}
		if pos < 1 || pos > domain.AnswersPerQuestion {
			return nil, fmt.Errorf("restore question %s: position %d out of range", q.ID, pos)
		}
		m[letter] = pos
	}
	return &GameQuestion{Question: q, mapping: m, help: help.clone()}, nil
}

func (gq *GameQuestion) Level() int   { return gq.Question.Level }
func (gq *GameQuestion) Text() string { return gq.Question.Text }

// Variants maps each letter to the answer text shown under it.
func (gq *GameQuestion) Variants() map[string]string {
	out := make(map[string]string, len(gq.mapping))
	for letter, pos := range gq.mapping {
		out[letter] = gq.Question.Answer(pos)
	}
	return out
}

// Mapping returns a copy of the letter to answer position mapping.
func (gq *GameQuestion) Mapping() map[string]int {
	out := make(map[string]int, len(gq.mapping))
	for k, v := range gq.mapping {
		out[k] = v
	}
	return out
}

// CorrectAnswerKey returns the letter of the correct answer. ok is false
// unless exactly one letter maps to the correct position.
func (gq *GameQuestion) CorrectAnswerKey() (letter string, ok bool) {
	found := 0
	for _, l := range domain.Letters {
		if pos, exists := gq.mapping[l]; exists && pos == gq.Question.Correct {
			letter = l
			found++
		}
	}
	if found != 1 {
		return "", false
	}
	return letter, true
}

// AnswerCorrect is false for anything but the single correct letter.
func (gq *GameQuestion) AnswerCorrect(letter string) bool {
	correct, ok := gq.CorrectAnswerKey()
	return ok && letter == correct
}

// Help returns a copy of the lifeline results recorded so far.
func (gq *GameQuestion) Help() HelpState {
	gq.mu.RLock()
	defer gq.mu.RUnlock()
	return gq.help.clone()
}

// ApplyHelp records the result of a lifeline. Applying the same kind twice is a no-op.
func (gq *GameQuestion) ApplyHelp(kind domain.HelpKind, l *Lifelines) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrUnknownHelp, int(kind))
	}

	gq.mu.Lock()
	defer gq.mu.Unlock()

	if gq.help.Applied(kind) {
		return nil
	}
	correct, ok := gq.CorrectAnswerKey()
	if !ok {
		return fmt.Errorf("%w: question %s", domain.ErrMalformedQuestion, gq.Question.ID)
	}

	switch kind {
	case domain.FiftyFifty:
		gq.help.FiftyFifty = l.FiftyFifty(correct)
	case domain.AudienceHelp:
		gq.help.AudienceHelp = l.AudiencePoll(correct)
	case domain.FriendCall:
		advice := l.FriendCall(correct)
		gq.help.FriendCall = &advice
	}
	return nil
}
