package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millionaire-service/internal/domain"
)

func sampleQuestion() domain.Question {
	return domain.Question{
		ID:      "q1",
		Level:   3,
		Text:    "Which planet is known as the Red Planet?",
		Answers: [4]string{"Mars", "Venus", "Jupiter", "Saturn"},
		Correct: 1,
	}
}

func restoredQuestion(t *testing.T, mapping map[string]int) *GameQuestion {
	t.Helper()
	gq, err := RestoreGameQuestion(sampleQuestion(), mapping, HelpState{})
	require.NoError(t, err)
	return gq
}

func TestGameQuestion_Variants(t *testing.T) {
	gq := restoredQuestion(t, map[string]int{"a": 2, "b": 1, "c": 4, "d": 3})
	q := gq.Question

	assert.Equal(t, map[string]string{
		"a": q.Answers[1],
		"b": q.Answers[0],
		"c": q.Answers[3],
		"d": q.Answers[2],
	}, gq.Variants())
	assert.Equal(t, q.Text, gq.Text())
	assert.Equal(t, q.Level, gq.Level())
}

func TestGameQuestion_CorrectAnswerKey(t *testing.T) {
	gq := restoredQuestion(t, map[string]int{"a": 2, "b": 1, "c": 4, "d": 3})

	key, ok := gq.CorrectAnswerKey()
	require.True(t, ok)
	assert.Equal(t, "b", key)
	assert.True(t, gq.AnswerCorrect("b"))
	assert.False(t, gq.AnswerCorrect("a"))
	assert.False(t, gq.AnswerCorrect("e"))
	assert.False(t, gq.AnswerCorrect(""))
	assert.False(t, gq.AnswerCorrect("B"))
}

func TestGameQuestion_MalformedMapping(t *testing.T) {
	bad := restoredQuestion(t, map[string]int{"a": 2, "b": 2, "c": 3, "d": 4})

	_, ok := bad.CorrectAnswerKey()
	assert.False(t, ok)
	for _, l := range domain.Letters {
		assert.False(t, bad.AnswerCorrect(l), "letter %s", l)
	}

	rnd := NewRand(1)
	err := bad.ApplyHelp(domain.FiftyFifty, NewLifelines(rnd, LifelineConfig{}))
	require.ErrorIs(t, err, domain.ErrMalformedQuestion)
	assert.False(t, bad.Help().Applied(domain.FiftyFifty))
}

func TestRestoreGameQuestion_Rejects(t *testing.T) {
	_, err := RestoreGameQuestion(sampleQuestion(), map[string]int{"e": 1}, HelpState{})
	require.Error(t, err)

	_, err = RestoreGameQuestion(sampleQuestion(), map[string]int{"a": 7}, HelpState{})
	require.Error(t, err)
}

func TestNewGameQuestion_ExactlyOneCorrectLetter(t *testing.T) {
	rnd := NewRand(7)
	for i := 0; i < 200; i++ {
		q := sampleQuestion()
		q.Correct = i%4 + 1
		gq := NewGameQuestion(q, rnd)

		positions := map[int]bool{}
		correct := 0
		for _, l := range domain.Letters {
			positions[gq.Mapping()[l]] = true
			if gq.AnswerCorrect(l) {
				correct++
			}
		}
		require.Len(t, positions, 4, "mapping must be a bijection")
		require.Equal(t, 1, correct)
		require.Len(t, gq.Variants(), 4)
	}
}

func TestGameQuestion_ApplyHelp(t *testing.T) {
	lifelines := NewLifelines(NewRand(3), LifelineConfig{})

	tests := map[string]struct {
		kind   domain.HelpKind
		assert func(t *testing.T, h HelpState)
	}{
		"fifty_fifty keeps the correct letter and one other": {
			kind: domain.FiftyFifty,
			assert: func(t *testing.T, h HelpState) {
				assert.Len(t, h.FiftyFifty, 2)
				assert.Contains(t, h.FiftyFifty, "b")
			},
		},
		"audience_help covers every letter": {
			kind: domain.AudienceHelp,
			assert: func(t *testing.T, h HelpState) {
				keys := make([]string, 0, len(h.AudienceHelp))
				for k := range h.AudienceHelp {
					keys = append(keys, k)
				}
				assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, keys)
			},
		},
		"friend_call names a letter": {
			kind: domain.FriendCall,
			assert: func(t *testing.T, h HelpState) {
				require.NotNil(t, h.FriendCall)
				assert.True(t, domain.IsLetter(h.FriendCall.Letter))
				assert.Contains(t, h.FriendCall.Text, "thinks the answer is")
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			gq := restoredQuestion(t, map[string]int{"a": 2, "b": 1, "c": 4, "d": 3})
			assert.False(t, gq.Help().Applied(tt.kind))

			require.NoError(t, gq.ApplyHelp(tt.kind, lifelines))
			first := gq.Help()
			require.True(t, first.Applied(tt.kind))
			tt.assert(t, first)

			require.NoError(t, gq.ApplyHelp(tt.kind, lifelines))
			assert.Equal(t, first, gq.Help(), "second application must not change the result")
		})
	}

	gq := restoredQuestion(t, map[string]int{"a": 2, "b": 1, "c": 4, "d": 3})
	require.ErrorIs(t, gq.ApplyHelp(domain.HelpKind(0), lifelines), domain.ErrUnknownHelp)
}
