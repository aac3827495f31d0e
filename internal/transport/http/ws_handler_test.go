package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/infra/memory"
)

const rightAnswer = "right"

func newTestServer(t *testing.T) (*httptest.Server, *memory.PlayerDirectory) {
	t.Helper()
	var questions []domain.Question
	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		questions = append(questions, domain.Question{
			ID:      fmt.Sprintf("q-%d", level),
			Level:   level,
			Text:    fmt.Sprintf("Question on level %d", level),
			Answers: [4]string{"wrong 1", rightAnswer, "wrong 2", "wrong 3"},
			Correct: 2,
		})
	}
	players := memory.NewPlayerDirectory(domain.Player{ID: "p1", Name: "Alice"})
	service := app.NewGameService(app.Config{
		Games:     memory.NewGameStore(),
		Players:   players,
		Questions: memory.NewQuestionRepository(memory.NewStaticQuestionLoader(questions), time.Minute),
		Rules:     app.Rules{Rand: app.NewRand(7)},
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(service).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, players
}

func dial(t *testing.T, server *httptest.Server, playerID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?playerId=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": typ, "payload": payload}))
}

func readNext(t *testing.T, conn *websocket.Conn, expect string, out any) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, expect, msg.Type, "payload: %s", msg.Payload)
	if out != nil {
		require.NoError(t, json.Unmarshal(msg.Payload, out))
	}
}

type stateMsg struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Level     int             `json:"level"`
	Prize     decimal.Decimal `json:"prize"`
	Lifelines map[string]bool `json:"lifelines"`
	Question  *struct {
		Variants map[string]string `json:"variants"`
		Help     struct {
			FiftyFifty []string `json:"fiftyFifty"`
		} `json:"help"`
	} `json:"question"`
}

func (s stateMsg) rightLetter(t *testing.T) string {
	t.Helper()
	require.NotNil(t, s.Question)
	for letter, text := range s.Question.Variants {
		if text == rightAnswer {
			return letter
		}
	}
	t.Fatalf("no right answer among %v", s.Question.Variants)
	return ""
}

func TestWebSocketGameFlow(t *testing.T) {
	server, players := newTestServer(t)
	conn := dial(t, server, "p1")

	var welcome struct {
		Player domain.Player `json:"player"`
		Game   *stateMsg     `json:"game"`
	}
	readNext(t, conn, "welcome", &welcome)
	assert.Equal(t, "Alice", welcome.Player.Name)
	assert.Nil(t, welcome.Game)

	send(t, conn, "start", nil)
	var state stateMsg
	readNext(t, conn, "state", &state)
	assert.Equal(t, "in_progress", state.Status)
	assert.Equal(t, 0, state.Level)
	assert.Equal(t, map[string]bool{"fifty_fifty": true, "audience_help": true, "friend_call": true}, state.Lifelines)

	for i := 0; i < 2; i++ {
		send(t, conn, "answer", map[string]any{"letter": state.rightLetter(t)})
		var raw map[string]any
		readNext(t, conn, "answerResult", &raw)
		assert.Equal(t, true, raw["correct"])
		readNext(t, conn, "state", &state)
		assert.Equal(t, i+1, state.Level)
	}

	send(t, conn, "help", map[string]any{"kind": "fifty_fifty"})
	readNext(t, conn, "state", &state)
	assert.Len(t, state.Question.Help.FiftyFifty, 2)
	assert.False(t, state.Lifelines["fifty_fifty"])

	var errMsg errorPayload
	send(t, conn, "help", map[string]any{"kind": "fifty_fifty"})
	readNext(t, conn, "error", &errMsg)
	assert.Equal(t, "help_used", errMsg.Code)

	send(t, conn, "help", map[string]any{"kind": "phone_a_stranger"})
	readNext(t, conn, "error", &errMsg)
	assert.Equal(t, "unknown_help", errMsg.Code)

	send(t, conn, "takeMoney", nil)
	var money moneyPayload
	readNext(t, conn, "money", &money)
	assert.True(t, decimal.NewFromInt(200).Equal(money.Prize), "got %s", money.Prize)
	readNext(t, conn, "state", &state)
	assert.Equal(t, "money", state.Status)
	assert.Nil(t, state.Question)

	p, err := players.GetPlayer(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(p.Balance))

	send(t, conn, "answer", map[string]any{"letter": "a"})
	var finished map[string]any
	readNext(t, conn, "answerResult", &finished)
	assert.Equal(t, false, finished["correct"])
	assert.Equal(t, "money", finished["status"])
	readNext(t, conn, "state", nil)

	send(t, conn, "start", nil)
	readNext(t, conn, "state", &state)
	assert.Equal(t, 0, state.Level)

	send(t, conn, "start", nil)
	readNext(t, conn, "error", &errMsg)
	assert.Equal(t, "game_in_progress", errMsg.Code)

	send(t, conn, "history", nil)
	var history []GameSummary
	readNext(t, conn, "history", &history)
	require.Len(t, history, 2)
	assert.Equal(t, state.ID, history[0].ID)
	assert.Equal(t, domain.StatusCashedOut, history[1].Status)
}

func TestWebSocketResumesActiveGame(t *testing.T) {
	server, _ := newTestServer(t)

	first := dial(t, server, "p1")
	readNext(t, first, "welcome", nil)
	send(t, first, "start", nil)
	var state stateMsg
	readNext(t, first, "state", &state)
	require.NoError(t, first.Close())

	second := dial(t, server, "p1")
	var welcome struct {
		Game *stateMsg `json:"game"`
	}
	readNext(t, second, "welcome", &welcome)
	require.NotNil(t, welcome.Game)
	assert.Equal(t, state.ID, welcome.Game.ID)

	send(t, second, "bogus", nil)
	var errMsg errorPayload
	readNext(t, second, "error", &errMsg)
	assert.Equal(t, "unsupported", errMsg.Code)
}

func TestWebSocketRejectsBadPlayer(t *testing.T) {
	server, _ := newTestServer(t)

	tests := map[string]struct {
		query string
		want  int
	}{
		"missing player": {query: "", want: http.StatusBadRequest},
		"unknown player": {query: "?playerId=ghost", want: http.StatusNotFound},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			u := "ws" + server.URL[len("http"):] + "/ws" + tt.query
			_, resp, err := websocket.DefaultDialer.Dial(u, nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "forbidden", errorCode(fmt.Errorf("wrap: %w", domain.ErrNotGameOwner)))
	assert.Equal(t, "internal", errorCode(fmt.Errorf("boom")))
}
