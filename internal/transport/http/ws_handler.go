package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
)

const pingPeriod = 30 * time.Second

type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// gamePayload targets a game; an empty GameID means the game this connection plays.
type gamePayload struct {
	GameID string `json:"gameId"`
}

type answerPayload struct {
	gamePayload
	Letter string `json:"letter"`
}

type helpPayload struct {
	gamePayload
	Kind domain.HelpKind `json:"kind"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type welcomePayload struct {
	Player domain.Player `json:"player"`
	Game   *GameView     `json:"game,omitempty"`
}

type moneyPayload struct {
	Prize decimal.Decimal `json:"prize"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the game use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	player, err := h.service.Player(ctx, playerID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrPlayerNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(ctx, "ws: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Only this goroutine writes data frames.
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-send:
				if !ok {
					return
				}
				if err := conn.WriteJSON(msg); err != nil {
					slog.WarnContext(ctx, "ws: write failed", "player", playerID, "error", err)
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	c := &connection{h: h, playerID: playerID, send: send}
	welcome := welcomePayload{Player: player}
	if g, err := h.service.ActiveGame(ctx, playerID); err == nil {
		c.gameID = g.ID()
		view := newGameView(g)
		welcome.Game = &view
	}
	c.emit("welcome", welcome)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		c.handle(r, inbound)
	}

	close(send)
	<-writerDone
}

// connection is the per-socket state of one player.
type connection struct {
	h        *WSHandler
	playerID string
	gameID   string
	send     chan<- outboundMessage[any]
}

func (c *connection) emit(typ string, payload any) {
	c.send <- outboundMessage[any]{Type: typ, Payload: payload}
}

func (c *connection) fail(err error) {
	c.emit("error", errorPayload{Code: errorCode(err), Message: err.Error()})
}

func (c *connection) target(p gamePayload) string {
	if p.GameID != "" {
		return p.GameID
	}
	return c.gameID
}

func (c *connection) handle(r *http.Request, in inboundMessage) {
	ctx := r.Context()
	svc := c.h.service

	switch in.Type {
	case "start":
		g, err := svc.StartGame(ctx, c.playerID)
		if err != nil {
			c.fail(err)
			return
		}
		c.gameID = g.ID()
		c.emit("state", newGameView(g))

	case "state":
		var p gamePayload
		if !decodePayload(in.Payload, &p) {
			c.emit("error", errorPayload{Code: "bad_request", Message: "invalid state payload"})
			return
		}
		g, err := c.game(r, p)
		if err != nil {
			c.fail(err)
			return
		}
		c.emit("state", newGameView(g))

	case "answer":
		var p answerPayload
		if !decodePayload(in.Payload, &p) {
			c.emit("error", errorPayload{Code: "bad_request", Message: "invalid answer payload"})
			return
		}
		res, err := svc.Answer(ctx, c.playerID, c.target(p.gamePayload), p.Letter)
		if err != nil {
			c.fail(err)
			return
		}
		c.emit("answerResult", res)
		c.emitState(r, p.gamePayload)

	case "takeMoney":
		var p gamePayload
		if !decodePayload(in.Payload, &p) {
			c.emit("error", errorPayload{Code: "bad_request", Message: "invalid takeMoney payload"})
			return
		}
		prize, err := svc.TakeMoney(ctx, c.playerID, c.target(p))
		if err != nil {
			c.fail(err)
			return
		}
		c.emit("money", moneyPayload{Prize: prize})
		c.emitState(r, p)

	case "help":
		var p helpPayload
		if !decodePayload(in.Payload, &p) {
			c.emit("error", errorPayload{Code: "unknown_help", Message: "invalid help payload"})
			return
		}
		g, err := svc.UseHelp(ctx, c.playerID, c.target(p.gamePayload), p.Kind)
		if err != nil {
			c.fail(err)
			return
		}
		c.emit("state", newGameView(g))

	case "history":
		games, err := svc.ListGames(ctx, c.playerID)
		if err != nil {
			c.fail(err)
			return
		}
		c.emit("history", newGameSummaries(games))

	default:
		c.emit("error", errorPayload{Code: "unsupported", Message: "unsupported message type"})
	}
}

func (c *connection) game(r *http.Request, p gamePayload) (*app.Game, error) {
	if id := c.target(p); id != "" {
		return c.h.service.Game(r.Context(), c.playerID, id)
	}
	return c.h.service.ActiveGame(r.Context(), c.playerID)
}

func (c *connection) emitState(r *http.Request, p gamePayload) {
	g, err := c.game(r, p)
	if err != nil {
		c.fail(err)
		return
	}
	c.emit("state", newGameView(g))
}

func decodePayload(raw json.RawMessage, v any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return true
	}
	return json.Unmarshal(raw, v) == nil
}

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrGameAlreadyInProgress, "game_in_progress"},
	{domain.ErrPoolExhausted, "pool_exhausted"},
	{domain.ErrHelpAlreadyUsed, "help_used"},
	{domain.ErrNoActiveQuestion, "no_active_question"},
	{domain.ErrMalformedQuestion, "malformed_question"},
	{domain.ErrGameFinished, "game_finished"},
	{domain.ErrNothingToTake, "nothing_to_take"},
	{domain.ErrUnknownHelp, "unknown_help"},
	{domain.ErrGameNotFound, "game_not_found"},
	{domain.ErrPlayerNotFound, "player_not_found"},
	{domain.ErrNotGameOwner, "forbidden"},
}

func errorCode(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return "internal"
}
