// Package ws bridges websocket connections and lobby actors. Each connection
// is one session: unbound until its first createLobby/joinLobby message, then
// pumped both ways between the socket and the lobby's inbox/outbox.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imposterparty/backend/internal/game"
	"github.com/imposterparty/backend/internal/hub"
	"github.com/imposterparty/backend/internal/lobby"
	"github.com/imposterparty/backend/internal/types"
)

const writeTimeout = 3 * time.Second

func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		sessionID := uuid.NewString()
		log := log.With(zap.String("session", sessionID))

		lb, creator, ok := bind(r.Context(), conn, h, log)
		if !ok {
			return
		}

		out := make(chan game.Event, 16)
		if !send(lb, lobby.Join{SessionID: sessionID, Creator: creator, Outbox: out}) {
			return
		}
		defer send(lb, lobby.Leave{SessionID: sessionID})

		// Writer: outbox -> socket. Exits when the lobby closes the outbox.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for ev := range out {
				payload, err := json.Marshal(types.FromEvent(ev))
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
			// Lobby is gone; unblock the reader.
			conn.Close(websocket.StatusNormalClosure, "lobby closed")
		}()

		// Reader: socket -> lobby inbox.
		for {
			var cm types.ClientMessage
			if !readMessage(r.Context(), conn, &cm) {
				return
			}

			cmd, ok := types.ToCommand(cm, sessionID)
			if !ok {
				writeError(r.Context(), conn, "unknown message type")
				continue
			}
			if !send(lb, lobby.FromClient{SessionID: sessionID, Cmd: cmd}) {
				return
			}
		}
	}
}

// send delivers a message unless the lobby actor has already stopped.
func send(lb *lobby.Lobby, m lobby.Msg) bool {
	select {
	case lb.Inbox() <- m:
		return true
	case <-lb.Done():
		return false
	}
}

// bind reads connection-setup messages until the session is attached to a
// lobby. A failed join leaves the connection open for another attempt.
func bind(ctx context.Context, conn *websocket.Conn, h *hub.Hub, log *zap.Logger) (lb *lobby.Lobby, creator, ok bool) {
	for {
		var cm types.ClientMessage
		if !readMessage(ctx, conn, &cm) {
			return nil, false, false
		}

		switch cm.Type {
		case "createLobby":
			reply := make(chan hub.Created, 1)
			h.Inbox() <- hub.CreateLobby{Category: cm.Category, Reply: reply}
			created := <-reply
			log.Info("session created lobby", zap.String("lobby", created.Code))
			return created.Lobby, true, true

		case "joinLobby":
			reply := make(chan *lobby.Lobby, 1)
			h.Inbox() <- hub.GetLobby{Code: cm.Code, Reply: reply}
			lb := <-reply
			if lb == nil {
				writeError(ctx, conn, "Lobby not found.")
				continue
			}
			log.Info("session joined lobby", zap.String("lobby", lb.Code()))
			return lb, false, true

		default:
			writeError(ctx, conn, "create or join a lobby first")
		}
	}
}

func readMessage(ctx context.Context, conn *websocket.Conn, into *types.ClientMessage) bool {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return false
		}
		if err := json.Unmarshal(data, into); err != nil {
			writeError(ctx, conn, "bad json")
			continue
		}
		return true
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, message string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: string(game.EvtError), Error: message})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
