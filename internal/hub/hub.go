// Package hub owns the process-wide lobby registry. A single goroutine maps
// lobby codes to running lobby actors; all registry access goes through its
// inbox so creation, lookup, and removal never race.
package hub

import (
	"context"
	"crypto/rand"
	"math/big"

	"go.uber.org/zap"

	"github.com/imposterparty/backend/internal/game"
	"github.com/imposterparty/backend/internal/lobby"
)

const (
	codeLen     = 6
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type HubMsg interface{ isHubMsg() }

// CreateLobby allocates a fresh code, starts a lobby actor for it, and
// replies with both.
type CreateLobby struct {
	Category string
	Reply    chan Created
}

type Created struct {
	Code  string
	Lobby *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type RemoveLobby struct {
	Code string
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (RemoveLobby) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				code := h.freshCode()
				lb := lobby.New(h.ctx, game.NewState(code, msg.Category), h.log, func(code string) {
					// The hub loop may already be gone during shutdown;
					// never strand the closing lobby goroutine.
					select {
					case h.inbox <- RemoveLobby{Code: code}:
					case <-h.ctx.Done():
					}
				})
				h.lobbies[code] = lb
				h.log.Info("lobby created",
					zap.String("lobby", code),
					zap.String("category", msg.Category))
				msg.Reply <- Created{Code: code, Lobby: lb}

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // may be nil

			case RemoveLobby:
				delete(h.lobbies, msg.Code)
				h.log.Info("lobby removed", zap.String("lobby", msg.Code))

			case ShutdownHub:
				for _, lb := range h.lobbies {
					lb.Inbox() <- lobby.Shutdown{}
				}
				clear(h.lobbies)
				h.cancel()
			}
		}
	}
}

// freshCode generates codes until one misses the registry. Collisions are
// rare at this keyspace but the check makes uniqueness a guarantee rather
// than a probability.
func (h *Hub) freshCode() string {
	for {
		code := generateCode()
		if _, taken := h.lobbies[code]; !taken {
			return code
		}
		h.log.Warn("lobby code collision, regenerating", zap.String("code", code))
	}
}

func generateCode() string {
	code := make([]byte, codeLen)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			// crypto/rand failing means the process is in far worse
			// trouble than a lobby code.
			panic(err)
		}
		code[i] = codeCharset[num.Int64()]
	}
	return string(code)
}
