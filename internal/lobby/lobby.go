// Package lobby runs one goroutine per active lobby. The goroutine owns the
// game state and the connected client outboxes; everything reaches it through
// a typed message inbox, which serializes all mutation for that lobby.
package lobby

import (
	"context"

	"go.uber.org/zap"

	"github.com/imposterparty/backend/internal/game"
)

type Msg interface{ isLobbyMsg() }

// Join registers a client outbox and adds the session as a player.
type Join struct {
	SessionID string
	Creator   bool
	Outbox    chan game.Event
}

func (Join) isLobbyMsg() {}

// Leave is the implicit disconnect action: the player is removed from the
// game and their outbox is dropped.
type Leave struct{ SessionID string }

func (Leave) isLobbyMsg() {}

type FromClient struct {
	SessionID string
	Cmd       game.Command
}

func (FromClient) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

// GetState reflects internal state without data races; used by tests and the
// HTTP info endpoint. The view carries copies only, never the live state, so
// readers on other goroutines cannot observe the actor's mutations.
type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type View struct {
	NumClients int
	Code       string
	Category   string
	Phase      game.Phase
	Players    []game.PlayerInfo
}

type Lobby struct {
	code    string
	inbox   chan Msg
	state   game.State
	clients map[string]chan game.Event
	log     *zap.Logger
	onClose func(code string)
	ctx     context.Context
	cancel  context.CancelFunc

	// everJoined distinguishes a brand-new lobby from one whose last
	// player has left; only the latter is destroyed for being empty.
	everJoined bool
}

// New starts a lobby actor. onClose is invoked exactly once, after the
// actor stops, so the registry can forget the code.
func New(parent context.Context, initial game.State, log *zap.Logger, onClose func(code string)) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		code:    initial.Code,
		inbox:   make(chan Msg, 64),
		state:   initial,
		clients: make(map[string]chan game.Event),
		log:     log.With(zap.String("lobby", initial.Code)),
		onClose: onClose,
		ctx:     ctx,
		cancel:  cancel,
	}

	go l.loop()
	return l
}

// Inbox exposes the actor's mailbox to the ws layer and tests.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) Code() string { return l.code }

// Done is closed once the actor has stopped; connections watch it so they
// are not left talking to a dead mailbox.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				l.everJoined = true
				l.clients[msg.SessionID] = msg.Outbox
				l.dispatch(msg.SessionID, game.Command{
					Type:    game.CmdJoin,
					Actor:   msg.SessionID,
					Creator: msg.Creator,
				})

			case Leave:
				l.dispatch(msg.SessionID, game.Command{
					Type:  game.CmdDisconnect,
					Actor: msg.SessionID,
				})
				if out, ok := l.clients[msg.SessionID]; ok {
					close(out)
					delete(l.clients, msg.SessionID)
				}

			case FromClient:
				l.dispatch(msg.SessionID, msg.Cmd)

			case GetState:
				msg.Reply <- View{
					NumClients: len(l.clients),
					Code:       l.state.Code,
					Category:   l.state.Category,
					Phase:      l.state.Phase,
					Players:    l.state.Roster(),
				}

			case Shutdown:
				l.shutdown()
				return
			}

			if l.done() {
				l.shutdown()
				return
			}
		}
	}
}

// done reports whether the lobby should be destroyed: the game concluded or
// the last player left.
func (l *Lobby) done() bool {
	if l.state.Phase == game.PhaseGameOver {
		return true
	}
	return l.everJoined && len(l.state.Players) == 0 && len(l.clients) == 0
}

func (l *Lobby) dispatch(sessionID string, cmd game.Command) {
	events, next, err := game.Apply(l.state, cmd)
	if err != nil {
		l.log.Debug("command rejected",
			zap.String("cmd", string(cmd.Type)),
			zap.String("session", sessionID),
			zap.Error(err))
		l.unicast(sessionID, game.Event{
			Type:    game.EvtError,
			To:      sessionID,
			Message: err.Error(),
		})
		return
	}

	l.state = next
	l.log.Debug("command applied",
		zap.String("cmd", string(cmd.Type)),
		zap.String("phase", string(next.Phase)),
		zap.Int("events", len(events)))

	for _, ev := range events {
		if ev.To == "" {
			l.broadcast(ev)
		} else {
			l.unicast(ev.To, ev)
		}
	}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch)
		delete(l.clients, id)
	}
	if l.onClose != nil {
		l.onClose(l.code)
		l.onClose = nil
	}
	// Cancel last so Done() means the registry has been told.
	l.cancel()
	l.log.Info("lobby closed")
}

func (l *Lobby) broadcast(ev game.Event) {
	for id, ch := range l.clients {
		select {
		case ch <- ev:
			// ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(l.clients, id)
		}
	}
}

func (l *Lobby) unicast(sessionID string, ev game.Event) {
	ch, ok := l.clients[sessionID]
	if !ok {
		return
	}
	select {
	case ch <- ev:
	default:
		close(ch)
		delete(l.clients, sessionID)
	}
}
