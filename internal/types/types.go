// Package types defines the websocket wire format: one closed tagged union
// per direction. Payload shape is validated here, at the transport boundary,
// before anything reaches the state machine.
package types

import "github.com/imposterparty/backend/internal/game"

// ClientMessage is the inbound envelope. Type selects the action; the other
// fields are that action's payload.
//
// Types: createLobby, joinLobby, playerReady, submitClue, submitVote,
// sendChatMessage, impostorGuessWord, callForVote, proceedToNextRound.
type ClientMessage struct {
	Type          string `json:"type"`
	Category      string `json:"category,omitempty"`
	Code          string `json:"code,omitempty"`
	Nickname      string `json:"nickname,omitempty"`
	Clue          string `json:"clue,omitempty"`
	VotedPlayerID string `json:"votedPlayerId,omitempty"`
	Message       string `json:"message,omitempty"`
	Guess         string `json:"guess,omitempty"`
}

// ToCommand maps an inbound message onto a state-machine command. createLobby
// and joinLobby are connection-setup messages handled by the ws layer and do
// not map to a command.
func ToCommand(m ClientMessage, sessionID string) (game.Command, bool) {
	cmd := game.Command{Actor: sessionID}
	switch m.Type {
	case "playerReady":
		cmd.Type = game.CmdReady
		cmd.Nickname = m.Nickname
	case "submitClue":
		cmd.Type = game.CmdSubmitClue
		cmd.Text = m.Clue
	case "submitVote":
		cmd.Type = game.CmdSubmitVote
		cmd.Target = m.VotedPlayerID
	case "sendChatMessage":
		cmd.Type = game.CmdChat
		cmd.Text = m.Message
	case "impostorGuessWord":
		cmd.Type = game.CmdGuessWord
		cmd.Text = m.Guess
	case "callForVote":
		cmd.Type = game.CmdCallVote
	case "proceedToNextRound":
		cmd.Type = game.CmdProceed
	default:
		return game.Command{}, false
	}
	return cmd, true
}

// ServerMessage is the outbound envelope. Type names the event; only the
// fields that event carries are populated.
type ServerMessage struct {
	Type         string            `json:"type"`
	Code         string            `json:"code,omitempty"`
	Category     string            `json:"category,omitempty"`
	Count        *int              `json:"count,omitempty"`
	ReadyCount   int               `json:"readyCount,omitempty"`
	TotalPlayers int               `json:"totalPlayers,omitempty"`
	Role         string            `json:"role,omitempty"`
	SecretWord   string            `json:"secretWord,omitempty"`
	PlayerID     string            `json:"playerId,omitempty"`
	Nickname     string            `json:"nickname,omitempty"`
	FromNickname string            `json:"fromNickname,omitempty"`
	Clue         string            `json:"clue,omitempty"`
	Message      string            `json:"message,omitempty"`
	ChatType     string            `json:"chatType,omitempty"`
	Enabled      *bool             `json:"enabled,omitempty"`
	CurrentRound int               `json:"currentRound,omitempty"`
	Players      []game.PlayerInfo `json:"players,omitempty"`
	Result       string            `json:"result,omitempty"`
	ImposterID   string            `json:"imposterId,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// FromEvent converts a state-machine event into its wire shape.
func FromEvent(e game.Event) ServerMessage {
	msg := ServerMessage{Type: string(e.Type)}
	switch e.Type {
	case game.EvtLobbyCreated, game.EvtLobbyJoined:
		msg.Code = e.Code
		msg.Category = e.Category
	case game.EvtPlayerJoined, game.EvtPlayerLeft:
		count := e.Count
		msg.Count = &count
	case game.EvtPlayerReadyUpdate:
		msg.ReadyCount = e.ReadyCount
		msg.TotalPlayers = e.TotalPlayers
	case game.EvtRoleAssigned:
		msg.Role = string(e.Role)
		msg.SecretWord = e.SecretWord
	case game.EvtGameStarted:
		msg.Players = e.Players
		msg.CurrentRound = e.Round
		msg.Category = e.Category
	case game.EvtPlayerSubmittingClue:
		msg.PlayerID = e.PlayerID
		msg.Nickname = e.Nickname
	case game.EvtClueSubmitted:
		msg.PlayerID = e.PlayerID
		msg.Nickname = e.Nickname
		msg.Clue = e.Clue
	case game.EvtUpdateGuessButton, game.EvtUpdateVoteButton, game.EvtEnableProceedButton:
		enabled := e.Enabled
		msg.Enabled = &enabled
	case game.EvtChatMessage:
		msg.PlayerID = e.PlayerID
		msg.Nickname = e.Nickname
		msg.Message = e.Message
		msg.ChatType = e.ChatType
	case game.EvtPrivateMessage:
		msg.FromNickname = e.FromNickname
		msg.Message = e.Message
	case game.EvtIncorrectGuess:
		msg.Message = e.Message
	case game.EvtNewRoundStarted:
		msg.CurrentRound = e.Round
	case game.EvtUpdatePlayerList:
		msg.Players = e.Players
	case game.EvtGameEnded:
		msg.Result = e.Result
		msg.ImposterID = e.ImposterID
	case game.EvtError:
		msg.Error = e.Message
	}
	return msg
}
