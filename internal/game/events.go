package game

type EventType string

const (
	EvtLobbyCreated         EventType = "lobbyCreated"
	EvtLobbyJoined          EventType = "lobbyJoined"
	EvtPlayerJoined         EventType = "playerJoined"
	EvtPlayerLeft           EventType = "playerLeft"
	EvtPlayerReadyUpdate    EventType = "playerReadyUpdate"
	EvtRoleAssigned         EventType = "roleAssigned"
	EvtGameStarted          EventType = "gameStarted"
	EvtPlayerSubmittingClue EventType = "playerSubmittingClue"
	EvtPromptClueSubmission EventType = "promptClueSubmission"
	EvtClueSubmitted        EventType = "clueSubmitted"
	EvtVotingInitiated      EventType = "votingInitiated"
	EvtUpdateGuessButton    EventType = "updateGuessButton"
	EvtUpdateVoteButton     EventType = "updateVoteButton"
	EvtEnableProceedButton  EventType = "enableProceedButton"
	EvtChatMessage          EventType = "receiveChatMessage"
	EvtPrivateMessage       EventType = "receivePrivateMessage"
	EvtIncorrectGuess       EventType = "incorrectGuess"
	EvtNewRoundStarted      EventType = "newRoundStarted"
	EvtUpdatePlayerList     EventType = "updatePlayerList"
	EvtGameEnded            EventType = "gameEnded"
	EvtError                EventType = "error"
)

// ChatTypeSystem marks server-generated chat lines (vote calls, eliminations,
// proceed progress) so clients can style them apart from player chat.
const ChatTypeSystem = "system"

type PlayerInfo struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// Event is one outbound notification produced by Apply. To is the session id
// of the recipient for unicasts; empty To means broadcast to the whole lobby.
type Event struct {
	Type EventType
	To   string

	Code         string
	Category     string
	Count        int
	ReadyCount   int
	TotalPlayers int
	Role         Role
	SecretWord   string
	PlayerID     string
	Nickname     string
	FromNickname string
	Clue         string
	Message      string
	ChatType     string
	Enabled      bool
	Round        int
	Players      []PlayerInfo
	Result       string
	ImposterID   string
}

func broadcastChat(message string) Event {
	return Event{Type: EvtChatMessage, Message: message, ChatType: ChatTypeSystem}
}

// ContainsEvent reports whether events holds at least one event of the
// given type.
func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
