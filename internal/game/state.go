package game

type Phase string

const (
	PhaseWaiting      Phase = "waiting"
	PhaseAwaitingClue Phase = "awaiting_clue"
	PhaseRoundGated   Phase = "round_gated"
	PhaseVoting       Phase = "voting"
	PhaseGameOver     Phase = "game_over"
)

type Role string

const (
	RoleUnset    Role = ""
	RolePlayer   Role = "Player"
	RoleImposter Role = "Imposter"
)

const (
	// MinPlayers is required both to start a game and to keep one running.
	MinPlayers = 3

	MaxNicknameLen = 15

	// VoteSkip is the ballot option meaning "eliminate no one".
	VoteSkip = "skip"
)

type Player struct {
	ID       string
	Nickname string
	Role     Role
	Clues    []string
	Ready    bool
}

// State is one lobby's complete game state. It is owned by a single lobby
// goroutine and mutated only through Apply.
type State struct {
	Code     string
	Category string

	Players   map[string]*Player
	JoinOrder []string // insertion order; drives clue turn sequencing

	ImposterID string
	SecretWord string

	Votes        map[string]string // voter id -> target id or VoteSkip
	ProceedVotes map[string]bool

	ClueOrder []string
	ClueIndex int
	Round     int

	Phase Phase

	ImposterCanGuess bool
	CanCallVote      bool
}

func NewState(code, category string) State {
	return State{
		Code:         code,
		Category:     category,
		Players:      map[string]*Player{},
		JoinOrder:    []string{},
		Votes:        map[string]string{},
		ProceedVotes: map[string]bool{},
		ClueOrder:    []string{},
		Round:        1,
		Phase:        PhaseWaiting,
	}
}

func (s State) player(id string) (*Player, bool) {
	p, ok := s.Players[id]
	return p, ok
}

func (s State) playerByNickname(nickname string) (*Player, bool) {
	for _, id := range s.JoinOrder {
		if p := s.Players[id]; p.Nickname == nickname {
			return p, true
		}
	}
	return nil, false
}

// Roster lists the current players in join order.
func (s State) Roster() []PlayerInfo {
	out := make([]PlayerInfo, 0, len(s.JoinOrder))
	for _, id := range s.JoinOrder {
		out = append(out, PlayerInfo{ID: id, Nickname: s.Players[id].Nickname})
	}
	return out
}

func (s State) readyCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Ready {
			n++
		}
	}
	return n
}

func (s State) started() bool {
	return s.Phase != PhaseWaiting && s.Phase != PhaseGameOver
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
