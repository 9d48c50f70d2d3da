package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"unicode/utf8"

	"github.com/imposterparty/backend/internal/sanitize"
	"github.com/imposterparty/backend/internal/words"
)

var ErrGameInProgress = errors.New("game already in progress")
var ErrGameCompleted = errors.New("game already completed")
var ErrPlayerNotFound = errors.New("player not found in lobby")
var ErrEmptyNickname = errors.New("nickname cannot be empty")
var ErrNicknameTooLong = errors.New("nickname must be 15 characters or fewer")
var ErrDuplicateNickname = errors.New("nickname is already taken")
var ErrWrongPhase = errors.New("action not allowed right now")
var ErrOutOfTurn = errors.New("it is not your turn to submit a clue")
var ErrEmptyClue = errors.New("clue cannot be empty")
var ErrEmptyMessage = errors.New("message cannot be empty")
var ErrEmptyGuess = errors.New("guess cannot be empty")
var ErrNotImposter = errors.New("only the imposter can guess the word")
var ErrGuessNotOpen = errors.New("you cannot guess the word right now")
var ErrVoteCallNotOpen = errors.New("a vote cannot be called right now")
var ErrUnknownVoteTarget = errors.New("voted player not found")
var ErrRecipientNotFound = errors.New("no player with that nickname")
var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdJoin       CommandType = "Join"
	CmdReady      CommandType = "Ready"
	CmdSubmitClue CommandType = "SubmitClue"
	CmdCallVote   CommandType = "CallVote"
	CmdSubmitVote CommandType = "SubmitVote"
	CmdGuessWord  CommandType = "GuessWord"
	CmdProceed    CommandType = "Proceed"
	CmdChat       CommandType = "Chat"
	CmdDisconnect CommandType = "Disconnect"
)

type Command struct {
	Type     CommandType
	Actor    string // session id of the caller
	Nickname string // Ready
	Text     string // SubmitClue / Chat / GuessWord
	Target   string // SubmitVote: player id or VoteSkip
	Creator  bool   // Join: this session created the lobby
}

// Randomness hooks; swapped in tests.
var pickImposter = func(ids []string) string {
	return ids[rand.Intn(len(ids))]
}
var pickWord = words.Random

// Apply is the single transition function for a lobby. It validates cmd
// against the current phase, returns the notifications to deliver and the
// next state. On error the returned state is s unchanged and no events are
// emitted; errors are reported to the caller only.
func Apply(s State, cmd Command) ([]Event, State, error) {
	if s.Phase == PhaseGameOver {
		if cmd.Type == CmdDisconnect {
			return nil, s, nil
		}
		return nil, s, ErrGameCompleted
	}

	switch cmd.Type {
	case CmdJoin:
		return applyJoin(s, cmd)
	case CmdReady:
		return applyReady(s, cmd)
	case CmdSubmitClue:
		return applySubmitClue(s, cmd)
	case CmdCallVote:
		return applyCallVote(s, cmd)
	case CmdSubmitVote:
		return applySubmitVote(s, cmd)
	case CmdGuessWord:
		return applyGuessWord(s, cmd)
	case CmdProceed:
		return applyProceed(s, cmd)
	case CmdChat:
		return applyChat(s, cmd)
	case CmdDisconnect:
		return applyDisconnect(s, cmd)
	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func applyJoin(s State, cmd Command) ([]Event, State, error) {
	if s.Phase != PhaseWaiting {
		return nil, s, ErrGameInProgress
	}

	s.Players[cmd.Actor] = &Player{ID: cmd.Actor}
	s.JoinOrder = append(s.JoinOrder, cmd.Actor)

	welcome := EvtLobbyJoined
	if cmd.Creator {
		welcome = EvtLobbyCreated
	}
	events := []Event{
		{Type: welcome, To: cmd.Actor, Code: s.Code, Category: s.Category},
		{Type: EvtPlayerJoined, Count: len(s.Players)},
	}
	return events, s, nil
}

func applyReady(s State, cmd Command) ([]Event, State, error) {
	p, ok := s.player(cmd.Actor)
	if !ok {
		return nil, s, ErrPlayerNotFound
	}
	if s.Phase != PhaseWaiting {
		return nil, s, ErrWrongPhase
	}

	if !p.Ready {
		nickname := sanitize.Clean(cmd.Nickname)
		if nickname == "" {
			return nil, s, ErrEmptyNickname
		}
		if utf8.RuneCountInString(nickname) > MaxNicknameLen {
			return nil, s, ErrNicknameTooLong
		}
		for id, other := range s.Players {
			if id != cmd.Actor && other.Nickname == nickname {
				return nil, s, ErrDuplicateNickname
			}
		}
		p.Nickname = nickname
		p.Ready = true
	}
	// Re-ready is a no-op; the nickname is immutable once set.

	if s.readyCount() == len(s.Players) && len(s.Players) >= MinPlayers {
		return startGame(s)
	}
	events := []Event{{
		Type:         EvtPlayerReadyUpdate,
		ReadyCount:   s.readyCount(),
		TotalPlayers: len(s.Players),
	}}
	return events, s, nil
}

func startGame(s State) ([]Event, State, error) {
	s.ImposterID = pickImposter(s.JoinOrder)
	s.SecretWord = pickWord(s.Category)
	s.Round = 1
	s.ClueOrder = append([]string{}, s.JoinOrder...)
	s.ClueIndex = 0
	s.ImposterCanGuess = false
	s.CanCallVote = false
	s.Phase = PhaseAwaitingClue

	var events []Event
	for _, id := range s.JoinOrder {
		p := s.Players[id]
		p.Clues = nil
		if id == s.ImposterID {
			p.Role = RoleImposter
			events = append(events, Event{Type: EvtRoleAssigned, To: id, Role: RoleImposter})
		} else {
			p.Role = RolePlayer
			events = append(events, Event{Type: EvtRoleAssigned, To: id, Role: RolePlayer, SecretWord: s.SecretWord})
		}
	}
	events = append(events, Event{
		Type:     EvtGameStarted,
		Players:  s.Roster(),
		Round:    s.Round,
		Category: s.Category,
	})
	events = append(events, promptClue(s)...)
	return events, s, nil
}

// promptClue announces whose turn it is and privately prompts that player.
func promptClue(s State) []Event {
	id := s.ClueOrder[s.ClueIndex]
	return []Event{
		{Type: EvtPlayerSubmittingClue, PlayerID: id, Nickname: s.Players[id].Nickname},
		{Type: EvtPromptClueSubmission, To: id},
	}
}

func applySubmitClue(s State, cmd Command) ([]Event, State, error) {
	p, ok := s.player(cmd.Actor)
	if !ok {
		return nil, s, ErrPlayerNotFound
	}
	if s.Phase != PhaseAwaitingClue {
		return nil, s, ErrWrongPhase
	}
	if s.ClueOrder[s.ClueIndex] != cmd.Actor {
		return nil, s, ErrOutOfTurn
	}
	clue := sanitize.Clean(cmd.Text)
	if clue == "" {
		return nil, s, ErrEmptyClue
	}

	p.Clues = append(p.Clues, clue)
	events := []Event{{
		Type:     EvtClueSubmitted,
		PlayerID: cmd.Actor,
		Nickname: p.Nickname,
		Clue:     clue,
	}}

	s.ClueIndex++
	if s.ClueIndex < len(s.ClueOrder) {
		return append(events, promptClue(s)...), s, nil
	}

	// All clues are in: open the gated phase.
	var next []Event
	s, next = openRoundGate(s)
	return append(events, next...), s, nil
}

func openRoundGate(s State) (State, []Event) {
	s.Phase = PhaseRoundGated
	s.ClueIndex = 0
	s.ImposterCanGuess = true
	s.CanCallVote = true
	return s, []Event{
		{Type: EvtUpdateGuessButton, To: s.ImposterID, Enabled: true},
		{Type: EvtUpdateVoteButton, Enabled: true},
		{Type: EvtEnableProceedButton, Enabled: true},
	}
}

func applyCallVote(s State, cmd Command) ([]Event, State, error) {
	p, ok := s.player(cmd.Actor)
	if !ok {
		return nil, s, ErrPlayerNotFound
	}
	if s.Phase != PhaseRoundGated {
		return nil, s, ErrWrongPhase
	}
	if !s.CanCallVote {
		return nil, s, ErrVoteCallNotOpen
	}

	s.CanCallVote = false
	s.Phase = PhaseVoting
	events := []Event{
		broadcastChat(fmt.Sprintf("%s has called for a vote.", p.Nickname)),
		{Type: EvtVotingInitiated},
		{Type: EvtUpdateVoteButton, Enabled: false},
	}
	return events, s, nil
}

func applyGuessWord(s State, cmd Command) ([]Event, State, error) {
	if cmd.Actor != s.ImposterID {
		return nil, s, ErrNotImposter
	}
	if !s.ImposterCanGuess {
		return nil, s, ErrGuessNotOpen
	}
	guess := sanitize.Clean(cmd.Text)
	if guess == "" {
		return nil, s, ErrEmptyGuess
	}

	events := []Event{
		broadcastChat(fmt.Sprintf("The imposter guessed %q.", guess)),
	}

	if strings.EqualFold(guess, s.SecretWord) {
		var end []Event
		s, end = endGame(s, fmt.Sprintf("Imposter wins! The imposter was %s.", s.Players[s.ImposterID].Nickname))
		return append(events, end...), s, nil
	}

	s.ImposterCanGuess = false
	events = append(events,
		Event{Type: EvtIncorrectGuess, To: cmd.Actor, Message: "Incorrect guess. The word stays hidden."},
		Event{Type: EvtUpdateGuessButton, To: cmd.Actor, Enabled: false},
	)
	return events, s, nil
}

func applyProceed(s State, cmd Command) ([]Event, State, error) {
	if _, ok := s.player(cmd.Actor); !ok {
		return nil, s, ErrPlayerNotFound
	}
	if s.Phase != PhaseRoundGated {
		return nil, s, ErrWrongPhase
	}

	s.ProceedVotes[cmd.Actor] = true
	needed := (len(s.Players) + 1) / 2
	if len(s.ProceedVotes) >= needed {
		var events []Event
		s, events = advanceRound(s)
		return events, s, nil
	}

	events := []Event{broadcastChat(fmt.Sprintf(
		"%d/%d players want to proceed to the next round.",
		len(s.ProceedVotes), needed,
	))}
	return events, s, nil
}

func applySubmitVote(s State, cmd Command) ([]Event, State, error) {
	if _, ok := s.player(cmd.Actor); !ok {
		return nil, s, ErrPlayerNotFound
	}
	if s.Phase != PhaseVoting {
		return nil, s, ErrWrongPhase
	}
	if cmd.Target != VoteSkip {
		if _, ok := s.player(cmd.Target); !ok {
			return nil, s, ErrUnknownVoteTarget
		}
	}

	// Last write wins for a voter changing their mind.
	s.Votes[cmd.Actor] = cmd.Target

	if len(s.Votes) < len(s.Players) {
		return nil, s, nil
	}
	var events []Event
	s, events = resolveVotes(s)
	return events, s, nil
}

// resolveVotes tallies a complete ballot. The outcome depends only on the
// multiset of vote values, never on submission order.
func resolveVotes(s State) (State, []Event) {
	skips := 0
	counts := map[string]int{}
	for _, target := range s.Votes {
		if target == VoteSkip {
			skips++
			continue
		}
		counts[target]++
	}

	// Strict majority of skips: nobody goes home.
	if skips*2 > len(s.Players) {
		events := []Event{broadcastChat("The vote was skipped. No one was eliminated.")}
		s, advance := advanceRound(s)
		return s, append(events, advance...)
	}

	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	var top []string
	for target, n := range counts {
		if n == max {
			top = append(top, target)
		}
	}

	if len(top) != 1 {
		events := []Event{broadcastChat("The vote was a tie. No one was eliminated.")}
		s, advance := advanceRound(s)
		return s, append(events, advance...)
	}

	voted := top[0]
	if voted == s.ImposterID {
		result := fmt.Sprintf("Players win! The imposter was %s.", s.Players[s.ImposterID].Nickname)
		s, end := endGame(s, result)
		return s, end
	}

	nickname := s.Players[voted].Nickname
	s = removePlayer(s, voted)
	events := []Event{
		broadcastChat(fmt.Sprintf("%s was eliminated. They were not the imposter.", nickname)),
		{Type: EvtUpdatePlayerList, Players: s.Roster()},
	}

	if len(s.Players) < MinPlayers {
		s, end := endGame(s, fmt.Sprintf(
			"Imposter wins! Not enough players remain. The imposter was %s.",
			s.imposterNickname(),
		))
		return s, append(events, end...)
	}

	s, advance := advanceRound(s)
	return s, append(events, advance...)
}

// advanceRound closes the gated/voting window and begins the next round.
func advanceRound(s State) (State, []Event) {
	s.Round++
	s.Votes = map[string]string{}
	s.ProceedVotes = map[string]bool{}
	s.ImposterCanGuess = false
	s.CanCallVote = false

	events := []Event{
		{Type: EvtUpdateGuessButton, To: s.ImposterID, Enabled: false},
		{Type: EvtUpdateVoteButton, Enabled: false},
		{Type: EvtEnableProceedButton, Enabled: false},
	}

	s.ClueIndex = 0
	s.ClueOrder = append([]string{}, s.JoinOrder...)
	for _, p := range s.Players {
		p.Clues = nil
	}
	s.Phase = PhaseAwaitingClue

	events = append(events, Event{Type: EvtNewRoundStarted, Round: s.Round})
	events = append(events, promptClue(s)...)
	return s, events
}

func endGame(s State, result string) (State, []Event) {
	s.Phase = PhaseGameOver
	return s, []Event{{Type: EvtGameEnded, Result: result, ImposterID: s.ImposterID}}
}

func applyChat(s State, cmd Command) ([]Event, State, error) {
	p, ok := s.player(cmd.Actor)
	if !ok {
		return nil, s, ErrPlayerNotFound
	}
	text := sanitize.Clean(cmd.Text)
	if text == "" {
		return nil, s, ErrEmptyMessage
	}

	// "/w <nickname> <message>" whispers to a single player.
	if rest, ok := strings.CutPrefix(text, "/w "); ok {
		parts := strings.SplitN(strings.TrimSpace(rest), " ", 2)
		if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
			return nil, s, ErrEmptyMessage
		}
		recipient, ok := s.playerByNickname(parts[0])
		if !ok {
			return nil, s, ErrRecipientNotFound
		}
		body := strings.TrimSpace(parts[1])
		events := []Event{
			{Type: EvtPrivateMessage, To: recipient.ID, FromNickname: p.Nickname, Message: body},
		}
		if recipient.ID != cmd.Actor {
			events = append(events, Event{Type: EvtPrivateMessage, To: cmd.Actor, FromNickname: p.Nickname, Message: body})
		}
		return events, s, nil
	}

	events := []Event{{
		Type:     EvtChatMessage,
		PlayerID: cmd.Actor,
		Nickname: p.Nickname,
		Message:  text,
	}}
	return events, s, nil
}

func applyDisconnect(s State, cmd Command) ([]Event, State, error) {
	if _, ok := s.player(cmd.Actor); !ok {
		// Spectators and unknown sessions leave without touching the game.
		return nil, s, nil
	}

	wasAwaited := s.Phase == PhaseAwaitingClue && s.ClueOrder[s.ClueIndex] == cmd.Actor
	pos := -1
	for i, id := range s.ClueOrder {
		if id == cmd.Actor {
			pos = i
		}
	}

	s = removePlayer(s, cmd.Actor)
	events := []Event{{Type: EvtPlayerLeft, Count: len(s.Players)}}

	if !s.started() {
		return events, s, nil
	}

	events = append(events, Event{Type: EvtUpdatePlayerList, Players: s.Roster()})

	if len(s.Players) < MinPlayers {
		s, end := endGame(s, fmt.Sprintf(
			"Imposter wins! Not enough players remain. The imposter was %s.",
			s.imposterNickname(),
		))
		return append(events, end...), s, nil
	}

	switch s.Phase {
	case PhaseAwaitingClue:
		// The departed player was spliced out of ClueOrder by removePlayer.
		if pos >= 0 && pos < s.ClueIndex {
			s.ClueIndex--
		}
		if s.ClueIndex >= len(s.ClueOrder) {
			var gate []Event
			s, gate = openRoundGate(s)
			return append(events, gate...), s, nil
		}
		if wasAwaited {
			events = append(events, promptClue(s)...)
		}
	case PhaseRoundGated:
		// Fewer players can mean the standing proceed votes now clear
		// the majority.
		if len(s.ProceedVotes) >= (len(s.Players)+1)/2 {
			var advance []Event
			s, advance = advanceRound(s)
			events = append(events, advance...)
		}
	case PhaseVoting:
		// The departed player's ballot no longer counts; the remaining
		// votes may now form a complete ballot.
		if len(s.Votes) >= len(s.Players) {
			var resolved []Event
			s, resolved = resolveVotes(s)
			events = append(events, resolved...)
		}
	}
	return events, s, nil
}

// removePlayer drops a player from every structure that references them.
// Votes cast for the departed player are discarded; those voters get to
// vote again.
func removePlayer(s State, id string) State {
	delete(s.Players, id)
	s.JoinOrder = removeID(s.JoinOrder, id)
	s.ClueOrder = removeID(s.ClueOrder, id)
	delete(s.Votes, id)
	delete(s.ProceedVotes, id)
	for voter, target := range s.Votes {
		if target == id {
			delete(s.Votes, voter)
		}
	}
	return s
}

// imposterNickname survives the imposter's own departure, which removes
// them from Players.
func (s State) imposterNickname() string {
	if p, ok := s.Players[s.ImposterID]; ok {
		return p.Nickname
	}
	return "unknown"
}
