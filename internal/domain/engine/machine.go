// Package engine implements the Game State Machine: one Machine
// per active room, driving the phase graph, per-phase/per-role timers,
// action intake, night resolution, voting, and termination. All mutation
// happens on the Machine's own goroutine, reading off a buffered command
// channel, mirroring the msgCh/MsgLoop single-writer pattern so timer
// fires and client intents can never race each other.
package engine

import (
	"log/slog"

	"github.com/duskcall/mafia/internal/domain/clock"
	"github.com/duskcall/mafia/internal/domain/dispatch"
	"github.com/duskcall/mafia/internal/domain/game"
	"github.com/duskcall/mafia/internal/domain/rng"
)

// CmdChSize bounds the per-room command queue. A room under heavy churn
// backs up here before anywhere else.
const CmdChSize = 64

// Machine owns one room's live game.State and drives its phase graph.
type Machine struct {
	room   *game.Room
	state  *game.State
	clock  clock.Clock
	rng    rng.Source
	disp   *dispatch.Dispatcher
	logger *slog.Logger

	cmdCh chan Command
	done  chan struct{}

	phaseTimer clock.Timer
	ticker     clock.Ticker
	deadline   int64 // unix millis

	forcedRemovalTarget string   // set by RequestRemovalVote, consumed on next VOTING entry
	voteCandidates       []string // non-empty only when a removal vote restricted candidates
}

// New builds a Machine for room. It does not start the goroutine; call
// Run in its own goroutine once the room is ready to host a game.
func New(room *game.Room, c clock.Clock, src rng.Source, disp *dispatch.Dispatcher, logger *slog.Logger) *Machine {
	return &Machine{
		room:   room,
		clock:  c,
		rng:    src,
		disp:   disp,
		logger: logger,
		cmdCh:  make(chan Command, CmdChSize),
		done:   make(chan struct{}),
	}
}

// Run is the Machine's single-writer loop. It returns when Shutdown is
// called or cmdCh is closed.
func (m *Machine) Run() {
	for cmd := range m.cmdCh {
		if _, ok := cmd.(cmdShutdown); ok {
			m.teardown()
			close(m.done)
			return
		}
		m.dispatchCommand(cmd)
	}
}

// Done returns a channel closed once Run has exited.
func (m *Machine) Done() <-chan struct{} { return m.done }

// Shutdown cancels outstanding timers and stops Run.
func (m *Machine) Shutdown() {
	select {
	case m.cmdCh <- cmdShutdown{}:
	case <-m.done:
	}
}

func (m *Machine) teardown() {
	if m.phaseTimer != nil {
		m.phaseTimer.Stop()
	}
	if m.ticker != nil {
		m.ticker.Stop()
	}
}

func (m *Machine) dispatchCommand(cmd Command) {
	switch c := cmd.(type) {
	case cmdStartGame:
		c.reply <- m.handleStartGame()
	case cmdNightAction:
		c.reply <- m.handleNightAction(c.ActorID, c.TargetID)
	case cmdVoteCast:
		c.reply <- m.handleVoteCast(c.VoterID, c.TargetID)
	case cmdVoteRequestRemoval:
		c.reply <- m.handleVoteRequestRemoval(c.ByID, c.TargetID)
	case cmdChat:
		c.reply <- m.handleChat(c.MessageID, c.SenderID, c.Content, c.Mafia)
	case cmdPlayerLeave:
		m.handlePlayerLeave(c.PlayerID)
	case cmdPlayerDisconnect:
		m.handlePlayerDisconnect(c.PlayerID)
	case cmdPlayerReconnect:
		m.handlePlayerReconnect(c.PlayerID)
	case cmdPhaseTimerFired:
		m.handlePhaseTimerFired(c.expectPhase)
	case cmdTick:
		m.handleTick()
	}
}

// --- public API: each enqueues a command and waits for the reply. ---

func (m *Machine) StartGame() error {
	reply := make(chan error, 1)
	m.cmdCh <- cmdStartGame{reply: reply}
	return <-reply
}

func (m *Machine) SubmitNightAction(actorID, targetID string) error {
	reply := make(chan error, 1)
	m.cmdCh <- cmdNightAction{ActorID: actorID, TargetID: targetID, reply: reply}
	return <-reply
}

func (m *Machine) CastVote(voterID, targetID string) error {
	reply := make(chan error, 1)
	m.cmdCh <- cmdVoteCast{VoterID: voterID, TargetID: targetID, reply: reply}
	return <-reply
}

func (m *Machine) RequestRemovalVote(byID, targetID string) error {
	reply := make(chan error, 1)
	m.cmdCh <- cmdVoteRequestRemoval{ByID: byID, TargetID: targetID, reply: reply}
	return <-reply
}

// Chat submits a chat line. messageID is a client-supplied idempotency key
// used to dedup retried sends in the room's ring buffers.
func (m *Machine) Chat(messageID, senderID, content string, mafia bool) error {
	reply := make(chan error, 1)
	m.cmdCh <- cmdChat{MessageID: messageID, SenderID: senderID, Content: content, Mafia: mafia, reply: reply}
	return <-reply
}

func (m *Machine) PlayerLeave(playerID string)       { m.cmdCh <- cmdPlayerLeave{PlayerID: playerID} }
func (m *Machine) PlayerDisconnect(playerID string)  { m.cmdCh <- cmdPlayerDisconnect{PlayerID: playerID} }
func (m *Machine) PlayerReconnect(playerID string)   { m.cmdCh <- cmdPlayerReconnect{PlayerID: playerID} }

// State returns the live game.State. Callers outside the Machine's own
// goroutine must treat the returned pointer as read-only and may only
// safely read it from within a command handler or right after a
// synchronous call above returns (happens-before via the reply channel).
func (m *Machine) State() *game.State { return m.state }

func (m *Machine) emit(kind string, aud dispatch.Audience, payload interface{}) {
	m.disp.Dispatch(m.room, m.state, dispatch.Event{RoomID: m.room.ID, Kind: kind, Payload: payload, Audience: aud})
}

// eligibleActorsFor returns who should receive night:actionRequired for
// phase p.
func (m *Machine) eligibleActorsFor(p game.Phase) []string {
	if p == game.PhaseMafiaAction {
		return m.state.AliveMafiaActors()
	}
	if r, ok := game.RoleForPhase(p); ok {
		return m.state.AliveWithRole(r)
	}
	return nil
}
