package engine

import (
	"time"

	"github.com/duskcall/mafia/internal/domain/dispatch"
	"github.com/duskcall/mafia/internal/domain/game"
	"github.com/duskcall/mafia/internal/domain/role"
	"github.com/duskcall/mafia/internal/pkg/metrics"
)

func (m *Machine) handleStartGame() error {
	if m.room.IsGameActive {
		return game.ErrRoomInGame
	}
	ids := m.room.PlayerOrder()
	if len(ids) < m.room.MinPlayers || len(ids) > m.room.MaxPlayers {
		if len(ids) < m.room.MinPlayers {
			return game.ErrNotEnoughPlayers
		}
		return game.ErrTooManyPlayers
	}

	assignments := game.AssignRoles(ids, m.room.Settings.Roles, m.rng)
	m.state = game.NewState(m.room.ID, assignments, m.room.Settings)
	m.room.MarkGameActive(true)
	metrics.GamesActive.Inc()

	m.emit(EvGameStarted, dispatch.All(), nil)
	for id, r := range assignments {
		entry := role.Get(r)
		var teammates []string
		if entry.Team == role.TeamMafia {
			teammates = m.state.MafiaTeammates(id)
		}
		m.emit(EvRoleReveal, dispatch.ForPlayer(id), RoleRevealPayload{Role: r, Team: entry.Team, Teammates: teammates})
	}

	m.enterPhase(game.PhaseRoleReveal)
	return nil
}

// enterPhase transitions the machine into p: stops prior timers, resets
// per-phase buffers, dispatches phase:change (and, for night-action
// phases, action:required), and schedules the phase timer.
func (m *Machine) enterPhase(p game.Phase) {
	m.stopTimers()
	m.state.Phase = p
	metrics.PhaseTransitions.WithLabelValues(string(p)).Inc()

	if game.IsNightActionPhase(p) {
		if p == game.PhaseMafiaAction {
			if !m.state.HasLivingMafiaActor() {
				m.advanceNightPipeline(p)
				return
			}
		} else if r, ok := game.RoleForPhase(p); ok && !m.state.HasLivingRole(r) {
			m.advanceNightPipeline(p)
			return
		}
		m.state.EnterNightPhase(p)
	}

	duration := m.state.Settings.TimerFor(p)
	m.emit(EvPhaseChange, dispatch.All(), PhaseChangePayload{Phase: p, TimerSeconds: int(duration.Seconds()), DayNumber: m.state.DayNumber})

	if game.IsNightActionPhase(p) {
		actingRole, _ := game.RoleForPhase(p)
		targets := m.eligibleActorsFor(p)
		for _, actorID := range targets {
			valid := m.state.ValidTargets(p, actorID)
			m.emit(EvActionRequired, dispatch.ForPlayer(actorID), ActionRequiredPayload{Role: actingRole, Phase: p, TimerSeconds: int(duration.Seconds()), ValidTargets: valid})
		}
	}
	if p == game.PhaseVoting {
		m.state.StartVoting()
		candidates := m.state.AliveIDs()
		if m.forcedRemovalTarget != "" {
			candidates = []string{m.forcedRemovalTarget}
		}
		m.voteCandidates = candidates
		m.forcedRemovalTarget = ""
		m.emit(EvVoteStarted, dispatch.Alive(), VoteStartedPayload{TimerSeconds: int(duration.Seconds()), Candidates: candidates})
	}

	m.schedulePhaseTimer(p, duration)
}

func (m *Machine) schedulePhaseTimer(p game.Phase, d time.Duration) {
	m.deadline = m.clock.Now().Add(d).UnixMilli()
	phase := p
	m.phaseTimer = m.clock.AfterFunc(d, func() {
		m.cmdCh <- cmdPhaseTimerFired{expectPhase: string(phase)}
	})
	m.ticker = m.clock.Ticker(1 * time.Second)
	go func(ch <-chan time.Time) {
		for range ch {
			select {
			case m.cmdCh <- cmdTick{}:
			default:
			}
		}
	}(m.ticker.C())
}

func (m *Machine) stopTimers() {
	if m.phaseTimer != nil {
		m.phaseTimer.Stop()
		m.phaseTimer = nil
	}
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
}

func (m *Machine) handleTick() {
	if m.state == nil {
		return
	}
	remaining := m.deadline - m.clock.Now().UnixMilli()
	if remaining < 0 {
		remaining = 0
	}
	m.emit(EvTimerUpdate, dispatch.All(), TimerUpdatePayload{RemainingSeconds: int(remaining / 1000), Phase: m.state.Phase})
}

// handlePhaseTimerFired advances the machine when a scheduled phase timer
// expires. expectPhase guards against a stale timer firing after the
// machine already moved on (its Stop() call raced the fire).
func (m *Machine) handlePhaseTimerFired(expectPhase string) {
	if m.state == nil || string(m.state.Phase) != expectPhase {
		return
	}
	m.advancePhase()
}

// advanceNightPipeline moves to the next phase in the night pipeline
// after `from`, or starts resolution if `from` was the last one.
func (m *Machine) advanceNightPipeline(from game.Phase) {
	next, ok := nextInPipeline(from)
	if ok {
		m.enterPhase(next)
		return
	}
	m.resolveNightAndContinue()
}

func (m *Machine) advancePhase() {
	switch m.state.Phase {
	case game.PhaseRoleReveal:
		m.enterPhase(game.PhaseMafiaAction)
	case game.PhaseDayDiscussion:
		m.enterPhase(game.PhaseVoting)
	case game.PhaseVoting:
		m.resolveVoteAndContinue()
	case game.PhaseResolution:
		m.beginNightOrEnd()
	default:
		if game.IsNightActionPhase(m.state.Phase) {
			m.advanceNightPipeline(m.state.Phase)
		}
	}
}

func nextInPipeline(from game.Phase) (game.Phase, bool) {
	order := []game.Phase{
		game.PhaseMafiaAction, game.PhaseDonAction, game.PhaseDetectiveAction,
		game.PhaseDoctorAction, game.PhaseBodyguardAction, game.PhaseJailorAction,
		game.PhaseVigilanteAction, game.PhaseSpyAction, game.PhaseMafiaHealerAction,
		game.PhaseSilencerAction, game.PhaseSerialKillerAction, game.PhaseCultLeaderAction,
		game.PhaseArsonistAction,
	}
	for i, p := range order {
		if p == from && i+1 < len(order) {
			return order[i+1], true
		}
	}
	return "", false
}

func (m *Machine) resolveNightAndContinue() {
	outcome := m.state.ResolveNight(m.rng)

	m.emit(EvNightResult, dispatch.All(), NightResultPayload{Deaths: outcome.Public.Deaths, AnyoneSaved: outcome.Public.AnyoneSaved, DayNumber: m.state.DayNumber})
	if outcome.Detective != nil {
		for _, id := range m.state.AliveWithRole(role.Detective) {
			m.emit(EvDetectiveResult, dispatch.ForPlayer(id), outcome.Detective)
		}
	}
	if outcome.Don != nil {
		for _, id := range m.state.AliveWithRole(role.Don) {
			m.emit(EvDonResult, dispatch.ForPlayer(id), outcome.Don)
		}
	}

	if win, over := m.state.CheckWin(""); over {
		m.endGame(win)
		return
	}
	m.enterPhase(game.PhaseDayDiscussion)
}

func (m *Machine) beginNightOrEnd() {
	m.state.StartNight()
	m.enterPhase(game.PhaseMafiaAction)
}

func (m *Machine) handleNightAction(actorID, targetID string) error {
	if m.state == nil {
		return game.ErrGameNotActive
	}
	if !game.IsNightActionPhase(m.state.Phase) {
		return game.ErrInvalidPhase
	}
	actingRole, _ := game.RoleForPhase(m.state.Phase)
	if m.state.Phase != game.PhaseMafiaAction && m.state.RoleAssignments[actorID] != actingRole {
		return game.ErrNotAuthorized
	}
	if m.state.Phase == game.PhaseMafiaAction && !role.IsMafiaActor(m.state.RoleAssignments[actorID]) {
		return game.ErrNotAuthorized
	}
	if err := m.state.SubmitNightAction(m.state.Phase, actorID, targetID); err != nil {
		return err
	}
	m.emit(EvActionConfirmed, dispatch.ForPlayer(actorID), ActionConfirmedPayload{ActionType: string(m.state.Phase)})

	if m.state.AllSubmitted(m.state.Phase) {
		m.advanceNightPipeline(m.state.Phase)
	}
	return nil
}

func (m *Machine) handleVoteCast(voterID, targetID string) error {
	if m.state == nil || m.state.Phase != game.PhaseVoting {
		return game.ErrInvalidPhase
	}
	if targetID != "" && len(m.voteCandidates) > 0 && !contains(m.voteCandidates, targetID) {
		return game.ErrInvalidTarget
	}
	if err := m.state.CastVote(voterID, targetID); err != nil {
		return err
	}
	m.emit(EvVoteUpdate, dispatch.Alive(), VoteUpdatePayload{Votes: m.state.Votes})
	if m.state.AllVoted() {
		m.resolveVoteAndContinue()
	}
	return nil
}

func (m *Machine) resolveVoteAndContinue() {
	outcome := m.state.ResolveVote(m.state.Settings.TieBreak, m.rng)
	var eliminatedRole role.Role
	if outcome.EliminatedID != "" {
		eliminatedRole = m.state.RoleAssignments[outcome.EliminatedID]
	}
	m.emit(EvVoteResult, dispatch.All(), VoteResultPayload{EliminatedID: outcome.EliminatedID, EliminatedRole: eliminatedRole, VoteCounts: outcome.VoteCounts})

	if outcome.NeedsRevote {
		full := m.state.Settings.Timers.Voting
		m.state.Settings.Timers.Voting = full / 2
		m.enterPhase(game.PhaseVoting)
		m.state.Settings.Timers.Voting = full
		return
	}

	if win, over := m.state.CheckWin(outcome.EliminatedID); over {
		m.endGame(win)
		return
	}
	m.enterPhase(game.PhaseResolution)
}

func (m *Machine) handleVoteRequestRemoval(byID, targetID string) error {
	if m.state == nil || m.state.Phase != game.PhaseDayDiscussion {
		return game.ErrInvalidPhase
	}
	if byID != m.room.HostID {
		return game.ErrNotAuthorized
	}
	if !m.state.Alive[targetID] {
		return game.ErrInvalidTarget
	}
	m.forcedRemovalTarget = targetID
	m.clock.AfterFunc(2*time.Second, func() {
		m.cmdCh <- cmdPhaseTimerFired{expectPhase: string(game.PhaseDayDiscussion)}
	})
	return nil
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func (m *Machine) handleChat(messageID, senderID, content string, mafia bool) error {
	if m.state == nil {
		return game.ErrGameNotActive
	}
	kind := game.ChatPlayer
	ring := m.room.Public
	aud := dispatch.Audience{Kind: dispatch.AudienceAll}
	if mafia {
		if m.state.TeamAssignments[senderID] != role.TeamMafia {
			return game.ErrNotAuthorized
		}
		kind = game.ChatMafia
		ring = m.room.Mafia
		aud = dispatch.MafiaTeam()
	} else if !m.state.Alive[senderID] {
		kind = game.ChatGhost
		ring = m.room.Ghost
		aud = dispatch.Dead()
	}
	if m.state.SilencedUntilDayEnd[senderID] && kind == game.ChatPlayer {
		return game.ErrNotAuthorized
	}

	msg := game.Message{ID: messageID, RoomID: m.room.ID, SenderID: senderID, Content: content, Kind: kind, TimestampMs: m.clock.Now().UnixMilli()}
	if !ring.Append(msg) {
		return nil
	}
	m.emit(EvChat, aud, ChatPayload{Message: msg})
	return nil
}

func (m *Machine) handlePlayerLeave(playerID string) {
	if m.state == nil {
		return
	}
	m.removeFromGame(playerID, game.CauseLeave)
}

func (m *Machine) handlePlayerDisconnect(playerID string) {
	// Grace eviction is owned by roommgr.Manager.HandleDisconnect; once its
	// timer fires it calls PlayerLeave. Nothing to do to game state here —
	// disconnected players stay ALIVE; only an explicit leave removes them.
}

func (m *Machine) handlePlayerReconnect(playerID string) {
	// Reconnect snapshot dispatch (roleReveal, the current phaseChange, chat
	// replay) is driven by the Protocol Adapter, which already has the ring
	// buffers and current state available via Machine.State(). No
	// game:stateUpdate is sent on reconnect.
}

func (m *Machine) removeFromGame(playerID string, cause game.DeathCause) {
	if !m.state.Alive[playerID] {
		return
	}
	var deaths []game.Death
	m.state.Alive[playerID] = false
	d := game.Death{ID: playerID, Role: m.state.RoleAssignments[playerID], Cause: cause}
	m.state.Dead = append(m.state.Dead, d)
	deaths = append(deaths, d)
	m.emit(EvNightResult, dispatch.All(), NightResultPayload{Deaths: deaths, DayNumber: m.state.DayNumber})

	if win, over := m.state.CheckWin(""); over {
		m.endGame(win)
	}
}

func (m *Machine) endGame(win game.WinResult) {
	m.state.PendingWin = &win
	m.state.Phase = game.PhaseGameOver
	m.stopTimers()
	m.room.MarkGameActive(false)
	metrics.GamesActive.Dec()
	metrics.GamesCompleted.WithLabelValues(string(win.WinningTeam)).Inc()
	m.emit(EvGameEnd, dispatch.All(), GameEndPayload{Winner: win.Winner, WinningTeam: win.WinningTeam, WinningPlayers: win.WinningPlayers})
}
