package engine

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/duskcall/mafia/internal/domain/clock"
	"github.com/duskcall/mafia/internal/domain/dispatch"
	"github.com/duskcall/mafia/internal/domain/game"
	"github.com/duskcall/mafia/internal/domain/rng"
	"github.com/duskcall/mafia/internal/domain/role"
)

type recordedEvent struct {
	playerID string
	kind     string
	payload  interface{}
}

type testSink struct {
	events []recordedEvent
}

func (s *testSink) SendToPlayer(roomID, playerID, kind string, payload interface{}) {
	s.events = append(s.events, recordedEvent{playerID: playerID, kind: kind, payload: payload})
}

func (s *testSink) last(kind string) *recordedEvent {
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].kind == kind {
			return &s.events[i]
		}
	}
	return nil
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRunningMachine builds a 5-player room (1 mafia, 1 doctor, 3 villagers per
// the composition table), starts its Machine goroutine, and returns it along
// with the player ids in join order and a sink recording every dispatch.
func newRunningMachine(t *testing.T) (*Machine, []string, *testSink, *clock.Fake) {
	t.Helper()
	room := game.NewRoom("room1", "ABC123", "Test Room", game.Public, "p0", "Host", game.DefaultSettings())
	for i := 1; i < 5; i++ {
		room.AddPlayer(stringID(i), "Player"+stringID(i))
	}
	ids := room.PlayerOrder()

	fc := clock.NewFake(time.Unix(0, 0))
	sink := &testSink{}
	disp := dispatch.New(sink)
	m := New(room, fc, rng.New(1), disp, silentLogger())
	go m.Run()
	t.Cleanup(m.Shutdown)

	if err := m.StartGame(); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	return m, ids, sink, fc
}

func stringID(i int) string {
	return string(rune('0' + i))
}

func findRole(m *Machine, ids []string, r role.Role) string {
	for _, id := range ids {
		if m.State().RoleAssignments[id] == r {
			return id
		}
	}
	return ""
}

func TestStartGameAssignsRolesAndEntersRoleReveal(t *testing.T) {
	m, ids, sink, _ := newRunningMachine(t)

	if len(m.State().RoleAssignments) != 5 {
		t.Fatalf("expected 5 role assignments, got %d", len(m.State().RoleAssignments))
	}
	if m.State().Phase != game.PhaseRoleReveal {
		t.Errorf("expected ROLE_REVEAL, got %s", m.State().Phase)
	}
	if findRole(m, ids, role.Mafia) == "" {
		t.Error("expected exactly one mafia assigned")
	}
	if sink.last(EvGameStarted) == nil {
		t.Error("expected game:started dispatched")
	}
}

func TestPhaseTimerExpiryAdvancesToMafiaAction(t *testing.T) {
	m, _, _, fc := newRunningMachine(t)

	fc.Advance(game.DefaultTimers().RoleReveal + time.Second)
	waitForPhase(t, m, game.PhaseMafiaAction)
}

func TestMafiaNightActionKillsVillagerWithoutDoctorSave(t *testing.T) {
	m, ids, sink, fc := newRunningMachine(t)
	fc.Advance(game.DefaultTimers().RoleReveal + time.Second)
	waitForPhase(t, m, game.PhaseMafiaAction)

	mafiaID := findRole(m, ids, role.Mafia)
	villagerID := findRole(m, ids, role.Villager)

	if err := m.SubmitNightAction(mafiaID, villagerID); err != nil {
		t.Fatalf("SubmitNightAction: %v", err)
	}
	// Only one mafia actor, so intake-gating auto-advances to DOCTOR_ACTION
	// (DON/DETECTIVE/BODYGUARD have no living role in this composition).
	waitForPhase(t, m, game.PhaseDoctorAction)

	doctorID := findRole(m, ids, role.Doctor)
	if err := m.SubmitNightAction(doctorID, ""); err != nil {
		t.Fatalf("doctor SubmitNightAction: %v", err)
	}

	waitForPhase(t, m, game.PhaseDayDiscussion)
	if m.State().Alive[villagerID] {
		t.Error("expected villager killed by unsaved mafia action")
	}
	if sink.last(EvNightResult) == nil {
		t.Error("expected night:result dispatched")
	}
}

func TestNightActionRejectsWrongActor(t *testing.T) {
	m, ids, _, fc := newRunningMachine(t)
	fc.Advance(game.DefaultTimers().RoleReveal + time.Second)
	waitForPhase(t, m, game.PhaseMafiaAction)

	villagerID := findRole(m, ids, role.Villager)
	otherVillager := ""
	for _, id := range ids {
		if m.State().RoleAssignments[id] == role.Villager && id != villagerID {
			otherVillager = id
			break
		}
	}

	if err := m.SubmitNightAction(villagerID, otherVillager); err != game.ErrNotAuthorized {
		t.Errorf("expected ErrNotAuthorized for non-mafia actor, got %v", err)
	}
}

func TestVotingEliminatesStrictPlurality(t *testing.T) {
	m, ids, sink, fc := newRunningMachine(t)
	fc.Advance(game.DefaultTimers().RoleReveal + time.Second)
	waitForPhase(t, m, game.PhaseMafiaAction)

	mafiaID := findRole(m, ids, role.Mafia)
	villagerID := findRole(m, ids, role.Villager)
	m.SubmitNightAction(mafiaID, villagerID)
	waitForPhase(t, m, game.PhaseDoctorAction)

	doctorID := findRole(m, ids, role.Doctor)
	m.SubmitNightAction(doctorID, "")
	waitForPhase(t, m, game.PhaseDayDiscussion)

	fc.Advance(game.DefaultTimers().DayDiscussion + time.Second)
	waitForPhase(t, m, game.PhaseVoting)

	alive := m.State().AliveIDs()
	target := alive[0]
	for _, voter := range alive {
		if voter != target {
			m.CastVote(voter, target)
		}
	}
	// The target has not voted, so the tally runs when the voting timer expires.
	fc.Advance(game.DefaultTimers().Voting + time.Second)

	waitUntil(t, func() bool { return !m.State().Alive[target] })
	if sink.last(EvVoteResult) == nil {
		t.Error("expected vote:result dispatched")
	}
}

func TestChatDedupByMessageID(t *testing.T) {
	m, ids, sink, _ := newRunningMachine(t)
	before := len(sink.events)

	if err := m.Chat("msg-1", ids[0], "hello", false); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	afterFirst := len(sink.events)
	if afterFirst <= before {
		t.Fatal("expected a chat:message dispatch")
	}

	if err := m.Chat("msg-1", ids[0], "hello again", false); err != nil {
		t.Fatalf("Chat (dup): %v", err)
	}
	if len(sink.events) != afterFirst {
		t.Error("expected duplicate message id to be dropped, not re-dispatched")
	}
}

// waitForPhase polls (with a hard iteration cap, no sleeping) until the
// machine's command queue has drained and the phase matches, since command
// processing happens on the Machine's own goroutine.
func waitForPhase(t *testing.T, m *Machine, want game.Phase) {
	t.Helper()
	waitUntil(t, func() bool { return m.State() != nil && m.State().Phase == want })
	if got := m.State().Phase; got != want {
		t.Fatalf("expected phase %s, got %s", want, got)
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
