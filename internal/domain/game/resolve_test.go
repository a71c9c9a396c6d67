package game

import (
	"testing"

	"github.com/duskcall/mafia/internal/domain/rng"
	"github.com/duskcall/mafia/internal/domain/role"
)

func newTestState() *State {
	assignments := map[string]role.Role{
		"mafia1": role.Mafia,
		"doc":    role.Doctor,
		"det":    role.Detective,
		"v1":     role.Villager,
		"v2":     role.Villager,
	}
	s := NewState("room1", assignments, DefaultSettings())
	s.StartNight()
	return s
}

func TestMafiaKillPreventedByDoctorSave(t *testing.T) {
	s := newTestState()
	s.EnterNightPhase(PhaseMafiaAction)
	if err := s.SubmitNightAction(PhaseMafiaAction, "mafia1", "v1"); err != nil {
		t.Fatalf("submit mafia action: %v", err)
	}
	s.NightActions.DoctorTarget = "v1"

	outcome := s.ResolveNight(rng.New(1))
	if len(outcome.Public.Deaths) != 0 {
		t.Errorf("expected no deaths, got %v", outcome.Public.Deaths)
	}
	if !outcome.Public.AnyoneSaved {
		t.Error("expected AnyoneSaved to be true")
	}
	if !s.Alive["v1"] {
		t.Error("v1 should still be alive")
	}
}

func TestMafiaKillSucceedsWithoutSave(t *testing.T) {
	s := newTestState()
	s.EnterNightPhase(PhaseMafiaAction)
	if err := s.SubmitNightAction(PhaseMafiaAction, "mafia1", "v1"); err != nil {
		t.Fatalf("submit mafia action: %v", err)
	}

	outcome := s.ResolveNight(rng.New(1))
	if len(outcome.Public.Deaths) != 1 || outcome.Public.Deaths[0].ID != "v1" {
		t.Errorf("expected v1 to die, got %v", outcome.Public.Deaths)
	}
	if s.Alive["v1"] {
		t.Error("v1 should be dead")
	}
	if s.DayNumber != 1 {
		t.Errorf("expected DayNumber incremented to 1, got %d", s.DayNumber)
	}
}

func TestDetectiveSeesGodfatherAsInnocent(t *testing.T) {
	assignments := map[string]role.Role{
		"gf":  role.Godfather,
		"det": role.Detective,
		"v1":  role.Villager,
	}
	s := NewState("room1", assignments, DefaultSettings())
	s.StartNight()
	s.EnterNightPhase(PhaseDetectiveAction)
	s.NightActions.DetectiveTarget = "gf"

	outcome := s.ResolveNight(rng.New(1))
	if outcome.Detective == nil {
		t.Fatal("expected a detective result")
	}
	if outcome.Detective.IsGuilty {
		t.Error("godfather should not appear guilty to detective")
	}
}

func TestJailorNullifiesJailedPlayersAction(t *testing.T) {
	assignments := map[string]role.Role{
		"mafia1": role.Mafia,
		"v1":     role.Villager,
		"v2":     role.Villager,
	}
	s := NewState("room1", assignments, DefaultSettings())
	s.StartNight()
	s.EnterNightPhase(PhaseMafiaAction)
	s.SubmitNightAction(PhaseMafiaAction, "mafia1", "v1")
	s.NightActions.JailorTarget = "mafia1"

	outcome := s.ResolveNight(rng.New(1))
	if len(outcome.Public.Deaths) != 0 {
		t.Errorf("expected jailed mafia's kill to be nullified, got deaths %v", outcome.Public.Deaths)
	}
}

func TestBodyguardTradeKillsBothAttackerAndBodyguard(t *testing.T) {
	assignments := map[string]role.Role{
		"vig": role.Vigilante,
		"bg":  role.Bodyguard,
		"v1":  role.Villager,
	}
	s := NewState("room1", assignments, DefaultSettings())
	s.StartNight()
	s.EnterNightPhase(PhaseBodyguardAction)
	s.SubmitNightAction(PhaseBodyguardAction, "bg", "v1")
	s.EnterNightPhase(PhaseVigilanteAction)
	s.SubmitNightAction(PhaseVigilanteAction, "vig", "v1")

	outcome := s.ResolveNight(rng.New(1))
	deadIDs := map[string]bool{}
	for _, d := range outcome.Public.Deaths {
		deadIDs[d.ID] = true
	}
	if !deadIDs["bg"] || !deadIDs["vig"] {
		t.Errorf("expected both bodyguard and attacker dead, got %v", outcome.Public.Deaths)
	}
	if deadIDs["v1"] {
		t.Errorf("expected guarded player v1 to survive the trade, got %v", outcome.Public.Deaths)
	}
}
