package game

import (
	"testing"

	"github.com/duskcall/mafia/internal/domain/role"
)

func TestJesterWinOverridesOnVoteElimination(t *testing.T) {
	assignments := map[string]role.Role{
		"jester": role.Jester,
		"v1":     role.Villager,
		"mafia1": role.Mafia,
	}
	s := NewState("room1", assignments, DefaultSettings())

	result, over := s.CheckWin("jester")
	if !over || result.Winner != WinnerJester {
		t.Fatalf("expected jester win override, got %+v, over=%v", result, over)
	}
}

func TestMafiaWinsWhenMafiaMatchesTown(t *testing.T) {
	assignments := map[string]role.Role{
		"mafia1": role.Mafia,
		"v1":     role.Villager,
	}
	s := NewState("room1", assignments, DefaultSettings())

	result, over := s.CheckWin("")
	if !over || result.Winner != WinnerMafia {
		t.Fatalf("expected mafia win, got %+v, over=%v", result, over)
	}
}

func TestTownWinsWhenMafiaEliminated(t *testing.T) {
	assignments := map[string]role.Role{
		"v1": role.Villager,
		"v2": role.Villager,
	}
	s := NewState("room1", assignments, DefaultSettings())

	result, over := s.CheckWin("")
	if !over || result.Winner != WinnerTown {
		t.Fatalf("expected town win, got %+v, over=%v", result, over)
	}
}

func TestSerialKillerWinsAsSoleSurvivor(t *testing.T) {
	assignments := map[string]role.Role{
		"sk": role.SerialKiller,
	}
	s := NewState("room1", assignments, DefaultSettings())

	result, over := s.CheckWin("")
	if !over || result.Winner != WinnerSerialKiller {
		t.Fatalf("expected serial killer win, got %+v, over=%v", result, over)
	}
}

func TestGameContinuesWhenNoWinCondition(t *testing.T) {
	assignments := map[string]role.Role{
		"mafia1": role.Mafia,
		"v1":     role.Villager,
		"v2":     role.Villager,
		"v3":     role.Villager,
	}
	s := NewState("room1", assignments, DefaultSettings())

	_, over := s.CheckWin("")
	if over {
		t.Error("expected game to continue with 1 mafia vs 3 town")
	}
}
