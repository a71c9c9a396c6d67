package game

import (
	"testing"

	"github.com/duskcall/mafia/internal/domain/rng"
	"github.com/duskcall/mafia/internal/domain/role"
)

func newVotingState() *State {
	assignments := map[string]role.Role{
		"mayor": role.Mayor,
		"a":     role.Villager,
		"b":     role.Villager,
		"c":     role.Mafia,
	}
	s := NewState("room1", assignments, DefaultSettings())
	s.StartVoting()
	return s
}

func TestMayorVoteCountsDouble(t *testing.T) {
	s := newVotingState()
	s.CastVote("mayor", "c")
	s.CastVote("a", "b")

	tally := s.VoteTally()
	if tally["c"] != 2 {
		t.Errorf("expected mayor's vote weight 2, got %d", tally["c"])
	}
	if tally["b"] != 1 {
		t.Errorf("expected b's tally 1, got %d", tally["b"])
	}
}

func TestResolveVoteEliminatesStrictPlurality(t *testing.T) {
	s := newVotingState()
	s.CastVote("a", "c")
	s.CastVote("b", "c")
	s.CastVote("c", "a")

	outcome := s.ResolveVote(TieNoElimination, rng.New(1))
	if outcome.EliminatedID != "c" {
		t.Errorf("expected c eliminated, got %q", outcome.EliminatedID)
	}
	if s.Alive["c"] {
		t.Error("c should be dead after elimination")
	}
}

func TestResolveVoteTieNoElimination(t *testing.T) {
	s := newVotingState()
	s.CastVote("a", "b")
	s.CastVote("c", "a")

	outcome := s.ResolveVote(TieNoElimination, rng.New(1))
	if outcome.EliminatedID != "" {
		t.Errorf("expected no elimination on tie, got %q", outcome.EliminatedID)
	}
	if len(outcome.TiedIDs) != 2 {
		t.Errorf("expected 2 tied candidates, got %v", outcome.TiedIDs)
	}
}

func TestResolveVoteTieRevoteFlagged(t *testing.T) {
	s := newVotingState()
	s.CastVote("a", "b")
	s.CastVote("c", "a")

	outcome := s.ResolveVote(TieRevote, rng.New(1))
	if !outcome.NeedsRevote {
		t.Error("expected NeedsRevote true on tie under revote policy")
	}
}

func TestCastVoteRejectsDeadTarget(t *testing.T) {
	s := newVotingState()
	s.Alive["c"] = false

	if err := s.CastVote("a", "c"); err != ErrInvalidTarget {
		t.Errorf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestCastVoteWithdrawal(t *testing.T) {
	s := newVotingState()
	s.CastVote("a", "b")
	s.CastVote("a", "")

	if _, ok := s.Votes["a"]; ok {
		t.Error("expected vote withdrawn")
	}
}
