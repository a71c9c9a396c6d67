package game

import (
	"github.com/duskcall/mafia/internal/domain/rng"
	"github.com/duskcall/mafia/internal/domain/role"
)

// StartVoting clears the vote tally at VOTING entry.
func (s *State) StartVoting() {
	s.Votes = make(map[string]string)
}

// CastVote records, recasts, or withdraws voterID's vote. targetID == ""
// withdraws. Only alive players may vote.
func (s *State) CastVote(voterID, targetID string) error {
	if !s.Alive[voterID] {
		return ErrNotAuthorized
	}
	if targetID == "" {
		delete(s.Votes, voterID)
		return nil
	}
	if !s.Alive[targetID] {
		return ErrInvalidTarget
	}
	s.Votes[voterID] = targetID
	return nil
}

// AllVoted reports whether every alive player has cast a vote.
func (s *State) AllVoted() bool {
	for id, alive := range s.Alive {
		if alive && s.Votes[id] == "" {
			return false
		}
	}
	return true
}

// VoteTally is the weighted count per candidate, honoring role.VoteWeight
// (MAYOR=2).
func (s *State) VoteTally() map[string]int {
	tally := make(map[string]int)
	for voter, target := range s.Votes {
		weight := role.Get(s.RoleAssignments[voter]).VoteWeight
		tally[target] += weight
	}
	return tally
}

// VoteOutcome is the result of tallying and applying a VOTING phase.
type VoteOutcome struct {
	EliminatedID string // "" if no elimination
	VoteCounts   map[string]int
	NeedsRevote  bool // true when TieRevote applies and a revote round is required
	TiedIDs      []string
}

// ResolveVote tallies s.Votes under the room's tie-break policy and, when
// an elimination occurs, kills the winner with CauseVote.
func (s *State) ResolveVote(policy TieBreakPolicy, src rng.Source) VoteOutcome {
	tally := s.VoteTally()
	if len(tally) == 0 {
		return VoteOutcome{VoteCounts: tally}
	}

	best := -1
	var winners []string
	for id, count := range tally {
		switch {
		case count > best:
			best = count
			winners = []string{id}
		case count == best:
			winners = append(winners, id)
		}
	}

	if len(winners) == 1 {
		id := winners[0]
		var deaths []Death
		s.kill(id, CauseVote, &deaths)
		return VoteOutcome{EliminatedID: id, VoteCounts: tally}
	}

	// Tie among 2+ candidates.
	switch policy {
	case TieNoElimination:
		return VoteOutcome{VoteCounts: tally, TiedIDs: winners}
	case TieRevote:
		return VoteOutcome{VoteCounts: tally, TiedIDs: winners, NeedsRevote: true}
	case TieRandom:
		id := winners[src.Intn(len(winners))]
		var deaths []Death
		s.kill(id, CauseVote, &deaths)
		return VoteOutcome{EliminatedID: id, VoteCounts: tally, TiedIDs: winners}
	default:
		return VoteOutcome{VoteCounts: tally, TiedIDs: winners}
	}
}
