package game

import (
	"github.com/duskcall/mafia/internal/domain/rng"
	"github.com/duskcall/mafia/internal/domain/role"
)

// NightResult is the globally-public outcome of a night, used to build the
// night:result event. Individual action details never leave this struct.
type NightResult struct {
	Deaths      []Death
	AnyoneSaved bool
}

// DetectiveResult and DonResult are the private per-player investigation
// outcomes, delivered only to the investigating player.
type DetectiveResult struct {
	TargetID string
	IsGuilty bool
}

type DonResult struct {
	TargetID    string
	IsDetective bool
}

// SpyResult lists the ids of players who cast a mafia vote this night.
type SpyResult struct {
	MafiaVoterIDs []string
}

// NightOutcome bundles everything the engine needs to dispatch after a
// night resolves: the public result plus each role's private result.
type NightOutcome struct {
	Public    NightResult
	Detective *DetectiveResult
	Don       *DonResult
	Spy       *SpyResult
}

// resolveMafiaTarget applies strict plurality among the distinct targets
// proposed this night; a tie goes to the tied target proposed first.
// Absent any votes, returns "".
func (s *State) resolveMafiaTarget(src rng.Source) string {
	n := s.NightActions
	tally := make(map[string]int)
	for _, target := range n.MafiaVotes {
		if target != "" {
			tally[target]++
		}
	}
	if len(tally) == 0 {
		return ""
	}
	best := -1
	var winners []string
	for _, target := range n.voteTimestampOrder {
		count, ok := tally[target]
		if !ok {
			continue
		}
		switch {
		case count > best:
			best = count
			winners = []string{target}
		case count == best:
			winners = append(winners, target)
		}
	}
	if len(winners) == 0 {
		return ""
	}
	// winners is in first-proposed order, so the earliest proposal wins a tie.
	return winners[0]
}

// ResolveNight runs the full 8-step night resolution and returns the
// public + private outcomes. It mutates Alive, Dead, DayNumber,
// TeamAssignments (cult conversion), SilencedUntilDayEnd, and
// DousedByArsonist.
func (s *State) ResolveNight(src rng.Source) NightOutcome {
	n := s.NightActions

	// Step 1: jailor nullifies the jailed player's submitted actions.
	jailed := n.JailorTarget
	s.JailedTonight = jailed
	if jailed != "" {
		s.nullifyActionsOf(jailed)
	}

	// Step 2: cult conversion.
	if n.CultLeaderTarget != "" {
		s.TeamAssignments[n.CultLeaderTarget] = role.TeamNeutral
	}

	// Step 3: silencer.
	if n.SilencerTarget != "" {
		s.SilencedUntilDayEnd[n.SilencerTarget] = true
	}

	// Step 4: protect set.
	saved := make(map[string]bool)
	if n.DoctorTarget != "" {
		saved[n.DoctorTarget] = true
	}
	if n.MafiaHealerTarget != "" {
		saved[n.MafiaHealerTarget] = true
	}
	watched := n.BodyguardTarget

	// Step 5: kill set. attacker identifies who dies in a bodyguard trade.
	var deaths []Death
	anyoneSaved := false

	applyKill := func(target string, cause DeathCause, attacker string) {
		if target == "" || !s.Alive[target] {
			return
		}
		if watched != "" && target == watched {
			if saved[watched] {
				anyoneSaved = true
				return
			}
			bodyguardID := roleActorID(s, role.Bodyguard)
			if bodyguardID != "" {
				s.kill(bodyguardID, CauseBodyguardTrade, &deaths)
			}
			if attacker != "" {
				s.kill(attacker, cause, &deaths)
			}
			anyoneSaved = true
			return
		}
		if saved[target] {
			anyoneSaved = true
			return
		}
		s.kill(target, cause, &deaths)
	}

	mafiaTarget := s.resolveMafiaTarget(src)
	applyKill(mafiaTarget, CauseMafiaKill, "")

	vigID := roleActorID(s, role.Vigilante)
	if n.VigilanteTarget != "" {
		applyKill(n.VigilanteTarget, CauseVigilante, vigID)
		if shots, ok := s.VigilanteShotsRemaining[vigID]; ok {
			s.VigilanteShotsRemaining[vigID] = shots - 1
		}
	}

	skID := roleActorID(s, role.SerialKiller)
	applyKill(n.SerialKillerTarget, CauseSerialKiller, skID)

	if n.ArsonistIgnite {
		arsonistID := roleActorID(s, role.Arsonist)
		for target := range s.DousedByArsonist {
			applyKill(target, CauseArsonist, arsonistID)
		}
		s.DousedByArsonist = make(map[string]bool)
	}

	// Step 6: arsonist douse (persists, doesn't kill unless igniting).
	for _, target := range n.ArsonistDouseTargets {
		s.DousedByArsonist[target] = true
	}

	// Step 7: investigate results.
	var detResult *DetectiveResult
	if n.DetectiveTarget != "" {
		targetRole := s.RoleAssignments[n.DetectiveTarget]
		detResult = &DetectiveResult{
			TargetID: n.DetectiveTarget,
			IsGuilty: role.AppearsAsMafiaTo(targetRole, role.Detective),
		}
	}
	var donResult *DonResult
	if n.DonTarget != "" {
		donResult = &DonResult{
			TargetID:    n.DonTarget,
			IsDetective: s.RoleAssignments[n.DonTarget] == role.Detective,
		}
	}
	var spyResult *SpyResult
	if n.SpyNoted {
		var voters []string
		for voter, target := range n.MafiaVotes {
			if target != "" {
				voters = append(voters, voter)
			}
		}
		spyResult = &SpyResult{MafiaVoterIDs: voters}
	}

	// Step 8: finalize.
	s.DayNumber++

	return NightOutcome{
		Public:    NightResult{Deaths: deaths, AnyoneSaved: anyoneSaved},
		Detective: detResult,
		Don:       donResult,
		Spy:       spyResult,
	}
}

func (s *State) kill(id string, cause DeathCause, deaths *[]Death) {
	if !s.Alive[id] {
		return
	}
	s.Alive[id] = false
	d := Death{ID: id, Role: s.RoleAssignments[id], Cause: cause}
	s.Dead = append(s.Dead, d)
	*deaths = append(*deaths, d)
}

// nullifyActionsOf clears any action submitted by actorID this night,
// implementing jailor nullification.
func (s *State) nullifyActionsOf(actorID string) {
	n := s.NightActions
	delete(n.MafiaVotes, actorID)
	switch actorID {
	case roleActorID(s, role.Don):
		n.DonTarget = ""
	case roleActorID(s, role.Detective):
		n.DetectiveTarget = ""
	case roleActorID(s, role.Doctor):
		n.DoctorTarget = ""
	case roleActorID(s, role.Bodyguard):
		n.BodyguardTarget = ""
	case roleActorID(s, role.Vigilante):
		n.VigilanteTarget = ""
	case roleActorID(s, role.MafiaHealer):
		n.MafiaHealerTarget = ""
	case roleActorID(s, role.Silencer):
		n.SilencerTarget = ""
	case roleActorID(s, role.SerialKiller):
		n.SerialKillerTarget = ""
	case roleActorID(s, role.CultLeader):
		n.CultLeaderTarget = ""
	case roleActorID(s, role.Arsonist):
		n.ArsonistDouseTargets = nil
		n.ArsonistIgnite = false
	}
}

func roleActorID(s *State, r role.Role) string {
	ids := s.AliveWithRole(r)
	if len(ids) > 0 {
		return ids[0]
	}
	return ""
}
