package game

import "github.com/duskcall/mafia/internal/domain/role"

// EnterNightPhase runs when the engine moves into a night-action phase. It
// creates the per-night buffer if none exists; only MAFIA_ACTION clears
// anything (the shared mafia vote buffer and its first-proposed order).
func (s *State) EnterNightPhase(p Phase) {
	if s.NightActions == nil {
		s.NightActions = newNightActions()
	}
	if p == PhaseMafiaAction {
		s.NightActions.MafiaVotes = make(map[string]string)
		s.NightActions.voteTimestampOrder = nil
	}
}

// StartNight resets the whole per-night buffer and day-scoped sets at the
// top of the night.
func (s *State) StartNight() {
	s.NightActions = newNightActions()
	s.SilencedUntilDayEnd = make(map[string]bool)
	s.JailedTonight = ""
}

// ValidTargets computes the admissible target ids for the acting role in
// phase p. The acting player itself is excluded except where the role's
// action is explicitly self-targetable (none currently are).
func (s *State) ValidTargets(p Phase, actorID string) []string {
	switch p {
	case PhaseMafiaAction, PhaseDonAction, PhaseSerialKillerAction, PhaseArsonistAction:
		return s.nonMafiaAliveExcept(actorID)
	case PhaseDetectiveAction:
		return s.aliveExcept(actorID)
	case PhaseDoctorAction, PhaseBodyguardAction, PhaseJailorAction, PhaseMafiaHealerAction:
		return s.aliveExcept(actorID)
	case PhaseVigilanteAction:
		if s.VigilanteShotsRemaining[actorID] <= 0 {
			return nil
		}
		return s.aliveExcept(actorID)
	case PhaseSpyAction:
		return nil // spy observes, no target submission
	case PhaseSilencerAction:
		return s.nonMafiaAliveExcept(actorID)
	case PhaseCultLeaderAction:
		return s.nonMafiaAliveExcept(actorID)
	}
	return nil
}

func (s *State) aliveExcept(actorID string) []string {
	var out []string
	for id, alive := range s.Alive {
		if alive && id != actorID {
			out = append(out, id)
		}
	}
	return out
}

// nonMafiaAliveExcept excludes fellow mafia-team players, since mafia-side
// roles cannot target their own team.
func (s *State) nonMafiaAliveExcept(actorID string) []string {
	var out []string
	for id, alive := range s.Alive {
		if !alive || id == actorID {
			continue
		}
		if s.TeamAssignments[id] == role.TeamMafia {
			continue
		}
		out = append(out, id)
	}
	return out
}

// SubmitNightAction records actorID's choice of targetID for the current
// night-action phase. Last write wins for resubmission within the same
// phase. Returns ErrInvalidTarget if targetID is not in ValidTargets.
func (s *State) SubmitNightAction(p Phase, actorID, targetID string) error {
	valid := s.ValidTargets(p, actorID)
	if targetID != "" {
		ok := false
		for _, v := range valid {
			if v == targetID {
				ok = true
				break
			}
		}
		if !ok {
			return ErrInvalidTarget
		}
	}

	n := s.NightActions
	switch p {
	case PhaseMafiaAction:
		n.MafiaVotes[actorID] = targetID
		found := false
		for _, t := range n.voteTimestampOrder {
			if t == targetID {
				found = true
				break
			}
		}
		if !found {
			n.voteTimestampOrder = append(n.voteTimestampOrder, targetID)
		}
	case PhaseDonAction:
		n.DonTarget = targetID
	case PhaseDetectiveAction:
		n.DetectiveTarget = targetID
	case PhaseDoctorAction:
		n.DoctorTarget = targetID
	case PhaseBodyguardAction:
		n.BodyguardTarget = targetID
	case PhaseJailorAction:
		n.JailorTarget = targetID
	case PhaseVigilanteAction:
		n.VigilanteTarget = targetID
	case PhaseSpyAction:
		n.SpyNoted = true
	case PhaseMafiaHealerAction:
		n.MafiaHealerTarget = targetID
	case PhaseSilencerAction:
		n.SilencerTarget = targetID
	case PhaseSerialKillerAction:
		n.SerialKillerTarget = targetID
	case PhaseCultLeaderAction:
		n.CultLeaderTarget = targetID
	case PhaseArsonistAction:
		n.ArsonistDouseTargets = append(n.ArsonistDouseTargets, targetID)
	default:
		return ErrInvalidPhase
	}
	n.markSubmitted(p, actorID)
	return nil
}

// AllSubmitted reports whether every eligible actor for phase p has
// submitted this night, letting the engine advance early instead of
// waiting out the full timer.
func (s *State) AllSubmitted(p Phase) bool {
	n := s.NightActions
	submitted := n.submitted[p]
	var eligible []string
	if p == PhaseMafiaAction {
		eligible = s.AliveMafiaActors()
	} else if r, ok := RoleForPhase(p); ok {
		eligible = s.AliveWithRole(r)
	}
	if len(eligible) == 0 {
		return true
	}
	for _, id := range eligible {
		if !submitted[id] {
			return false
		}
	}
	return true
}
