package game

import (
	"time"

	"github.com/duskcall/mafia/internal/domain/role"
)

// Phase is a named segment of the game with its own timer and admissible
// intents.
type Phase string

const (
	PhaseLobby         Phase = "LOBBY"
	PhaseRoleReveal    Phase = "ROLE_REVEAL"
	PhaseMafiaAction   Phase = "MAFIA_ACTION"
	PhaseDonAction     Phase = "DON_ACTION"
	PhaseDetectiveAction Phase = "DETECTIVE_ACTION"
	PhaseDoctorAction  Phase = "DOCTOR_ACTION"
	PhaseBodyguardAction Phase = "BODYGUARD_ACTION"
	PhaseJailorAction  Phase = "JAILOR_ACTION"
	PhaseVigilanteAction Phase = "VIGILANTE_ACTION"
	PhaseSpyAction     Phase = "SPY_ACTION"
	PhaseMafiaHealerAction Phase = "MAFIA_HEALER_ACTION"
	PhaseSilencerAction Phase = "SILENCER_ACTION"
	PhaseSerialKillerAction Phase = "SERIAL_KILLER_ACTION"
	PhaseCultLeaderAction Phase = "CULT_LEADER_ACTION"
	PhaseArsonistAction Phase = "ARSONIST_ACTION"
	PhaseDayDiscussion Phase = "DAY_DISCUSSION"
	PhaseVoting        Phase = "VOTING"
	PhaseResolution    Phase = "RESOLUTION"
	PhaseGameOver      Phase = "GAME_OVER"
)

// nightPipeline is the canonical role-phase order, ascending priority:
// lower runs first in the role-gate. Resolution order is
// computed separately in resolve.go.
var nightPipeline = []Phase{
	PhaseMafiaAction,
	PhaseDonAction,
	PhaseDetectiveAction,
	PhaseDoctorAction,
	PhaseBodyguardAction,
	PhaseJailorAction,
	PhaseVigilanteAction,
	PhaseSpyAction,
	PhaseMafiaHealerAction,
	PhaseSilencerAction,
	PhaseSerialKillerAction,
	PhaseCultLeaderAction,
	PhaseArsonistAction,
}

// phaseRole maps a night-action phase to the role(s) eligible to act in it.
// MAFIA_ACTION is special-cased: it accepts every mafia-team killer
// (Mafia, Mafioso, Godfather), not a single role.
var phaseRole = map[Phase]role.Role{
	PhaseDonAction:          role.Don,
	PhaseDetectiveAction:    role.Detective,
	PhaseDoctorAction:       role.Doctor,
	PhaseBodyguardAction:    role.Bodyguard,
	PhaseJailorAction:       role.Jailor,
	PhaseVigilanteAction:    role.Vigilante,
	PhaseSpyAction:          role.Spy,
	PhaseMafiaHealerAction:  role.MafiaHealer,
	PhaseSilencerAction:     role.Silencer,
	PhaseSerialKillerAction: role.SerialKiller,
	PhaseCultLeaderAction:   role.CultLeader,
	PhaseArsonistAction:     role.Arsonist,
}

// RoleForPhase returns the acting role for a night-action phase, and ok=false
// for MAFIA_ACTION (handled separately) or non-action phases.
func RoleForPhase(p Phase) (role.Role, bool) {
	r, ok := phaseRole[p]
	return r, ok
}

// IsNightActionPhase reports whether p is one of the night pipeline phases.
func IsNightActionPhase(p Phase) bool {
	for _, np := range nightPipeline {
		if np == p {
			return true
		}
	}
	return false
}

// TimerFor returns the configured duration for a given phase.
func (s Settings) TimerFor(p Phase) (d time.Duration) {
	t := s.Timers
	switch p {
	case PhaseRoleReveal:
		return t.RoleReveal
	case PhaseMafiaAction:
		return t.MafiaAction
	case PhaseDonAction:
		return t.DonAction
	case PhaseDetectiveAction:
		return t.DetectiveAction
	case PhaseDoctorAction:
		return t.DoctorAction
	case PhaseBodyguardAction:
		return t.BodyguardAction
	case PhaseJailorAction:
		return t.JailorAction
	case PhaseVigilanteAction:
		return t.VigilanteAction
	case PhaseSpyAction:
		return t.SpyAction
	case PhaseMafiaHealerAction:
		return t.MafiaHealerAction
	case PhaseSilencerAction:
		return t.SilencerAction
	case PhaseSerialKillerAction:
		return t.SerialKillerAction
	case PhaseCultLeaderAction:
		return t.CultLeaderAction
	case PhaseArsonistAction:
		return t.ArsonistAction
	case PhaseDayDiscussion:
		return t.DayDiscussion
	case PhaseVoting:
		return t.Voting
	case PhaseResolution:
		return t.Resolution
	}
	return 0
}
