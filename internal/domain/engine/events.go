package engine

import (
	"github.com/duskcall/mafia/internal/domain/game"
	"github.com/duskcall/mafia/internal/domain/role"
)

// Event kind tags for Server→Client events.
const (
	EvGameStarted       = "game:started"
	EvRoleReveal        = "game:roleReveal"
	EvStateUpdate       = "game:stateUpdate"
	EvPhaseChange       = "game:phaseChange"
	EvGameEnd           = "game:end"
	EvTimerUpdate       = "timer:update"
	EvActionRequired    = "night:actionRequired"
	EvActionConfirmed   = "night:actionConfirmed"
	EvNightResult       = "night:result"
	EvDetectiveResult   = "night:detectiveResult"
	EvDonResult         = "night:donResult"
	EvVoteStarted       = "vote:started"
	EvVoteUpdate        = "vote:update"
	EvVoteResult        = "vote:result"
	EvChat              = "chat:message"
)

type RoleRevealPayload struct {
	Role      role.Role `json:"role"`
	Team      role.Team `json:"team"`
	Teammates []string  `json:"teammates,omitempty"`
}

type PhaseChangePayload struct {
	Phase        game.Phase `json:"phase"`
	TimerSeconds int        `json:"timer"`
	DayNumber    int        `json:"dayNumber"`
}

type TimerUpdatePayload struct {
	RemainingSeconds int        `json:"remaining"`
	Phase            game.Phase `json:"phase"`
}

type ActionRequiredPayload struct {
	Role         role.Role  `json:"role"`
	Phase        game.Phase `json:"phase"`
	TimerSeconds int        `json:"timer"`
	ValidTargets []string   `json:"validTargets"`
}

type ActionConfirmedPayload struct {
	ActionType string `json:"actionType"`
}

type NightResultPayload struct {
	Deaths      []game.Death `json:"deaths"`
	AnyoneSaved bool         `json:"anyoneSaved"`
	DayNumber   int          `json:"dayNumber"`
}

type VoteStartedPayload struct {
	TimerSeconds int      `json:"timer"`
	Candidates   []string `json:"candidates"`
}

type VoteUpdatePayload struct {
	Votes map[string]string `json:"votes"`
}

type VoteResultPayload struct {
	EliminatedID   string         `json:"eliminatedId,omitempty"`
	EliminatedRole role.Role      `json:"eliminatedRole,omitempty"`
	VoteCounts     map[string]int `json:"voteCounts"`
}

type GameEndPayload struct {
	Winner         game.Winner `json:"winner"`
	WinningTeam    role.Team   `json:"winningTeam"`
	WinningPlayers []string    `json:"winningPlayers"`
}

type ChatPayload struct {
	Message game.Message `json:"message"`
}
