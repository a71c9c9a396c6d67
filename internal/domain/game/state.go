package game

import "github.com/duskcall/mafia/internal/domain/role"

// DeathCause records why a player left the alive set.
type DeathCause string

const (
	CauseVote           DeathCause = "VOTE"
	CauseMafiaKill      DeathCause = "MAFIA_KILL"
	CauseVigilante      DeathCause = "VIGILANTE"
	CauseSerialKiller   DeathCause = "SERIAL_KILLER"
	CauseArsonist       DeathCause = "ARSONIST"
	CauseBodyguardTrade DeathCause = "BODYGUARD_TRADE"
	CauseLeave          DeathCause = "LEAVE"
)

// Death is one entry of the ordered dead list.
type Death struct {
	ID    string
	Role  role.Role
	Cause DeathCause
}

// Winner identifies which side the game ended in favor of.
type Winner string

const (
	WinnerTown         Winner = "TOWN_WINS"
	WinnerMafia        Winner = "MAFIA_WINS"
	WinnerJester       Winner = "JESTER_WINS"
	WinnerSerialKiller Winner = "SERIAL_KILLER_WINS"
	WinnerDraw         Winner = "DRAW"
)

// WinResult is the cached evaluation from the last resolution.
type WinResult struct {
	Winner         Winner
	WinningTeam    role.Team
	WinningPlayers []string
}

// NightActions is the per-kind intake buffer for a single night.
type NightActions struct {
	MafiaVotes      map[string]string // mafia actor id -> target id, for plurality tally
	MafiaTarget     string
	DonTarget       string
	DetectiveTarget string
	DoctorTarget    string
	BodyguardTarget string
	JailorTarget    string
	VigilanteTarget string
	SpyNoted        bool
	MafiaHealerTarget string
	SilencerTarget  string
	SerialKillerTarget string
	CultLeaderTarget string
	ArsonistDouseTargets []string
	ArsonistIgnite  bool

	// submitted tracks, per night-action phase, which eligible actor ids
	// have submitted this night (last-write-wins on resubmission).
	submitted map[Phase]map[string]bool

	// voteTimestampOrder records each distinct mafia target in the order it
	// was first proposed, for the plurality tie-break.
	voteTimestampOrder []string
}

func newNightActions() *NightActions {
	return &NightActions{
		MafiaVotes: make(map[string]string),
		submitted:  make(map[Phase]map[string]bool),
	}
}

func (n *NightActions) markSubmitted(phase Phase, actorID string) {
	if n.submitted[phase] == nil {
		n.submitted[phase] = make(map[string]bool)
	}
	n.submitted[phase][actorID] = true
}

// State is the authoritative per-room game state. All mutation happens
// on the room's single-writer command queue (see engine.Machine), so
// State itself holds no internal lock; reads from other goroutines (see
// engine.Machine.State) get no synchronization from State.
type State struct {
	RoomID           string
	Phase            Phase
	DayNumber        int
	RoleAssignments  map[string]role.Role // immutable after StartGame
	TeamAssignments  map[string]role.Team // mutable: CULT_LEADER conversion changes this
	Alive            map[string]bool
	Dead             []Death
	PhaseTimerEndsAt int64 // unix millis, informational; engine owns the real timer
	NightActions     *NightActions
	Votes            map[string]string // voter id -> target id, cleared each VOTING entry
	PendingWin       *WinResult

	VigilanteShotsRemaining map[string]int
	DousedByArsonist        map[string]bool // persists across nights
	SilencedUntilDayEnd     map[string]bool // cleared at next NIGHT start
	JailedTonight           string

	// settings snapshot taken at StartGame; timers/toggles don't change
	// mid-game.
	Settings Settings
}

// NewState builds the initial State for a freshly-started game. Role
// assignment already happened (see AssignRoles); this only wires the
// derived sets.
func NewState(roomID string, assignments map[string]role.Role, settings Settings) *State {
	s := &State{
		RoomID:                  roomID,
		Phase:                   PhaseRoleReveal,
		DayNumber:               0,
		RoleAssignments:         assignments,
		TeamAssignments:         make(map[string]role.Team, len(assignments)),
		Alive:                   make(map[string]bool, len(assignments)),
		Votes:                   make(map[string]string),
		VigilanteShotsRemaining: make(map[string]int),
		DousedByArsonist:        make(map[string]bool),
		SilencedUntilDayEnd:     make(map[string]bool),
		Settings:                settings,
	}
	for id, r := range assignments {
		s.TeamAssignments[id] = role.Get(r).Team
		s.Alive[id] = true
		if r == role.Vigilante {
			s.VigilanteShotsRemaining[id] = 1
		}
	}
	return s
}

// AliveIDs returns the alive player ids in no particular order.
func (s *State) AliveIDs() []string {
	out := make([]string, 0, len(s.Alive))
	for id, alive := range s.Alive {
		if alive {
			out = append(out, id)
		}
	}
	return out
}

// AliveWithRole returns alive players holding role r.
func (s *State) AliveWithRole(r role.Role) []string {
	var out []string
	for id, rr := range s.RoleAssignments {
		if rr == r && s.Alive[id] {
			out = append(out, id)
		}
	}
	return out
}

// AliveMafiaActors returns every living player eligible to submit the
// shared MAFIA_ACTION kill (Mafia, Mafioso, Godfather).
func (s *State) AliveMafiaActors() []string {
	var out []string
	for id, rr := range s.RoleAssignments {
		if role.IsMafiaActor(rr) && s.Alive[id] {
			out = append(out, id)
		}
	}
	return out
}

// MafiaTeammates returns the ids of other living mafia-team players.
func (s *State) MafiaTeammates(playerID string) []string {
	var out []string
	for id, team := range s.TeamAssignments {
		if id != playerID && team == role.TeamMafia && s.Alive[id] {
			out = append(out, id)
		}
	}
	return out
}

// HasLivingRole reports whether any alive player holds role r — used to
// decide whether a night-action phase is entered at all: a phase only
// runs if at least one living player holds that role.
func (s *State) HasLivingRole(r role.Role) bool {
	return len(s.AliveWithRole(r)) > 0
}

// HasLivingMafiaActor reports whether MAFIA_ACTION should run this night.
func (s *State) HasLivingMafiaActor() bool {
	return len(s.AliveMafiaActors()) > 0
}
