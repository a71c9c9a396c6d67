package game

import "time"

// TieBreakPolicy controls how a tied day vote is resolved.
type TieBreakPolicy string

const (
	TieNoElimination TieBreakPolicy = "no_elimination"
	TieRevote        TieBreakPolicy = "revote"
	TieRandom        TieBreakPolicy = "random"
)

// RoleToggles enables optional roles beyond the base composition table.
// Each toggle, when set, carves one slot out of the villager pool (or, for
// mafia-team toggles, out of the mafia pool) at role-assignment time.
type RoleToggles struct {
	Godfather    bool
	Vigilante    bool
	Jester       bool
	Mayor        bool
	Don          bool
	Jailor       bool
	Spy          bool
	MafiaHealer  bool
	Silencer     bool
	SerialKiller bool
	CultLeader   bool
	Arsonist     bool
}

// Timers holds the per-phase durations, overridable per room within
// [5, 600] seconds. Defaults come from DefaultTimers.
type Timers struct {
	RoleReveal      time.Duration
	MafiaAction     time.Duration
	DonAction       time.Duration
	DetectiveAction time.Duration
	DoctorAction    time.Duration
	BodyguardAction time.Duration
	JailorAction    time.Duration
	VigilanteAction time.Duration
	SpyAction       time.Duration
	MafiaHealerAction time.Duration
	SilencerAction  time.Duration
	SerialKillerAction time.Duration
	CultLeaderAction time.Duration
	ArsonistAction  time.Duration
	DayDiscussion   time.Duration
	Voting          time.Duration
	Resolution      time.Duration
}

const (
	MinTimerSeconds = 5
	MaxTimerSeconds = 600
)

// DefaultTimers returns the default timer table. Every phase is listed;
// the optional-role night phases get 25 s (Bodyguard, Jailor) or 20 s.
func DefaultTimers() Timers {
	return Timers{
		RoleReveal:         10 * time.Second,
		MafiaAction:        40 * time.Second,
		DonAction:          25 * time.Second,
		DetectiveAction:    25 * time.Second,
		DoctorAction:       25 * time.Second,
		BodyguardAction:    25 * time.Second,
		JailorAction:       25 * time.Second,
		VigilanteAction:    20 * time.Second,
		SpyAction:          20 * time.Second,
		MafiaHealerAction:  20 * time.Second,
		SilencerAction:     20 * time.Second,
		SerialKillerAction: 20 * time.Second,
		CultLeaderAction:   20 * time.Second,
		ArsonistAction:     20 * time.Second,
		DayDiscussion:      120 * time.Second,
		Voting:             45 * time.Second,
		Resolution:         10 * time.Second,
	}
}

// Settings is a room's configurable behavior.
type Settings struct {
	Roles             RoleToggles
	Timers            Timers
	TieBreak          TieBreakPolicy
	AllowSpectators   bool
	RevealRoleOnDeath bool
	AllowAbstain      bool
}

// DefaultSettings returns the default room settings.
func DefaultSettings() Settings {
	return Settings{
		Roles:             RoleToggles{},
		Timers:            DefaultTimers(),
		TieBreak:          TieNoElimination,
		AllowSpectators:   true,
		RevealRoleOnDeath: true,
		AllowAbstain:      true,
	}
}

// Clamp clamps every timer to [MinTimerSeconds, MaxTimerSeconds].
func (t *Timers) Clamp() {
	clamp := func(d *time.Duration) {
		min := MinTimerSeconds * time.Second
		max := MaxTimerSeconds * time.Second
		if *d < min {
			*d = min
		}
		if *d > max {
			*d = max
		}
	}
	for _, d := range []*time.Duration{
		&t.RoleReveal, &t.MafiaAction, &t.DonAction, &t.DetectiveAction,
		&t.DoctorAction, &t.BodyguardAction, &t.JailorAction, &t.VigilanteAction,
		&t.SpyAction, &t.MafiaHealerAction, &t.SilencerAction, &t.SerialKillerAction,
		&t.CultLeaderAction, &t.ArsonistAction, &t.DayDiscussion, &t.Voting, &t.Resolution,
	} {
		clamp(d)
	}
}
