package game

import "github.com/duskcall/mafia/internal/domain/role"

// hostileNeutralRoles are the neutral-team roles that block a Town win
// while alive.
var hostileNeutralRoles = map[role.Role]bool{
	role.SerialKiller: true,
	role.Arsonist:     true,
	role.CultLeader:   true,
}

// CheckWin evaluates the win conditions. eliminatedThisCycle is the
// id of the player just removed by a VOTE this cycle, if any — used for
// the Jester-wins override, which is checked first. Returns ok=false if
// the game continues.
func (s *State) CheckWin(eliminatedThisCycle string) (WinResult, bool) {
	if eliminatedThisCycle != "" && s.RoleAssignments[eliminatedThisCycle] == role.Jester {
		return WinResult{Winner: WinnerJester, WinningTeam: role.TeamNeutral, WinningPlayers: []string{eliminatedThisCycle}}, true
	}

	alive := s.AliveIDs()
	if len(alive) == 0 {
		return WinResult{Winner: WinnerDraw}, true
	}

	var mafiaAlive, nonMafiaAlive []string
	var hostileNeutralAlive bool
	var nonMafiaKillerAlive bool
	for _, id := range alive {
		team := s.TeamAssignments[id]
		r := s.RoleAssignments[id]
		if team == role.TeamMafia {
			mafiaAlive = append(mafiaAlive, id)
		} else {
			nonMafiaAlive = append(nonMafiaAlive, id)
		}
		if hostileNeutralRoles[r] {
			hostileNeutralAlive = true
		}
		if team != role.TeamMafia && (r == role.SerialKiller || r == role.Arsonist) {
			nonMafiaKillerAlive = true
		}
	}

	if len(alive) == 1 && s.RoleAssignments[alive[0]] == role.SerialKiller {
		return WinResult{Winner: WinnerSerialKiller, WinningTeam: role.TeamNeutral, WinningPlayers: alive}, true
	}

	if len(mafiaAlive) >= len(nonMafiaAlive) && len(mafiaAlive) > 0 && !nonMafiaKillerAlive {
		return WinResult{Winner: WinnerMafia, WinningTeam: role.TeamMafia, WinningPlayers: mafiaAlive}, true
	}

	if len(mafiaAlive) == 0 && !hostileNeutralAlive {
		return WinResult{Winner: WinnerTown, WinningTeam: role.TeamTown, WinningPlayers: nonMafiaAlive}, true
	}

	return WinResult{}, false
}
