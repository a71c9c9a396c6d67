package game

import (
	"math"

	"github.com/duskcall/mafia/internal/domain/rng"
	"github.com/duskcall/mafia/internal/domain/role"
)

// baseCounts is one row of the composition table for counts 3-20:
// mafia, doctor, detective, bodyguard, and the villager count when
// vigilante is NOT enabled (enabling vigilante subtracts one villager and
// adds one vigilante, per the table's "Vill = N - Vig" footnote).
type baseCounts struct {
	Mafia, Doctor, Detective, Bodyguard, VillagerNoVig int
}

var compositionTable = map[int]baseCounts{
	3:  {1, 0, 0, 0, 2},
	4:  {1, 1, 0, 0, 2},
	5:  {1, 1, 0, 0, 3},
	6:  {2, 1, 0, 0, 3},
	7:  {2, 1, 1, 0, 3},
	8:  {2, 1, 1, 0, 4},
	9:  {3, 1, 1, 0, 4},
	10: {3, 1, 1, 0, 5},
	11: {3, 1, 1, 0, 6},
	12: {4, 1, 1, 0, 6},
	13: {4, 1, 1, 0, 7},
	14: {4, 1, 1, 1, 7},
	15: {5, 1, 1, 1, 7},
	16: {5, 1, 1, 1, 8},
	17: {5, 1, 1, 1, 9},
	18: {6, 1, 1, 1, 9},
	19: {6, 1, 1, 1, 10},
	20: {7, 1, 1, 1, 10},
}

// baseComposition returns mafia/doctor/detective/bodyguard/villager counts
// for n players, using the table for 3-20 and the scaling formula above
// that: mafia = ceil(0.35*N), detective = ceil(N/15),
// doctor = ceil(N/15), optional +1 vigilante, +1 bodyguard, rest villagers.
func baseComposition(n int, vigilante bool) baseCounts {
	if row, ok := compositionTable[n]; ok {
		return row
	}
	mafia := int(math.Ceil(0.35 * float64(n)))
	det := int(math.Ceil(float64(n) / 15))
	doc := int(math.Ceil(float64(n) / 15))
	bodyguard := 1
	used := mafia + det + doc + bodyguard
	if vigilante {
		used++
	}
	villager := n - used
	if villager < 0 {
		villager = 0
	}
	return baseCounts{Mafia: mafia, Doctor: doc, Detective: det, Bodyguard: bodyguard, VillagerNoVig: villager + boolToInt(vigilante)}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RolePool computes the unshuffled role pool for n players under the given
// toggles. Composing is deterministic given (n, toggles): shuffling the
// pool and zipping it against players is the only randomized step,
// performed by AssignRoles.
func RolePool(n int, toggles RoleToggles) []role.Role {
	row := baseComposition(n, toggles.Vigilante)

	pool := make([]role.Role, 0, n)
	add := func(r role.Role, count int) {
		for i := 0; i < count; i++ {
			pool = append(pool, r)
		}
	}

	add(role.Mafia, row.Mafia)
	add(role.Doctor, row.Doctor)
	add(role.Detective, row.Detective)
	add(role.Bodyguard, row.Bodyguard)

	villagerCount := row.VillagerNoVig
	if toggles.Vigilante {
		villagerCount--
		add(role.Vigilante, 1)
	}
	if villagerCount < 0 {
		villagerCount = 0
	}
	add(role.Villager, villagerCount)

	// Carve optional extras out of the villager pool, most specific /
	// rarest first so a small lobby degrades gracefully instead of
	// silently dropping the earliest-requested toggle.
	carveVillager := func(r role.Role) bool {
		for i, pr := range pool {
			if pr == role.Villager {
				pool[i] = r
				return true
			}
		}
		return false
	}

	if toggles.Jester && len(pool) >= 8 {
		carveVillager(role.Jester)
	}
	if toggles.Mayor {
		carveVillager(role.Mayor)
	}
	if toggles.Jailor {
		carveVillager(role.Jailor)
	}
	if toggles.Spy {
		carveVillager(role.Spy)
	}
	if toggles.SerialKiller {
		carveVillager(role.SerialKiller)
	}
	if toggles.CultLeader {
		carveVillager(role.CultLeader)
	}
	if toggles.Arsonist {
		carveVillager(role.Arsonist)
	}

	// Mafia-team extras carve out of the mafia pool, not the villager pool.
	carveMafia := func(r role.Role) bool {
		for i, pr := range pool {
			if pr == role.Mafia {
				pool[i] = r
				return true
			}
		}
		return false
	}
	if toggles.Don {
		carveMafia(role.Don)
	}
	if toggles.MafiaHealer {
		carveMafia(role.MafiaHealer)
	}
	if toggles.Silencer {
		carveMafia(role.Silencer)
	}

	// Promote one Mafia to Godfather, and (if 2+ Mafia remain) another
	// to Mafioso.
	if toggles.Godfather {
		mafiaIdx := mafiaIndices(pool)
		if len(mafiaIdx) >= 1 {
			pool[mafiaIdx[0]] = role.Godfather
		}
		if len(mafiaIdx) >= 2 {
			pool[mafiaIdx[1]] = role.Mafioso
		}
	}

	return pool
}

func mafiaIndices(pool []role.Role) []int {
	var idx []int
	for i, r := range pool {
		if r == role.Mafia {
			idx = append(idx, i)
		}
	}
	return idx
}

// AssignRoles shuffles playerIDs with src (Fisher-Yates) and zips them
// against the composed role pool, returning player id -> role.
func AssignRoles(playerIDs []string, toggles RoleToggles, src rng.Source) map[string]role.Role {
	pool := RolePool(len(playerIDs), toggles)
	order := make([]string, len(playerIDs))
	copy(order, playerIDs)
	src.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	assignments := make(map[string]role.Role, len(order))
	for i, id := range order {
		if i < len(pool) {
			assignments[id] = pool[i]
		} else {
			assignments[id] = role.Villager
		}
	}
	return assignments
}
