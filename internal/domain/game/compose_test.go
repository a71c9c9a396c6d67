package game

import (
	"testing"

	"github.com/duskcall/mafia/internal/domain/rng"
	"github.com/duskcall/mafia/internal/domain/role"
)

func TestBaseCompositionTableSumsToN(t *testing.T) {
	for n := 3; n <= 20; n++ {
		row := baseComposition(n, false)
		sum := row.Mafia + row.Doctor + row.Detective + row.Bodyguard + row.VillagerNoVig
		if sum != n {
			t.Errorf("n=%d: composition sums to %d, want %d (%+v)", n, sum, n, row)
		}
	}
}

func TestRolePoolSizeMatchesPlayerCount(t *testing.T) {
	toggles := RoleToggles{Vigilante: true, Godfather: true, Jailor: true}
	for n := 3; n <= 25; n++ {
		pool := RolePool(n, toggles)
		if len(pool) != n {
			t.Errorf("n=%d: pool size %d, want %d", n, len(pool), n)
		}
	}
}

func TestAssignRolesDeterministicForFixedSeed(t *testing.T) {
	players := []string{"a", "b", "c", "d", "e", "f"}
	toggles := RoleToggles{Vigilante: true}

	a1 := AssignRoles(players, toggles, rng.New(42))
	a2 := AssignRoles(players, toggles, rng.New(42))

	for _, id := range players {
		if a1[id] != a2[id] {
			t.Fatalf("player %s: got different roles across identical seeds: %v vs %v", id, a1[id], a2[id])
		}
	}
}

func TestGodfatherPromotionAppearsInnocent(t *testing.T) {
	players := make([]string, 9)
	for i := range players {
		players[i] = string(rune('a' + i))
	}
	assignments := AssignRoles(players, RoleToggles{Godfather: true}, rng.New(1))

	found := false
	for _, r := range assignments {
		if r == role.Godfather {
			found = true
			if role.AppearsAsMafiaTo(r, role.Detective) {
				t.Error("godfather should appear innocent to detective")
			}
		}
	}
	if !found {
		t.Error("expected a godfather to be promoted among 9 players")
	}
}
