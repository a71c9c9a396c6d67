package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGaugesReflectSetValue(t *testing.T) {
	RoomsActive.Set(3)
	if got := testutil.ToFloat64(RoomsActive); got != 3 {
		t.Errorf("RoomsActive = %v, want 3", got)
	}
}

func TestPhaseTransitionsCountsByLabel(t *testing.T) {
	PhaseTransitions.Reset()
	PhaseTransitions.WithLabelValues("VOTING").Inc()
	PhaseTransitions.WithLabelValues("VOTING").Inc()
	PhaseTransitions.WithLabelValues("NIGHT").Inc()

	if got := testutil.ToFloat64(PhaseTransitions.WithLabelValues("VOTING")); got != 2 {
		t.Errorf("VOTING transitions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(PhaseTransitions.WithLabelValues("NIGHT")); got != 1 {
		t.Errorf("NIGHT transitions = %v, want 1", got)
	}
}

func TestGamesCompletedCountsByWinningTeam(t *testing.T) {
	GamesCompleted.Reset()
	GamesCompleted.WithLabelValues("TOWN").Inc()
	GamesCompleted.WithLabelValues("MAFIA").Inc()
	GamesCompleted.WithLabelValues("MAFIA").Inc()

	if got := testutil.ToFloat64(GamesCompleted.WithLabelValues("MAFIA")); got != 2 {
		t.Errorf("MAFIA wins = %v, want 2", got)
	}
}
