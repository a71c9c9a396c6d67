// Package metrics exposes room/game gauges and phase-transition counters
// for Prometheus scraping, registered in init() and served at /metrics by
// internal/adapter/http.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RoomsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mafia_rooms_active",
		Help: "Number of rooms currently tracked by the room manager.",
	})

	GamesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mafia_games_active",
		Help: "Number of rooms currently mid-game.",
	})

	PlayersConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mafia_players_connected",
		Help: "Number of currently-connected WebSocket clients.",
	})

	PhaseTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mafia_phase_transitions_total",
		Help: "Count of phase transitions, labeled by the phase entered.",
	}, []string{"phase"})

	DispatchedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mafia_dispatched_events_total",
		Help: "Count of events delivered by the dispatcher, labeled by event kind.",
	}, []string{"kind"})

	GamesCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mafia_games_completed_total",
		Help: "Count of completed games, labeled by winning team.",
	}, []string{"winning_team"})
)

func init() {
	prometheus.MustRegister(RoomsActive, GamesActive, PlayersConnected, PhaseTransitions, DispatchedEvents, GamesCompleted)
}
