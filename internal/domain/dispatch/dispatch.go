// Package dispatch implements the Event Dispatcher: it resolves
// role/team/liveness-scoped audiences against game state and hands each
// outbound event to a transport Sink, one player at a time. All calls
// into a Dispatcher happen from the owning room's single-writer command
// queue (internal/domain/engine), which is what gives event delivery its
// totally-ordered, serialized guarantee — the Dispatcher itself adds no
// buffering or reordering of its own.
package dispatch

import (
	"github.com/duskcall/mafia/internal/domain/game"
	"github.com/duskcall/mafia/internal/domain/role"
	"github.com/duskcall/mafia/internal/pkg/metrics"
)

// Audience names who should receive an event.
type Audience struct {
	Kind   AudienceKind
	Role   role.Role // set when Kind == AudienceRole
	Player string    // set when Kind == AudiencePlayer
}

type AudienceKind string

const (
	AudienceAll    AudienceKind = "ALL_IN_ROOM"
	AudienceAlive  AudienceKind = "ALIVE"
	AudienceDead   AudienceKind = "DEAD"
	AudienceMafia  AudienceKind = "MAFIA_TEAM"
	AudienceRole   AudienceKind = "ROLE"
	AudiencePlayer AudienceKind = "PLAYER"
)

func All() Audience                 { return Audience{Kind: AudienceAll} }
func Alive() Audience                { return Audience{Kind: AudienceAlive} }
func Dead() Audience                 { return Audience{Kind: AudienceDead} }
func MafiaTeam() Audience            { return Audience{Kind: AudienceMafia} }
func ForRole(r role.Role) Audience   { return Audience{Kind: AudienceRole, Role: r} }
func ForPlayer(id string) Audience   { return Audience{Kind: AudiencePlayer, Player: id} }

// Event is a single outbound message, already addressed to an audience.
type Event struct {
	RoomID   string
	Kind     string
	Payload  interface{}
	Audience Audience
}

// Sink is the transport-facing recipient of resolved, per-player sends.
// The Protocol Adapter's connection hub implements this.
type Sink interface {
	SendToPlayer(roomID, playerID string, kind string, payload interface{})
}

// Dispatcher resolves an Event's audience against room membership and
// game state, then invokes the Sink once per recipient, in a stable
// order (room player order) so duplicate recipients across overlapping
// audiences never reorder relative to each other within one Dispatch call.
type Dispatcher struct {
	sink Sink
}

// New builds a Dispatcher writing to sink.
func New(sink Sink) *Dispatcher {
	return &Dispatcher{sink: sink}
}

// Dispatch resolves ev.Audience against room and state (state may be nil
// for lobby-only events such as room:updated, where only membership
// matters) and sends to every resolved recipient.
func (d *Dispatcher) Dispatch(room *game.Room, state *game.State, ev Event) {
	metrics.DispatchedEvents.WithLabelValues(ev.Kind).Inc()
	for _, id := range d.resolve(room, state, ev.Audience) {
		d.sink.SendToPlayer(room.ID, id, ev.Kind, ev.Payload)
	}
}

func (d *Dispatcher) resolve(room *game.Room, state *game.State, aud Audience) []string {
	switch aud.Kind {
	case AudiencePlayer:
		return []string{aud.Player}
	case AudienceAll:
		return room.PlayerOrder()
	case AudienceAlive:
		if state == nil {
			return room.PlayerOrder()
		}
		return intersectOrdered(room.PlayerOrder(), state.Alive)
	case AudienceDead:
		if state == nil {
			return nil
		}
		dead := make(map[string]bool, len(state.Dead))
		for _, d := range state.Dead {
			dead[d.ID] = true
		}
		return intersectOrdered(room.PlayerOrder(), dead)
	case AudienceMafia:
		if state == nil {
			return nil
		}
		mafia := make(map[string]bool)
		for id, team := range state.TeamAssignments {
			if team == role.TeamMafia && state.Alive[id] {
				mafia[id] = true
			}
		}
		return intersectOrdered(room.PlayerOrder(), mafia)
	case AudienceRole:
		if state == nil {
			return nil
		}
		withRole := make(map[string]bool)
		for _, id := range state.AliveWithRole(aud.Role) {
			withRole[id] = true
		}
		return intersectOrdered(room.PlayerOrder(), withRole)
	}
	return nil
}

// intersectOrdered filters order by membership in set, preserving order.
func intersectOrdered(order []string, set map[string]bool) []string {
	out := make([]string, 0, len(order))
	for _, id := range order {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}
