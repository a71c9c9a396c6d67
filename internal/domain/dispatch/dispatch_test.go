package dispatch

import (
	"reflect"
	"testing"

	"github.com/duskcall/mafia/internal/domain/game"
	"github.com/duskcall/mafia/internal/domain/role"
)

type recordingSink struct {
	sent []string
}

func (s *recordingSink) SendToPlayer(roomID, playerID string, kind string, payload interface{}) {
	s.sent = append(s.sent, playerID)
}

func newDispatchRoom() *game.Room {
	room := game.NewRoom("room1", "ABC123", "Test", game.Public, "host", "Host", game.DefaultSettings())
	room.AddPlayer("p2", "Bob")
	room.AddPlayer("p3", "Carl")
	return room
}

func TestDispatchToAllReachesEveryPlayerInOrder(t *testing.T) {
	room := newDispatchRoom()
	sink := &recordingSink{}
	d := New(sink)

	d.Dispatch(room, nil, Event{RoomID: room.ID, Kind: "test", Audience: All()})

	want := []string{"host", "p2", "p3"}
	if !reflect.DeepEqual(sink.sent, want) {
		t.Errorf("got %v, want %v", sink.sent, want)
	}
}

func TestDispatchToPlayerReachesOnlyThatPlayer(t *testing.T) {
	room := newDispatchRoom()
	sink := &recordingSink{}
	d := New(sink)

	d.Dispatch(room, nil, Event{RoomID: room.ID, Kind: "test", Audience: ForPlayer("p2")})

	if !reflect.DeepEqual(sink.sent, []string{"p2"}) {
		t.Errorf("got %v, want [p2]", sink.sent)
	}
}

func TestDispatchToAliveExcludesDead(t *testing.T) {
	room := newDispatchRoom()
	assignments := map[string]role.Role{"host": role.Villager, "p2": role.Villager, "p3": role.Mafia}
	state := game.NewState(room.ID, assignments, game.DefaultSettings())
	state.Alive["p2"] = false

	sink := &recordingSink{}
	d := New(sink)
	d.Dispatch(room, state, Event{RoomID: room.ID, Kind: "test", Audience: Alive()})

	want := []string{"host", "p3"}
	if !reflect.DeepEqual(sink.sent, want) {
		t.Errorf("got %v, want %v", sink.sent, want)
	}
}

func TestDispatchToMafiaTeamOnlyLivingMafia(t *testing.T) {
	room := newDispatchRoom()
	assignments := map[string]role.Role{"host": role.Villager, "p2": role.Mafia, "p3": role.Godfather}
	state := game.NewState(room.ID, assignments, game.DefaultSettings())
	state.Alive["p2"] = false

	sink := &recordingSink{}
	d := New(sink)
	d.Dispatch(room, state, Event{RoomID: room.ID, Kind: "test", Audience: MafiaTeam()})

	if !reflect.DeepEqual(sink.sent, []string{"p3"}) {
		t.Errorf("got %v, want [p3] (p2 is mafia but dead)", sink.sent)
	}
}

func TestDispatchToRoleOnlyMatchingLivingPlayers(t *testing.T) {
	room := newDispatchRoom()
	assignments := map[string]role.Role{"host": role.Detective, "p2": role.Villager, "p3": role.Villager}
	state := game.NewState(room.ID, assignments, game.DefaultSettings())

	sink := &recordingSink{}
	d := New(sink)
	d.Dispatch(room, state, Event{RoomID: room.ID, Kind: "test", Audience: ForRole(role.Detective)})

	if !reflect.DeepEqual(sink.sent, []string{"host"}) {
		t.Errorf("got %v, want [host]", sink.sent)
	}
}
