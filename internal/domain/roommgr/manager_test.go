package roommgr

import (
	"testing"
	"time"

	"github.com/duskcall/mafia/internal/domain/clock"
	"github.com/duskcall/mafia/internal/domain/game"
	"github.com/duskcall/mafia/internal/domain/rng"
)

func newTestManager() (*Manager, *clock.Fake) {
	fc := clock.NewFake(time.Unix(0, 0))
	n := 0
	newID := func() string {
		n++
		return "room-id-" + string(rune('a'+n))
	}
	return New(fc, rng.New(1), newID), fc
}

func TestCreateRoomAllocatesCodeAndIndexesRoom(t *testing.T) {
	m, _ := newTestManager()
	room, err := m.CreateRoom("host1", "Alice", "Alice's Room", game.Public, game.DefaultSettings())
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if len(room.Code) != codeLength {
		t.Errorf("expected code length %d, got %q", codeLength, room.Code)
	}

	byCode, err := m.RoomByCode(room.Code)
	if err != nil || byCode != room {
		t.Errorf("expected room findable by code, err=%v", err)
	}
	byID, err := m.RoomByID(room.ID)
	if err != nil || byID != room {
		t.Errorf("expected room findable by id, err=%v", err)
	}
}

func TestJoinAddsNewPlayer(t *testing.T) {
	m, _ := newTestManager()
	room, _ := m.CreateRoom("host1", "Alice", "Room", game.Public, game.DefaultSettings())

	res, err := m.Join(room.Code, "p2", "Bob")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if res.IsReconnect {
		t.Error("expected fresh join, not reconnect")
	}
	if room.GetPlayer("p2") == nil {
		t.Error("expected p2 to be a member")
	}
}

func TestJoinExistingMemberIsReconnect(t *testing.T) {
	m, _ := newTestManager()
	room, _ := m.CreateRoom("host1", "Alice", "Room", game.Public, game.DefaultSettings())
	m.Join(room.Code, "p2", "Bob")
	room.SetConnected("p2", false, time.Unix(0, 0))

	res, err := m.Join(room.Code, "p2", "Bob")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !res.IsReconnect {
		t.Error("expected reconnect for existing member")
	}
	if !room.GetPlayer("p2").IsConnected {
		t.Error("expected p2 reconnected")
	}
}

func TestLeaveTransfersHostAndDestroysEmptyRoom(t *testing.T) {
	m, fc := newTestManager()
	room, _ := m.CreateRoom("host1", "Alice", "Room", game.Public, game.DefaultSettings())
	m.Join(room.Code, "p2", "Bob")

	newHost, empty, err := m.Leave(room.Code, "host1")
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if newHost != "p2" {
		t.Errorf("expected host transferred to p2, got %q", newHost)
	}
	if empty {
		t.Error("room should not be empty yet")
	}

	_, empty, err = m.Leave(room.Code, "p2")
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if !empty {
		t.Error("expected room empty after last player leaves")
	}

	fc.Advance(EmptyRoomGrace + time.Second)
	if _, err := m.RoomByID(room.ID); err == nil {
		t.Error("expected room destroyed after empty grace period")
	}
}

func TestKickPlayerRequiresHost(t *testing.T) {
	m, _ := newTestManager()
	room, _ := m.CreateRoom("host1", "Alice", "Room", game.Public, game.DefaultSettings())
	m.Join(room.Code, "p2", "Bob")

	if _, err := m.KickPlayer(room.Code, "p2", "host1"); err != game.ErrNotAuthorized {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}

	if _, err := m.KickPlayer(room.Code, "host1", "p2"); err != nil {
		t.Errorf("expected host to kick successfully, got %v", err)
	}
	if room.GetPlayer("p2") != nil {
		t.Error("expected p2 removed")
	}
}

func TestKickPlayerForbiddenMidGame(t *testing.T) {
	m, _ := newTestManager()
	room, _ := m.CreateRoom("host1", "Alice", "Room", game.Public, game.DefaultSettings())
	m.Join(room.Code, "p2", "Bob")
	room.MarkGameActive(true)

	if _, err := m.KickPlayer(room.Code, "host1", "p2"); err != game.ErrRoomInGame {
		t.Errorf("expected ErrRoomInGame, got %v", err)
	}
}

func TestHandleDisconnectEvictsAfterGrace(t *testing.T) {
	m, fc := newTestManager()
	room, _ := m.CreateRoom("host1", "Alice", "Room", game.Public, game.DefaultSettings())
	m.Join(room.Code, "p2", "Bob")

	evicted := false
	if err := m.HandleDisconnect(room.Code, "p2", func() { evicted = true }); err != nil {
		t.Fatalf("HandleDisconnect: %v", err)
	}

	fc.Advance(LobbyDisconnectGrace - time.Second)
	if evicted {
		t.Fatal("evicted before grace period elapsed")
	}

	fc.Advance(2 * time.Second)
	if !evicted {
		t.Fatal("expected eviction callback after grace period")
	}
}

func TestReconnectCancelsEviction(t *testing.T) {
	m, fc := newTestManager()
	room, _ := m.CreateRoom("host1", "Alice", "Room", game.Public, game.DefaultSettings())
	m.Join(room.Code, "p2", "Bob")

	evicted := false
	m.HandleDisconnect(room.Code, "p2", func() { evicted = true })
	m.Join(room.Code, "p2", "Bob")

	fc.Advance(LobbyDisconnectGrace + time.Second)
	if evicted {
		t.Error("reconnect should have canceled the eviction timer")
	}
}

func TestListPublicRoomsExcludesPrivateAndActive(t *testing.T) {
	m, _ := newTestManager()
	pub, _ := m.CreateRoom("host1", "Alice", "Public Room", game.Public, game.DefaultSettings())
	m.CreateRoom("host2", "Bob", "Private Room", game.Private, game.DefaultSettings())
	active, _ := m.CreateRoom("host3", "Carl", "Active Room", game.Public, game.DefaultSettings())
	active.MarkGameActive(true)

	rooms := m.ListPublicRooms()
	if len(rooms) != 1 || rooms[0].ID != pub.ID {
		t.Errorf("expected only the public, inactive room listed, got %d rooms", len(rooms))
	}
}
