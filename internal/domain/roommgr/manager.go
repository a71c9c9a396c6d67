// Package roommgr implements the Room Manager: room creation, code
// allocation, membership, host transfer, and disconnect/reconnect
// tracking. It is the read-mostly index guarded by a single mutex, the
// one piece of shared state outside the per-room single-writer queues.
package roommgr

import (
	"strings"
	"sync"
	"time"

	"github.com/duskcall/mafia/internal/domain/clock"
	"github.com/duskcall/mafia/internal/domain/game"
	"github.com/duskcall/mafia/internal/domain/rng"
	"github.com/duskcall/mafia/internal/pkg/metrics"
)

const (
	codeAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength     = 6
	maxCodeRetries = 16

	LobbyDisconnectGrace = 60 * time.Second
	GameDisconnectGrace  = 120 * time.Second
	EmptyRoomGrace       = 30 * time.Second
)

// JoinResult is returned by Join.
type JoinResult struct {
	Room        *game.Room
	IsReconnect bool
}

// Manager indexes rooms by id and by join code. Every method locks mu for
// its own duration; callers never hold the lock across a room's own
// operations, which use the Room's internal RWMutex instead.
type Manager struct {
	clock clock.Clock
	rng   rng.Source
	newID func() string

	mu         sync.RWMutex
	byID       map[string]*game.Room
	byCode     map[string]*game.Room
	evictTimer map[string]clock.Timer // keyed by roomID+":"+playerID
}

// New builds an empty Manager. newID generates opaque room ids (wired to
// google/uuid.NewString in production; tests inject a deterministic
// sequence).
func New(c clock.Clock, src rng.Source, newID func() string) *Manager {
	return &Manager{
		clock:      c,
		rng:        src,
		newID:      newID,
		byID:       make(map[string]*game.Room),
		byCode:     make(map[string]*game.Room),
		evictTimer: make(map[string]clock.Timer),
	}
}

// CreateRoom allocates a code, seeds a new Room with host as its sole
// player, and indexes it.
func (m *Manager) CreateRoom(hostID, hostName, name string, visibility game.Visibility, settings game.Settings) (*game.Room, error) {
	if !game.ValidUsername(hostName) {
		return nil, game.ErrInvalidName
	}
	if len(name) < 1 || len(name) > 30 {
		return nil, game.ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	code, err := m.allocateCodeLocked()
	if err != nil {
		return nil, err
	}

	room := game.NewRoom(m.newID(), code, name, visibility, hostID, hostName, settings)
	m.byID[room.ID] = room
	m.byCode[code] = room
	metrics.RoomsActive.Set(float64(len(m.byID)))
	return room, nil
}

// allocateCodeLocked generates a fresh 6-char code, retrying on collision
// up to maxCodeRetries times (17 draws in all), then making one final
// draw on the 18th attempt. Caller must hold m.mu.
func (m *Manager) allocateCodeLocked() (string, error) {
	for attempt := 0; attempt <= maxCodeRetries; attempt++ {
		code := m.drawCode()
		if _, exists := m.byCode[code]; !exists {
			return code, nil
		}
	}
	// Final 18th attempt: draw twice and keep the first codeLength
	// characters of the concatenation before giving up.
	wide := m.drawCode() + m.drawCode()
	code := wide[:codeLength]
	if _, exists := m.byCode[code]; !exists {
		return code, nil
	}
	return "", game.ErrInternal
}

func (m *Manager) drawCode() string {
	var b strings.Builder
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[m.rng.Intn(len(codeAlphabet))])
	}
	return b.String()
}

// RoomByCode looks up a room by its join code.
func (m *Manager) RoomByCode(code string) (*game.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byCode[strings.ToUpper(code)]
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	return r, nil
}

// RoomByID looks up a room by its opaque id.
func (m *Manager) RoomByID(id string) (*game.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	return r, nil
}

// Join reconnects an existing member, or otherwise adds a fresh join
// subject to capacity and in-game rules.
func (m *Manager) Join(code, userID, username string) (JoinResult, error) {
	room, err := m.RoomByCode(code)
	if err != nil {
		return JoinResult{}, err
	}

	if existing := room.GetPlayer(userID); existing != nil {
		room.SetConnected(userID, true, m.clock.Now())
		m.cancelEviction(room.ID, userID)
		return JoinResult{Room: room, IsReconnect: true}, nil
	}

	if !game.ValidUsername(username) {
		return JoinResult{}, game.ErrInvalidName
	}
	if _, err := room.AddPlayer(userID, username); err != nil {
		return JoinResult{}, err
	}
	return JoinResult{Room: room, IsReconnect: false}, nil
}

// Leave removes a player from a room. Returns the new host id (if host
// transferred) and whether the room became empty.
func (m *Manager) Leave(code, userID string) (newHostID string, roomEmpty bool, err error) {
	room, err := m.RoomByCode(code)
	if err != nil {
		return "", false, err
	}
	removed, newHost := room.RemovePlayer(userID)
	if removed == nil {
		return "", false, game.ErrPlayerNotFound
	}
	m.cancelEviction(room.ID, userID)

	if room.IsEmpty() {
		m.scheduleRoomDestruction(room)
		return newHost, true, nil
	}
	return newHost, false, nil
}

// KickPlayer removes a player at the host's request. Host-only, forbidden
// mid-game.
func (m *Manager) KickPlayer(code, byID, targetID string) (string, error) {
	room, err := m.RoomByCode(code)
	if err != nil {
		return "", err
	}
	if room.HostID != byID {
		return "", game.ErrNotAuthorized
	}
	if room.IsGameActive {
		return "", game.ErrRoomInGame
	}
	removed, newHost := room.RemovePlayer(targetID)
	if removed == nil {
		return "", game.ErrPlayerNotFound
	}
	return newHost, nil
}

// UpdateSettings replaces a room's settings. Host-only, rejected if the
// game is active.
func (m *Manager) UpdateSettings(code, byID string, settings game.Settings) error {
	room, err := m.RoomByCode(code)
	if err != nil {
		return err
	}
	if room.HostID != byID {
		return game.ErrNotAuthorized
	}
	if room.IsGameActive {
		return game.ErrRoomInGame
	}
	settings.Timers.Clamp()
	room.UpdateSettings(settings)
	return nil
}

// ListPublicRooms returns a snapshot of PUBLIC, not-yet-started rooms.
func (m *Manager) ListPublicRooms() []*game.Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*game.Room
	for _, r := range m.byID {
		if r.Visibility == game.Public && !r.IsGameActive {
			out = append(out, r)
		}
	}
	return out
}

// HandleDisconnect marks a player disconnected and schedules eviction
// after the appropriate grace period. onEvict is invoked on the Clock's
// own goroutine once grace expires; callers must enqueue a command from
// it rather than mutating state directly.
func (m *Manager) HandleDisconnect(code, userID string, onEvict func()) error {
	room, err := m.RoomByCode(code)
	if err != nil {
		return err
	}
	room.SetConnected(userID, false, m.clock.Now())

	grace := LobbyDisconnectGrace
	if room.IsGameActive {
		grace = GameDisconnectGrace
	}

	key := room.ID + ":" + userID
	m.mu.Lock()
	if t, ok := m.evictTimer[key]; ok {
		t.Stop()
	}
	m.evictTimer[key] = m.clock.AfterFunc(grace, onEvict)
	m.mu.Unlock()
	return nil
}

// cancelEviction stops any pending eviction timer for a player.
func (m *Manager) cancelEviction(roomID, playerID string) {
	key := roomID + ":" + playerID
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.evictTimer[key]; ok {
		t.Stop()
		delete(m.evictTimer, key)
	}
}

// scheduleRoomDestruction removes the room from the index after the empty
// grace interval, unless a join repopulates it first (the room stays
// indexed during the interval, so a join can still find it, and the timer
// re-checks IsEmpty before removing it).
func (m *Manager) scheduleRoomDestruction(room *game.Room) {
	m.clock.AfterFunc(EmptyRoomGrace, func() {
		if !room.IsEmpty() {
			return
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.byID, room.ID)
		delete(m.byCode, room.Code)
		metrics.RoomsActive.Set(float64(len(m.byID)))
	})
}
