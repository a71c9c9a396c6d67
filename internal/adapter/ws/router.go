package ws

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/duskcall/mafia/internal/adapter/recorder"
	"github.com/duskcall/mafia/internal/adapter/sfu"
	"github.com/duskcall/mafia/internal/domain/clock"
	"github.com/duskcall/mafia/internal/domain/dispatch"
	"github.com/duskcall/mafia/internal/domain/engine"
	"github.com/duskcall/mafia/internal/domain/game"
	"github.com/duskcall/mafia/internal/domain/rng"
	"github.com/duskcall/mafia/internal/domain/role"
	"github.com/duskcall/mafia/internal/domain/roommgr"
	"github.com/duskcall/mafia/internal/pkg/id"
	"github.com/pion/webrtc/v4"
)

// Router translates wire Messages into calls against the Room Manager and
// per-room Machines, and wires the sfu voice adapter to whatever the
// current phase permits.
type Router struct {
	hub    *Hub
	rooms  *roommgr.Manager
	disp   *dispatch.Dispatcher
	sfu    *sfu.SFU
	rec    *recorder.Recorder
	clock  clock.Clock
	logger *slog.Logger

	mu       sync.RWMutex
	machines map[string]*engine.Machine // keyed by room code
	recorded map[string]bool            // room codes whose GAME_OVER has already been persisted
}

// NewRouter creates a new message router.
func NewRouter(hub *Hub, rooms *roommgr.Manager, disp *dispatch.Dispatcher, sfuInstance *sfu.SFU, rec *recorder.Recorder, clk clock.Clock, logger *slog.Logger) *Router {
	return &Router{
		hub:      hub,
		rooms:    rooms,
		disp:     disp,
		sfu:      sfuInstance,
		rec:      rec,
		clock:    clk,
		logger:   logger,
		machines: make(map[string]*engine.Machine),
		recorded: make(map[string]bool),
	}
}

// HandleMessage routes an incoming message to the appropriate handler.
func (r *Router) HandleMessage(client *Client, msg *Message) {
	switch msg.Type {
	case MsgTypeCreateRoom:
		r.handleCreateRoom(client, msg)
	case MsgTypeJoinRoom:
		r.handleJoinRoom(client, msg)
	case MsgTypeLeaveRoom:
		r.handleLeaveRoom(client)
	case MsgTypeKickPlayer:
		r.handleKickPlayer(client, msg)
	case MsgTypeUpdateSettings:
		r.handleUpdateSettings(client, msg)
	case MsgTypeStartGame:
		r.handleStartGame(client)
	case MsgTypeNightAction:
		r.handleNightAction(client, msg)
	case MsgTypeDayVote:
		r.handleDayVote(client, msg)
	case MsgTypeRequestRemovalVote:
		r.handleRequestRemovalVote(client, msg)
	case MsgTypeChat:
		r.handleChat(client, msg)
	case MsgTypeVoiceJoin:
		r.handleVoiceJoin(client)
	case MsgTypeVoiceLeave:
		r.handleVoiceLeave(client)
	case MsgTypeVoiceOffer:
		r.handleVoiceOffer(client, msg)
	case MsgTypeVoiceCandidate:
		r.handleVoiceCandidate(client, msg)
	case MsgTypeSpeakingState:
		r.handleSpeakingState(client, msg)
	default:
		client.SendError("unknown_message", "unknown message type: "+msg.Type)
	}
}

// HandleDisconnect handles client disconnection: leaves voice, marks the
// player disconnected and schedules their removal after the grace period.
func (r *Router) HandleDisconnect(client *Client) {
	if client.RoomCode == "" {
		return
	}
	roomCode := client.RoomCode

	if r.sfu != nil {
		r.sfu.LeaveVoice(roomCode, client.PlayerID)
		r.hub.BroadcastToRoom(roomCode, MustMessage(EventTypeVoiceLeft, VoiceLeftPayload{PlayerID: client.PlayerID}), nil)
	}

	if m := r.machineFor(roomCode); m != nil {
		m.PlayerDisconnect(client.PlayerID)
	}

	err := r.rooms.HandleDisconnect(roomCode, client.PlayerID, func() {
		newHost, empty, _ := r.rooms.Leave(roomCode, client.PlayerID)
		if m := r.machineFor(roomCode); m != nil {
			m.PlayerLeave(client.PlayerID)
		}
		r.hub.BroadcastToRoom(roomCode, MustMessage(EventTypePlayerLeft, PlayerLeftPayload{PlayerID: client.PlayerID, NewHost: newHost}), nil)
		if empty {
			r.removeMachine(roomCode)
		}
	})
	if err != nil {
		r.logger.Warn("handle disconnect failed", "error", err, "room", roomCode, "player_id", client.PlayerID)
	}
}

func (r *Router) machineFor(roomCode string) *engine.Machine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.machines[roomCode]
}

func (r *Router) removeMachine(roomCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.machines[roomCode]; ok {
		m.Shutdown()
		delete(r.machines, roomCode)
	}
	delete(r.recorded, roomCode)
}

func (r *Router) handleCreateRoom(client *Client, msg *Message) {
	var payload CreateRoomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		client.SendError("invalid_payload", "invalid create_room payload")
		return
	}
	vis := game.Private
	if payload.Visibility == string(game.Public) {
		vis = game.Public
	}
	room, err := r.rooms.CreateRoom(client.PlayerID, payload.Nickname, payload.RoomName, vis, game.DefaultSettings())
	if err != nil {
		client.SendError("create_failed", err.Error())
		return
	}

	r.hub.JoinRoom(client, room.Code)
	client.Send(MustMessage(EventTypeRoomCreated, RoomCreatedPayload{RoomCode: room.Code, PlayerID: client.PlayerID}))
	r.logger.Info("room created", "room", room.Code, "player_id", client.PlayerID)
}

func (r *Router) handleJoinRoom(client *Client, msg *Message) {
	var payload JoinRoomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		client.SendError("invalid_payload", "invalid join_room payload")
		return
	}

	res, err := r.rooms.Join(payload.RoomCode, client.PlayerID, payload.Nickname)
	if err != nil {
		client.SendError(errCode(err), err.Error())
		return
	}
	room := res.Room

	r.hub.JoinRoom(client, room.Code)
	client.Send(MustMessage(EventTypeRoomJoined, RoomJoinedPayload{
		RoomCode: room.Code,
		PlayerID: client.PlayerID,
		Players:  toPlayerDTOs(room.Players()),
	}))

	if !res.IsReconnect {
		player := room.GetPlayer(client.PlayerID)
		r.hub.BroadcastToRoom(room.Code, MustMessage(EventTypePlayerJoined, PlayerJoinedPayload{Player: toPlayerDTO(player.ToDTO())}), client)
	} else if m := r.machineFor(room.Code); m != nil {
		m.PlayerReconnect(client.PlayerID)
		r.sendReconnectSnapshot(client, room, m)
	}
	r.logger.Info("player joined room", "room", room.Code, "player_id", client.PlayerID, "reconnect", res.IsReconnect)
}

// sendReconnectSnapshot replays what a reconnecting player missed: their
// own role, a phase update, and the chat history they're entitled to see
// (public always, mafia/ghost rings only for the matching team/status).
func (r *Router) sendReconnectSnapshot(client *Client, room *game.Room, m *engine.Machine) {
	state := m.State()
	if state == nil {
		return
	}
	playerID := client.PlayerID
	if rr, ok := state.RoleAssignments[playerID]; ok {
		entry := role.Get(rr)
		var teammates []string
		if entry.Team == role.TeamMafia {
			teammates = state.MafiaTeammates(playerID)
		}
		r.hub.SendToPlayer(room.Code, playerID, engine.EvRoleReveal, engine.RoleRevealPayload{Role: rr, Team: entry.Team, Teammates: teammates})
	}
	r.hub.SendToPlayer(room.Code, playerID, engine.EvPhaseChange, engine.PhaseChangePayload{Phase: state.Phase, DayNumber: state.DayNumber})

	for _, msg := range room.Public.Snapshot() {
		r.hub.SendToPlayer(room.Code, playerID, engine.EvChat, engine.ChatPayload{Message: msg})
	}
	if state.TeamAssignments[playerID] == role.TeamMafia {
		for _, msg := range room.Mafia.Snapshot() {
			r.hub.SendToPlayer(room.Code, playerID, engine.EvChat, engine.ChatPayload{Message: msg})
		}
	}
	if !state.Alive[playerID] {
		for _, msg := range room.Ghost.Snapshot() {
			r.hub.SendToPlayer(room.Code, playerID, engine.EvChat, engine.ChatPayload{Message: msg})
		}
	}
}

func (r *Router) handleLeaveRoom(client *Client) {
	if client.RoomCode == "" {
		client.SendError("not_in_room", "not in a room")
		return
	}
	roomCode := client.RoomCode
	newHost, empty, err := r.rooms.Leave(roomCode, client.PlayerID)
	if err != nil {
		client.SendError(errCode(err), err.Error())
		return
	}
	if m := r.machineFor(roomCode); m != nil {
		m.PlayerLeave(client.PlayerID)
	}
	r.hub.LeaveRoom(client)
	r.hub.BroadcastToRoom(roomCode, MustMessage(EventTypePlayerLeft, PlayerLeftPayload{PlayerID: client.PlayerID, NewHost: newHost}), nil)
	if empty {
		r.removeMachine(roomCode)
	}
}

func (r *Router) handleKickPlayer(client *Client, msg *Message) {
	var payload KickPlayerPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		client.SendError("invalid_payload", "invalid kick_player payload")
		return
	}
	newHost, err := r.rooms.KickPlayer(client.RoomCode, client.PlayerID, payload.TargetID)
	if err != nil {
		client.SendError(errCode(err), err.Error())
		return
	}
	if kicked := r.hub.GetClient(payload.TargetID); kicked != nil {
		r.hub.LeaveRoom(kicked)
	}
	r.hub.BroadcastToRoom(client.RoomCode, MustMessage(EventTypePlayerLeft, PlayerLeftPayload{PlayerID: payload.TargetID, NewHost: newHost}), nil)
}

func (r *Router) handleUpdateSettings(client *Client, msg *Message) {
	var payload UpdateSettingsPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		client.SendError("invalid_payload", "invalid update_settings payload")
		return
	}
	settings := game.Settings{
		Roles: game.RoleToggles{
			Godfather:    payload.Roles.Godfather,
			Vigilante:    payload.Roles.Vigilante,
			Jester:       payload.Roles.Jester,
			Mayor:        payload.Roles.Mayor,
			Don:          payload.Roles.Don,
			Jailor:       payload.Roles.Jailor,
			Spy:          payload.Roles.Spy,
			MafiaHealer:  payload.Roles.MafiaHealer,
			Silencer:     payload.Roles.Silencer,
			SerialKiller: payload.Roles.SerialKiller,
			CultLeader:   payload.Roles.CultLeader,
			Arsonist:     payload.Roles.Arsonist,
		},
		Timers:            game.DefaultTimers(),
		TieBreak:          game.TieBreakPolicy(payload.TieBreak),
		AllowSpectators:   payload.AllowSpectators,
		RevealRoleOnDeath: payload.RevealRoleOnDeath,
		AllowAbstain:      payload.AllowAbstain,
	}
	if err := r.rooms.UpdateSettings(client.RoomCode, client.PlayerID, settings); err != nil {
		client.SendError(errCode(err), err.Error())
		return
	}
	room, err := r.rooms.RoomByCode(client.RoomCode)
	if err != nil {
		return
	}
	r.hub.BroadcastToRoom(client.RoomCode, MustMessage(EventTypeRoomUpdated, RoomUpdatedPayload{Players: toPlayerDTOs(room.Players())}), nil)
}

func (r *Router) handleStartGame(client *Client) {
	room, err := r.rooms.RoomByCode(client.RoomCode)
	if err != nil {
		client.SendError(errCode(err), err.Error())
		return
	}
	if room.HostID != client.PlayerID {
		client.SendError(errCode(game.ErrNotAuthorized), game.ErrNotAuthorized.Error())
		return
	}

	m := engine.New(room, r.clock, rng.New(randomSeed()), r.disp, r.logger)
	r.mu.Lock()
	r.machines[room.Code] = m
	r.mu.Unlock()
	go m.Run()

	if err := m.StartGame(); err != nil {
		client.SendError(errCode(err), err.Error())
		r.removeMachine(room.Code)
		return
	}
	r.syncVoiceRouting(room.Code, m)
}

func (r *Router) handleNightAction(client *Client, msg *Message) {
	var payload NightActionPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		client.SendError("invalid_payload", "invalid night_action payload")
		return
	}
	m := r.machineFor(client.RoomCode)
	if m == nil {
		client.SendError(errCode(game.ErrGameNotActive), game.ErrGameNotActive.Error())
		return
	}
	if err := m.SubmitNightAction(client.PlayerID, payload.TargetID); err != nil {
		client.SendError(errCode(err), err.Error())
		return
	}
	r.syncVoiceRouting(client.RoomCode, m)
}

func (r *Router) handleDayVote(client *Client, msg *Message) {
	var payload DayVotePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		client.SendError("invalid_payload", "invalid day_vote payload")
		return
	}
	m := r.machineFor(client.RoomCode)
	if m == nil {
		client.SendError(errCode(game.ErrGameNotActive), game.ErrGameNotActive.Error())
		return
	}
	if err := m.CastVote(client.PlayerID, payload.TargetID); err != nil {
		client.SendError(errCode(err), err.Error())
		return
	}
	r.syncVoiceRouting(client.RoomCode, m)
}

func (r *Router) handleRequestRemovalVote(client *Client, msg *Message) {
	var payload RequestRemovalVotePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		client.SendError("invalid_payload", "invalid request_removal_vote payload")
		return
	}
	m := r.machineFor(client.RoomCode)
	if m == nil {
		client.SendError(errCode(game.ErrGameNotActive), game.ErrGameNotActive.Error())
		return
	}
	if err := m.RequestRemovalVote(client.PlayerID, payload.TargetID); err != nil {
		client.SendError(errCode(err), err.Error())
	}
}

func (r *Router) handleChat(client *Client, msg *Message) {
	var payload ChatPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		client.SendError("invalid_payload", "invalid chat payload")
		return
	}
	m := r.machineFor(client.RoomCode)
	if m == nil {
		client.SendError(errCode(game.ErrGameNotActive), game.ErrGameNotActive.Error())
		return
	}
	messageID := payload.MessageID
	if messageID == "" {
		messageID = id.New()
	}
	if err := m.Chat(messageID, client.PlayerID, payload.Content, payload.Mafia); err != nil {
		client.SendError(errCode(err), err.Error())
	}
}

// maybeRecordGameOver persists the immutable game record the first time a
// room's Machine reports GAME_OVER. Safe to call after every command that
// may have ended the game; recorded tracks which rooms already wrote.
func (r *Router) maybeRecordGameOver(roomCode string, m *engine.Machine) {
	if r.rec == nil {
		return
	}
	state := m.State()
	if state == nil || state.Phase != game.PhaseGameOver || state.PendingWin == nil {
		return
	}
	r.mu.Lock()
	if r.recorded[roomCode] {
		r.mu.Unlock()
		return
	}
	r.recorded[roomCode] = true
	r.mu.Unlock()

	roles := make(map[string]string, len(state.RoleAssignments))
	for pid, rr := range state.RoleAssignments {
		roles[pid] = string(rr)
	}
	r.rec.Record(recorder.GameRecord{
		RoomID:      state.RoomID,
		RoomCode:    roomCode,
		WinningTeam: string(state.PendingWin.WinningTeam),
		DayNumber:   state.DayNumber,
		Roles:       roles,
		EndedAt:     r.clock.Now(),
	})
}

// syncVoiceRouting recomputes who can speak/hear whom after a command that
// may have changed phase or alive set.
func (r *Router) syncVoiceRouting(roomCode string, m *engine.Machine) {
	r.maybeRecordGameOver(roomCode, m)
	if r.sfu == nil {
		return
	}
	state := m.State()
	if state == nil {
		return
	}
	players := make([]sfu.PlayerInfo, 0, len(state.RoleAssignments))
	for pid := range state.RoleAssignments {
		team := sfu.TeamTown
		if state.TeamAssignments[pid] == role.TeamMafia {
			team = sfu.TeamMafia
		}
		players = append(players, sfu.PlayerInfo{ID: pid, Team: team, IsAlive: state.Alive[pid]})
	}
	r.sfu.ApplyVoiceRouting(roomCode, sfu.VoiceRoutingState{Phase: voiceGamePhase(state.Phase), Players: voicePlayerStates(players, state)})
}

func voiceGamePhase(p game.Phase) sfu.GamePhase {
	switch p {
	case game.PhaseLobby, game.PhaseRoleReveal:
		return sfu.PhaseLobby
	case game.PhaseDayDiscussion, game.PhaseVoting, game.PhaseResolution:
		return sfu.PhaseDay
	case game.PhaseGameOver:
		return sfu.PhaseGameOver
	default:
		if game.IsNightActionPhase(p) {
			return sfu.PhaseNight
		}
		return sfu.PhaseLobby
	}
}

func voicePlayerStates(players []sfu.PlayerInfo, state *game.State) []sfu.PlayerVoiceState {
	routing := sfu.CalculateRouting(voiceGamePhase(state.Phase), players)
	out := make([]sfu.PlayerVoiceState, 0, len(routing))
	for _, p := range players {
		out = append(out, routing[p.ID])
	}
	return out
}

func (r *Router) handleVoiceJoin(client *Client) {
	if r.sfu == nil || client.RoomCode == "" {
		client.SendError("voice_unavailable", "voice chat unavailable")
		return
	}
	if _, err := r.sfu.JoinVoice(client.RoomCode, client.PlayerID); err != nil {
		client.SendError("voice_join_failed", err.Error())
		return
	}
	r.hub.BroadcastToRoom(client.RoomCode, MustMessage(EventTypeVoiceJoined, VoiceJoinedPayload{PlayerID: client.PlayerID}), nil)
}

func (r *Router) handleVoiceLeave(client *Client) {
	if r.sfu == nil || client.RoomCode == "" {
		return
	}
	r.sfu.LeaveVoice(client.RoomCode, client.PlayerID)
	r.hub.BroadcastToRoom(client.RoomCode, MustMessage(EventTypeVoiceLeft, VoiceLeftPayload{PlayerID: client.PlayerID}), nil)
}

func (r *Router) handleVoiceOffer(client *Client, msg *Message) {
	var payload VoiceOfferPayload
	if r.sfu == nil || client.RoomCode == "" || json.Unmarshal(msg.Payload, &payload) != nil {
		client.SendError("invalid_payload", "invalid voice_offer payload")
		return
	}
	answer, err := r.sfu.HandleOffer(client.RoomCode, client.PlayerID, webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: payload.SDP})
	if err != nil {
		client.SendError("voice_offer_failed", err.Error())
		return
	}
	client.Send(MustMessage(EventTypeVoiceAnswer, VoiceAnswerPayload{SDP: answer.SDP}))
}

func (r *Router) handleVoiceCandidate(client *Client, msg *Message) {
	var payload VoiceCandidatePayload
	if r.sfu == nil || client.RoomCode == "" || json.Unmarshal(msg.Payload, &payload) != nil {
		client.SendError("invalid_payload", "invalid voice_candidate payload")
		return
	}
	mLineIndex := payload.SDPMLineIndex
	candidate := webrtc.ICECandidateInit{
		Candidate:     payload.Candidate,
		SDPMid:        &payload.SDPMid,
		SDPMLineIndex: &mLineIndex,
	}
	if err := r.sfu.AddICECandidate(client.RoomCode, client.PlayerID, candidate); err != nil {
		client.logger.Warn("add ice candidate failed", "error", err, "player_id", client.PlayerID)
	}
}

func (r *Router) handleSpeakingState(client *Client, msg *Message) {
	var payload SpeakingStatePayload
	if r.sfu == nil || client.RoomCode == "" || json.Unmarshal(msg.Payload, &payload) != nil {
		return
	}
	r.sfu.SetSpeakingState(client.RoomCode, client.PlayerID, payload.Speaking)
	r.hub.BroadcastToRoom(client.RoomCode, MustMessage(EventTypeSpeakingState, SpeakingStatePayload{PlayerID: client.PlayerID, Speaking: payload.Speaking}), client)
}

func toPlayerDTO(d game.DTO) PlayerDTO {
	return PlayerDTO{ID: d.ID, Username: d.Username, IsHost: d.IsHost, IsConnected: d.IsConnected, Status: string(d.Status)}
}

func toPlayerDTOs(ds []game.DTO) []PlayerDTO {
	out := make([]PlayerDTO, len(ds))
	for i, d := range ds {
		out[i] = toPlayerDTO(d)
	}
	return out
}

func errCode(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func randomSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 1
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
