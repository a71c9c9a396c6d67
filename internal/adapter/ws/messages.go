package ws

import "encoding/json"

// Message types (client -> server).
const (
	MsgTypeCreateRoom          = "create_room"
	MsgTypeJoinRoom            = "join_room"
	MsgTypeLeaveRoom           = "leave_room"
	MsgTypeKickPlayer          = "kick_player"
	MsgTypeUpdateSettings      = "update_settings"
	MsgTypeStartGame           = "start_game"
	MsgTypeNightAction         = "night_action"
	MsgTypeDayVote             = "day_vote"
	MsgTypeRequestRemovalVote  = "request_removal_vote"
	MsgTypeChat                = "chat"

	MsgTypeVoiceJoin      = "voice_join"
	MsgTypeVoiceLeave     = "voice_leave"
	MsgTypeVoiceOffer     = "voice_offer"
	MsgTypeVoiceAnswer    = "voice_answer"
	MsgTypeVoiceCandidate = "voice_candidate"
	MsgTypeSpeakingState  = "speaking_state"
)

// Connection / error events not owned by the domain layer.
const (
	EventTypeConnected = "connected"
	EventTypeError     = "error"

	EventTypeRoomCreated  = "room_created"
	EventTypeRoomJoined   = "room_joined"
	EventTypePlayerJoined = "player_joined"
	EventTypePlayerLeft   = "player_left"
	EventTypeRoomUpdated  = "room_updated"

	EventTypeVoiceJoined    = "voice_joined"
	EventTypeVoiceLeft      = "voice_left"
	EventTypeVoiceOffer     = "voice_offer"
	EventTypeVoiceAnswer    = "voice_answer"
	EventTypeVoiceCandidate = "voice_candidate"
	EventTypeSpeakingState  = "speaking_state"
	EventTypeVoiceRouting   = "voice_routing"
)

// Message is the envelope for all WebSocket messages. Server-originated
// game event Types are the engine.Ev* constants, forwarded verbatim by the
// Dispatcher so the wire protocol never re-encodes what the domain layer
// already named; connection, error, room and voice messages use the
// adapter's own EventType* constants above.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ParseMessage parses a raw JSON message.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// NewMessage creates a new message with a typed payload.
func NewMessage(msgType string, payload any) (*Message, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return &Message{Type: msgType, Payload: raw}, nil
}

// MustMessage creates a message, panics on error (use for static payloads).
func MustMessage(msgType string, payload any) *Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Bytes serializes the message to JSON.
func (m *Message) Bytes() []byte {
	data, _ := json.Marshal(m)
	return data
}

// --- client -> server payloads ---

type CreateRoomPayload struct {
	Nickname   string `json:"nickname"`
	RoomName   string `json:"room_name"`
	Visibility string `json:"visibility"` // "PUBLIC" or "PRIVATE"
}

type JoinRoomPayload struct {
	RoomCode string `json:"room_code"`
	Nickname string `json:"nickname"`
}

type KickPlayerPayload struct {
	TargetID string `json:"target_id"`
}

type UpdateSettingsPayload struct {
	Roles             RoleTogglesPayload `json:"roles"`
	TieBreak          string             `json:"tie_break"`
	AllowSpectators   bool               `json:"allow_spectators"`
	RevealRoleOnDeath bool               `json:"reveal_role_on_death"`
	AllowAbstain      bool               `json:"allow_abstain"`
}

type RoleTogglesPayload struct {
	Godfather    bool `json:"godfather"`
	Vigilante    bool `json:"vigilante"`
	Jester       bool `json:"jester"`
	Mayor        bool `json:"mayor"`
	Don          bool `json:"don"`
	Jailor       bool `json:"jailor"`
	Spy          bool `json:"spy"`
	MafiaHealer  bool `json:"mafia_healer"`
	Silencer     bool `json:"silencer"`
	SerialKiller bool `json:"serial_killer"`
	CultLeader   bool `json:"cult_leader"`
	Arsonist     bool `json:"arsonist"`
}

type NightActionPayload struct {
	TargetID string `json:"target_id"`
}

type DayVotePayload struct {
	TargetID string `json:"target_id,omitempty"` // empty = withdraw the current vote; there is no separate abstain vote
}

type RequestRemovalVotePayload struct {
	TargetID string `json:"target_id"`
}

type ChatPayload struct {
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
	Mafia     bool   `json:"mafia,omitempty"`
}

// --- server -> client payloads owned by the adapter layer ---

type ConnectedPayload struct {
	PlayerID string `json:"player_id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomCreatedPayload struct {
	RoomCode string `json:"room_code"`
	PlayerID string `json:"player_id"`
}

type PlayerDTO struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	IsHost      bool   `json:"is_host"`
	IsConnected bool   `json:"is_connected"`
	Status      string `json:"status"`
}

type RoomJoinedPayload struct {
	RoomCode string      `json:"room_code"`
	PlayerID string      `json:"player_id"`
	Players  []PlayerDTO `json:"players"`
}

type PlayerJoinedPayload struct {
	Player PlayerDTO `json:"player"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
	NewHost  string `json:"new_host,omitempty"`
}

type RoomUpdatedPayload struct {
	Players []PlayerDTO `json:"players"`
}

// --- voice payloads ---

type VoiceOfferPayload struct {
	SDP string `json:"sdp"`
}

type VoiceAnswerPayload struct {
	SDP string `json:"sdp"`
}

type VoiceCandidatePayload struct {
	Candidate        string `json:"candidate"`
	SDPMid           string `json:"sdp_mid"`
	SDPMLineIndex    uint16 `json:"sdp_mline_index"`
	UsernameFragment string `json:"username_fragment,omitempty"`
}

type SpeakingStatePayload struct {
	PlayerID string `json:"player_id"`
	Speaking bool   `json:"speaking"`
}

type VoiceJoinedPayload struct {
	PlayerID string `json:"player_id"`
}

type VoiceLeftPayload struct {
	PlayerID string `json:"player_id"`
}
