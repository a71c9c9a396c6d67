package game

import "errors"

// Error taxonomy. The Protocol Adapter maps each of these to a wire-level
// {code, message} pair; none of them tear down a room.
var (
	ErrNotAuthorized    = errors.New("NOT_AUTHORIZED")
	ErrInvalidPhase     = errors.New("INVALID_PHASE")
	ErrInvalidTarget    = errors.New("INVALID_TARGET")
	ErrRoomFull         = errors.New("ROOM_FULL")
	ErrRoomNotFound     = errors.New("ROOM_NOT_FOUND")
	ErrRoomInGame       = errors.New("ROOM_IN_GAME")
	ErrNotEnoughPlayers = errors.New("NOT_ENOUGH_PLAYERS")
	ErrTooManyPlayers   = errors.New("TOO_MANY_PLAYERS")
	ErrRateLimited      = errors.New("RATE_LIMITED")
	ErrInternal         = errors.New("INTERNAL")

	// Additional sentinels needed by operations outside the main error
	// taxonomy above.
	ErrInvalidName      = errors.New("INVALID_NAME")
	ErrPlayerNotFound   = errors.New("PLAYER_NOT_FOUND")
	ErrDuplicatePlayer  = errors.New("DUPLICATE_PLAYER")
	ErrGameNotActive    = errors.New("GAME_NOT_ACTIVE")
)
