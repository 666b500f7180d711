package apperror

import "errors"

var (
	ErrInvalidRoomID     = errors.New("invalid room id")
	ErrInvalidPlayerName = errors.New("invalid player name")
	ErrNameTaken         = errors.New("player name is already taken in this room")
	ErrRoomLocked        = errors.New("game is already in progress")
	ErrAlreadyInRoom     = errors.New("player is already in a room")
	ErrNotInRoom         = errors.New("player is not in a room")
	ErrPlayerExists      = errors.New("player already exists")
	ErrPlayerNotFound    = errors.New("player not found")

	ErrNotLeader        = errors.New("only the room leader can start the game")
	ErrPlayersNotReady  = errors.New("not all players are ready")
	ErrGameNotIdle      = errors.New("game is not idle")
	ErrGameNotPlaying   = errors.New("game is not in progress")
	ErrPlayerNotPlaying = errors.New("player is not playing")
	ErrInvalidAction    = errors.New("invalid move action")
)
