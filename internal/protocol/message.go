package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tetris-backend/internal/entity"
	"github.com/rocketscienceinc/tetris-backend/internal/tetris"
)

// Inbound actions.
const (
	ActionJoinRoom   = "join-room"
	ActionLeaveRoom  = "leave-room"
	ActionSetReady   = "set-ready"
	ActionStartGame  = "start-game"
	ActionPlayerMove = "player-move"
	ActionListRooms  = "list-rooms"
)

// Outbound actions.
const (
	ActionRoomJoined     = "room-joined"
	ActionRoomLeft       = "room-left"
	ActionError          = "error"
	ActionPlayersList    = "players-list"
	ActionRoomsList      = "rooms-list"
	ActionGameStarted    = "game-started"
	ActionNewPiece       = "new-piece"
	ActionBoardUpdate    = "board-update"
	ActionLinesCleared   = "lines-cleared"
	ActionSpectrumUpdate = "spectrum-update"
	ActionReceivePenalty = "receive-penalty"
	ActionPlayerUpdate   = "player-update"
	ActionGameOver       = "game-over"
	ActionGameWon        = "game-won"
)

var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownAction    = errors.New("unknown action")
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound is one of the events a client can send.
type Inbound interface {
	inbound()
}

type JoinRoom struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type LeaveRoom struct{}

type SetReady struct {
	Ready bool `json:"ready"`
}

type StartGame struct{}

type PlayerMove struct {
	Action entity.MoveAction `json:"action"`
}

type ListRooms struct{}

func (JoinRoom) inbound()   {}
func (LeaveRoom) inbound()  {}
func (SetReady) inbound()   {}
func (StartGame) inbound()  {}
func (PlayerMove) inbound() {}
func (ListRooms) inbound()  {}

// Decode - parses a client frame into its inbound event.
func Decode(data []byte) (Inbound, error) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	switch message.Action {
	case ActionJoinRoom:
		return decodePayload[JoinRoom](message.Payload)
	case ActionLeaveRoom:
		return decodePayload[LeaveRoom](message.Payload)
	case ActionSetReady:
		return decodePayload[SetReady](message.Payload)
	case ActionStartGame:
		return decodePayload[StartGame](message.Payload)
	case ActionPlayerMove:
		return decodePayload[PlayerMove](message.Payload)
	case ActionListRooms:
		return decodePayload[ListRooms](message.Payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, message.Action)
	}
}

func decodePayload[T Inbound](payload json.RawMessage) (Inbound, error) {
	var event T

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
		}
	}

	return event, nil
}

// Outbound is one of the events the server sends.
type Outbound interface {
	Action() string
	outbound()
}

type RoomJoined struct {
	Room     entity.RoomSnapshot `json:"room"`
	PlayerID string              `json:"playerId"`
}

type RoomLeft struct{}

type Error struct {
	Message string `json:"message"`
}

type PlayersList struct {
	Players []entity.PlayerSnapshot `json:"players"`
}

type RoomsList struct {
	Rooms []entity.RoomSummary `json:"rooms"`
}

type GameStarted struct {
	Room entity.RoomSnapshot `json:"room"`
}

type NewPiece struct {
	Current *tetris.Piece `json:"current"`
	Next    *tetris.Piece `json:"next"`
}

type BoardUpdate struct {
	Board   tetris.Board  `json:"board"`
	Current *tetris.Piece `json:"current"`
	Next    *tetris.Piece `json:"next"`
}

type LinesCleared struct {
	Count int `json:"count"`
	Score int `json:"score"`
}

type SpectrumUpdate struct {
	PlayerID string          `json:"playerId"`
	Spectrum tetris.Spectrum `json:"spectrum"`
}

type ReceivePenalty struct {
	Lines    int    `json:"lines"`
	FromName string `json:"fromName"`
}

type PlayerUpdate struct {
	Player entity.PlayerSnapshot `json:"player"`
}

// PlayerGameOver tells one player that its own round ended.
type PlayerGameOver struct{}

// GameOver is broadcast to the room when the match ends. Winner is null without a survivor.
type GameOver struct {
	Winner *entity.PlayerSnapshot `json:"winner"`
}

type GameWon struct{}

func (RoomJoined) Action() string     { return ActionRoomJoined }
func (RoomLeft) Action() string       { return ActionRoomLeft }
func (Error) Action() string          { return ActionError }
func (PlayersList) Action() string    { return ActionPlayersList }
func (RoomsList) Action() string      { return ActionRoomsList }
func (GameStarted) Action() string    { return ActionGameStarted }
func (NewPiece) Action() string       { return ActionNewPiece }
func (BoardUpdate) Action() string    { return ActionBoardUpdate }
func (LinesCleared) Action() string   { return ActionLinesCleared }
func (SpectrumUpdate) Action() string { return ActionSpectrumUpdate }
func (ReceivePenalty) Action() string { return ActionReceivePenalty }
func (PlayerUpdate) Action() string   { return ActionPlayerUpdate }
func (PlayerGameOver) Action() string { return ActionGameOver }
func (GameOver) Action() string       { return ActionGameOver }
func (GameWon) Action() string        { return ActionGameWon }

func (RoomJoined) outbound()     {}
func (RoomLeft) outbound()       {}
func (Error) outbound()          {}
func (PlayersList) outbound()    {}
func (RoomsList) outbound()      {}
func (GameStarted) outbound()    {}
func (NewPiece) outbound()       {}
func (BoardUpdate) outbound()    {}
func (LinesCleared) outbound()   {}
func (SpectrumUpdate) outbound() {}
func (ReceivePenalty) outbound() {}
func (PlayerUpdate) outbound()   {}
func (PlayerGameOver) outbound() {}
func (GameOver) outbound()       {}
func (GameWon) outbound()        {}

// Encode - wraps an outbound event into the envelope.
func Encode(event Outbound) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event.Action(), err)
	}

	data, err := json.Marshal(Message{
		Action:  event.Action(),
		Payload: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}
