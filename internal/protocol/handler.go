package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tetris-backend/internal/apperror"
	"github.com/rocketscienceinc/tetris-backend/internal/entity"
)

const internalErrorMessage = "internal error"

// clientErrors are the failures whose text is safe to show to the sender.
var clientErrors = []error{
	ErrMalformedMessage,
	ErrUnknownAction,
	apperror.ErrInvalidRoomID,
	apperror.ErrInvalidPlayerName,
	apperror.ErrNameTaken,
	apperror.ErrRoomLocked,
	apperror.ErrAlreadyInRoom,
	apperror.ErrNotInRoom,
	apperror.ErrPlayerExists,
	apperror.ErrPlayerNotFound,
	apperror.ErrNotLeader,
	apperror.ErrPlayersNotReady,
	apperror.ErrGameNotIdle,
	apperror.ErrGameNotPlaying,
	apperror.ErrPlayerNotPlaying,
	apperror.ErrInvalidAction,
}

type roomManager interface {
	Join(ctx context.Context, playerID, roomID, name string) (entity.RoomSnapshot, error)
	Leave(ctx context.Context, playerID string, graceful bool) error
	SetReady(ctx context.Context, playerID string, ready bool) error
	Start(ctx context.Context, playerID string) error
	Move(ctx context.Context, playerID string, action entity.MoveAction) (entity.MoveResult, error)
	ListRooms() []entity.RoomSummary
}

// Handler dispatches decoded client events to the room manager.
type Handler struct {
	logger *slog.Logger
	rooms  roomManager
	hub    *Hub
}

func NewHandler(logger *slog.Logger, rooms roomManager, hub *Hub) *Handler {
	return &Handler{
		logger: logger.With("component", "handler"),
		rooms:  rooms,
		hub:    hub,
	}
}

// Connect - registers a new connection with the hub.
func (that *Handler) Connect(sink Sink) {
	that.hub.Register(sink)
	that.logger.Debug("connection registered", "playerID", sink.ID())
}

// Disconnect - performs the implicit leave of a dropped connection.
func (that *Handler) Disconnect(ctx context.Context, id string) {
	log := that.logger.With("method", "Disconnect", "playerID", id)

	if err := that.rooms.Leave(ctx, id, false); err != nil && !errors.Is(err, apperror.ErrNotInRoom) {
		log.Error("failed to leave room on disconnect", "error", err)
	}

	that.hub.Unregister(id)
	log.Debug("connection unregistered")
}

// HandleFrame - decodes and dispatches one client frame. A panic is reported to the sender
// as an internal error and never reaches the connection.
func (that *Handler) HandleFrame(ctx context.Context, id string, data []byte) {
	log := that.logger.With("method", "HandleFrame", "playerID", id)

	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error("panic while handling event", "panic", fmt.Sprint(recovered))
			that.hub.SendTo(id, Error{Message: internalErrorMessage})
		}
	}()

	event, err := Decode(data)
	if err != nil {
		log.Warn("failed to decode message", "error", err)
		that.reply(id, err)

		return
	}

	that.Handle(ctx, id, event)
}

// Handle - runs one inbound event on behalf of connection id.
func (that *Handler) Handle(ctx context.Context, id string, event Inbound) {
	log := that.logger.With("method", "Handle", "playerID", id)

	switch event := event.(type) {
	case JoinRoom:
		if _, err := that.rooms.Join(ctx, id, event.RoomID, event.PlayerName); err != nil {
			log.Info("join rejected", "roomID", event.RoomID, "error", err)
			that.reply(id, err)
		}

	case LeaveRoom:
		if err := that.rooms.Leave(ctx, id, true); err != nil {
			log.Info("leave rejected", "error", err)
			that.reply(id, err)
		}

	case SetReady:
		if err := that.rooms.SetReady(ctx, id, event.Ready); err != nil {
			log.Info("set ready rejected", "error", err)
			that.reply(id, err)
		}

	case StartGame:
		if err := that.rooms.Start(ctx, id); err != nil {
			log.Info("start rejected", "error", err)
			that.reply(id, err)
		}

	case PlayerMove:
		if _, err := that.rooms.Move(ctx, id, event.Action); err != nil {
			if errors.Is(err, apperror.ErrInvalidAction) {
				that.reply(id, err)
				return
			}

			log.Debug("move ignored", "action", event.Action, "error", err)
		}

	case ListRooms:
		that.hub.SendTo(id, RoomsList{Rooms: that.rooms.ListRooms()})

	default:
		log.Error("unhandled event", "event", fmt.Sprintf("%T", event))
		that.hub.SendTo(id, Error{Message: internalErrorMessage})
	}
}

func (that *Handler) reply(id string, err error) {
	that.hub.SendTo(id, Error{Message: clientMessage(err)})
}

func clientMessage(err error) string {
	for _, known := range clientErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return internalErrorMessage
}
