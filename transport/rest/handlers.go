package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tetris-backend/internal/apperror"
	"github.com/rocketscienceinc/tetris-backend/internal/entity"
	"github.com/rocketscienceinc/tetris-backend/internal/usecase"
	"github.com/rocketscienceinc/tetris-backend/pkg/handlers"
)

type roomLister interface {
	ListRooms() []entity.RoomSummary
	History(ctx context.Context, roomID string) ([]entity.MatchResult, error)
}

type healthResponse struct {
	Status string `json:"status"`
}

type roomsResponse struct {
	Rooms []entity.RoomSummary `json:"rooms"`
}

type historyResponse struct {
	RoomID  string               `json:"roomId"`
	Matches []entity.MatchResult `json:"matches"`
}

func (that *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (that *Server) roomsHandler(w http.ResponseWriter, _ *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, roomsResponse{Rooms: that.rooms.ListRooms()})
}

func (that *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "historyHandler")

	roomID := r.PathValue("id")

	matches, err := that.rooms.History(r.Context(), roomID)
	switch {
	case errors.Is(err, usecase.ErrArchiveDisabled):
		handlers.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperror.ErrInvalidRoomID):
		handlers.WriteError(w, http.StatusBadRequest, apperror.ErrInvalidRoomID.Error())
	case err != nil:
		log.Error("failed to get match history", "roomID", roomID, "error", err)
		handlers.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
	default:
		handlers.WriteJSON(w, http.StatusOK, historyResponse{RoomID: roomID, Matches: matches})
	}
}
