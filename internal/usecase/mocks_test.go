package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tetris-backend/internal/entity"
)

type mockNotifier struct {
	mock.Mock
}

func (that *mockNotifier) PlayerJoined(room *entity.Room, player *entity.Player) {
	that.Called(room, player)
}

func (that *mockNotifier) PlayerLeft(room *entity.Room, player *entity.Player, graceful bool) {
	that.Called(room, player, graceful)
}

func (that *mockNotifier) ReadyChanged(room *entity.Room, player *entity.Player) {
	that.Called(room, player)
}

func (that *mockNotifier) GameStarted(room *entity.Room) {
	that.Called(room)
}

func (that *mockNotifier) PlayerMoved(room *entity.Room, player *entity.Player, result entity.MoveResult) {
	that.Called(room, player, result)
}

func (that *mockNotifier) GameEnded(room *entity.Room, winner *entity.Player) {
	that.Called(room, winner)
}

type mockMatchRepo struct {
	mock.Mock
}

func (that *mockMatchRepo) Save(ctx context.Context, result entity.MatchResult) error {
	args := that.Called(ctx, result)
	return args.Error(0)
}

func (that *mockMatchRepo) ListByRoom(ctx context.Context, roomID string) ([]entity.MatchResult, error) {
	args := that.Called(ctx, roomID)

	results, _ := args.Get(0).([]entity.MatchResult)
	return results, args.Error(1)
}
