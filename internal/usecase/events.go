package usecase

import "github.com/rocketscienceinc/tetris-backend/internal/entity"

// Notifier receives room events while the room is still locked, so calls for one room arrive
// in the order they happened. Implementations must not block and must not call back into the
// RoomManager.
type Notifier interface {
	PlayerJoined(room *entity.Room, player *entity.Player)
	PlayerLeft(room *entity.Room, player *entity.Player, graceful bool)
	ReadyChanged(room *entity.Room, player *entity.Player)
	GameStarted(room *entity.Room)
	PlayerMoved(room *entity.Room, player *entity.Player, result entity.MoveResult)
	GameEnded(room *entity.Room, winner *entity.Player)
}
