package protocol

import (
	"github.com/rocketscienceinc/tetris-backend/internal/entity"
)

// Notifier turns room events into outbound messages on the hub.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (that *Notifier) PlayerJoined(room *entity.Room, player *entity.Player) {
	that.hub.Subscribe(room.ID, player.ID)

	that.hub.SendTo(player.ID, RoomJoined{Room: room.Snapshot(), PlayerID: player.ID})
	that.broadcastPlayers(room)
}

func (that *Notifier) PlayerLeft(room *entity.Room, player *entity.Player, graceful bool) {
	that.hub.Unsubscribe(room.ID, player.ID)

	if graceful {
		that.hub.SendTo(player.ID, RoomLeft{})
	}

	if !room.IsEmpty() {
		that.broadcastPlayers(room)
	}
}

func (that *Notifier) ReadyChanged(room *entity.Room, _ *entity.Player) {
	that.broadcastPlayers(room)
}

func (that *Notifier) GameStarted(room *entity.Room) {
	that.hub.Broadcast(room.ID, GameStarted{Room: room.Snapshot()})

	for _, player := range room.Players() {
		that.hub.SendTo(player.ID, NewPiece{Current: player.Current, Next: player.Next})
	}
}

func (that *Notifier) PlayerMoved(room *entity.Room, player *entity.Player, result entity.MoveResult) {
	that.hub.SendTo(player.ID, boardUpdate(player))

	if !result.Locked {
		return
	}

	if result.ClearedLines > 0 {
		that.hub.SendTo(player.ID, LinesCleared{Count: result.ClearedLines, Score: player.Score})
	}

	that.hub.Broadcast(room.ID, SpectrumUpdate{PlayerID: player.ID, Spectrum: player.Spectrum()}, player.ID)

	for _, penalized := range result.Penalized {
		that.hub.SendTo(penalized.ID, ReceivePenalty{Lines: result.PenaltyLines, FromName: player.Name})
		that.hub.SendTo(penalized.ID, boardUpdate(penalized))
		that.hub.SendTo(penalized.ID, PlayerUpdate{Player: penalized.Snapshot()})
		that.hub.Broadcast(room.ID, SpectrumUpdate{PlayerID: penalized.ID, Spectrum: penalized.Spectrum()}, penalized.ID)
	}

	for _, eliminated := range result.Eliminated {
		that.hub.SendTo(eliminated.ID, PlayerGameOver{})
	}
}

func (that *Notifier) GameEnded(room *entity.Room, winner *entity.Player) {
	event := GameOver{}

	if winner != nil {
		snapshot := winner.Snapshot()
		event.Winner = &snapshot

		that.hub.SendTo(winner.ID, GameWon{})
	}

	that.hub.Broadcast(room.ID, event)
}

func (that *Notifier) broadcastPlayers(room *entity.Room) {
	players := make([]entity.PlayerSnapshot, 0, room.Len())
	for _, player := range room.Players() {
		players = append(players, player.Snapshot())
	}

	that.hub.Broadcast(room.ID, PlayersList{Players: players})
}

func boardUpdate(player *entity.Player) BoardUpdate {
	return BoardUpdate{
		Board:   player.Board(),
		Current: player.Current,
		Next:    player.Next,
	}
}
