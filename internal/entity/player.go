package entity

import "github.com/rocketscienceinc/tetris-backend/internal/tetris"

type Player struct {
	ID     string
	Name   string
	RoomID string

	Current *tetris.Piece
	Next    *tetris.Piece

	Score        int
	LinesCleared int

	IsReady    bool
	IsPlaying  bool
	IsGameOver bool
	IsLeader   bool

	board    tetris.Board
	spectrum tetris.Spectrum
}

// PlayerSnapshot is the public view of a player sent to clients.
type PlayerSnapshot struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	RoomID       string          `json:"roomId"`
	IsReady      bool            `json:"isReady"`
	IsPlaying    bool            `json:"isPlaying"`
	IsGameOver   bool            `json:"isGameOver"`
	IsLeader     bool            `json:"isLeader"`
	Score        int             `json:"score"`
	LinesCleared int             `json:"linesCleared"`
	Spectrum     tetris.Spectrum `json:"spectrum"`
}

func NewPlayer(id, name, roomID string) *Player {
	player := &Player{
		ID:     id,
		Name:   name,
		RoomID: roomID,
	}
	player.ApplyBoard(tetris.Board{})

	return player
}

// StartRound - resets the board and counters and marks the player as playing.
func (that *Player) StartRound() {
	that.ApplyBoard(tetris.Board{})
	that.Score = 0
	that.LinesCleared = 0
	that.IsPlaying = true
	that.IsGameOver = false
	that.Current = nil
	that.Next = nil
}

// EndRound - takes the player out of play, board and score stay for display.
func (that *Player) EndRound() {
	that.IsPlaying = false
	that.IsGameOver = true
}

// ApplyBoard - installs board and recomputes the spectrum from it.
func (that *Player) ApplyBoard(board tetris.Board) {
	that.board = board
	that.spectrum = board.Spectrum()
}

func (that *Player) Board() tetris.Board {
	return that.board
}

func (that *Player) Spectrum() tetris.Spectrum {
	return that.spectrum
}

// IsActive reports whether the player still takes part in the running round.
func (that *Player) IsActive() bool {
	return that.IsPlaying && !that.IsGameOver
}

func (that *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:           that.ID,
		Name:         that.Name,
		RoomID:       that.RoomID,
		IsReady:      that.IsReady,
		IsPlaying:    that.IsPlaying,
		IsGameOver:   that.IsGameOver,
		IsLeader:     that.IsLeader,
		Score:        that.Score,
		LinesCleared: that.LinesCleared,
		Spectrum:     that.spectrum,
	}
}
