package tetris

import "encoding/json"

// Spawn pose shared by every kind: centered column, two rows above the visible board.
const (
	SpawnX = 3
	SpawnY = -2
)

// Piece is a tetrimino with its pose on the board.
type Piece struct {
	Kind     Kind `json:"type"`
	Rotation int  `json:"rotation"`
	X        int  `json:"x"`
	Y        int  `json:"y"`
}

// NewPiece - returns a piece of kind at its spawn pose.
func NewPiece(kind Kind) Piece {
	return Piece{
		Kind: kind,
		X:    SpawnX,
		Y:    SpawnY,
	}
}

func (that Piece) Shape() Shape {
	return ShapeOf(that.Kind, that.Rotation)
}

// Translated returns a copy moved by (dx, dy).
func (that Piece) Translated(dx, dy int) Piece {
	that.X += dx
	that.Y += dy
	return that
}

// Rotated returns a copy advanced to the next rotation state.
func (that Piece) Rotated() Piece {
	if count := RotationCount(that.Kind); count > 0 {
		that.Rotation = (that.Rotation + 1) % count
	}
	return that
}

// FitsOn reports whether the piece can occupy its pose on board.
func (that Piece) FitsOn(board Board) bool {
	return board.IsValidPosition(that.Shape(), that.X, that.Y)
}

// MarshalJSON adds the derived occupancy grid so clients can draw the piece without the table.
func (that Piece) MarshalJSON() ([]byte, error) {
	type plain Piece

	return json.Marshal(struct {
		plain
		Shape Shape `json:"shape"`
	}{
		plain: plain(that),
		Shape: that.Shape(),
	})
}
