package tetris

import (
	"math/rand/v2"
	"time"
)

const (
	BoardWidth  = 10
	BoardHeight = 20
)

// Cell is the content of one board square: empty, a tetrimino tag or the penalty tag.
type Cell string

const (
	EmptyCell   Cell = ""
	PenaltyCell Cell = "penalty"
)

// Board is the fixed-size playfield, indexed [row][col] with row 0 at the top.
// Being an array, a Board is copied on assignment and every operation returns a new value.
type Board [BoardHeight][BoardWidth]Cell

// Spectrum holds, per column, the row of the topmost occupied cell or BoardHeight for an empty column.
type Spectrum [BoardWidth]int

// Rand is the source of randomness for piece draws and penalty holes.
type Rand interface {
	IntN(n int) int
}

// NewRand - returns a time seeded source for production use.
func NewRand() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>1|1)) //nolint: gosec // gameplay randomness
}

// IsValidPosition - checks that every occupied cell of shape at (x, y) is inside the side
// walls, above the floor and not on an occupied cell. Rows above the board are always free.
func (that Board) IsValidPosition(shape Shape, x, y int) bool {
	if len(shape) == 0 {
		return false
	}

	valid := true
	shape.Cells(func(row, col int) {
		boardX, boardY := x+col, y+row

		switch {
		case boardX < 0 || boardX >= BoardWidth:
			valid = false
		case boardY >= BoardHeight:
			valid = false
		case boardY >= 0 && that[boardY][boardX] != EmptyCell:
			valid = false
		}
	})

	return valid
}

// Place - returns a board with shape stamped at (x, y) using cell. Cells above the board are dropped.
func (that Board) Place(shape Shape, x, y int, cell Cell) Board {
	shape.Cells(func(row, col int) {
		boardX, boardY := x+col, y+row
		if boardY < 0 || boardY >= BoardHeight || boardX < 0 || boardX >= BoardWidth {
			return
		}

		that[boardY][boardX] = cell
	})

	return that
}

// DropY - returns the lowest y reachable from (x, y) by moving straight down.
func (that Board) DropY(shape Shape, x, y int) int {
	for that.IsValidPosition(shape, x, y+1) {
		y++
	}

	return y
}

// ClearLines - removes every full row in one pass and prepends as many empty rows.
// When no row is full the receiver is returned unchanged with 0.
func (that Board) ClearLines() (Board, int) {
	var kept [BoardHeight]int
	keptCount := 0

	for row := range that {
		if !isFull(that[row]) {
			kept[keptCount] = row
			keptCount++
		}
	}

	cleared := BoardHeight - keptCount
	if cleared == 0 {
		return that, 0
	}

	var next Board
	for i := 0; i < keptCount; i++ {
		next[cleared+i] = that[kept[i]]
	}

	return next, cleared
}

func isFull(row [BoardWidth]Cell) bool {
	for _, cell := range row {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// AddPenalty - pushes n penalty rows in from the bottom. The top n rows are discarded and each
// new row is filled with PenaltyCell except one empty column chosen by rng.
func (that Board) AddPenalty(n int, rng Rand) Board {
	if n <= 0 {
		return that
	}

	if n > BoardHeight {
		n = BoardHeight
	}

	var next Board
	copy(next[:], that[n:])

	for row := BoardHeight - n; row < BoardHeight; row++ {
		hole := rng.IntN(BoardWidth)
		for col := range next[row] {
			if col == hole {
				next[row][col] = EmptyCell
				continue
			}

			next[row][col] = PenaltyCell
		}
	}

	return next
}

// Spectrum - computes the per-column silhouette shown to opponents.
func (that Board) Spectrum() Spectrum {
	var spectrum Spectrum

	for col := 0; col < BoardWidth; col++ {
		spectrum[col] = BoardHeight

		for row := 0; row < BoardHeight; row++ {
			if that[row][col] != EmptyCell {
				spectrum[col] = row
				break
			}
		}
	}

	return spectrum
}

// IsTopRowOccupied - reports whether anything reached the first visible row.
func (that Board) IsTopRowOccupied() bool {
	for _, cell := range that[0] {
		if cell != EmptyCell {
			return true
		}
	}

	return false
}
