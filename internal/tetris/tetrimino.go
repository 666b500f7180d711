package tetris

// Kind is one of the seven tetrimino shapes. The kind is also the tag stamped on the board
// when a piece of that kind locks.
type Kind string

const (
	KindI Kind = "I"
	KindJ Kind = "J"
	KindL Kind = "L"
	KindO Kind = "O"
	KindS Kind = "S"
	KindT Kind = "T"
	KindZ Kind = "Z"
)

// Kinds lists every tetrimino in draw order.
var Kinds = []Kind{KindI, KindJ, KindL, KindO, KindS, KindT, KindZ}

// Shape is a small occupancy grid, indexed [row][col].
type Shape [][]bool

// Cells calls fn for every occupied cell of the shape.
func (that Shape) Cells(fn func(row, col int)) {
	for row := range that {
		for col, filled := range that[row] {
			if filled {
				fn(row, col)
			}
		}
	}
}

var shapes = map[Kind][]Shape{
	KindI: {
		grid("....", "####", "....", "...."),
		grid("..#.", "..#.", "..#.", "..#."),
		grid("....", "....", "####", "...."),
		grid(".#..", ".#..", ".#..", ".#.."),
	},
	KindJ: {
		grid("#..", "###", "..."),
		grid(".##", ".#.", ".#."),
		grid("...", "###", "..#"),
		grid(".#.", ".#.", "##."),
	},
	KindL: {
		grid("..#", "###", "..."),
		grid(".#.", ".#.", ".##"),
		grid("...", "###", "#.."),
		grid("##.", ".#.", ".#."),
	},
	KindO: {
		grid("....", ".##.", ".##.", "...."),
	},
	KindS: {
		grid(".##", "##.", "..."),
		grid(".#.", ".##", "..#"),
		grid("...", ".##", "##."),
		grid("#..", "##.", ".#."),
	},
	KindT: {
		grid(".#.", "###", "..."),
		grid(".#.", ".##", ".#."),
		grid("...", "###", ".#."),
		grid(".#.", "##.", ".#."),
	},
	KindZ: {
		grid("##.", ".##", "..."),
		grid("..#", ".##", ".#."),
		grid("...", "##.", ".##"),
		grid(".#.", "##.", "#.."),
	},
}

func grid(rows ...string) Shape {
	shape := make(Shape, len(rows))
	for i, row := range rows {
		shape[i] = make([]bool, len(row))
		for j := range row {
			shape[i][j] = row[j] == '#'
		}
	}

	return shape
}

// RotationCount returns how many distinct rotation states the kind has, 0 for an unknown kind.
func RotationCount(kind Kind) int {
	return len(shapes[kind])
}

// ShapeOf returns the shape of kind at the given rotation index, nil when out of range.
func ShapeOf(kind Kind, rotation int) Shape {
	rotations := shapes[kind]
	if rotation < 0 || rotation >= len(rotations) {
		return nil
	}

	return rotations[rotation]
}

// IsKind reports whether kind names a tetrimino.
func IsKind(kind Kind) bool {
	_, ok := shapes[kind]
	return ok
}
