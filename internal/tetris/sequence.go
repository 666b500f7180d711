package tetris

// DefaultBatchSize is how many kinds are drawn each time the sequence runs dry.
const DefaultBatchSize = 100

// Sequence is the room-wide, append-only list of piece kinds. Every reader of index i sees
// the same kind; the read cursor only moves forward. A Sequence is not safe for concurrent
// use, its owner serializes access.
type Sequence struct {
	rng       Rand
	batchSize int
	kinds     []Kind
	cursor    int
}

// NewSequence - draws the first batch from rng.
func NewSequence(rng Rand, batchSize int) *Sequence {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	sequence := &Sequence{
		rng:       rng,
		batchSize: batchSize,
		kinds:     make([]Kind, 0, batchSize),
	}
	sequence.extend()

	return sequence
}

func (that *Sequence) extend() {
	for range that.batchSize {
		that.kinds = append(that.kinds, Kinds[that.rng.IntN(len(Kinds))])
	}
}

// KindAt returns the kind at index i, drawing more batches when i is past the end.
func (that *Sequence) KindAt(i int) Kind {
	for i >= len(that.kinds) {
		that.extend()
	}

	return that.kinds[i]
}

// Next consumes one slot and returns a freshly spawned piece of that kind.
func (that *Sequence) Next() Piece {
	kind := that.KindAt(that.cursor)
	that.cursor++

	return NewPiece(kind)
}

// Cursor is the number of pieces consumed so far.
func (that *Sequence) Cursor() int {
	return that.cursor
}

// Len is the number of kinds generated so far.
func (that *Sequence) Len() int {
	return len(that.kinds)
}
