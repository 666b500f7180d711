package entity

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tetris-backend/internal/apperror"
	"github.com/rocketscienceinc/tetris-backend/internal/tetris"
)

type RoomState string

const (
	RoomIdle    RoomState = "idle"
	RoomPlaying RoomState = "playing"
	RoomEnded   RoomState = "ended"
)

const (
	DefaultMaxPenaltyLines = 4
	PointsPerLine          = 100
)

type MoveAction string

const (
	MoveLeft   MoveAction = "left"
	MoveRight  MoveAction = "right"
	MoveDown   MoveAction = "down"
	MoveRotate MoveAction = "rotate"
	MoveDrop   MoveAction = "drop"
)

func (that MoveAction) IsValid() bool {
	switch that {
	case MoveLeft, MoveRight, MoveDown, MoveRotate, MoveDrop:
		return true
	default:
		return false
	}
}

// RoomOptions - pieces and penalty holes draw from separate sources, so the piece sequence
// does not depend on how many penalty rows were dealt.
type RoomOptions struct {
	MaxPenaltyLines int
	SequenceBatch   int
	PieceRand       tetris.Rand
	PenaltyRand     tetris.Rand
}

// Room is one match: its roster, the shared piece sequence and the idle/playing/ended state.
// A Room is not safe for concurrent use, the registry serializes every call.
type Room struct {
	ID       string
	State    RoomState
	LeaderID string

	players  map[string]*Player
	order    []string
	sequence *tetris.Sequence
	winnerID string
	options  RoomOptions
}

type RoomSnapshot struct {
	ID      string           `json:"id"`
	State   RoomState        `json:"state"`
	Leader  string           `json:"leader"`
	Players []PlayerSnapshot `json:"players"`
}

type RoomSummary struct {
	ID          string    `json:"id"`
	PlayerCount int       `json:"playerCount"`
	State       RoomState `json:"state"`
}

// MoveResult describes what a single move did to the room.
type MoveResult struct {
	Accepted     bool
	Locked       bool
	ClearedLines int
	PenaltyLines int
	// Penalized are the opponents that received penalty rows, in join order.
	Penalized []*Player
	// Eliminated are the players whose round ended during this move, the mover last.
	Eliminated []*Player
	RoomEnded  bool
	Winner     *Player
}

type RemoveResult struct {
	Player    *Player
	NewLeader *Player
	RoomEnded bool
	Winner    *Player
}

func NewRoom(id string, options RoomOptions) *Room {
	if options.MaxPenaltyLines <= 0 {
		options.MaxPenaltyLines = DefaultMaxPenaltyLines
	}

	if options.SequenceBatch <= 0 {
		options.SequenceBatch = tetris.DefaultBatchSize
	}

	if options.PieceRand == nil {
		options.PieceRand = tetris.NewRand()
	}

	if options.PenaltyRand == nil {
		options.PenaltyRand = tetris.NewRand()
	}

	return &Room{
		ID:      id,
		State:   RoomIdle,
		players: make(map[string]*Player),
		options: options,
	}
}

// AddPlayer - admits a new player. The first player becomes the leader.
func (that *Room) AddPlayer(id, name string) (*Player, error) {
	if that.State == RoomPlaying {
		return nil, apperror.ErrRoomLocked
	}

	if _, ok := that.players[id]; ok {
		return nil, apperror.ErrPlayerExists
	}

	for _, player := range that.players {
		if player.Name == name {
			return nil, fmt.Errorf("%w: %s", apperror.ErrNameTaken, name)
		}
	}

	player := NewPlayer(id, name, that.ID)
	that.players[id] = player
	that.order = append(that.order, id)

	if len(that.order) == 1 {
		that.setLeader(player)
	}

	return player, nil
}

// RemovePlayer - drops a player in any state. Leadership passes to the earliest remaining
// joiner and a running match is checked for its end.
func (that *Room) RemovePlayer(id string) (RemoveResult, error) {
	player, ok := that.players[id]
	if !ok {
		return RemoveResult{}, apperror.ErrPlayerNotFound
	}

	delete(that.players, id)
	that.order = slices.DeleteFunc(that.order, func(playerID string) bool { return playerID == id })

	result := RemoveResult{Player: player}

	if player.IsLeader {
		player.IsLeader = false
		that.LeaderID = ""

		if len(that.order) > 0 {
			result.NewLeader = that.players[that.order[0]]
			that.setLeader(result.NewLeader)
		}
	}

	result.RoomEnded, result.Winner = that.checkEnd()

	return result, nil
}

func (that *Room) setLeader(player *Player) {
	player.IsLeader = true
	that.LeaderID = player.ID
}

func (that *Room) SetReady(id string, ready bool) error {
	player, ok := that.players[id]
	if !ok {
		return apperror.ErrPlayerNotFound
	}

	if that.State != RoomIdle {
		return apperror.ErrGameNotIdle
	}

	player.IsReady = ready

	return nil
}

// Start - begins the match on behalf of callerID. Every player gets a fresh round and is
// dealt its current then next piece from the new shared sequence, in join order.
func (that *Room) Start(callerID string) error {
	caller, ok := that.players[callerID]
	if !ok {
		return apperror.ErrPlayerNotFound
	}

	if !caller.IsLeader {
		return apperror.ErrNotLeader
	}

	if that.State != RoomIdle {
		return apperror.ErrGameNotIdle
	}

	for _, player := range that.players {
		if !player.IsReady {
			return fmt.Errorf("%w: %s", apperror.ErrPlayersNotReady, player.Name)
		}
	}

	that.sequence = tetris.NewSequence(that.options.PieceRand, that.options.SequenceBatch)
	that.winnerID = ""

	for _, player := range that.Players() {
		player.StartRound()

		current := that.sequence.Next()
		next := that.sequence.Next()
		player.Current = &current
		player.Next = &next
	}

	that.State = RoomPlaying

	return nil
}

// Move - applies one action to the player's current piece. A candidate pose that does not fit
// is rejected without error and leaves everything unchanged.
func (that *Room) Move(id string, action MoveAction) (MoveResult, error) {
	if !action.IsValid() {
		return MoveResult{}, fmt.Errorf("%w: %q", apperror.ErrInvalidAction, action)
	}

	player, ok := that.players[id]
	if !ok {
		return MoveResult{}, apperror.ErrPlayerNotFound
	}

	if that.State != RoomPlaying {
		return MoveResult{}, apperror.ErrGameNotPlaying
	}

	if !player.IsActive() || player.Current == nil {
		return MoveResult{}, apperror.ErrPlayerNotPlaying
	}

	board := player.Board()
	current := *player.Current
	candidate := current
	lock := false

	switch action {
	case MoveLeft:
		candidate = current.Translated(-1, 0)
	case MoveRight:
		candidate = current.Translated(1, 0)
	case MoveDown:
		candidate = current.Translated(0, 1)
	case MoveRotate:
		candidate = current.Rotated()
	case MoveDrop:
		candidate.Y = board.DropY(current.Shape(), current.X, current.Y)
		lock = true
	}

	if !candidate.FitsOn(board) {
		return MoveResult{}, nil
	}

	player.Current = &candidate
	result := MoveResult{Accepted: true}

	if lock || !candidate.Translated(0, 1).FitsOn(board) {
		that.lock(player, &result)
	}

	result.RoomEnded, result.Winner = that.checkEnd()

	return result, nil
}

func (that *Room) lock(player *Player, result *MoveResult) {
	piece := *player.Current
	placed := player.Board().Place(piece.Shape(), piece.X, piece.Y, tetris.Cell(piece.Kind))
	cleared, lines := placed.ClearLines()
	player.ApplyBoard(cleared)
	result.Locked = true

	if lines > 0 {
		player.Score += PointsPerLine * lines
		player.LinesCleared += lines
		result.ClearedLines = lines
	}

	if penalty := min(lines-1, that.options.MaxPenaltyLines); penalty > 0 {
		result.PenaltyLines = penalty

		for _, other := range that.Players() {
			if other.ID == player.ID || !other.IsActive() {
				continue
			}

			other.ApplyBoard(other.Board().AddPenalty(penalty, that.options.PenaltyRand))
			result.Penalized = append(result.Penalized, other)

			if other.Current != nil && !other.Current.FitsOn(other.Board()) {
				other.EndRound()
				result.Eliminated = append(result.Eliminated, other)
			}
		}
	}

	next := that.sequence.Next()
	player.Current = player.Next
	player.Next = &next

	if !player.Current.FitsOn(player.Board()) {
		player.EndRound()
		result.Eliminated = append(result.Eliminated, player)
	}
}

// checkEnd moves a running room to ended once at most one player is still active.
func (that *Room) checkEnd() (bool, *Player) {
	if that.State != RoomPlaying {
		return false, nil
	}

	var last *Player
	active := 0

	for _, player := range that.players {
		if player.IsActive() {
			active++
			last = player
		}
	}

	if active > 1 {
		return false, nil
	}

	that.State = RoomEnded
	if last != nil {
		that.winnerID = last.ID
	}

	return true, last
}

// Players returns the roster in join order.
func (that *Room) Players() []*Player {
	players := make([]*Player, 0, len(that.order))
	for _, id := range that.order {
		players = append(players, that.players[id])
	}

	return players
}

func (that *Room) Player(id string) (*Player, bool) {
	player, ok := that.players[id]
	return player, ok
}

func (that *Room) Len() int {
	return len(that.order)
}

func (that *Room) IsEmpty() bool {
	return len(that.order) == 0
}

// Winner returns the winner of an ended match while that player is still in the room.
func (that *Room) Winner() *Player {
	if that.winnerID == "" {
		return nil
	}

	return that.players[that.winnerID]
}

// Sequence is nil until the first start.
func (that *Room) Sequence() *tetris.Sequence {
	return that.sequence
}

func (that *Room) Snapshot() RoomSnapshot {
	players := make([]PlayerSnapshot, 0, len(that.order))
	for _, player := range that.Players() {
		players = append(players, player.Snapshot())
	}

	return RoomSnapshot{
		ID:      that.ID,
		State:   that.State,
		Leader:  that.LeaderID,
		Players: players,
	}
}

func (that *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:          that.ID,
		PlayerCount: len(that.order),
		State:       that.State,
	}
}
