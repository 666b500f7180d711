package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/rocketscienceinc/tetris-backend/internal/apperror"
	"github.com/rocketscienceinc/tetris-backend/internal/entity"
	"github.com/rocketscienceinc/tetris-backend/internal/tetris"
)

const (
	DefaultMaxNameLength = 32

	archiveTimeout = 3 * time.Second
)

var (
	ErrArchiveDisabled = errors.New("match archive is disabled")

	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

type matchRepo interface {
	Save(ctx context.Context, result entity.MatchResult) error
	ListByRoom(ctx context.Context, roomID string) ([]entity.MatchResult, error)
}

type RoomManagerOptions struct {
	MaxPenaltyLines int
	SequenceBatch   int
	MaxNameLength   int
	// NewRand builds the random sources of each new room, tetris.NewRand when nil.
	NewRand func() tetris.Rand
}

type session struct {
	mu     sync.Mutex
	room   *entity.Room
	closed bool
}

// RoomManager is the registry of live rooms. The registry lock only guards the maps; every
// room operation runs under that room's own lock.
type RoomManager struct {
	logger    *slog.Logger
	notifier  Notifier
	matchRepo matchRepo
	options   RoomManagerOptions

	mu          sync.Mutex
	rooms       map[string]*session
	playerRooms map[string]string
}

// NewRoomManager - matchRepo may be nil, then ended matches are not archived.
func NewRoomManager(logger *slog.Logger, notifier Notifier, matchRepo matchRepo, options RoomManagerOptions) *RoomManager {
	if options.MaxNameLength <= 0 {
		options.MaxNameLength = DefaultMaxNameLength
	}

	if options.NewRand == nil {
		options.NewRand = func() tetris.Rand { return tetris.NewRand() }
	}

	return &RoomManager{
		logger: logger.With("component", "room_manager"),

		notifier:  notifier,
		matchRepo: matchRepo,
		options:   options,

		rooms:       make(map[string]*session),
		playerRooms: make(map[string]string),
	}
}

// Join - puts the player into roomID, creating the room on first use.
func (that *RoomManager) Join(ctx context.Context, playerID, roomID, name string) (entity.RoomSnapshot, error) {
	log := that.logger.With("method", "Join", "roomID", roomID, "playerID", playerID)

	if err := that.validate(roomID, apperror.ErrInvalidRoomID); err != nil {
		return entity.RoomSnapshot{}, err
	}

	if err := that.validate(name, apperror.ErrInvalidPlayerName); err != nil {
		return entity.RoomSnapshot{}, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return entity.RoomSnapshot{}, fmt.Errorf("failed to join room: %w", err)
		}

		current, err := that.reserve(playerID, roomID)
		if err != nil {
			return entity.RoomSnapshot{}, err
		}

		current.mu.Lock()
		if current.closed {
			current.mu.Unlock()
			that.release(playerID, roomID)

			continue
		}

		player, err := current.room.AddPlayer(playerID, name)
		if err != nil {
			that.release(playerID, roomID)
			if current.room.IsEmpty() {
				that.close(current)
			}
			current.mu.Unlock()

			return entity.RoomSnapshot{}, fmt.Errorf("failed to join room %s: %w", roomID, err)
		}

		that.notifier.PlayerJoined(current.room, player)
		snapshot := current.room.Snapshot()
		current.mu.Unlock()

		log.Info("player joined", "name", name)

		return snapshot, nil
	}
}

// Leave - removes the player from its room. graceful is false when the connection dropped.
func (that *RoomManager) Leave(ctx context.Context, playerID string, graceful bool) error {
	current, err := that.sessionOf(playerID)
	if err != nil {
		return err
	}

	result, err := that.leave(current, playerID, graceful)
	if err != nil {
		return err
	}

	that.archive(ctx, result)

	return nil
}

// leave runs the removal under the room lock and returns the match to archive, if any.
func (that *RoomManager) leave(current *session, playerID string, graceful bool) (*entity.MatchResult, error) {
	log := that.logger.With("method", "Leave", "playerID", playerID)

	current.mu.Lock()
	defer current.mu.Unlock()

	room := current.room

	result, err := room.RemovePlayer(playerID)
	that.release(playerID, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to leave room %s: %w", room.ID, err)
	}

	that.notifier.PlayerLeft(room, result.Player, graceful)

	var ended *entity.MatchResult
	if result.RoomEnded {
		ended = that.finish(room, result.Winner)
	}

	if room.IsEmpty() {
		that.close(current)
		log.Info("room closed", "roomID", room.ID)
	}

	log.Info("player left", "roomID", room.ID, "graceful", graceful)

	return ended, nil
}

func (that *RoomManager) SetReady(_ context.Context, playerID string, ready bool) error {
	return that.withRoom(playerID, func(room *entity.Room) error {
		if err := room.SetReady(playerID, ready); err != nil {
			return fmt.Errorf("failed to set ready: %w", err)
		}

		player, _ := room.Player(playerID)
		that.notifier.ReadyChanged(room, player)

		return nil
	})
}

func (that *RoomManager) Start(_ context.Context, playerID string) error {
	log := that.logger.With("method", "Start", "playerID", playerID)

	return that.withRoom(playerID, func(room *entity.Room) error {
		if err := room.Start(playerID); err != nil {
			return fmt.Errorf("failed to start game: %w", err)
		}

		that.notifier.GameStarted(room)
		log.Info("game started", "roomID", room.ID, "players", room.Len())

		return nil
	})
}

// Move - applies a player's move. Rejected moves return a result with Accepted false and no
// notification.
func (that *RoomManager) Move(ctx context.Context, playerID string, action entity.MoveAction) (entity.MoveResult, error) {
	var (
		result entity.MoveResult
		ended  *entity.MatchResult
	)

	err := that.withRoom(playerID, func(room *entity.Room) error {
		var err error

		result, err = room.Move(playerID, action)
		if err != nil {
			return fmt.Errorf("failed to move: %w", err)
		}

		if !result.Accepted {
			return nil
		}

		player, _ := room.Player(playerID)
		that.notifier.PlayerMoved(room, player, result)

		if result.RoomEnded {
			ended = that.finish(room, result.Winner)
		}

		return nil
	})

	that.archive(ctx, ended)

	return result, err
}

// ListRooms returns a summary of every live room ordered by id.
func (that *RoomManager) ListRooms() []entity.RoomSummary {
	that.mu.Lock()
	sessions := make([]*session, 0, len(that.rooms))
	for _, current := range that.rooms {
		sessions = append(sessions, current)
	}
	that.mu.Unlock()

	summaries := make([]entity.RoomSummary, 0, len(sessions))
	for _, current := range sessions {
		current.mu.Lock()
		if !current.closed {
			summaries = append(summaries, current.room.Summary())
		}
		current.mu.Unlock()
	}

	slices.SortFunc(summaries, func(a, b entity.RoomSummary) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return summaries
}

// History returns the archived matches of roomID, newest first.
func (that *RoomManager) History(ctx context.Context, roomID string) ([]entity.MatchResult, error) {
	if that.matchRepo == nil {
		return nil, ErrArchiveDisabled
	}

	if err := that.validate(roomID, apperror.ErrInvalidRoomID); err != nil {
		return nil, err
	}

	results, err := that.matchRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match history: %w", err)
	}

	return results, nil
}

func (that *RoomManager) validate(value string, sentinel error) error {
	if value == "" || len(value) > that.options.MaxNameLength || !identifierPattern.MatchString(value) {
		return fmt.Errorf("%w: %q", sentinel, value)
	}

	return nil
}

// reserve indexes the player under roomID and returns the session, creating it if needed.
func (that *RoomManager) reserve(playerID, roomID string) (*session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.playerRooms[playerID]; ok {
		return nil, apperror.ErrAlreadyInRoom
	}

	current, ok := that.rooms[roomID]
	if !ok {
		current = &session{
			room: entity.NewRoom(roomID, entity.RoomOptions{
				MaxPenaltyLines: that.options.MaxPenaltyLines,
				SequenceBatch:   that.options.SequenceBatch,
				PieceRand:       that.options.NewRand(),
				PenaltyRand:     that.options.NewRand(),
			}),
		}
		that.rooms[roomID] = current
	}

	that.playerRooms[playerID] = roomID

	return current, nil
}

func (that *RoomManager) release(playerID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.playerRooms[playerID] == roomID {
		delete(that.playerRooms, playerID)
	}
}

// close drops an empty session from the registry. The caller holds current.mu.
func (that *RoomManager) close(current *session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	current.closed = true
	if that.rooms[current.room.ID] == current {
		delete(that.rooms, current.room.ID)
	}
}

func (that *RoomManager) sessionOf(playerID string) (*session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	roomID, ok := that.playerRooms[playerID]
	if !ok {
		return nil, apperror.ErrNotInRoom
	}

	current, ok := that.rooms[roomID]
	if !ok {
		return nil, apperror.ErrNotInRoom
	}

	return current, nil
}

func (that *RoomManager) withRoom(playerID string, fn func(room *entity.Room) error) error {
	current, err := that.sessionOf(playerID)
	if err != nil {
		return err
	}

	current.mu.Lock()
	defer current.mu.Unlock()

	if current.closed {
		return apperror.ErrNotInRoom
	}

	return fn(current.room)
}

// finish announces the end of a match and returns its record when the archive is enabled.
// The caller holds the room lock.
func (that *RoomManager) finish(room *entity.Room, winner *entity.Player) *entity.MatchResult {
	log := that.logger.With("method", "finish", "roomID", room.ID)

	that.notifier.GameEnded(room, winner)

	if winner != nil {
		log.Info("game ended", "winner", winner.Name)
	} else {
		log.Info("game ended without a winner")
	}

	if that.matchRepo == nil {
		return nil
	}

	result := room.MatchResult(time.Now().UTC())

	return &result
}

// archive stores an ended match. It runs without any room lock held.
func (that *RoomManager) archive(ctx context.Context, result *entity.MatchResult) {
	if result == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	if err := that.matchRepo.Save(ctx, *result); err != nil {
		that.logger.Error("failed to archive match", "method", "archive", "roomID", result.RoomID, "error", err)
	}
}
