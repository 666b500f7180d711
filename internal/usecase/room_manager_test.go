package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tetris-backend/internal/apperror"
	"github.com/rocketscienceinc/tetris-backend/internal/entity"
	"github.com/rocketscienceinc/tetris-backend/internal/tetris"
)

var errRedisDown = errors.New("redis down")

type constRand int

func (that constRand) IntN(n int) int {
	return int(that) % n
}

func newTestManager(notifier Notifier, repo matchRepo) *RoomManager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewRoomManager(logger, notifier, repo, RoomManagerOptions{
		NewRand: func() tetris.Rand { return constRand(0) },
	})
}

// quietNotifier accepts every event.
func quietNotifier() *mockNotifier {
	notifier := &mockNotifier{}
	notifier.On("PlayerJoined", mock.Anything, mock.Anything).Maybe()
	notifier.On("PlayerLeft", mock.Anything, mock.Anything, mock.Anything).Maybe()
	notifier.On("ReadyChanged", mock.Anything, mock.Anything).Maybe()
	notifier.On("GameStarted", mock.Anything).Maybe()
	notifier.On("PlayerMoved", mock.Anything, mock.Anything, mock.Anything).Maybe()
	notifier.On("GameEnded", mock.Anything, mock.Anything).Maybe()

	return notifier
}

func startTwoPlayerGame(t *testing.T, manager *RoomManager) {
	t.Helper()

	ctx := context.Background()
	_, err := manager.Join(ctx, "a", "r1", "alice")
	require.NoError(t, err)
	_, err = manager.Join(ctx, "b", "r1", "bob")
	require.NoError(t, err)
	require.NoError(t, manager.SetReady(ctx, "a", true))
	require.NoError(t, manager.SetReady(ctx, "b", true))
	require.NoError(t, manager.Start(ctx, "a"))
}

func TestRoomManager_Join(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates the room on first join and notifies", func(t *testing.T) {
		// Given: an empty registry
		notifier := &mockNotifier{}
		manager := newTestManager(notifier, nil)
		notifier.On("PlayerJoined", mock.AnythingOfType("*entity.Room"), mock.MatchedBy(func(player *entity.Player) bool {
			return player.ID == "a" && player.IsLeader
		})).Once()

		// When: a player joins an unseen room
		snapshot, err := manager.Join(ctx, "a", "r1", "alice")

		// Then: the room exists with the player as leader
		require.NoError(t, err)
		assert.Equal(t, "r1", snapshot.ID)
		assert.Equal(t, "a", snapshot.Leader)
		assert.Equal(t, []entity.RoomSummary{{ID: "r1", PlayerCount: 1, State: entity.RoomIdle}}, manager.ListRooms())
		notifier.AssertExpectations(t)
	})

	t.Run("Rejects unsafe identifiers", func(t *testing.T) {
		manager := newTestManager(quietNotifier(), nil)

		_, err := manager.Join(ctx, "a", "../etc", "alice")
		assert.ErrorIs(t, err, apperror.ErrInvalidRoomID)

		_, err = manager.Join(ctx, "a", "r1", "alice bob")
		assert.ErrorIs(t, err, apperror.ErrInvalidPlayerName)

		_, err = manager.Join(ctx, "a", "r1", "")
		assert.ErrorIs(t, err, apperror.ErrInvalidPlayerName)

		_, err = manager.Join(ctx, "a", "r1", "abcdefghijklmnopqrstuvwxyz0123456789")
		assert.ErrorIs(t, err, apperror.ErrInvalidPlayerName)

		assert.Empty(t, manager.ListRooms())
	})

	t.Run("A player can only be in one room", func(t *testing.T) {
		manager := newTestManager(quietNotifier(), nil)
		_, err := manager.Join(ctx, "a", "r1", "alice")
		require.NoError(t, err)

		_, err = manager.Join(ctx, "a", "r2", "alice")

		assert.ErrorIs(t, err, apperror.ErrAlreadyInRoom)
		assert.Len(t, manager.ListRooms(), 1)
	})

	t.Run("Duplicate name leaves state unchanged", func(t *testing.T) {
		manager := newTestManager(quietNotifier(), nil)
		_, err := manager.Join(ctx, "a", "r1", "alice")
		require.NoError(t, err)

		_, err = manager.Join(ctx, "b", "r1", "alice")
		require.ErrorIs(t, err, apperror.ErrNameTaken)

		// Then: the rejected player is free to join elsewhere
		_, err = manager.Join(ctx, "b", "r2", "alice")
		assert.NoError(t, err)
	})

	t.Run("Running room is locked", func(t *testing.T) {
		manager := newTestManager(quietNotifier(), nil)
		startTwoPlayerGame(t, manager)

		_, err := manager.Join(ctx, "c", "r1", "carol")

		assert.ErrorIs(t, err, apperror.ErrRoomLocked)
	})
}

func TestRoomManager_Leave(t *testing.T) {
	ctx := context.Background()

	t.Run("Last player leaving destroys the room", func(t *testing.T) {
		// Given: a room with one player
		notifier := quietNotifier()
		manager := newTestManager(notifier, nil)
		_, err := manager.Join(ctx, "a", "r1", "alice")
		require.NoError(t, err)

		// When: the player leaves
		err = manager.Leave(ctx, "a", true)

		// Then: the room is gone and the player can join again
		require.NoError(t, err)
		assert.Empty(t, manager.ListRooms())
		notifier.AssertCalled(t, "PlayerLeft", mock.Anything, mock.Anything, true)

		_, err = manager.Join(ctx, "a", "r1", "alice")
		assert.NoError(t, err)
	})

	t.Run("Not in a room", func(t *testing.T) {
		manager := newTestManager(quietNotifier(), nil)

		err := manager.Leave(ctx, "ghost", false)

		assert.ErrorIs(t, err, apperror.ErrNotInRoom)
	})

	t.Run("Disconnect during a match ends it and archives the result", func(t *testing.T) {
		// Given: a running two player match with an archive
		notifier := quietNotifier()
		repo := &mockMatchRepo{}
		repo.On("Save", mock.Anything, mock.MatchedBy(func(result entity.MatchResult) bool {
			return result.RoomID == "r1" && result.Winner == "bob"
		})).Return(nil).Once()
		manager := newTestManager(notifier, repo)
		startTwoPlayerGame(t, manager)

		// When: alice drops
		err := manager.Leave(ctx, "a", false)

		// Then: bob wins and the match is stored
		require.NoError(t, err)
		notifier.AssertCalled(t, "GameEnded", mock.Anything, mock.MatchedBy(func(winner *entity.Player) bool {
			return winner != nil && winner.ID == "b"
		}))
		repo.AssertExpectations(t)
		assert.Equal(t, entity.RoomEnded, manager.ListRooms()[0].State)
	})

	t.Run("Archive failure does not affect the room", func(t *testing.T) {
		repo := &mockMatchRepo{}
		repo.On("Save", mock.Anything, mock.Anything).Return(errRedisDown).Once()
		manager := newTestManager(quietNotifier(), repo)
		startTwoPlayerGame(t, manager)

		err := manager.Leave(ctx, "a", false)

		require.NoError(t, err)
		repo.AssertExpectations(t)
		assert.Len(t, manager.ListRooms(), 1)
	})

	t.Run("Slow archive does not hold the room", func(t *testing.T) {
		// Given: an archive whose save blocks until released
		saving := make(chan struct{})
		release := make(chan struct{})
		repo := &mockMatchRepo{}
		repo.On("Save", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			close(saving)
			<-release
		}).Return(nil).Once()
		manager := newTestManager(quietNotifier(), repo)
		startTwoPlayerGame(t, manager)

		leftA := make(chan error, 1)
		go func() {
			leftA <- manager.Leave(ctx, "a", false)
		}()
		<-saving

		// When: the room is used while the save is still running
		done := make(chan error, 1)
		go func() {
			assert.Equal(t, entity.RoomEnded, manager.ListRooms()[0].State)
			done <- manager.Leave(ctx, "b", true)
		}()

		// Then: neither call waits for the archive
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("room operations blocked by the archive")
		}

		assert.Empty(t, manager.ListRooms())

		close(release)
		require.NoError(t, <-leftA)
		repo.AssertExpectations(t)
	})
}

func TestRoomManager_ReadyAndStart(t *testing.T) {
	ctx := context.Background()

	t.Run("Start notifies the room", func(t *testing.T) {
		notifier := quietNotifier()
		manager := newTestManager(notifier, nil)

		startTwoPlayerGame(t, manager)

		notifier.AssertNumberOfCalls(t, "ReadyChanged", 2)
		notifier.AssertNumberOfCalls(t, "GameStarted", 1)
		assert.Equal(t, entity.RoomPlaying, manager.ListRooms()[0].State)
	})

	t.Run("Errors are returned to the caller without events", func(t *testing.T) {
		notifier := quietNotifier()
		manager := newTestManager(notifier, nil)
		_, err := manager.Join(ctx, "a", "r1", "alice")
		require.NoError(t, err)
		_, err = manager.Join(ctx, "b", "r1", "bob")
		require.NoError(t, err)

		err = manager.Start(ctx, "b")
		assert.ErrorIs(t, err, apperror.ErrNotLeader)

		err = manager.Start(ctx, "a")
		assert.ErrorIs(t, err, apperror.ErrPlayersNotReady)

		err = manager.SetReady(ctx, "ghost", true)
		assert.ErrorIs(t, err, apperror.ErrNotInRoom)

		notifier.AssertNotCalled(t, "GameStarted", mock.Anything)
	})
}

func TestRoomManager_Move(t *testing.T) {
	ctx := context.Background()

	t.Run("Accepted move is announced", func(t *testing.T) {
		notifier := quietNotifier()
		manager := newTestManager(notifier, nil)
		startTwoPlayerGame(t, manager)

		result, err := manager.Move(ctx, "a", entity.MoveLeft)

		require.NoError(t, err)
		assert.True(t, result.Accepted)
		notifier.AssertNumberOfCalls(t, "PlayerMoved", 1)
	})

	t.Run("Rejected move is silent", func(t *testing.T) {
		notifier := quietNotifier()
		manager := newTestManager(notifier, nil)
		startTwoPlayerGame(t, manager)
		for i := 0; i < 3; i++ {
			_, err := manager.Move(ctx, "a", entity.MoveLeft)
			require.NoError(t, err)
		}

		result, err := manager.Move(ctx, "a", entity.MoveLeft)

		require.NoError(t, err)
		assert.False(t, result.Accepted)
		notifier.AssertNumberOfCalls(t, "PlayerMoved", 3)
	})

	t.Run("Move outside a room", func(t *testing.T) {
		manager := newTestManager(quietNotifier(), nil)

		_, err := manager.Move(ctx, "ghost", entity.MoveDown)

		assert.ErrorIs(t, err, apperror.ErrNotInRoom)
	})

	t.Run("Move before start", func(t *testing.T) {
		manager := newTestManager(quietNotifier(), nil)
		_, err := manager.Join(ctx, "a", "r1", "alice")
		require.NoError(t, err)

		_, err = manager.Move(ctx, "a", entity.MoveDown)

		assert.ErrorIs(t, err, apperror.ErrGameNotPlaying)
	})
}

func TestRoomManager_History(t *testing.T) {
	ctx := context.Background()

	t.Run("Disabled archive", func(t *testing.T) {
		manager := newTestManager(quietNotifier(), nil)

		_, err := manager.History(ctx, "r1")

		assert.ErrorIs(t, err, ErrArchiveDisabled)
	})

	t.Run("Reads from the repository", func(t *testing.T) {
		repo := &mockMatchRepo{}
		expected := []entity.MatchResult{{RoomID: "r1", Winner: "bob"}}
		repo.On("ListByRoom", mock.Anything, "r1").Return(expected, nil).Once()
		manager := newTestManager(quietNotifier(), repo)

		results, err := manager.History(ctx, "r1")

		require.NoError(t, err)
		assert.Equal(t, expected, results)
	})

	t.Run("Repository error is wrapped", func(t *testing.T) {
		repo := &mockMatchRepo{}
		repo.On("ListByRoom", mock.Anything, "r1").Return(nil, errRedisDown).Once()
		manager := newTestManager(quietNotifier(), repo)

		_, err := manager.History(ctx, "r1")

		assert.ErrorIs(t, err, errRedisDown)
	})
}

func TestRoomManager_Concurrency(t *testing.T) {
	// Given: many players joining and leaving a few rooms at once
	ctx := context.Background()
	manager := newTestManager(quietNotifier(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			playerID := fmt.Sprintf("p%d", i)
			roomID := fmt.Sprintf("room-%d", i%3)

			_, err := manager.Join(ctx, playerID, roomID, playerID)
			assert.NoError(t, err)
			assert.NoError(t, manager.SetReady(ctx, playerID, true))
			assert.NoError(t, manager.Leave(ctx, playerID, true))
		}(i)
	}

	// When: everyone is done
	wg.Wait()

	// Then: every room was destroyed
	assert.Empty(t, manager.ListRooms())
}
