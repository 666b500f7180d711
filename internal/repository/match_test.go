package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tetris-backend/internal/entity"
	"github.com/rocketscienceinc/tetris-backend/testing/suite"
)

func newMatchResult(roomID, winner string, endedAt time.Time) entity.MatchResult {
	return entity.MatchResult{
		RoomID: roomID,
		Winner: winner,
		Players: []entity.MatchPlayer{
			{Name: "alice", Score: 300, LinesCleared: 3},
			{Name: "bob", Score: 100, LinesCleared: 1},
		},
		EndedAt: endedAt,
	}
}

func TestMatchRepository_Save(t *testing.T) {
	ctx, st := suite.New(t)

	matchRepo := NewMatchRepository(st.Storage, 10)

	// Given: a finished match
	result := newMatchResult("r1", "alice", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	// When: Save is called
	err := matchRepo.Save(ctx, result)

	// Then: it is stored under the room key
	require.NoError(t, err)
	length, err := st.Storage.LLen(ctx, "match:r1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)
}

func TestMatchRepository_ListByRoom(t *testing.T) {
	t.Run("ListByRoom_NewestFirst", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, 10)
		start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		// Given: two matches in r1 and one in r2
		require.NoError(t, matchRepo.Save(ctx, newMatchResult("r1", "alice", start)))
		require.NoError(t, matchRepo.Save(ctx, newMatchResult("r1", "bob", start.Add(time.Minute))))
		require.NoError(t, matchRepo.Save(ctx, newMatchResult("r2", "carol", start)))

		// When: ListByRoom is called for r1
		results, err := matchRepo.ListByRoom(ctx, "r1")

		// Then: only r1 results come back, newest first
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "bob", results[0].Winner)
		assert.Equal(t, "alice", results[1].Winner)
		assert.True(t, start.Equal(results[1].EndedAt))
		assert.Equal(t, 300, results[1].Players[0].Score)
	})

	t.Run("ListByRoom_Capped", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, 3)

		// Given: more matches than the cap
		for i := 0; i < 5; i++ {
			require.NoError(t, matchRepo.Save(ctx, newMatchResult("r1", fmt.Sprintf("p%d", i), time.Now())))
		}

		// When: ListByRoom is called
		results, err := matchRepo.ListByRoom(ctx, "r1")

		// Then: only the latest three survive
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "p4", results[0].Winner)
		assert.Equal(t, "p2", results[2].Winner)
	})

	t.Run("ListByRoom_Empty", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, 10)

		// When: ListByRoom is called for an unknown room
		results, err := matchRepo.ListByRoom(ctx, "nobody")

		// Then: an empty list is returned
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
