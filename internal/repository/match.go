package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tetris-backend/internal/entity"
)

const matchKeyPrefix = "match:"

// MatchRepository keeps the latest match results of each room in a capped Redis list,
// newest first.
type MatchRepository struct {
	client *redis.Client
	limit  int64
}

// NewMatchRepository - limit caps the history per room, 0 keeps everything.
func NewMatchRepository(client *redis.Client, limit int64) *MatchRepository {
	return &MatchRepository{
		client: client,
		limit:  limit,
	}
}

func (that *MatchRepository) Save(ctx context.Context, result entity.MatchResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal match result: %w", err)
	}

	key := matchKeyPrefix + result.RoomID

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, resultJSON)
		if that.limit > 0 {
			pipe.LTrim(ctx, key, 0, that.limit-1)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save match result: %w", err)
	}

	return nil
}

func (that *MatchRepository) ListByRoom(ctx context.Context, roomID string) ([]entity.MatchResult, error) {
	key := matchKeyPrefix + roomID

	stop := int64(-1)
	if that.limit > 0 {
		stop = that.limit - 1
	}

	response, err := that.client.LRange(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get match results: %w", err)
	}

	results := make([]entity.MatchResult, 0, len(response))
	for _, item := range response {
		var result entity.MatchResult
		if err = json.Unmarshal([]byte(item), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match result: %w", err)
		}

		results = append(results, result)
	}

	return results, nil
}
