package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/betting-pool/models"
	"github.com/redis/go-redis/v9"
)

const scoreBoardKey = "betting-pool:score_board"

// RedisScoreBoardCache keeps the leaderboard as one JSON value with a TTL.
type RedisScoreBoardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisScoreBoardCache(addr, password string, db int, ttl time.Duration) (*RedisScoreBoardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisScoreBoardCache{client: client, ttl: ttl}, nil
}

func (c *RedisScoreBoardCache) Get(ctx context.Context) ([]models.UserResult, bool, error) {
	data, err := c.client.Get(ctx, scoreBoardKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read score board: %w", err)
	}

	var board []models.UserResult
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached score board: %w", err)
	}
	return board, true, nil
}

func (c *RedisScoreBoardCache) Set(ctx context.Context, board []models.UserResult) error {
	data, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("failed to marshal score board: %w", err)
	}
	return c.client.Set(ctx, scoreBoardKey, data, c.ttl).Err()
}

func (c *RedisScoreBoardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, scoreBoardKey).Err()
}

func (c *RedisScoreBoardCache) Close() error {
	return c.client.Close()
}

// NoopScoreBoardCache is used when Redis is not configured.
type NoopScoreBoardCache struct{}

func (NoopScoreBoardCache) Get(context.Context) ([]models.UserResult, bool, error) {
	return nil, false, nil
}

func (NoopScoreBoardCache) Set(context.Context, []models.UserResult) error { return nil }

func (NoopScoreBoardCache) Invalidate(context.Context) error { return nil }
