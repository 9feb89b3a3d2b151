package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/config"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
)

// redisSnapshotRepository keeps the batch as one JSON value under a single
// key; SET is the atomic swap.
type redisSnapshotRepository struct {
	client *redis.Client
	key    string
}

func NewRedisSnapshotRepository(cfg config.RedisConfig) (SnapshotRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	key := cfg.Key
	if key == "" {
		key = "campusgrub:snapshot"
	}
	return &redisSnapshotRepository{client: client, key: key}, nil
}

func (r *redisSnapshotRepository) Write(ctx context.Context, batch entity.Batch) error {
	b, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return r.client.Set(ctx, r.key, b, 0).Err()
}

func (r *redisSnapshotRepository) Read(ctx context.Context) (entity.Batch, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return entity.Batch{Events: []entity.Event{}}, nil
		}
		return entity.Batch{}, err
	}
	var batch entity.Batch
	if err := json.Unmarshal(b, &batch); err != nil {
		return entity.Batch{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if batch.Events == nil {
		batch.Events = []entity.Event{}
	}
	return batch, nil
}
