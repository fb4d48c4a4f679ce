package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
)

const (
	statusKey = "stockwatch:status"
	statusTTL = 10 * time.Minute
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	log.Println("Redis connection successfully opened.")
	return rdb, nil
}

// StatusCache holds the current banner so every page load skips the store.
type StatusCache struct {
	Rdb *redis.Client
	TTL time.Duration
}

func NewStatusCache(rdb *redis.Client) *StatusCache {
	return &StatusCache{Rdb: rdb, TTL: statusTTL}
}

// Get reports a miss as (nil, nil).
func (c *StatusCache) Get(ctx context.Context) (*models.Status, error) {
	raw, err := c.Rdb.Get(ctx, statusKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s models.Status
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *StatusCache) Put(ctx context.Context, s models.Status) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.Rdb.Set(ctx, statusKey, raw, c.TTL).Err()
}

func (c *StatusCache) Invalidate(ctx context.Context) error {
	return c.Rdb.Del(ctx, statusKey).Err()
}
