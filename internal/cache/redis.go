package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MarcusAlienx/casanala/internal/enum"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RoleCache stores resolved roles in Redis under role:<user id>.
type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRoleCache connects to the Redis instance at url (redis://...).
func NewRoleCache(url string, ttl time.Duration, log *zap.Logger) (*RoleCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", opts.Addr))

	return &RoleCache{client: rdb, ttl: ttl, log: log}, nil
}

func (c *RoleCache) Close() error {
	return c.client.Close()
}

func roleKey(userID string) string {
	return fmt.Sprintf("role:%s", userID)
}

// GetRole reports a cache miss as ok=false with a nil error.
func (c *RoleCache) GetRole(ctx context.Context, userID string) (enum.Role, bool, error) {
	v, err := c.client.Get(ctx, roleKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	role, err := enum.ParseRole(v)
	if err != nil {
		return "", false, nil
	}
	return role, true, nil
}

func (c *RoleCache) SetRole(ctx context.Context, userID string, role enum.Role) error {
	return c.client.Set(ctx, roleKey(userID), string(role), c.ttl).Err()
}

func (c *RoleCache) InvalidateRole(ctx context.Context, userID string) error {
	return c.client.Del(ctx, roleKey(userID)).Err()
}
