// Package cache provides a Redis read-through cache in front of the user
// directory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const keyPrefix = "splitledger:user:"

// Ensure UserCache implements storage.UserRepository
var _ storage.UserRepository = (*UserCache)(nil)

// UserCache wraps a storage.UserRepository and caches single-user lookups
// in Redis. Writes go to the repository first and then invalidate the key.
// Redis errors are logged and treated as cache misses.
type UserCache struct {
	next   storage.UserRepository
	client *redis.Client
	ttl    time.Duration
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a Redis client and verifies it with PING.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache.Connect: %w", err)
	}
	return client, nil
}

// NewUserCache returns a caching decorator around next.
func NewUserCache(next storage.UserRepository, client *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{next: next, client: client, ttl: ttl}
}

type cachedUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *UserCache) GetUser(ctx context.Context, id string) (*models.User, error) {
	key := keyPrefix + id

	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cu cachedUser
		if err := json.Unmarshal(val, &cu); err == nil {
			return &models.User{ID: cu.ID, Name: cu.Name, CreatedAt: cu.CreatedAt, UpdatedAt: cu.UpdatedAt}, nil
		}
		slog.Warn("Discarding corrupt cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		slog.Warn("User cache read failed", "key", key, "error", err)
	}

	user, err := c.next.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cachedUser{ID: user.ID, Name: user.Name, CreatedAt: user.CreatedAt, UpdatedAt: user.UpdatedAt})
	if err == nil {
		err = c.client.Set(ctx, key, data, c.ttl).Err()
	}
	if err != nil {
		slog.Warn("User cache write failed", "key", key, "error", err)
	}
	return user, nil
}

func (c *UserCache) PutUser(ctx context.Context, user *models.User) error {
	if err := c.next.PutUser(ctx, user); err != nil {
		return err
	}
	c.invalidate(ctx, user.ID)
	return nil
}

func (c *UserCache) DeleteUser(ctx context.Context, id string) error {
	if err := c.next.DeleteUser(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// ListUsers is not cached.
func (c *UserCache) ListUsers(ctx context.Context) ([]*models.User, error) {
	return c.next.ListUsers(ctx)
}

func (c *UserCache) invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		slog.Warn("User cache invalidation failed", "key", keyPrefix+id, "error", err)
	}
}
