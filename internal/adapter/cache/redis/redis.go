// Package redis caches alias resolutions in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

const keyPrefix = "golinks:alias:"

// ErrCacheMiss is returned when an alias is not cached.
var ErrCacheMiss = errors.New("cache miss")

type cachedLink struct {
	ID    int64   `json:"id"`
	URL   string  `json:"url"`
	Owner *string `json:"owner,omitempty"`
}

// Connect parses url, opens a client and checks that the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	const op = "adapter.cache.redis.Connect"

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid redis url: %w", op, err)
	}

	rc := redis.NewClient(opt)
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("%s: failed to connect to redis: %w", op, err)
	}

	return rc, nil
}

type LinkCache struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewLinkCache(rc *redis.Client, ttl time.Duration) *LinkCache {
	return &LinkCache{rc: rc, ttl: ttl}
}

func key(shortCode string) string {
	return keyPrefix + shortCode
}

// Get returns the cached resolution of shortCode. Only the fields needed to
// redirect and track a visit are populated.
func (c *LinkCache) Get(ctx context.Context, shortCode string) (*entity.Link, error) {
	const op = "adapter.cache.redis.LinkCache.Get"

	data, err := c.rc.Get(ctx, key(shortCode)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cl cachedLink
	if err := json.Unmarshal(data, &cl); err != nil {
		return nil, fmt.Errorf("%s: failed to decode cached link: %w", op, err)
	}

	return &entity.Link{ID: cl.ID, URL: cl.URL, ShortCode: shortCode, Owner: cl.Owner}, nil
}

func (c *LinkCache) Set(ctx context.Context, link *entity.Link) error {
	const op = "adapter.cache.redis.LinkCache.Set"

	data, err := json.Marshal(cachedLink{ID: link.ID, URL: link.URL, Owner: link.Owner})
	if err != nil {
		return fmt.Errorf("%s: failed to encode link: %w", op, err)
	}

	if err := c.rc.Set(ctx, key(link.ShortCode), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Delete evicts the given aliases.
func (c *LinkCache) Delete(ctx context.Context, shortCodes ...string) error {
	const op = "adapter.cache.redis.LinkCache.Delete"

	if len(shortCodes) == 0 {
		return nil
	}

	keys := make([]string, len(shortCodes))
	for i, sc := range shortCodes {
		keys[i] = key(sc)
	}

	if err := c.rc.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
