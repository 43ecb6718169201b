package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yatube/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	GroupKeyPrefix     = "group:%s"
	IndexVersionKey    = "posts:index:version"
	IndexPageKeyPrefix = "posts:index:v%d:page:%s"
)

const (
	GroupTTL = 10 * time.Minute
	// IndexTTL is the default lifetime of a cached index page.
	IndexTTL = 20 * time.Second
)

func GroupKey(slug string) string {
	return fmt.Sprintf(GroupKeyPrefix, slug)
}

// IndexPageKey returns the cache key for the index listing at the raw page
// parameter, scoped by the current index version.
func IndexPageKey(ctx context.Context, page string) string {
	var version int64
	if client != nil {
		v, err := client.Get(ctx, IndexVersionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(ctx, "index version lookup failed", slog.String("error", err.Error()))
		}
		version = v
	}
	return fmt.Sprintf(IndexPageKeyPrefix, version, page)
}

// Aside loads key into dest, calling fetch to populate dest on a miss and
// storing the JSON result for ttl. Redis errors fall through to fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	data, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(data, dest); jsonErr == nil {
			return nil
		}
		middleware.Logger.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	if err := fetch(); err != nil {
		return err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateGroup(ctx context.Context, slug string) {
	Invalidate(ctx, GroupKey(slug))
}

// InvalidateIndex bumps the index version so every cached page is orphaned
// and expires on its own TTL.
func InvalidateIndex(ctx context.Context) {
	if client != nil {
		client.Incr(ctx, IndexVersionKey)
	}
}
