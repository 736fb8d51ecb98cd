package repository

import (
	"context"
	"log/slog"
	"time"

	"report-pipeline/domain"

	"github.com/redis/go-redis/v9"
)

const seenSourceKeyPrefix = "report-pipeline:seen-sources:"

// redisSeenSourceCache keeps the per-locale seen-source set in a redis set.
// Every operation is best effort: on any redis error the cache reports a
// miss and ingestion falls back to the store.
type redisSeenSourceCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewSeenSourceCache creates a redis-backed seen-source cache.
func NewSeenSourceCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) SeenSourceCache {
	return &redisSeenSourceCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Load returns the cached seen-source set for a locale. The second return
// value is false on a miss or a redis error.
func (c *redisSeenSourceCache) Load(ctx context.Context, locale domain.Locale) (map[string]struct{}, bool) {
	refs, err := c.client.SMembers(ctx, seenSourceKey(locale)).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "seen-source cache read failed, falling back to store",
			"locale", locale.String(), "error", err)

		return nil, false
	}

	if len(refs) == 0 {
		return nil, false
	}

	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		seen[ref] = struct{}{}
	}

	return seen, true
}

// Warm replaces the cached set with the authoritative one from the store.
func (c *redisSeenSourceCache) Warm(ctx context.Context, locale domain.Locale, refs map[string]struct{}) {
	if len(refs) == 0 {
		return
	}

	members := make([]interface{}, 0, len(refs))
	for ref := range refs {
		members = append(members, ref)
	}

	key := seenSourceKey(locale)

	pipe := c.client.TxPipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, c.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.WarnContext(ctx, "seen-source cache warm failed",
			"locale", locale.String(), "error", err)
	}
}

// Add appends newly referenced source ids so later candidates in the same
// run see them.
func (c *redisSeenSourceCache) Add(ctx context.Context, locale domain.Locale, refs []string) {
	if len(refs) == 0 {
		return
	}

	members := make([]interface{}, len(refs))
	for i, ref := range refs {
		members[i] = ref
	}

	if err := c.client.SAdd(ctx, seenSourceKey(locale), members...).Err(); err != nil {
		c.logger.WarnContext(ctx, "seen-source cache add failed",
			"locale", locale.String(), "error", err)
	}
}

func seenSourceKey(locale domain.Locale) string {
	return seenSourceKeyPrefix + locale.String()
}

// noopSeenSourceCache is used when no cache address is configured.
type noopSeenSourceCache struct{}

// NewNoopSeenSourceCache returns a cache that always misses.
func NewNoopSeenSourceCache() SeenSourceCache {
	return noopSeenSourceCache{}
}

func (noopSeenSourceCache) Load(context.Context, domain.Locale) (map[string]struct{}, bool) {
	return nil, false
}

func (noopSeenSourceCache) Warm(context.Context, domain.Locale, map[string]struct{}) {}

func (noopSeenSourceCache) Add(context.Context, domain.Locale, []string) {}
