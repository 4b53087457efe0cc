package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/redis/go-redis/v9"
)

// DefaultSummaryPrefix namespaces cached summaries in a shared Redis
const DefaultSummaryPrefix = "motoshop:summary:"

const cutoffLayout = "2006-01-02"

// KEYS[1] generation, KEYS[2] summary; ARGV generation, payload, ttl ms
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisSummaryCache stores summaries as JSON, one key per cutoff date. The
// generation counter lives outside the summary prefix so Invalidate's scan
// never deletes it.
type RedisSummaryCache struct {
	client        *redis.Client
	keyPrefix     string
	generationKey string
}

// NewRedisSummaryCache creates a summary cache on a shared client
func NewRedisSummaryCache(client *redis.Client, keyPrefix string) *RedisSummaryCache {
	if keyPrefix == "" {
		keyPrefix = DefaultSummaryPrefix
	}
	return &RedisSummaryCache{
		client:        client,
		keyPrefix:     keyPrefix,
		generationKey: strings.TrimSuffix(keyPrefix, ":") + "-generation",
	}
}

func (c *RedisSummaryCache) key(cutoff time.Time) string {
	return c.keyPrefix + cutoff.Format(cutoffLayout)
}

// Get returns the summary cached for cutoff
func (c *RedisSummaryCache) Get(ctx context.Context, cutoff time.Time) (*collections.CollectionSummary, bool, error) {
	raw, err := c.client.Get(ctx, c.key(cutoff)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached summary: %w", err)
	}
	var summary collections.CollectionSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		// a stale shape from an older release; treat as a miss
		_ = c.client.Del(ctx, c.key(cutoff)).Err()
		return nil, false, nil
	}
	return &summary, true, nil
}

// Generation returns the current generation, 0 before the first invalidation
func (c *RedisSummaryCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read summary generation: %w", err)
	}
	return gen, nil
}

// Set caches summary under its cutoff date when generation is still current
func (c *RedisSummaryCache) Set(ctx context.Context, summary collections.CollectionSummary, generation int64, ttl time.Duration) error {
	if ttl < time.Millisecond {
		return nil
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	keys := []string{c.generationKey, c.key(summary.CutoffDate)}
	if err := setIfGeneration.Run(ctx, c.client, keys, strconv.FormatInt(generation, 10), raw, ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

// Invalidate starts a new generation, then deletes every cached summary under the prefix
func (c *RedisSummaryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey).Err(); err != nil {
		return fmt.Errorf("failed to advance summary generation: %w", err)
	}
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached summaries: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached summaries: %w", err)
	}
	return nil
}

type summaryEntry struct {
	summary   collections.CollectionSummary
	expiresAt time.Time
}

// InMemorySummaryCache keeps summaries in process memory
type InMemorySummaryCache struct {
	mu         sync.RWMutex
	entries    map[string]summaryEntry
	generation int64
	now        func() time.Time
}

// NewInMemorySummaryCache creates an empty in-memory summary cache
func NewInMemorySummaryCache() *InMemorySummaryCache {
	return &InMemorySummaryCache{
		entries: make(map[string]summaryEntry),
		now:     time.Now,
	}
}

// Get returns the summary cached for cutoff
func (c *InMemorySummaryCache) Get(_ context.Context, cutoff time.Time) (*collections.CollectionSummary, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[cutoff.Format(cutoffLayout)]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	summary := e.summary
	return &summary, true, nil
}

// Generation returns the number of invalidations so far
func (c *InMemorySummaryCache) Generation(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation, nil
}

// Set caches summary under its cutoff date when generation is still current
func (c *InMemorySummaryCache) Set(_ context.Context, summary collections.CollectionSummary, generation int64, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation || ttl <= 0 {
		return nil
	}
	c.entries[summary.CutoffDate.Format(cutoffLayout)] = summaryEntry{
		summary:   summary,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Invalidate drops every cached summary
func (c *InMemorySummaryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]summaryEntry)
	c.generation++
	return nil
}

var (
	_ appcollections.SummaryCache = (*RedisSummaryCache)(nil)
	_ appcollections.SummaryCache = (*InMemorySummaryCache)(nil)
)
