package cache

import (
	"context"
	"errors"
	"fmt"

	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/motoshop/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends are the cache-backed stores the service runs with
type Backends struct {
	Claims    shared.IdempotencyStore
	Summaries appcollections.SummaryCache
	// Distributed is false when the stores live in process memory
	Distributed bool
	client      *redis.Client
}

// Close releases the stores and the Redis client
func (b *Backends) Close() error {
	var errs []error
	if b.Claims != nil {
		errs = append(errs, b.Claims.Close())
	}
	if b.client != nil {
		errs = append(errs, b.client.Close())
	}
	return errors.Join(errs...)
}

// Factory builds Backends from configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// in-memory stores instead of failing. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new Factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns Redis-backed stores when Redis is enabled and reachable,
// in-memory stores otherwise
func (f *Factory) Create(ctx context.Context) (*Backends, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory caches")
		return f.inMemory(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis caches", zap.String("addr", f.redisConfig.Addr()))
		return &Backends{
			Claims:      NewRedisIdempotencyStore(client, DefaultClaimPrefix),
			Summaries:   NewRedisSummaryCache(client, DefaultSummaryPrefix),
			Distributed: true,
			client:      client,
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory caches. "+
		"Replicas will not share scan claims.",
		zap.Error(err),
	)
	return f.inMemory(), nil
}

func (f *Factory) inMemory() *Backends {
	return &Backends{
		Claims:    NewInMemoryIdempotencyStore(0),
		Summaries: NewInMemorySummaryCache(),
	}
}
