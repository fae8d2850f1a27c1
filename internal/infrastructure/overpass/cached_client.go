package overpass

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "overpass:"

type cachedClient struct {
	inner  repository.OverpassRepository
	cache  repository.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedClient serves repeated queries from cache. Cache failures are logged
// and bypassed; they never fail a query.
func NewCachedClient(inner repository.OverpassRepository, cache repository.CacheRepository, ttl time.Duration, logger *zap.Logger) repository.OverpassRepository {
	return &cachedClient{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *cachedClient) Query(ctx context.Context, query string) (*domain.OverpassResponse, error) {
	key := CacheKey(query)

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Overpass cache read failed", zap.String("key", key), zap.Error(err))
	} else if data != nil {
		var cached domain.OverpassResponse
		if err := json.Unmarshal(data, &cached); err == nil {
			c.logger.Debug("Overpass cache hit", zap.String("key", key))
			return &cached, nil
		}
		c.logger.Warn("Discarding corrupt overpass cache entry", zap.String("key", key))
	}

	resp, err := c.inner.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(resp); err != nil {
		c.logger.Warn("Failed to marshal overpass response for cache", zap.Error(err))
	} else if err := c.cache.Set(ctx, key, payload, c.ttl); err != nil {
		c.logger.Warn("Overpass cache write failed", zap.String("key", key), zap.Error(err))
	}

	return resp, nil
}

// CacheKey is "overpass:" followed by the hex SHA-256 of the query text.
func CacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
