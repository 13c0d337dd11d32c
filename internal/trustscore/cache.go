package trustscore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/crediscore/pkg/redis"
)

const (
	cacheKeyPrefix = "trust_score:"
	cacheTTL       = 10 * time.Minute
)

// Cache keeps computed trust scores in Redis
type Cache struct {
	client redis.ClientInterface
	ttl    time.Duration
}

var _ CacheInterface = (*Cache)(nil)

// NewCache creates a trust score cache
func NewCache(client redis.ClientInterface) *Cache {
	return &Cache{client: client, ttl: cacheTTL}
}

// Get returns the cached score. A miss yields nil, nil.
func (c *Cache) Get(ctx context.Context, businessID uuid.UUID) (*TrustScore, error) {
	raw, err := c.client.GetString(ctx, cacheKey(businessID))
	if redis.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached trust score: %w", err)
	}

	var score TrustScore
	if err := json.Unmarshal([]byte(raw), &score); err != nil {
		return nil, fmt.Errorf("failed to decode cached trust score: %w", err)
	}
	return &score, nil
}

// Set stores score, replacing any cached value
func (c *Cache) Set(ctx context.Context, score *TrustScore) error {
	payload, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to encode trust score: %w", err)
	}
	if err := c.client.SetWithExpiration(ctx, cacheKey(score.BusinessID), string(payload), c.ttl); err != nil {
		return fmt.Errorf("failed to cache trust score: %w", err)
	}
	return nil
}

// Invalidate drops the cached score
func (c *Cache) Invalidate(ctx context.Context, businessID uuid.UUID) error {
	return c.client.Delete(ctx, cacheKey(businessID))
}

func cacheKey(businessID uuid.UUID) string {
	return cacheKeyPrefix + businessID.String()
}
