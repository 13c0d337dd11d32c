package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/richxcame/crediscore/pkg/common"
)

// Checker probes a dependency
type Checker = common.CheckFunc

// CheckerConfig holds per-check settings
type CheckerConfig struct {
	Timeout time.Duration
}

// DefaultCheckerConfig returns the default checker configuration
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{Timeout: 2 * time.Second}
}

// PostgresChecker returns a health check function for the PostgreSQL pool
func PostgresChecker(pool *pgxpool.Pool) Checker {
	return func(ctx context.Context) error {
		if pool == nil {
			return errors.New("database connection is nil")
		}
		ctx, cancel := context.WithTimeout(ctx, DefaultCheckerConfig().Timeout)
		defer cancel()
		return pool.Ping(ctx)
	}
}

// RedisChecker returns a health check function for Redis
func RedisChecker(client *redis.Client) Checker {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("redis client is nil")
		}
		ctx, cancel := context.WithTimeout(ctx, DefaultCheckerConfig().Timeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}

// CachedChecker memoizes a checker's result for ttl. Used for remote
// dependencies so frequent probes don't turn into outbound traffic.
type CachedChecker struct {
	checker   Checker
	ttl       time.Duration
	mu        sync.Mutex
	lastErr   error
	checkedAt time.Time
}

// NewCachedChecker wraps checker with a result cache
func NewCachedChecker(checker Checker, ttl time.Duration) *CachedChecker {
	return &CachedChecker{checker: checker, ttl: ttl}
}

// Check runs the wrapped checker unless a fresh result is cached
func (c *CachedChecker) Check(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.checkedAt.IsZero() && time.Since(c.checkedAt) < c.ttl {
		return c.lastErr
	}

	c.lastErr = c.checker(ctx)
	c.checkedAt = time.Now()
	return c.lastErr
}
