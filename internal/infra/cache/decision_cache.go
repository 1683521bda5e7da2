package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tradejournal-billing/internal/domain/access"
)

const keyPrefix = "access:decision:"

// DecisionCache keeps the last computed access decision per user for the
// request-time guard. Cache failures are logged and treated as misses.
// A nil *DecisionCache is a valid, always-missing cache.
type DecisionCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewDecisionCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *DecisionCache {
	return &DecisionCache{rdb: rdb, ttl: ttl, log: log.Named("decision_cache")}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (c *DecisionCache) Get(ctx context.Context, userID string) (access.Decision, bool) {
	if c == nil {
		return access.Decision{}, false
	}
	raw, err := c.rdb.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
		return access.Decision{}, false
	}

	var d access.Decision
	if err := json.Unmarshal(raw, &d); err != nil {
		c.log.Warn("cache entry corrupt", zap.String("user_id", userID), zap.Error(err))
		return access.Decision{}, false
	}
	return d, true
}

func (c *DecisionCache) Set(ctx context.Context, userID string, d access.Decision) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+userID, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (c *DecisionCache) Invalidate(ctx context.Context, userID string) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, keyPrefix+userID).Err(); err != nil {
		c.log.Warn("cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
