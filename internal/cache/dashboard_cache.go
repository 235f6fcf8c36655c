package cache

import (
	"context"
	"errors"
	"time"

	"feedback-system/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dashboardKey = "dashboard:summary"

// DashboardCache keeps the assembled dashboard payload in Redis for a
// short TTL. A failing or absent Redis never fails a request; callers
// fall through to live aggregation. The brief staleness is acceptable
// because dashboard reads are already eventually consistent.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDashboardCache(redisURL string, ttl time.Duration) (*DashboardCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &DashboardCache{client: client, ttl: ttl}, nil
}

// Get returns the cached payload and whether it was present.
func (c *DashboardCache) Get(ctx context.Context) ([]byte, bool) {
	payload, err := c.client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("Dashboard cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

// Set stores the payload with the configured TTL. Failures are logged and
// swallowed.
func (c *DashboardCache) Set(ctx context.Context, payload []byte) {
	if err := c.client.Set(ctx, dashboardKey, payload, c.ttl).Err(); err != nil {
		logger.Log.Warn("Dashboard cache write failed", zap.Error(err))
	}
}

func (c *DashboardCache) Close() error {
	return c.client.Close()
}
