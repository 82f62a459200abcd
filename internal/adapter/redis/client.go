package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pscheid92/sentiscope/internal/adapter/metrics"
	"github.com/pscheid92/sentiscope/internal/platform/retry"
	goredis "github.com/redis/go-redis/v9"
)

type ClientOptions struct {
	Metrics *metrics.RedisMetrics
	Breaker BreakerConfig
	Connect retry.Policy
}

// DefaultConnectPolicy retries the startup ping for roughly half a minute.
var DefaultConnectPolicy = retry.Policy{
	MaxAttempts:    6,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     8 * time.Second,
}

// NewClient parses redisURL, installs the metrics and circuit breaker hooks,
// and pings until the server answers or the connect policy gives up.
func NewClient(ctx context.Context, redisURL string, opts ClientOptions) (*goredis.Client, error) {
	parsed, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(parsed)
	if opts.Metrics != nil {
		rdb.AddHook(NewMetricsHook(opts.Metrics))
	}
	rdb.AddHook(NewCircuitBreakerHook(opts.Breaker, opts.Metrics))

	policy := opts.Connect
	if policy.MaxAttempts == 0 {
		policy = DefaultConnectPolicy
	}
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Redis not reachable, retrying", "attempt", attempt, "backoff", backoff, "error", err)
	}

	err = retry.DoVoid(ctx, policy, nil, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}
