package quotecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/kanishkautag/GeoStormX/internal/domain"
	"github.com/kanishkautag/GeoStormX/internal/observability"
)

// Redis is a read-through quote cache shared between replicas. Redis
// failures degrade to computing the quote directly.
type Redis struct {
	next    domain.Pricer
	rdb     *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRedis wraps next with a Redis read-through cache.
func NewRedis(next domain.Pricer, rdb *redis.Client, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Redis {
	return &Redis{
		next:    next,
		rdb:     rdb,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

// Dial parses a redis:// URL and verifies the server answers PING.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Price implements domain.Pricer.
func (r *Redis) Price(ctx context.Context, asset domain.InsurableAsset, kp float64) (domain.PremiumQuote, error) {
	key := quoteKey(asset, kp)

	data, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var q domain.PremiumQuote
		if json.Unmarshal(data, &q) == nil {
			r.metrics.QuoteCache.WithLabelValues(tierRedis, resultHit).Inc()
			return q, nil
		}
		r.metrics.QuoteCache.WithLabelValues(tierRedis, resultError).Inc()
	case errors.Is(err, redis.Nil):
		r.metrics.QuoteCache.WithLabelValues(tierRedis, resultMiss).Inc()
	default:
		r.metrics.QuoteCache.WithLabelValues(tierRedis, resultError).Inc()
		r.logger.Warn("quote cache read failed", "key", key, "error", err)
	}

	q, err := r.next.Price(ctx, asset, kp)
	if err != nil {
		return domain.PremiumQuote{}, err
	}
	r.store(ctx, key, q)
	return q, nil
}

// CheckReadiness pings Redis.
func (r *Redis) CheckReadiness(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis not ready: %w", err)
	}
	return nil
}

func (r *Redis) store(ctx context.Context, key string, q domain.PremiumQuote) {
	data, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("quote cache write failed", "key", key, "error", err)
	}
}

func quoteKey(asset domain.InsurableAsset, kp float64) string {
	return "quote:" + domain.QuoteKey(asset, kp)
}
