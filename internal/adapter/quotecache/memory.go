// Package quotecache memoizes premium quotes in front of a domain.Pricer.
// Quotes are pure functions of (asset class, replacement cost, Kp), so a
// cached quote never goes stale; the TTL only bounds memory.
package quotecache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kanishkautag/GeoStormX/internal/domain"
	"github.com/kanishkautag/GeoStormX/internal/observability"
)

const (
	tierMemory = "memory"
	tierRedis  = "redis"

	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// Memory is an in-process LRU in front of another Pricer.
type Memory struct {
	next    domain.Pricer
	cache   *expirable.LRU[string, domain.PremiumQuote]
	metrics *observability.Metrics
}

// NewMemory wraps next with an LRU holding up to size quotes for ttl.
func NewMemory(next domain.Pricer, size int, ttl time.Duration, metrics *observability.Metrics) *Memory {
	return &Memory{
		next:    next,
		cache:   expirable.NewLRU[string, domain.PremiumQuote](size, nil, ttl),
		metrics: metrics,
	}
}

// Price implements domain.Pricer. Errors are never cached.
func (m *Memory) Price(ctx context.Context, asset domain.InsurableAsset, kp float64) (domain.PremiumQuote, error) {
	key := domain.QuoteKey(asset, kp)
	if q, ok := m.cache.Get(key); ok {
		m.metrics.QuoteCache.WithLabelValues(tierMemory, resultHit).Inc()
		return q, nil
	}
	m.metrics.QuoteCache.WithLabelValues(tierMemory, resultMiss).Inc()

	q, err := m.next.Price(ctx, asset, kp)
	if err != nil {
		return domain.PremiumQuote{}, err
	}
	m.cache.Add(key, q)
	return q, nil
}

// Len returns the number of cached quotes.
func (m *Memory) Len() int {
	return m.cache.Len()
}
