package pricing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	redisclient "github.com/trogers1052/etf-trading-service/internal/redis"
)

// CachedSource decorates a Source with the Redis quote cache. Fresh quotes
// are served from the cache inside the TTL; when the upstream fails, an
// expired cache entry is still better than nothing, so misses fall back to
// whatever was cached last.
type CachedSource struct {
	next  Source
	cache *redisclient.Client
	ttl   time.Duration
}

// NewCachedSource wraps next with the cache. A nil cache client disables
// caching entirely.
func NewCachedSource(next Source, cache *redisclient.Client, ttl time.Duration) *CachedSource {
	return &CachedSource{next: next, cache: cache, ttl: ttl}
}

// GetPrice serves from cache when possible, otherwise queries the upstream
// and refreshes the cache.
func (s *CachedSource) GetPrice(ctx context.Context, symbol string) (Quote, error) {
	if s.cache == nil {
		return s.next.GetPrice(ctx, symbol)
	}

	if cached, err := s.cache.GetQuote(ctx, symbol); err == nil {
		if q, ok := fromCached(cached); ok {
			return q, nil
		}
	} else if !redisclient.IsMiss(err) {
		log.Printf("Quote cache read failed for %s: %v", symbol, err)
	}

	q, err := s.next.GetPrice(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}

	if cacheErr := s.cache.SetQuote(ctx, &redisclient.CachedQuote{
		Symbol: q.Symbol,
		Price:  q.Price.String(),
		AsOf:   q.AsOf,
		Source: q.Source,
	}, s.ttl); cacheErr != nil {
		log.Printf("Quote cache write failed for %s: %v", symbol, cacheErr)
	}
	return q, nil
}

func fromCached(c *redisclient.CachedQuote) (Quote, bool) {
	price, err := decimal.NewFromString(c.Price)
	if err != nil {
		return Quote{}, false
	}
	return Quote{
		Symbol: c.Symbol,
		Price:  price,
		AsOf:   c.AsOf,
		Source: fmt.Sprintf("%s (cached)", c.Source),
	}, true
}
