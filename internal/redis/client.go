package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trogers1052/etf-trading-service/internal/config"
)

// Client wraps the Redis client with quote-caching operations
type Client struct {
	rdb *redis.Client
}

// New creates a new Redis client
func New(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// CachedQuote is the quote payload stored per symbol.
type CachedQuote struct {
	Symbol string    `json:"symbol"`
	Price  string    `json:"price"`
	AsOf   time.Time `json:"as_of"`
	Source string    `json:"source"`
}

// SetQuote caches a quote with TTL.
func (c *Client) SetQuote(ctx context.Context, q *CachedQuote, ttl time.Duration) error {
	key := fmt.Sprintf("etf:%s:quote", q.Symbol)
	jsonData, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}
	return c.rdb.Set(ctx, key, jsonData, ttl).Err()
}

// GetQuote retrieves a cached quote. A cache miss returns redis.Nil.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*CachedQuote, error) {
	key := fmt.Sprintf("etf:%s:quote", symbol)
	jsonData, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var q CachedQuote
	if err := json.Unmarshal(jsonData, &q); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	return &q, nil
}

// SetDMA caches a 20-day moving average value for a symbol.
func (c *Client) SetDMA(ctx context.Context, symbol string, value float64, ttl time.Duration) error {
	key := fmt.Sprintf("etf:%s:dma20", symbol)
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// GetDMA retrieves a cached 20-day moving average.
func (c *Client) GetDMA(ctx context.Context, symbol string) (float64, error) {
	key := fmt.Sprintf("etf:%s:dma20", symbol)
	return c.rdb.Get(ctx, key).Float64()
}

// Delete removes keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// IsMiss reports whether the error is a plain cache miss.
func IsMiss(err error) bool {
	return err == redis.Nil
}
