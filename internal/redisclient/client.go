package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"shop-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned when no cart is cached for a user.
var ErrCacheMiss = errors.New("cache miss")

// Client caches cart documents in Redis. Entries expire with a jittered TTL
// and are invalidated on every cart write.
type Client struct {
	rdb     *redis.Client
	baseTTL time.Duration
}

// NewClient creates a new Redis client and verifies the connection.
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:     rdb,
		baseTTL: 15 * time.Minute,
	}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetCart retrieves a cached cart for userID.
func (c *Client) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	data, err := c.rdb.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached cart: %w", err)
	}
	return &cart, nil
}

// SetCart caches a cart with a jittered TTL to avoid synchronized expiry.
func (c *Client) SetCart(ctx context.Context, userID string, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	ttl := c.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	if err := c.rdb.Set(ctx, cacheKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateCart drops the cached cart for userID.
func (c *Client) InvalidateCart(ctx context.Context, userID string) error {
	if err := c.rdb.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}
