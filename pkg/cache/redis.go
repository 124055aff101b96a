package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis configuration
type Config struct {
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// Close gracefully closes the Redis client
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// RideViewCache caches serialized ride status views on the polling path.
// Clients poll ride status aggressively while waiting for a driver, so a
// short TTL takes most of that read load off Postgres. A nil client
// disables caching entirely.
type RideViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRideViewCache creates a ride view cache with the given TTL.
func NewRideViewCache(client *redis.Client, ttl time.Duration) *RideViewCache {
	return &RideViewCache{client: client, ttl: ttl}
}

func (c *RideViewCache) key(rideID string) string {
	return fmt.Sprintf("ride:%s:view", rideID)
}

// Get returns the cached view for a ride, or false on a miss.
func (c *RideViewCache) Get(ctx context.Context, rideID string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, c.key(rideID)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Set stores a ride view. Errors are swallowed: the store stays ground truth.
func (c *RideViewCache) Set(ctx context.Context, rideID string, view interface{}) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(rideID), raw, c.ttl)
}

// Invalidate drops the cached view after a state transition.
func (c *RideViewCache) Invalidate(ctx context.Context, rideID string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, c.key(rideID))
}
