// Package cache keeps read-mostly catalog data in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/config"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

const keyPrefix = "savor:restaurants:"

// RestaurantKey names the cache entry for a region filter; an empty region
// means the unfiltered list
func RestaurantKey(region models.Region) string {
	if region == "" {
		return keyPrefix + "all"
	}
	return keyPrefix + string(region)
}

// RestaurantCache stores restaurant lists in Redis with a fixed TTL
type RestaurantCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRestaurantCache connects to Redis and verifies the connection
func NewRestaurantCache(ctx context.Context, cfg config.RedisConfig) (*RestaurantCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return &RestaurantCache{client: client, ttl: cfg.TTL}, nil
}

// Get returns the cached list for region. ok is false on a miss.
func (c *RestaurantCache) Get(ctx context.Context, region models.Region) ([]models.Restaurant, bool, error) {
	raw, err := c.client.Get(ctx, RestaurantKey(region)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	restaurants, err := Decode(raw)
	if err != nil {
		return nil, false, err
	}
	return restaurants, true, nil
}

// Set stores the list for region
func (c *RestaurantCache) Set(ctx context.Context, region models.Region, restaurants []models.Restaurant) error {
	raw, err := json.Marshal(restaurants)
	if err != nil {
		return fmt.Errorf("encode restaurants: %w", err)
	}
	if err := c.client.Set(ctx, RestaurantKey(region), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate drops every cached list
func (c *RestaurantCache) Invalidate(ctx context.Context) error {
	keys := []string{RestaurantKey("")}
	for _, region := range models.Regions() {
		keys = append(keys, RestaurantKey(region))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the Redis client
func (c *RestaurantCache) Close() error {
	return c.client.Close()
}

// Decode parses a cached restaurant list
func Decode(raw []byte) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	if err := json.Unmarshal(raw, &restaurants); err != nil {
		return nil, fmt.Errorf("decode cached restaurants: %w", err)
	}
	return restaurants, nil
}
