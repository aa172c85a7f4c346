package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spiralhq/spiral-platform/internal/pkg/env"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// SetupCache initializes the Redis connection used for status caching and
// the webhook dedup fast path. The cache is strictly best-effort: when the
// server is unreachable the client stays nil and every caller falls back to
// the primary store.
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	c := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port),
	})

	pong, err := c.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: could not connect to cache: %v", err)
		return
	}
	log.Printf("Connected to cache: %s", pong)
	client = c
}

// Available reports whether a cache connection was established.
func Available() bool {
	return client != nil
}

// Set stores a value with the given key and expiration time.
func Set(key string, value interface{}, expiration time.Duration) error {
	if client == nil {
		return nil
	}
	return client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value by key.
func Get(key string) (string, error) {
	if client == nil {
		return "", redis.Nil
	}
	return client.Get(ctx, key).Result()
}

// SetNX stores a value only if the key does not exist yet and reports
// whether it was set.
func SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	if client == nil {
		return false, nil
	}
	return client.SetNX(ctx, key, value, expiration).Result()
}

// Delete removes a value by key.
func Delete(key string) error {
	if client == nil {
		return nil
	}
	return client.Del(ctx, key).Err()
}
