package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/imobipro/imobipro-api/internal/pkg/env"
	"github.com/redis/go-redis/v9"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// SetupCache initializes the Redis connection used for rate limiting and
// webhook abuse counters.
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test the connection
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to Redis cache: %v", err)
	} else {
		log.Printf("Successfully connected to Redis cache: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// Set stores a value in the cache with the given key and expiration time
func Set(key string, value interface{}, expiration time.Duration) error {
	return GetClient().Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(key string) (string, error) {
	return GetClient().Get(ctx, key).Result()
}

// Delete removes a value from the cache by key
func Delete(key string) error {
	return GetClient().Del(ctx, key).Err()
}

const suspiciousWebhookWindow = 24 * time.Hour

// CountSuspiciousWebhook increments the per-origin counter of webhook
// deliveries that failed signature verification. The count is only used for
// review; unverified deliveries are still reconciled against the gateway
// API before anything is provisioned.
func CountSuspiciousWebhook(remoteIP string) (int64, error) {
	key := fmt.Sprintf("webhook:unverified:%s", remoteIP)
	pipe := GetClient().TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, suspiciousWebhookWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
