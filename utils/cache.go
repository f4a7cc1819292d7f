package utils

import (
	"context"
	"log"
	"time"

	"fieldserve/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client.
	CacheClient *redis.Client
	// GeoCacheClient is the dedicated client for geocoding results.
	GeoCacheClient *redis.Client
)

// InitRedis initializes the Redis clients used across the portal.
func InitRedis() {
	CacheClient = newClient(config.AppConfig.RedisCacheDB)
	GeoCacheClient = newClient(config.AppConfig.RedisGeoDB)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("failed to connect to Redis cache: %v", err)
	}
	if _, err := GeoCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("failed to connect to Redis geo cache: %v", err)
	}
	log.Println("Connected to Redis successfully!")
}

func newClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

// GetGeoCacheClient returns the geocoding cache client.
func GetGeoCacheClient() *redis.Client {
	return GeoCacheClient
}
