package cache

import (
	"context"
	"sync"
	"time"

	redisClient "liveguard.io/infrastructure/database/connection/cache"
	"liveguard.io/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

var Cache RedisRepository

// RedisRepository is shared process-wide, so adopting the connection
// client happens exactly once.
type RedisRepository struct {
	Client *redis.Client

	initOnce sync.Once
}

func (redisRepo *RedisRepository) preRequest() {
	redisRepo.initOnce.Do(func() {
		if redisRepo.Client == nil {
			redisRepo.Client = redisClient.Client
			logger.Info("redis repository initialisation complete")
		}
	})
}

func (redisRepo *RedisRepository) CreateEntry(key string, payload interface{}, ttl time.Duration) bool {
	redisRepo.preRequest()
	ctx := context.Background()
	_, err := redisRepo.Client.Set(ctx, key, payload, ttl).Result()
	if err != nil {
		logger.Error("redis error occured while running CreateEntry", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return true
}

func (redisRepo *RedisRepository) FindOne(key string) *string {
	redisRepo.preRequest()
	ctx := context.Background()

	result, err := redisRepo.Client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		logger.Error("redis error occured while running FindOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return nil
	}
	return &result
}

func (redisRepo *RedisRepository) DeleteOne(key string) bool {
	redisRepo.preRequest()
	ctx := context.Background()

	_, err := redisRepo.Client.Del(ctx, key).Result()
	if err != nil {
		logger.Error("redis error occured while running DeleteOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return true
}
