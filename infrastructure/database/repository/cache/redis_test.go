package cache

import (
	"sync"
	"testing"

	redisClient "liveguard.io/infrastructure/database/connection/cache"

	"github.com/redis/go-redis/v9"
)

func TestConcurrentFirstUseAdoptsConnectionClientOnce(t *testing.T) {
	shared := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	redisClient.Client = shared

	repo := &RedisRepository{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repo.preRequest()
		}()
	}
	wg.Wait()

	if repo.Client != shared {
		t.Fatal("expected the repository to adopt the shared connection client")
	}
}
