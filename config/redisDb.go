package config

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/bsm/redislock"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)
var ctx = context.Background()

func GetRedisDB() *redis.Client {
	return rdb
}

func GetRedisLock() *redislock.Client {
	return locker
}

func GetRedisContext() context.Context {
	return ctx
}

// ConnectRedis connects the shared client; Redis is optional and every helper
// below degrades to a no-op / cache miss when the client is nil.
func ConnectRedis() {
	godotenv.Load()

	address := os.Getenv("REDIS_ADDRESS")
	if address == "" {
		log.Println("REDIS_ADDRESS not set; running without redis cache/locks")
		return
	}

	rdb = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("failed to ping redis at %s: %v; running without redis", address, err)
		rdb = nil
		return
	}
	locker = redislock.New(rdb)
	log.Printf("connected to redis at %s", address)
}

func GetRedisObject(key string, dest interface{}) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	val, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	err = json.Unmarshal([]byte(val), &dest)
	if err != nil {
		return false, err
	}
	return true, nil
}

func SetRedisObject(key string, obj interface{}, exp time.Duration) error {
	if rdb == nil {
		return nil
	}
	objInByte, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	if err = rdb.Set(ctx, key, objInByte, exp).Err(); err != nil {
		return err
	}
	return nil
}

func RemoveRedisKey(key string) error {
	if rdb == nil {
		return nil
	}
	if err := rdb.Del(ctx, key).Err(); err != nil {
		return err
	}
	return nil
}
