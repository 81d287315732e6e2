// config/redis.go
package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client
var Ctx = context.Background()

// ConnectRedis is optional: without REDIS_ADDR the pending-registration state
// falls back to process memory and is lost on restart.
func ConnectRedis() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		slog.Warn("REDIS_ADDR is not set, pending registrations will be kept in memory only")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		RDB = nil
		return
	}

	slog.Info("connected to Redis")
}
