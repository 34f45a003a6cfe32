package cache

import (
	"os"

	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"

	"github.com/lagat24/greentrace/config"
)

// InitializeCache connects the redis cache used for leaderboard responses.
func InitializeCache(cfg config.Config) cache.Cache {
	c, err := cache.New(cache.Config{
		Type:          "redis",
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Error("Failed to initialize cache:", zap.Error(err))
		os.Exit(1)
	}
	return c
}
