package app

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/config"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/db"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/logger"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/redis"
)

type Infra struct {
	DB *db.DB

	// Redis is nil when REDIS_ADDR is unset; rate limiting then runs on
	// in-process counters with per-instance accuracy.
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.RunCoreMigration(ctx, sqlDB); err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	infra := &Infra{DB: &db.DB{DB: sqlDB}}

	if cfg.RedisAddr == "" {
		logger.Warn("redis not configured, rate limits are per-instance only", nil)
		return infra, nil
	}

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", nil)

	infra.Redis = redisClient
	return infra, nil
}
