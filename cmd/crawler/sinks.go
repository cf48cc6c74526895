package main

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"filmography-crawler/internal"
	"filmography-crawler/internal/config"
	"filmography-crawler/internal/crawler/engine"
	"filmography-crawler/internal/storage"
	"filmography-crawler/pkg/models"
)

const dbConnectAttempts = 10

// openSink returns the configured credit sink and its close function.
func openSink(ctx context.Context, cfg *config.Config, log *zap.Logger) (engine.Sink[models.StoredCredit], func() error, error) {
	switch cfg.Sink {
	case config.SinkPostgres, config.SinkSQLite:
		dialect, dsn := storage.Postgres, cfg.DatabaseURL
		if cfg.Sink == config.SinkSQLite {
			dialect, dsn = storage.SQLite, cfg.SQLitePath
		}
		store, err := storage.Open(ctx, dialect, dsn, dbConnectAttempts, log)
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		log.Info("connected to database", zap.String("driver", dialect.Driver))
		return &storage.CreditSink{Storage: store}, store.Close, nil

	default:
		sink, err := storage.NewJSONLSink(cfg.Output)
		if err != nil {
			return nil, nil, err
		}
		return sink, sink.Close, nil
	}
}

// openVisited uses Redis when REDIS_ADDR is set and an in-memory set otherwise.
func openVisited(ctx context.Context, cfg *config.Config, log *zap.Logger) (engine.Visited, func(), error) {
	if cfg.RedisAddr == "" {
		return internal.NewSafeMap(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	visited := storage.NewRedisVisited(client, cfg.VisitedTTL)
	if err := visited.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info("using redis visited set", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.VisitedTTL))
	return visited, func() { _ = client.Close() }, nil
}
