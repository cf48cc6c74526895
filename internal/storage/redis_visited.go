package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"filmography-crawler/internal"
)

const visitedURLPrefix = "visited:"

// RedisVisited is a visited set shared across runs; entries expire after ttl.
type RedisVisited struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisVisited(client *redis.Client, ttl time.Duration) *RedisVisited {
	return &RedisVisited{client: client, ttl: ttl}
}

func (r *RedisVisited) generateKey(url string) string {
	return visitedURLPrefix + internal.HashURL(url)
}

// Visit marks url with SETNX, so concurrent workers agree on who saw it first.
func (r *RedisVisited) Visit(ctx context.Context, url string) (bool, error) {
	set, err := r.client.SetNX(ctx, r.generateKey(url), "1", r.ttl).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Forget removes url so the next run crawls it again.
func (r *RedisVisited) Forget(ctx context.Context, url string) error {
	return r.client.Del(ctx, r.generateKey(url)).Err()
}

func (r *RedisVisited) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
