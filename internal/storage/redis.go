package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisPingAttempts   = 5
	redisPingMaxBackoff = 5 * time.Second
)

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{
		client: client,
	}
}

type RedisStorage struct {
	client *redis.Client
}

// ConnectRedis creates a client and retries PING with exponential backoff until the
// server answers, the attempts run out or ctx is done.
func ConnectRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	backoff := 100 * time.Millisecond
	var err error
	for attempt := 1; attempt <= redisPingAttempts; attempt++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		if attempt == redisPingAttempts {
			break
		}

		select {
		case <-ctx.Done():
			client.Close()
			return nil, fmt.Errorf("redis ping cancelled: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, redisPingMaxBackoff)
	}

	client.Close()
	return nil, fmt.Errorf("redis ping failed after %d attempts: %w", redisPingAttempts, err)
}

func (r *RedisStorage) GetItem(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return value, nil
}

// SetItem stores value without expiry; the cart outlives any session.
func (r *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
