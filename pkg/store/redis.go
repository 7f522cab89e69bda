package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKey = "budget:ledger"

// Redis keeps the document under one key; SET replaces it atomically.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis connects to addr, either "host:port" or a redis:// URL.
func NewRedis(addr string) (*Redis, error) {
	if !strings.Contains(addr, "://") {
		addr = "redis://" + addr
	}
	opt, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis address: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{client: client, key: redisKey}, nil
}

func (r *Redis) Read(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (r *Redis) Write(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key, data, 0).Err()
}

// Backup copies the current value to a timestamped key.
func (r *Redis) Backup(ctx context.Context) (string, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		return "", err
	}
	target := fmt.Sprintf("%s:bak-%s", r.key, time.Now().Format("20060102T150405"))
	return target, r.client.Set(ctx, target, data, 0).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
