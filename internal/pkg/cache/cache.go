// Package cache stores encoded composites so identical requests skip rendering.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ds124wfegd/WB_L3/composite/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "composite:"

type CompositeCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// Key identifies a composite by the content of its inputs and the options it was built with.
func Key(sources [][]byte, factor float64, format string) string {
	h := sha256.New()
	for _, src := range sources {
		sum := sha256.Sum256(src)
		h.Write(sum[:])
	}
	h.Write([]byte(strconv.FormatFloat(factor, 'g', -1, 64)))
	h.Write([]byte{0})
	h.Write([]byte(format))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

func NewRedisCache(client *redis.Client, ttl time.Duration) CompositeCache {
	return &redisCache{client: client, ttl: ttl}
}

// New returns a Redis backed cache, or a cache that stores nothing when Redis
// is disabled or does not answer a ping.
func New(ctx context.Context, cfg config.RedisConfig) CompositeCache {
	if !cfg.Enabled {
		return Null()
	}

	client := NewRedisClient(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).WithField("addr", cfg.Addr()).Warn("Redis unavailable, composite cache disabled")
		client.Close()
		return Null()
	}

	logrus.WithField("addr", cfg.Addr()).Info("Successfully connected to Redis")
	return NewRedisCache(client, cfg.TTL)
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, data []byte) error {
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

type nullCache struct{}

// Null returns a cache that never stores anything.
func Null() CompositeCache {
	return nullCache{}
}

func (nullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (nullCache) Set(context.Context, string, []byte) error { return nil }
