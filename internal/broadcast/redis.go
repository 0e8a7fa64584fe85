// Package broadcast fans recommendation events out to external consumers.
package broadcast

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"football-agent/internal/config"
)

// Sink accepts serialized events.
type Sink interface {
	Publish(ctx context.Context, key string, payload []byte) error
	Close() error
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisSink publishes every event on one pub/sub channel. The key is
// carried in the payload, so it is ignored here.
type RedisSink struct {
	client  *redis.Client
	channel string
}

func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Publish(ctx context.Context, _ string, payload []byte) error {
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish to %s: %w", s.channel, err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
