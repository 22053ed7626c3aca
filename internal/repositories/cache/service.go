// Package cache wraps Redis for read-side caching. Every method tolerates
// a nil service or nil client, so the application works without Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Service struct {
	client *redis.Client
	ttl    time.Duration
}

func NewService(client *redis.Client, defaultTTL time.Duration) *Service {
	return &Service{client: client, ttl: defaultTTL}
}

func (s *Service) available() bool {
	return s != nil && s.client != nil
}

// Set stores a JSON-encoded value under key with the default TTL.
func (s *Service) Set(ctx context.Context, key string, value interface{}) error {
	if !s.available() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// Get loads a JSON value into dest. The bool reports a cache hit.
func (s *Service) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.available() {
		return false, nil
	}
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *Service) Delete(ctx context.Context, keys ...string) error {
	if !s.available() || len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// AgentStatusKey is the cache key for the public guarantee-status payload.
func AgentStatusKey(agentID string) string {
	return fmt.Sprintf("guarantee:status:%s", agentID)
}

func (s *Service) HealthCheck(ctx context.Context) error {
	if !s.available() {
		return fmt.Errorf("redis not configured")
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func (s *Service) Close() error {
	if !s.available() {
		return nil
	}
	return s.client.Close()
}
