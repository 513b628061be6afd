package caching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CacheService wraps the Redis-backed shared state the backend keeps outside
// the relational store: live sessions, login rate limits, and the gate
// cooldown that suppresses duplicate camera triggers.
type CacheService interface {
	// Session management for issued tokens
	SetSession(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	GetSession(ctx context.Context, tokenID string) (string, error)
	DeleteSession(ctx context.Context, tokenID string) error

	// Rate limiting for the login endpoint
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) error

	// AcquireGateCooldown reports true when the plate has not been seen
	// within the window, claiming the cooldown key as a side effect.
	AcquireGateCooldown(ctx context.Context, plate string, window time.Duration) (bool, error)

	// Generic string operations for cached reports
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)

	Close() error
}

type redisCacheService struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewRedisCacheService(addr, password string, db int, log *logrus.Logger) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).WithField("addr", addr).Warn("redis ping failed on initialization")
	}

	return &redisCacheService{client: client, log: log}
}

func sessionKey(tokenID string) string { return "session:" + tokenID }

func (s *redisCacheService) SetSession(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(tokenID), userID, ttl).Err()
}

// GetSession returns the user id for a live session, or "" when the session
// is unknown or revoked.
func (s *redisCacheService) GetSession(ctx context.Context, tokenID string) (string, error) {
	val, err := s.client.Get(ctx, sessionKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (s *redisCacheService) DeleteSession(ctx context.Context, tokenID string) error {
	return s.client.Del(ctx, sessionKey(tokenID)).Err()
}

func (s *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := s.client.Get(ctx, "ratelimit:"+key).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= limit, nil
}

func (s *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, "ratelimit:"+key)
	pipe.Expire(ctx, "ratelimit:"+key, window)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisCacheService) AcquireGateCooldown(ctx context.Context, plate string, window time.Duration) (bool, error) {
	key := fmt.Sprintf("gate:cooldown:%s", plate)
	return s.client.SetNX(ctx, key, time.Now().Format(time.RFC3339), window).Result()
}

func (s *redisCacheService) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (s *redisCacheService) Close() error {
	return s.client.Close()
}
