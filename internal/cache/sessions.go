package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wavelength-chat/wavelength-backend/internal/logger"
	"github.com/wavelength-chat/wavelength-backend/internal/types"
)

const (
	sessionListKey = "wavelength:chat_sessions"
	sessionListTTL = 30 * time.Second
)

// SessionCache keeps the sidebar session listing out of postgres between
// writes. Every session mutation invalidates it.
type SessionCache interface {
	Get(ctx context.Context) ([]types.ChatSession, bool)
	Set(ctx context.Context, sessions []types.ChatSession)
	Invalidate(ctx context.Context)
}

type redisSessionCache struct {
	log    *logger.Logger
	client *redis.Client
}

// NewSessionCache connects to redis at address, using the given logical DB
// index. An empty address yields a no-op cache so the server runs fine
// without redis.
func NewSessionCache(log *logger.Logger, address, password string, db int) (SessionCache, error) {
	cacheLog := log.With("component", "SessionCache")
	if address == "" {
		cacheLog.Info("no redis address configured; session list caching disabled")
		return NoopSessionCache{}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	cacheLog.Info("session list cache connected", "address", address)
	return &redisSessionCache{log: cacheLog, client: rdb}, nil
}

func (c *redisSessionCache) Get(ctx context.Context) ([]types.ChatSession, bool) {
	payload, err := c.client.Get(ctx, sessionListKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("failed to read session list from redis", "error", err)
		}
		return nil, false
	}
	var sessions []types.ChatSession
	if err := json.Unmarshal(payload, &sessions); err != nil {
		c.log.Warn("failed to decode cached session list", "error", err)
		return nil, false
	}
	return sessions, true
}

func (c *redisSessionCache) Set(ctx context.Context, sessions []types.ChatSession) {
	payload, err := json.Marshal(sessions)
	if err != nil {
		c.log.Warn("failed to encode session list for redis", "error", err)
		return
	}
	if err := c.client.Set(ctx, sessionListKey, payload, sessionListTTL).Err(); err != nil {
		c.log.Warn("failed to write session list to redis", "error", err)
	}
}

func (c *redisSessionCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, sessionListKey).Err(); err != nil {
		c.log.Warn("failed to invalidate session list cache", "error", err)
	}
}

// NoopSessionCache misses every read and swallows every write.
type NoopSessionCache struct{}

func (NoopSessionCache) Get(ctx context.Context) ([]types.ChatSession, bool) { return nil, false }
func (NoopSessionCache) Set(ctx context.Context, sessions []types.ChatSession) {}
func (NoopSessionCache) Invalidate(ctx context.Context)                         {}
