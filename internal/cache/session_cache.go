package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizarena/internal/model"
)

// SessionCache maps join codes to sessions so join traffic skips Mongo.
type SessionCache interface {
	Set(ctx context.Context, session *model.Session) error
	GetByCode(ctx context.Context, code string) (*model.Session, error)
	Delete(ctx context.Context, code string) error
}

type sessionCache struct {
	client *redis.Client
	minTTL time.Duration
}

func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{client: client, minTTL: time.Minute}
}

func (c *sessionCache) key(code string) string {
	return fmt.Sprintf("session:code:%s", code)
}

// Set stores the session until shortly after its window closes.
func (c *sessionCache) Set(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := time.Until(session.EndTime) + c.minTTL
	if ttl < c.minTTL {
		ttl = c.minTTL
	}
	return c.client.Set(ctx, c.key(session.JoinCode), data, ttl).Err()
}

func (c *sessionCache) GetByCode(ctx context.Context, code string) (*model.Session, error) {
	data, err := c.client.Get(ctx, c.key(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, code string) error {
	return c.client.Del(ctx, c.key(code)).Err()
}
