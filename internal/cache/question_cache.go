package cache

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizarena/internal/model"
)

// QuestionLoader fetches a question from the backing store.
type QuestionLoader interface {
	GetByID(ctx context.Context, id string) (*model.Question, error)
}

// QuestionCache is a read-through Redis cache in front of a QuestionLoader.
// Concurrent misses for the same id share one load.
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) key(id string) string {
	return "question:" + id
}

// GetByID returns nil, nil when the question does not exist. Misses are not cached.
func (c *QuestionCache) GetByID(ctx context.Context, id string) (*model.Question, error) {
	if q, ok := c.fromCache(ctx, id); ok {
		return q, nil
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		if q, ok := c.fromCache(ctx, id); ok {
			return q, nil
		}
		q, err := c.loader.GetByID(ctx, id)
		if err != nil || q == nil {
			return q, err
		}
		if data, err := json.Marshal(q); err == nil {
			_ = c.client.Set(ctx, c.key(id), data, c.ttlWithJitter()).Err()
		}
		return q, nil
	})
	if err != nil {
		return nil, err
	}
	q, _ := result.(*model.Question)
	return q, nil
}

func (c *QuestionCache) fromCache(ctx context.Context, id string) (*model.Question, bool) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var q model.Question
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, false
	}
	return &q, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
