package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache keeps one sorted set of completed player quizzes per session.
type LeaderboardCache interface {
	UpdateScore(ctx context.Context, sessionID, playerQuizID string, score int) error
	GetTop(ctx context.Context, sessionID string, limit int) ([]LeaderboardEntry, error)
	GetRank(ctx context.Context, sessionID, playerQuizID string) (int64, error)
	Count(ctx context.Context, sessionID string) (int64, error)
}

// LeaderboardEntry is one ranked member of a session leaderboard.
type LeaderboardEntry struct {
	PlayerQuizID string `json:"playerQuizId"`
	Score        int    `json:"score"`
	Rank         int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) LeaderboardCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &leaderboardCache{client: client, ttl: ttl}
}

func (c *leaderboardCache) key(sessionID string) string {
	return fmt.Sprintf("session:%s:lb", sessionID)
}

func (c *leaderboardCache) UpdateScore(ctx context.Context, sessionID, playerQuizID string, score int) error {
	pipe := c.client.TxPipeline()
	pipe.ZAdd(ctx, c.key(sessionID), redis.Z{Score: float64(score), Member: playerQuizID})
	pipe.Expire(ctx, c.key(sessionID), c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *leaderboardCache) GetTop(ctx context.Context, sessionID string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return []LeaderboardEntry{}, nil
	}
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(sessionID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		entries[i] = LeaderboardEntry{
			PlayerQuizID: member,
			Score:        int(z.Score),
			Rank:         i + 1,
		}
	}
	return entries, nil
}

func (c *leaderboardCache) GetRank(ctx context.Context, sessionID, playerQuizID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(sessionID), playerQuizID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return rank + 1, nil
}

func (c *leaderboardCache) Count(ctx context.Context, sessionID string) (int64, error) {
	return c.client.ZCard(ctx, c.key(sessionID)).Result()
}
