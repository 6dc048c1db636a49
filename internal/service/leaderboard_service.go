package service

import (
	"context"
	"errors"
	"fmt"

	"quizarena/internal/cache"
	"quizarena/internal/model"
	"quizarena/internal/repository"
	"quizarena/pkg/logger"
)

const maxLeaderboardSize = 100

// LeaderboardService ranks completed player quizzes within a session. The
// Redis sorted set is a projection of the player_quizzes collection and is
// rebuilt from it when missing.
type LeaderboardService struct {
	cache         cache.LeaderboardCache
	playerQuizzes repository.PlayerQuizRepo
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(lb cache.LeaderboardCache, playerQuizzes repository.PlayerQuizRepo) *LeaderboardService {
	return &LeaderboardService{cache: lb, playerQuizzes: playerQuizzes}
}

// Record puts a completed player quiz on its session board
func (s *LeaderboardService) Record(ctx context.Context, pq *model.PlayerQuiz) error {
	return s.cache.UpdateScore(ctx, pq.SessionID, pq.ID, pq.Score)
}

// Rank is the 1-based position of a player quiz on its session board, or 0
// when it is not ranked.
func (s *LeaderboardService) Rank(ctx context.Context, sessionID, playerQuizID string) (int, error) {
	if err := s.sync(ctx, sessionID); err != nil {
		return 0, err
	}
	rank, err := s.cache.GetRank(ctx, sessionID, playerQuizID)
	if err != nil {
		return 0, fmt.Errorf("failed to read rank: %w", err)
	}
	if rank < 0 {
		return 0, nil
	}
	return int(rank), nil
}

// Top returns the best completed player quizzes of a session
func (s *LeaderboardService) Top(ctx context.Context, sessionID string, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}

	if err := s.sync(ctx, sessionID); err != nil {
		logger.Warn("leaderboard cache unavailable", "sessionId", sessionID, "error", err)
		return s.rebuild(ctx, sessionID, limit)
	}

	ranked, err := s.cache.GetTop(ctx, sessionID, limit)
	if err != nil {
		logger.Warn("leaderboard cache read failed", "sessionId", sessionID, "error", err)
		return s.rebuild(ctx, sessionID, limit)
	}

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.PlayerQuizID
	}
	pqs, err := s.playerQuizzes.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load player quizzes: %w", err)
	}
	byID := make(map[string]*model.PlayerQuiz, len(pqs))
	for _, pq := range pqs {
		byID[pq.ID] = pq
	}

	entries := make([]model.LeaderboardEntry, 0, len(ranked))
	for _, r := range ranked {
		pq, ok := byID[r.PlayerQuizID]
		if !ok {
			continue
		}
		entries = append(entries, toEntry(r.Rank, pq))
	}
	return entries, nil
}

// errBoardDrift marks a sorted set holding members the store no longer
// reports as completed. Adding scores cannot repair it.
var errBoardDrift = errors.New("leaderboard holds unknown members")

// sync repopulates the sorted set whenever its size differs from the number
// of completed player quizzes, so a score that failed to reach Redis is
// restored on the next read.
func (s *LeaderboardService) sync(ctx context.Context, sessionID string) error {
	count, err := s.cache.Count(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to count leaderboard: %w", err)
	}
	completed, err := s.playerQuizzes.CountCompletedBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to count completed player quizzes: %w", err)
	}
	if count == completed {
		return nil
	}
	if count > completed {
		return errBoardDrift
	}

	pqs, err := s.playerQuizzes.ListCompletedBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to list completed player quizzes: %w", err)
	}
	for _, pq := range pqs {
		if err := s.cache.UpdateScore(ctx, sessionID, pq.ID, pq.Score); err != nil {
			return fmt.Errorf("failed to rebuild leaderboard: %w", err)
		}
	}
	logger.Info("leaderboard rebuilt", "sessionId", sessionID, "cached", count, "completed", len(pqs))
	return nil
}

// rebuild ranks straight from the store.
func (s *LeaderboardService) rebuild(ctx context.Context, sessionID string, limit int) ([]model.LeaderboardEntry, error) {
	completed, err := s.playerQuizzes.ListCompletedBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed player quizzes: %w", err)
	}
	if len(completed) > limit {
		completed = completed[:limit]
	}
	entries := make([]model.LeaderboardEntry, len(completed))
	for i, pq := range completed {
		entries[i] = toEntry(i+1, pq)
	}
	return entries, nil
}

func toEntry(rank int, pq *model.PlayerQuiz) model.LeaderboardEntry {
	return model.LeaderboardEntry{
		Rank:         rank,
		PlayerQuizID: pq.ID,
		PlayerID:     pq.PlayerID,
		DisplayName:  pq.DisplayName,
		Avatar:       pq.Avatar,
		Score:        pq.Score,
		CompletedAt:  pq.CompletedAt,
	}
}
