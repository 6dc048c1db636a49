package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quizarena/internal/metrics"
	"quizarena/internal/model"
	"quizarena/internal/repository"
	"quizarena/pkg/apperr"
	"quizarena/pkg/logger"
)

const liveLeaderboardSize = 10

// CompletionOptions controls server-side deadline checks.
type CompletionOptions struct {
	EnforceEndTime bool
	Grace          time.Duration
}

// CompletionService finalizes a player quiz: grade, score, credit, rank
type CompletionService struct {
	playerQuizzes repository.PlayerQuizRepo
	sessions      repository.SessionRepo
	users         repository.UserRepo
	recorder      *AnswerRecorder
	aggregator    *ScoreAggregator
	leaderboard   *LeaderboardService
	broadcaster   Broadcaster
	metrics       *metrics.Metrics
	opts          CompletionOptions
	clock
}

// NewCompletionService creates a new completion service
func NewCompletionService(
	playerQuizzes repository.PlayerQuizRepo,
	sessions repository.SessionRepo,
	users repository.UserRepo,
	recorder *AnswerRecorder,
	aggregator *ScoreAggregator,
	leaderboard *LeaderboardService,
	opts CompletionOptions,
) *CompletionService {
	return &CompletionService{
		playerQuizzes: playerQuizzes,
		sessions:      sessions,
		users:         users,
		recorder:      recorder,
		aggregator:    aggregator,
		leaderboard:   leaderboard,
		broadcaster:   noopBroadcaster{},
		opts:          opts,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *CompletionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = orNoop(b)
}

// SetMetrics sets the metrics sink
func (s *CompletionService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Complete records the full answer batch and finalizes the player quiz.
// A player quiz completes at most once; the owner is credited the total once.
func (s *CompletionService) Complete(ctx context.Context, req model.CompleteRequest) (*model.CompletionResult, error) {
	if strings.TrimSpace(req.PlayerQuizID) == "" || req.Answers == nil {
		return nil, apperr.Validation("Player quiz Id and answers are required")
	}

	pq, err := s.playerQuizzes.GetByID(ctx, req.PlayerQuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player quiz: %w", err)
	}
	if pq == nil {
		return nil, apperr.NotFound("Player quiz not found")
	}
	if req.UserID != "" && pq.PlayerID != req.UserID {
		return nil, apperr.Forbidden("Player quiz belongs to another user")
	}
	if pq.Completed() {
		return nil, apperr.Conflict("Player quiz already completed")
	}

	now := s.current()
	if err := s.checkDeadline(ctx, pq, now); err != nil {
		return nil, err
	}

	if _, err := s.recorder.Record(ctx, pq, req.Answers); err != nil {
		return nil, fmt.Errorf("failed to record answers: %w", err)
	}
	total, err := s.aggregator.TotalPoints(ctx, pq.ID)
	if err != nil {
		return nil, err
	}

	// Only the caller that flips completed_at credits the user.
	marked, err := s.playerQuizzes.MarkCompleted(ctx, pq.ID, total, now)
	if err != nil {
		return nil, fmt.Errorf("failed to complete player quiz: %w", err)
	}
	if !marked {
		return nil, apperr.Conflict("Player quiz already completed")
	}
	// The completion stands even when the owner account is gone.
	if err := s.users.IncrementTotalPoints(ctx, pq.PlayerID, total); errors.Is(err, repository.ErrNotFound) {
		logger.Error("no user to credit for completed player quiz", "playerQuizId", pq.ID, "userId", pq.PlayerID, "points", total)
	} else if err != nil {
		return nil, fmt.Errorf("failed to credit user: %w", err)
	}

	pq.Score = total
	pq.CompletedAt = &now
	s.metrics.QuizCompleted(total)
	logger.Info("player quiz completed", "playerQuizId", pq.ID, "sessionId", pq.SessionID, "score", total)

	rank := s.publish(ctx, pq)

	return &model.CompletionResult{
		Success:     true,
		SessionID:   pq.SessionID,
		Score:       total,
		Rank:        rank,
		CompletedAt: now,
	}, nil
}

// checkDeadline rejects late completions when end-time enforcement is on.
func (s *CompletionService) checkDeadline(ctx context.Context, pq *model.PlayerQuiz, now time.Time) error {
	if !s.opts.EnforceEndTime {
		return nil
	}
	session, err := s.sessions.GetByID(ctx, pq.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return apperr.NotFound("Session not found")
	}
	if now.After(session.EndTime.Add(s.opts.Grace)) {
		return apperr.Validation("Session expired")
	}
	return nil
}

// publish updates the live board and returns the player's rank on it (0
// when unknown). Failures here never fail the completion.
func (s *CompletionService) publish(ctx context.Context, pq *model.PlayerQuiz) int {
	if s.leaderboard == nil {
		return 0
	}
	rank := 0
	if err := s.leaderboard.Record(ctx, pq); err != nil {
		logger.Warn("failed to update leaderboard", "sessionId", pq.SessionID, "error", err)
	} else if rank, err = s.leaderboard.Rank(ctx, pq.SessionID, pq.ID); err != nil {
		logger.Warn("failed to read rank", "sessionId", pq.SessionID, "error", err)
	}
	s.broadcaster.BroadcastToHost(pq.SessionID, MsgPlayerCompleted, map[string]interface{}{
		"player_quiz_id": pq.ID,
		"displayName":    pq.DisplayName,
		"score":          pq.Score,
		"rank":           rank,
	})

	top, err := s.leaderboard.Top(ctx, pq.SessionID, liveLeaderboardSize)
	if err != nil {
		logger.Warn("failed to read leaderboard", "sessionId", pq.SessionID, "error", err)
		return rank
	}
	s.broadcaster.BroadcastToHost(pq.SessionID, MsgLeaderboardUpdate, top)
	s.broadcaster.BroadcastToPlayers(pq.SessionID, MsgLeaderboardUpdate, top)
	return rank
}
