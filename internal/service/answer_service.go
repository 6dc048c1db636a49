package service

import (
	"context"
	"fmt"
	"strings"

	"quizarena/internal/model"
	"quizarena/internal/repository"
	"quizarena/pkg/apperr"
)

// AnswerService grades single answers while a player is still playing
type AnswerService struct {
	playerQuizzes repository.PlayerQuizRepo
	recorder      *AnswerRecorder
	aggregator    *ScoreAggregator
}

// NewAnswerService creates a new answer service
func NewAnswerService(playerQuizzes repository.PlayerQuizRepo, recorder *AnswerRecorder, aggregator *ScoreAggregator) *AnswerService {
	return &AnswerService{
		playerQuizzes: playerQuizzes,
		recorder:      recorder,
		aggregator:    aggregator,
	}
}

// Submit grades and stores one answer, then refreshes the running score.
// Resubmitting a question replaces the earlier answer.
func (s *AnswerService) Submit(ctx context.Context, req model.SubmitAnswerRequest) (*model.SubmitAnswerResult, error) {
	if strings.TrimSpace(req.PlayerQuizID) == "" || strings.TrimSpace(req.QuestionID) == "" || req.SubmittedAnswer.Empty() {
		return nil, apperr.Validation("Missing required fields")
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

	recorded, err := s.recorder.Record(ctx, pq, []model.AnswerSubmission{{
		QuestionID:      req.QuestionID,
		SubmittedAnswer: req.SubmittedAnswer,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	total, err := s.aggregator.TotalPoints(ctx, pq.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.playerQuizzes.UpdateScore(ctx, pq.ID, total); err != nil {
		return nil, fmt.Errorf("failed to update score: %w", err)
	}

	answer := recorded[0]
	return &model.SubmitAnswerResult{
		Success:      true,
		IsCorrect:    answer.IsCorrect,
		PointsEarned: answer.Points,
	}, nil
}
