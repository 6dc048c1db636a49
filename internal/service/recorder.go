package service

import (
	"context"
	"fmt"
	"strings"

	"quizarena/internal/grading"
	"quizarena/internal/metrics"
	"quizarena/internal/model"
	"quizarena/internal/repository"
	"quizarena/pkg/apperr"
)

// QuestionLookup resolves a question by id. Both the question repository
// and the read-through question cache satisfy it.
type QuestionLookup interface {
	GetByID(ctx context.Context, id string) (*model.Question, error)
}

// AnswerRecorder grades a batch of answers and stores it in one write
type AnswerRecorder struct {
	questions QuestionLookup
	answers   repository.AnswerRepo
	metrics   *metrics.Metrics
}

// NewAnswerRecorder creates a new answer recorder
func NewAnswerRecorder(questions QuestionLookup, answers repository.AnswerRepo) *AnswerRecorder {
	return &AnswerRecorder{questions: questions, answers: answers}
}

// SetMetrics sets the metrics sink
func (r *AnswerRecorder) SetMetrics(m *metrics.Metrics) {
	r.metrics = m
}

// Grade resolves and grades every submission without writing anything.
// A missing question fails the whole batch.
func (r *AnswerRecorder) Grade(ctx context.Context, pq *model.PlayerQuiz, subs []model.AnswerSubmission) ([]*model.Answer, error) {
	seen := make(map[string]struct{}, len(subs))
	graded := make([]*model.Answer, 0, len(subs))

	for _, sub := range subs {
		questionID := strings.TrimSpace(sub.QuestionID)
		if questionID == "" {
			return nil, apperr.Validation("Question Id is required")
		}
		if _, dup := seen[questionID]; dup {
			return nil, apperr.Validation("Duplicate answer for question")
		}
		seen[questionID] = struct{}{}

		q, err := r.questions.GetByID(ctx, questionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get question %s: %w", questionID, err)
		}
		if q == nil || q.QuizID != pq.QuizID {
			return nil, apperr.NotFound("Question not found")
		}

		correct := grading.Grade(q, sub.SubmittedAnswer)
		graded = append(graded, &model.Answer{
			PlayerQuizID:    pq.ID,
			QuestionID:      q.ID,
			SubmittedAnswer: sub.SubmittedAnswer,
			IsCorrect:       correct,
			Points:          grading.Points(q, correct),
		})
	}
	return graded, nil
}

// Record grades the batch and persists it with a single bulk write. The
// returned slice holds the stored answers; its length is the recorded count.
func (r *AnswerRecorder) Record(ctx context.Context, pq *model.PlayerQuiz, subs []model.AnswerSubmission) ([]*model.Answer, error) {
	graded, err := r.Grade(ctx, pq, subs)
	if err != nil {
		return nil, err
	}
	if len(graded) == 0 {
		return graded, nil
	}
	if _, err := r.answers.UpsertMany(ctx, graded); err != nil {
		return nil, fmt.Errorf("failed to store answers: %w", err)
	}
	for _, a := range graded {
		r.metrics.AnswerGraded(a.IsCorrect)
	}
	return graded, nil
}

// ScoreAggregator derives a player quiz score from stored answers
type ScoreAggregator struct {
	answers repository.AnswerRepo
}

// NewScoreAggregator creates a new score aggregator
func NewScoreAggregator(answers repository.AnswerRepo) *ScoreAggregator {
	return &ScoreAggregator{answers: answers}
}

// TotalPoints sums points over every stored answer of the player quiz.
// It always reads the store.
func (a *ScoreAggregator) TotalPoints(ctx context.Context, playerQuizID string) (int, error) {
	total, err := a.answers.SumPoints(ctx, playerQuizID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}
	return total, nil
}
