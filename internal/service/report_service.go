package service

import (
	"context"
	"fmt"

	"quizarena/internal/model"
	"quizarena/internal/repository"
)

// ReportService builds per-player result pages
type ReportService struct {
	sessions      *SessionService
	playerQuizzes repository.PlayerQuizRepo
	answers       repository.AnswerRepo
	questions     repository.QuestionRepo
	clock
}

// NewReportService creates a new report service
func NewReportService(
	sessions *SessionService,
	playerQuizzes repository.PlayerQuizRepo,
	answers repository.AnswerRepo,
	questions repository.QuestionRepo,
) *ReportService {
	return &ReportService{
		sessions:      sessions,
		playerQuizzes: playerQuizzes,
		answers:       answers,
		questions:     questions,
	}
}

// PlayerResult returns the user's graded answers for a session. Correct
// answers stay hidden until the session is over. A user who never joined
// gets an empty result.
func (s *ReportService) PlayerResult(ctx context.Context, sessionID, userID string) (*model.PlayerResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	result := &model.PlayerResult{
		QuizID:  session.QuizID,
		EndTime: session.EndTime,
		Answers: []model.AnswerReview{},
	}

	pq, err := s.playerQuizzes.GetBySessionAndPlayer(ctx, session.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player quiz: %w", err)
	}
	if pq == nil {
		return result, nil
	}
	result.DisplayName = pq.DisplayName
	result.Score = pq.Score
	result.CompletedAt = pq.CompletedAt

	answers, err := s.answers.ListByPlayerQuiz(ctx, pq.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	ids := make([]string, len(answers))
	for i, a := range answers {
		ids[i] = a.QuestionID
	}
	questions, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	byID := make(map[string]*model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	reveal := !session.IsActive || session.Expired(s.current())
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		review := model.AnswerReview{
			QuestionID:      q.ID,
			QuestionText:    q.Text,
			QuestionType:    q.Type,
			Options:         q.Options,
			SubmittedAnswer: a.SubmittedAnswer,
			IsCorrect:       a.IsCorrect,
			Points:          a.Points,
		}
		if reveal {
			review.CorrectAnswer = q.CorrectAnswer
		}
		result.Answers = append(result.Answers, review)
	}
	return result, nil
}
