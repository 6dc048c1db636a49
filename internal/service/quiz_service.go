package service

import (
	"context"
	"fmt"
	"strings"

	"quizarena/internal/model"
	"quizarena/internal/repository"
	"quizarena/internal/security"
	"quizarena/pkg/apperr"
	"quizarena/pkg/logger"
)

// QuizService handles quiz authoring
type QuizService struct {
	quizzes   repository.QuizRepo
	questions repository.QuestionRepo
	users     repository.UserRepo
}

// NewQuizService creates a new quiz service
func NewQuizService(quizzes repository.QuizRepo, questions repository.QuestionRepo, users repository.UserRepo) *QuizService {
	return &QuizService{
		quizzes:   quizzes,
		questions: questions,
		users:     users,
	}
}

// QuizDetail is a quiz with its questions, answers included.
type QuizDetail struct {
	Quiz      *model.Quiz       `json:"quiz"`
	Questions []*model.Question `json:"questions"`
}

// CreateQuiz stores a quiz and its initial questions
func (s *QuizService) CreateQuiz(ctx context.Context, req model.CreateQuizRequest) (*model.Quiz, error) {
	title := security.SanitizeText(req.Title, security.MaxTitleLength)
	description := security.SanitizeText(req.Description, security.MaxTextLength)
	switch {
	case title == "":
		return nil, apperr.Validation("Quiz title is required")
	case description == "":
		return nil, apperr.Validation("Quiz description is required")
	case req.CreatorID == "":
		return nil, apperr.Validation("Creator ID is required")
	case len(req.Questions) > maxQuizQuestions:
		return nil, apperr.Validation(fmt.Sprintf("A quiz can have at most %d questions", maxQuizQuestions))
	}
	if req.Duration < 0 {
		return nil, apperr.Validation("Duration must not be negative")
	}

	quiz := &model.Quiz{
		ID:          repository.NewID(),
		Title:       title,
		Description: description,
		CreatorID:   req.CreatorID,
		Duration:    req.Duration,
		Questions:   []string{},
	}

	questions := make([]*model.Question, 0, len(req.Questions))
	for i, in := range req.Questions {
		q, err := BuildQuestion(quiz.ID, in)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("Question %d: %s", i+1, apperr.PublicMessage(err)))
		}
		questions = append(questions, q)
		quiz.Questions = append(quiz.Questions, q.ID)
		quiz.TotalPoints += q.Points
	}

	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}
	if len(questions) > 0 {
		if err := s.questions.CreateMany(ctx, questions); err != nil {
			return nil, fmt.Errorf("failed to create questions: %w", err)
		}
	}
	if err := s.users.AddHostedQuiz(ctx, req.CreatorID, quiz.ID); err != nil {
		logger.Warn("failed to record hosted quiz", "userId", req.CreatorID, "quizId", quiz.ID, "error", err)
	}

	logger.Info("quiz created", "quizId", quiz.ID, "questions", len(questions))
	return quiz, nil
}

// AddQuestion appends one question and recomputes the quiz total
func (s *QuizService) AddQuestion(ctx context.Context, quizID, userID string, in model.QuestionInput) (*model.Question, error) {
	if strings.TrimSpace(quizID) == "" || strings.TrimSpace(in.Type) == "" || strings.TrimSpace(in.Text) == "" || in.CorrectAnswer.Empty() {
		return nil, apperr.Validation("Missing required fields")
	}

	quiz, err := s.ownedQuiz(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) >= maxQuizQuestions {
		return nil, apperr.Validation(fmt.Sprintf("A quiz can have at most %d questions", maxQuizQuestions))
	}

	q, err := BuildQuestion(quiz.ID, in)
	if err != nil {
		return nil, err
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	if err := s.attach(ctx, quiz.ID, []*model.Question{q}); err != nil {
		return nil, err
	}
	return q, nil
}

// attach links stored questions to the quiz and recomputes total_points.
func (s *QuizService) attach(ctx context.Context, quizID string, questions []*model.Question) error {
	for _, q := range questions {
		if err := s.quizzes.AppendQuestion(ctx, quizID, q.ID); err != nil {
			return fmt.Errorf("failed to link question: %w", err)
		}
	}
	total, err := s.questions.SumPointsByQuiz(ctx, quizID)
	if err != nil {
		return fmt.Errorf("failed to sum quiz points: %w", err)
	}
	if err := s.quizzes.SetTotalPoints(ctx, quizID, total); err != nil {
		return fmt.Errorf("failed to update quiz points: %w", err)
	}
	return nil
}

// GetQuiz returns a quiz with answers to its creator
func (s *QuizService) GetQuiz(ctx context.Context, quizID, userID string) (*QuizDetail, error) {
	if strings.TrimSpace(quizID) == "" {
		return nil, apperr.Validation("Quiz Id is required")
	}
	quiz, err := s.ownedQuiz(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}
	questions, err := s.orderedQuestions(ctx, quiz)
	if err != nil {
		return nil, err
	}
	return &QuizDetail{Quiz: quiz, Questions: questions}, nil
}

// ListMine lists quizzes authored by the user
func (s *QuizService) ListMine(ctx context.Context, userID string) ([]*model.Quiz, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("User authentication required")
	}
	quizzes, err := s.quizzes.ListByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *QuizService) ownedQuiz(ctx context.Context, quizID, userID string) (*model.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz == nil {
		return nil, apperr.NotFound("Quiz not found")
	}
	if quiz.CreatorID != userID {
		return nil, apperr.Forbidden("Only the quiz creator can do this")
	}
	return quiz, nil
}

// orderedQuestions loads a quiz's questions in authored order.
func (s *QuizService) orderedQuestions(ctx context.Context, quiz *model.Quiz) ([]*model.Question, error) {
	return loadOrdered(ctx, s.questions, quiz)
}

func loadOrdered(ctx context.Context, questions repository.QuestionRepo, quiz *model.Quiz) ([]*model.Question, error) {
	found, err := questions.GetByIDs(ctx, quiz.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	byID := make(map[string]*model.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}
	ordered := make([]*model.Question, 0, len(found))
	for _, id := range quiz.Questions {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// BuildQuestion validates authored input and returns a question ready to
// store. Unknown question types are rejected here so grading never sees one.
func BuildQuestion(quizID string, in model.QuestionInput) (*model.Question, error) {
	qType, ok := model.ParseQuestionType(in.Type)
	if !ok {
		return nil, apperr.Validation("Unsupported question type")
	}
	text := security.SanitizeText(in.Text, security.MaxTextLength)
	if text == "" {
		return nil, apperr.Validation("Question text is required")
	}
	if in.Points <= 0 {
		return nil, apperr.Validation("Question points must be positive")
	}

	options := security.CleanList(in.Options, security.MaxOptionLength)
	correct, err := normalizeCorrectAnswer(qType, options, in.CorrectAnswer)
	if err != nil {
		return nil, err
	}
	if qType == model.QuestionTypeRanking && len(options) == 0 {
		options = append([]string(nil), correct.List...)
	}

	return &model.Question{
		ID:            repository.NewID(),
		QuizID:        quizID,
		Type:          qType,
		Text:          text,
		Options:       options,
		CorrectAnswer: correct,
		Points:        in.Points,
		Hint:          security.SanitizeText(in.Hint, security.MaxTextLength),
		MediaURL:      security.SanitizeText(in.MediaURL, security.MaxURLLength),
	}, nil
}

func normalizeCorrectAnswer(qType model.QuestionType, options []string, raw model.AnswerValue) (model.AnswerValue, error) {
	if qType == model.QuestionTypeRanking {
		if !raw.IsList {
			return model.AnswerValue{}, apperr.Validation("Ranking answer must be a list")
		}
		items := security.CleanList(raw.List, security.MaxOptionLength)
		if len(items) == 0 {
			return model.AnswerValue{}, apperr.Validation("Correct answer is required")
		}
		if len(options) > 0 && !samePermutation(items, options) {
			return model.AnswerValue{}, apperr.Validation("Ranking answer must order the given options")
		}
		return model.ListAnswer(items...), nil
	}

	if raw.IsList {
		return model.AnswerValue{}, apperr.Validation("Correct answer must be a single value")
	}
	text := security.CleanText(raw.Text, security.MaxOptionLength)
	if text == "" {
		return model.AnswerValue{}, apperr.Validation("Correct answer is required")
	}
	if qType == model.QuestionTypeMCQ && len(options) > 0 && !containsFold(options, text) {
		return model.AnswerValue{}, apperr.Validation("Correct answer must be one of the options")
	}
	return model.TextAnswer(text), nil
}

func containsFold(items []string, want string) bool {
	for _, item := range items {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

func samePermutation(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, item := range a {
		counts[strings.ToLower(strings.TrimSpace(item))]++
	}
	for _, item := range b {
		key := strings.ToLower(strings.TrimSpace(item))
		if counts[key] == 0 {
			return false
		}
		counts[key]--
	}
	return true
}
