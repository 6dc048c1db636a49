package model

import "time"

// Typed request/response pairs, one per operation.

type CreateSessionRequest struct {
	QuizID   string `json:"quizId" validate:"required"`
	Duration int    `json:"duration,omitempty" validate:"gte=0"`
	HostID   string `json:"-"`
}

type RehostRequest struct {
	QuizID   string `json:"quizId" validate:"required"`
	Duration int    `json:"duration,omitempty" validate:"gte=0"`
	HostID   string `json:"-"`
}

type CreateSessionResponse struct {
	Success   bool      `json:"success"`
	SessionID string    `json:"sessionId"`
	JoinCode  string    `json:"join_code"`
	EndTime   time.Time `json:"end_time"`
	Message   string    `json:"message"`
}

type JoinResponse struct {
	Success      bool   `json:"success"`
	SessionID    string `json:"session_id"`
	PlayerQuizID string `json:"player_quiz_id"`
}

// AnswerSubmission is one answer inside a completion batch.
type AnswerSubmission struct {
	QuestionID      string      `json:"question_id" validate:"required"`
	SubmittedAnswer AnswerValue `json:"submitted_answer"`
}

type CompleteRequest struct {
	PlayerQuizID string             `json:"player_quiz_id" validate:"required"`
	Answers      []AnswerSubmission `json:"answers" validate:"required,dive"`
	UserID       string             `json:"-"`
}

type CompletionResult struct {
	Success     bool      `json:"success"`
	SessionID   string    `json:"session_id"`
	Score       int       `json:"score"`
	Rank        int       `json:"rank,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

type SubmitAnswerRequest struct {
	PlayerQuizID    string      `json:"player_quiz_id" validate:"required"`
	QuestionID      string      `json:"question_id" validate:"required"`
	SubmittedAnswer AnswerValue `json:"submitted_answer" validate:"required"`
	UserID          string      `json:"-"`
}

type SubmitAnswerResult struct {
	Success      bool `json:"success"`
	IsCorrect    bool `json:"is_correct"`
	PointsEarned int  `json:"pointsEarned"`
}

type PlayerQuizResponse struct {
	Success     bool       `json:"success"`
	SessionID   string     `json:"session_id"`
	Score       int        `json:"score"`
	CompletedAt *time.Time `json:"completed_at"`
}

type PlayerSettingsRequest struct {
	PlayerQuizID string `json:"playerQuizId" validate:"required"`
	DisplayName  string `json:"displayName" validate:"max=40"`
	Avatar       string `json:"avatar" validate:"max=512"`
	UserID       string `json:"-"`
}

// QuestionInput is an authored question before it is stored.
type QuestionInput struct {
	Type          string      `json:"question_type" validate:"required"`
	Text          string      `json:"question_text" validate:"required"`
	Options       []string    `json:"options"`
	CorrectAnswer AnswerValue `json:"correct_answer" validate:"required"`
	Points        int         `json:"points" validate:"required,gt=0"`
	Hint          string      `json:"hint,omitempty"`
	MediaURL      string      `json:"media_url,omitempty" validate:"omitempty,url"`
}

type CreateQuizRequest struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Duration    int             `json:"duration" validate:"gte=0"`
	Questions   []QuestionInput `json:"questions" validate:"omitempty,dive"`
	CreatorID   string          `json:"-"`
}

type CreateQuizResponse struct {
	Success bool   `json:"success"`
	QuizID  string `json:"quizId"`
	Message string `json:"message"`
}

type QuestionConfig struct {
	Points int `json:"points" validate:"gte=0"`
}

type GenerateQuizRequest struct {
	Topic           string           `json:"topic" validate:"required"`
	NumQuestions    int              `json:"numQuestions" validate:"required,gt=0,lte=50"`
	Duration        int              `json:"duration" validate:"gte=0"`
	QuestionConfigs []QuestionConfig `json:"questionConfigs" validate:"omitempty,dive"`
	CreatorID       string           `json:"-"`
}

// GeneratedQuestion is one item returned by the language model.
type GeneratedQuestion struct {
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// SessionPlayView is the player-facing view of a running session.
type SessionPlayView struct {
	Success   bool             `json:"success"`
	SessionID string           `json:"session_id"`
	Quiz      QuizSummary      `json:"quiz"`
	Questions []PublicQuestion `json:"questions"`
	Duration  int              `json:"duration"`
	StartTime time.Time        `json:"start_time"`
	EndTime   time.Time        `json:"end_time"`
	IsActive  bool             `json:"is_active"`
}

type QuizSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TotalPoints int    `json:"total_points"`
}

// AnswerReview pairs a recorded answer with its question for result pages.
type AnswerReview struct {
	QuestionID      string       `json:"question_id"`
	QuestionText    string       `json:"question_text"`
	QuestionType    QuestionType `json:"question_type"`
	Options         []string     `json:"options,omitempty"`
	CorrectAnswer   AnswerValue  `json:"correct_answer"`
	SubmittedAnswer AnswerValue  `json:"submitted_answer"`
	IsCorrect       bool         `json:"is_correct"`
	Points          int          `json:"points"`
}

type PlayerResult struct {
	QuizID      string         `json:"quiz_id"`
	DisplayName string         `json:"displayName"`
	Score       int            `json:"score"`
	CompletedAt *time.Time     `json:"completed_at"`
	EndTime     time.Time      `json:"end_time"`
	Answers     []AnswerReview `json:"answers"`
}

type LeaderboardEntry struct {
	Rank         int        `json:"rank"`
	PlayerQuizID string     `json:"player_quiz_id"`
	PlayerID     string     `json:"player_id"`
	DisplayName  string     `json:"displayName"`
	Avatar       string     `json:"avatar,omitempty"`
	Score        int        `json:"score"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

type UserRanking struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	TotalPoints int    `json:"total_points"`
}
