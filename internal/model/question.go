package model

import (
	"strings"
	"time"
)

// QuestionType is the grading policy of a question.
type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "MCQ"
	QuestionTypeShortAnswer QuestionType = "Short Answer"
	QuestionTypeImage       QuestionType = "Image"
	QuestionTypeRanking     QuestionType = "Ranking"
)

var questionTypes = []QuestionType{
	QuestionTypeMCQ,
	QuestionTypeShortAnswer,
	QuestionTypeImage,
	QuestionTypeRanking,
}

// ParseQuestionType matches raw case-insensitively against the known types.
func ParseQuestionType(raw string) (QuestionType, bool) {
	raw = strings.TrimSpace(raw)
	for _, t := range questionTypes {
		if strings.EqualFold(raw, string(t)) {
			return t, true
		}
	}
	return "", false
}

// Question belongs to exactly one quiz.
type Question struct {
	ID            string       `json:"id" bson:"_id,omitempty"`
	QuizID        string       `json:"quiz_id" bson:"quiz_id"`
	Type          QuestionType `json:"question_type" bson:"question_type"`
	Text          string       `json:"question_text" bson:"question_text"`
	Options       []string     `json:"options,omitempty" bson:"options,omitempty"`
	CorrectAnswer AnswerValue  `json:"correct_answer" bson:"correct_answer"`
	Points        int          `json:"points" bson:"points"`
	Hint          string       `json:"hint,omitempty" bson:"hint,omitempty"`
	MediaURL      string       `json:"media_url,omitempty" bson:"media_url,omitempty"`
	CreatedAt     time.Time    `json:"createdAt" bson:"created_at"`
}

// PublicQuestion is what players see while playing; it has no correct answer.
type PublicQuestion struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"question_type"`
	Text     string       `json:"question_text"`
	Options  []string     `json:"options,omitempty"`
	Points   int          `json:"points"`
	Hint     string       `json:"hint,omitempty"`
	MediaURL string       `json:"media_url,omitempty"`
}

func (q *Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:       q.ID,
		Type:     q.Type,
		Text:     q.Text,
		Options:  q.Options,
		Points:   q.Points,
		Hint:     q.Hint,
		MediaURL: q.MediaURL,
	}
}
