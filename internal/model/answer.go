package model

import "time"

// Answer is the graded record for one (player quiz, question) pair.
type Answer struct {
	ID              string      `json:"id" bson:"_id,omitempty"`
	PlayerQuizID    string      `json:"player_quiz_id" bson:"player_quiz_id"`
	QuestionID      string      `json:"question_id" bson:"question_id"`
	SubmittedAnswer AnswerValue `json:"submitted_answer" bson:"submitted_answer"`
	IsCorrect       bool        `json:"is_correct" bson:"is_correct"`
	Points          int         `json:"points" bson:"points"`
	CreatedAt       time.Time   `json:"createdAt" bson:"created_at"`
}
