package model

import "time"

// PlayerQuiz is one user's participation in one session.
type PlayerQuiz struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	SessionID   string     `json:"session_id" bson:"session_id"`
	QuizID      string     `json:"quiz_id" bson:"quiz_id"`
	PlayerID    string     `json:"player_id" bson:"player_id"`
	Score       int        `json:"score" bson:"score"`
	CompletedAt *time.Time `json:"completed_at" bson:"completed_at"`
	DisplayName string     `json:"displayName" bson:"display_name"`
	Avatar      string     `json:"avatar,omitempty" bson:"avatar,omitempty"`
	JoinedAt    time.Time  `json:"joinedAt" bson:"joined_at"`
}

func (p *PlayerQuiz) Completed() bool {
	return p.CompletedAt != nil
}
