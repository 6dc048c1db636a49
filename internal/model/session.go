package model

import "time"

// Session is one timed, joinable hosting of a quiz.
type Session struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	QuizID    string     `json:"quiz_id" bson:"quiz_id"`
	HostID    string     `json:"host_id" bson:"host_id"`
	JoinCode  string     `json:"join_code" bson:"join_code"`
	Duration  int        `json:"duration" bson:"duration"` // minutes
	StartTime time.Time  `json:"start_time" bson:"start_time"`
	EndTime   time.Time  `json:"end_time" bson:"end_time"`
	IsActive  bool       `json:"is_active" bson:"is_active"`
	EndedAt   *time.Time `json:"ended_at,omitempty" bson:"ended_at,omitempty"`
	CreatedAt time.Time  `json:"createdAt" bson:"created_at"`
}

// Expired reports whether now is past the session window.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.EndTime)
}
