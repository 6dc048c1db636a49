package model

import "time"

// Quiz is an authored template that sessions are hosted from.
type Quiz struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	CreatorID   string    `json:"creator_id" bson:"creator_id"`
	Duration    int       `json:"duration" bson:"duration"` // minutes
	TotalPoints int       `json:"total_points" bson:"total_points"`
	Questions   []string  `json:"questions" bson:"questions"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}
