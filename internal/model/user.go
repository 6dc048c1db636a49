package model

import "time"

type Badge struct {
	Name        string    `json:"name" bson:"name"`
	ImageURL    string    `json:"imageUrl" bson:"image_url"`
	Description string    `json:"description" bson:"description"`
	AwardedAt   time.Time `json:"awardedAt" bson:"awarded_at"`
}

type User struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email" bson:"email"`
	PasswordHash  string    `json:"-" bson:"password_hash"`
	IsVerified    bool      `json:"isVerified" bson:"is_verified"`
	TotalPoints   int       `json:"total_points" bson:"total_points"`
	Badges        []Badge   `json:"badges" bson:"badges"`
	HostedQuizzes []string  `json:"hosted_quizzes" bson:"hosted_quizzes"`
	HasSeenTour   bool      `json:"hasSeenTour" bson:"has_seen_tour"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}
