// Package repository persists the quiz domain in MongoDB. Lookups return
// nil, nil when a document does not exist.
package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = errors.New("duplicate key")

// ErrNotFound is returned by updates that matched no document.
var ErrNotFound = errors.New("document not found")

const (
	CollectionQuizzes       = "quizzes"
	CollectionQuestions     = "questions"
	CollectionSessions      = "sessions"
	CollectionPlayerQuizzes = "player_quizzes"
	CollectionAnswers       = "answers"
	CollectionUsers         = "users"
)

// NewID returns a fresh document id in hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

func translateWriteErr(err error) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
