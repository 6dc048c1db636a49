package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique constraints the domain relies on for
// race-free joins, answers, and join codes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		CollectionSessions: {
			{Keys: bson.D{{Key: "join_code", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "quiz_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollectionPlayerQuizzes: {
			{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "player_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "score", Value: -1}}},
		},
		CollectionAnswers: {
			{Keys: bson.D{{Key: "player_quiz_id", Value: 1}, {Key: "question_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionQuestions: {
			{Keys: bson.D{{Key: "quiz_id", Value: 1}}},
		},
		CollectionQuizzes: {
			{Keys: bson.D{{Key: "creator_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollectionUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "total_points", Value: -1}}},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}
