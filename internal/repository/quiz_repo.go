package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizarena/internal/model"
)

type QuizRepo interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	GetByID(ctx context.Context, id string) (*model.Quiz, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*model.Quiz, error)
	AppendQuestion(ctx context.Context, quizID, questionID string) error
	SetTotalPoints(ctx context.Context, quizID string, total int) error
}

type quizRepo struct {
	collection *mongo.Collection
}

func NewQuizRepo(db *mongo.Database) QuizRepo {
	return &quizRepo{collection: db.Collection(CollectionQuizzes)}
}

func (r *quizRepo) Create(ctx context.Context, quiz *model.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = NewID()
	}
	now := time.Now()
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = now
	}
	quiz.UpdatedAt = now
	if quiz.Questions == nil {
		quiz.Questions = []string{}
	}
	_, err := r.collection.InsertOne(ctx, quiz)
	return translateWriteErr(err)
}

func (r *quizRepo) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&quiz)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepo) ListByCreator(ctx context.Context, creatorID string) ([]*model.Quiz, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"creator_id": creatorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	quizzes := []*model.Quiz{}
	if err := cursor.All(ctx, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *quizRepo) AppendQuestion(ctx context.Context, quizID, questionID string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": quizID}, bson.M{
		"$push": bson.M{"questions": questionID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

func (r *quizRepo) SetTotalPoints(ctx context.Context, quizID string, total int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": quizID}, bson.M{
		"$set": bson.M{"total_points": total, "updated_at": time.Now()},
	})
	return err
}
