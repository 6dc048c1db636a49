package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizarena/internal/model"
)

type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	GetByJoinCode(ctx context.Context, code string) (*model.Session, error)
	ListByQuiz(ctx context.Context, quizID string) ([]*model.Session, error)
	// Deactivate flips is_active to false if it is still true and reports
	// whether this call made the change. endedAt is recorded when non-nil.
	Deactivate(ctx context.Context, id string, endedAt *time.Time) (bool, error)
}

type sessionRepo struct {
	collection *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{collection: db.Collection(CollectionSessions)}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	if session.ID == "" {
		session.ID = NewID()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, session)
	return translateWriteErr(err)
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *sessionRepo) GetByJoinCode(ctx context.Context, code string) (*model.Session, error) {
	return r.findOne(ctx, bson.M{"join_code": code})
}

func (r *sessionRepo) findOne(ctx context.Context, filter bson.M) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ListByQuiz(ctx context.Context, quizID string) ([]*model.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"quiz_id": quizID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []*model.Session{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) Deactivate(ctx context.Context, id string, endedAt *time.Time) (bool, error) {
	set := bson.M{"is_active": false}
	if endedAt != nil {
		set["ended_at"] = *endedAt
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "is_active": true}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
