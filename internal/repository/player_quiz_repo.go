package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizarena/internal/model"
)

type PlayerQuizRepo interface {
	// Create returns ErrDuplicate when the player already joined the session.
	Create(ctx context.Context, pq *model.PlayerQuiz) error
	GetByID(ctx context.Context, id string) (*model.PlayerQuiz, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.PlayerQuiz, error)
	GetBySessionAndPlayer(ctx context.Context, sessionID, playerID string) (*model.PlayerQuiz, error)
	ListCompletedBySession(ctx context.Context, sessionID string) ([]*model.PlayerQuiz, error)
	CountCompletedBySession(ctx context.Context, sessionID string) (int64, error)
	// UpdateScore and MarkCompleted only touch player quizzes that are not
	// completed yet; the bool reports whether a document was changed.
	UpdateScore(ctx context.Context, id string, score int) (bool, error)
	MarkCompleted(ctx context.Context, id string, score int, at time.Time) (bool, error)
	UpdateProfile(ctx context.Context, id, displayName, avatar string) (bool, error)
}

type playerQuizRepo struct {
	collection *mongo.Collection
}

func NewPlayerQuizRepo(db *mongo.Database) PlayerQuizRepo {
	return &playerQuizRepo{collection: db.Collection(CollectionPlayerQuizzes)}
}

func (r *playerQuizRepo) Create(ctx context.Context, pq *model.PlayerQuiz) error {
	if pq.ID == "" {
		pq.ID = NewID()
	}
	if pq.JoinedAt.IsZero() {
		pq.JoinedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, pq)
	return translateWriteErr(err)
}

func (r *playerQuizRepo) GetByID(ctx context.Context, id string) (*model.PlayerQuiz, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *playerQuizRepo) GetBySessionAndPlayer(ctx context.Context, sessionID, playerID string) (*model.PlayerQuiz, error) {
	return r.findOne(ctx, bson.M{"session_id": sessionID, "player_id": playerID})
}

func (r *playerQuizRepo) findOne(ctx context.Context, filter bson.M) (*model.PlayerQuiz, error) {
	var pq model.PlayerQuiz
	err := r.collection.FindOne(ctx, filter).Decode(&pq)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pq, nil
}

func (r *playerQuizRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.PlayerQuiz, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *playerQuizRepo) ListCompletedBySession(ctx context.Context, sessionID string) ([]*model.PlayerQuiz, error) {
	opts := options.Find().SetSort(bson.D{{Key: "score", Value: -1}, {Key: "completed_at", Value: 1}})
	return r.find(ctx, bson.M{"session_id": sessionID, "completed_at": bson.M{"$ne": nil}}, opts)
}

func (r *playerQuizRepo) CountCompletedBySession(ctx context.Context, sessionID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"session_id": sessionID, "completed_at": bson.M{"$ne": nil}})
}

func (r *playerQuizRepo) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*model.PlayerQuiz, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	pqs := []*model.PlayerQuiz{}
	if err := cursor.All(ctx, &pqs); err != nil {
		return nil, err
	}
	return pqs, nil
}

func (r *playerQuizRepo) UpdateScore(ctx context.Context, id string, score int) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "completed_at": nil},
		bson.M{"$set": bson.M{"score": score}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *playerQuizRepo) MarkCompleted(ctx context.Context, id string, score int, at time.Time) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "completed_at": nil},
		bson.M{"$set": bson.M{"score": score, "completed_at": at}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *playerQuizRepo) UpdateProfile(ctx context.Context, id, displayName, avatar string) (bool, error) {
	set := bson.M{}
	if displayName != "" {
		set["display_name"] = displayName
	}
	if avatar != "" {
		set["avatar"] = avatar
	}
	if len(set) == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		return n > 0, err
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
