package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"quizarena/internal/model"
)

type QuestionRepo interface {
	Create(ctx context.Context, question *model.Question) error
	CreateMany(ctx context.Context, questions []*model.Question) error
	GetByID(ctx context.Context, id string) (*model.Question, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Question, error)
	ListByQuiz(ctx context.Context, quizID string) ([]*model.Question, error)
	SumPointsByQuiz(ctx context.Context, quizID string) (int, error)
}

type questionRepo struct {
	collection *mongo.Collection
}

func NewQuestionRepo(db *mongo.Database) QuestionRepo {
	return &questionRepo{collection: db.Collection(CollectionQuestions)}
}

func (r *questionRepo) Create(ctx context.Context, question *model.Question) error {
	prepareQuestion(question)
	_, err := r.collection.InsertOne(ctx, question)
	return translateWriteErr(err)
}

func (r *questionRepo) CreateMany(ctx context.Context, questions []*model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	docs := make([]interface{}, len(questions))
	for i, q := range questions {
		prepareQuestion(q)
		docs[i] = q
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return translateWriteErr(err)
}

func prepareQuestion(q *model.Question) {
	if q.ID == "" {
		q.ID = NewID()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
}

func (r *questionRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.Question, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *questionRepo) ListByQuiz(ctx context.Context, quizID string) ([]*model.Question, error) {
	return r.find(ctx, bson.M{"quiz_id": quizID})
}

func (r *questionRepo) find(ctx context.Context, filter bson.M) ([]*model.Question, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	questions := []*model.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) SumPointsByQuiz(ctx context.Context, quizID string) (int, error) {
	return sumField(ctx, r.collection, bson.M{"quiz_id": quizID}, "$points")
}

// sumField runs a $sum aggregation over the documents matching filter.
func sumField(ctx context.Context, coll *mongo.Collection, filter bson.M, field string) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: field}}},
		}}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
