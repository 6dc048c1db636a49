package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizarena/internal/model"
)

type AnswerRepo interface {
	// UpsertMany writes all answers in one bulk call, replacing any earlier
	// answer for the same (player quiz, question) pair.
	UpsertMany(ctx context.Context, answers []*model.Answer) (int, error)
	ListByPlayerQuiz(ctx context.Context, playerQuizID string) ([]*model.Answer, error)
	SumPoints(ctx context.Context, playerQuizID string) (int, error)
}

type answerRepo struct {
	collection *mongo.Collection
}

func NewAnswerRepo(db *mongo.Database) AnswerRepo {
	return &answerRepo{collection: db.Collection(CollectionAnswers)}
}

func (r *answerRepo) UpsertMany(ctx context.Context, answers []*model.Answer) (int, error) {
	if len(answers) == 0 {
		return 0, nil
	}

	models := make([]mongo.WriteModel, 0, len(answers))
	for _, a := range answers {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"player_quiz_id": a.PlayerQuizID, "question_id": a.QuestionID}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"submitted_answer": a.SubmittedAnswer,
					"is_correct":       a.IsCorrect,
					"points":           a.Points,
					"created_at":       a.CreatedAt,
				},
				"$setOnInsert": bson.M{"_id": NewID()},
			}).
			SetUpsert(true))
	}

	res, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return 0, translateWriteErr(err)
	}
	return int(res.UpsertedCount + res.MatchedCount), nil
}

func (r *answerRepo) ListByPlayerQuiz(ctx context.Context, playerQuizID string) ([]*model.Answer, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"player_quiz_id": playerQuizID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	answers := []*model.Answer{}
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepo) SumPoints(ctx context.Context, playerQuizID string) (int, error) {
	return sumField(ctx, r.collection, bson.M{"player_quiz_id": playerQuizID}, "$points")
}
