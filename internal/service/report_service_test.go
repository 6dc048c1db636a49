package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizarena/internal/model"
)

func TestPlayerResultRevealsAnswersAfterSession(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host, player := env.user("host"), env.user("alice")
	quiz, qs := env.quiz(host.ID, 10, mcq("Q1", "A", 3, "A", "B"), mcq("Q2", "B", 2, "A", "B"))
	s := env.session(quiz.ID, host.ID)
	pq := env.join(s, player.ID)

	_, err := env.completion.Complete(env.ctx, model.CompleteRequest{PlayerQuizID: pq.ID, Answers: []model.AnswerSubmission{
		{QuestionID: qs[0].ID, SubmittedAnswer: model.TextAnswer("A")},
		{QuestionID: qs[1].ID, SubmittedAnswer: model.TextAnswer("A")},
	}})
	require.NoError(t, err)

	result, err := env.reports.PlayerResult(env.ctx, s.ID, player.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Score)
	assert.Equal(t, quiz.ID, result.QuizID)
	require.Len(t, result.Answers, 2)
	for _, a := range result.Answers {
		assert.True(t, a.CorrectAnswer.Empty(), "answers hidden while the session runs")
	}

	env.advance(11 * time.Minute)
	result, err = env.reports.PlayerResult(env.ctx, s.ID, player.ID)
	require.NoError(t, err)
	correct := 0
	for _, a := range result.Answers {
		assert.False(t, a.CorrectAnswer.Empty())
		if a.IsCorrect {
			correct++
			assert.Equal(t, 3, a.Points)
		}
	}
	assert.Equal(t, 1, correct)
}

func TestPlayerResultForNonParticipant(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host, stranger := env.user("host"), env.user("stranger")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 3))
	s := env.session(quiz.ID, host.ID)

	result, err := env.reports.PlayerResult(env.ctx, s.ID, stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, result.Answers)
	assert.Nil(t, result.CompletedAt)
}
