package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizarena/internal/model"
)

func TestLeaderboardRebuildsFromStore(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host := env.user("host")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	s := env.session(quiz.ID, host.ID)

	scores := map[string]int{"alice": 4, "bob": 9, "carol": 1}
	ids := map[string]string{}
	for name, score := range scores {
		pq := env.join(s, env.user(name).ID)
		ids[name] = pq.ID
		_, err := env.store.PlayerQuizzes.MarkCompleted(env.ctx, pq.ID, score, env.now)
		require.NoError(t, err)
	}
	// Joined but never completed.
	env.join(s, env.user("dave").ID)

	top, err := env.leaderboard.Top(env.ctx, s.ID, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, ids["bob"], top[0].PlayerQuizID)
	assert.Equal(t, ids["alice"], top[1].PlayerQuizID)
	assert.Equal(t, ids["carol"], top[2].PlayerQuizID)
	assert.Equal(t, 3, top[2].Rank)

	members, err := env.mr.ZMembers("session:" + s.ID + ":lb")
	require.NoError(t, err)
	assert.Len(t, members, 3)

	top, err = env.leaderboard.Top(env.ctx, s.ID, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "bob", top[0].DisplayName)
}

func TestLeaderboardEmptySession(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	top, err := env.leaderboard.Top(env.ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestLeaderboardFallsBackWhenRedisIsDown(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host, player := env.user("host"), env.user("alice")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	s := env.session(quiz.ID, host.ID)
	pq := env.join(s, player.ID)
	_, err := env.store.PlayerQuizzes.MarkCompleted(env.ctx, pq.ID, 7, env.now.Add(time.Second))
	require.NoError(t, err)

	env.mr.Close()
	top, err := env.leaderboard.Top(env.ctx, s.ID, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 7, top[0].Score)
}

func TestLeaderboardRestoresScoreLostWhileRedisFailed(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host, alice, bob := env.user("host"), env.user("alice"), env.user("bob")
	quiz, qs := env.quiz(host.ID, 10, mcq("Q1", "A", 3))
	s := env.session(quiz.ID, host.ID)
	alicePQ, bobPQ := env.join(s, alice.ID), env.join(s, bob.ID)

	env.mr.SetError("LOADING Redis is loading the dataset in memory")
	res, err := env.completion.Complete(env.ctx, model.CompleteRequest{
		PlayerQuizID: alicePQ.ID,
		Answers:      []model.AnswerSubmission{{QuestionID: qs[0].ID, SubmittedAnswer: model.TextAnswer("A")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rank)
	env.mr.SetError("")

	env.advance(time.Second)
	res, err = env.completion.Complete(env.ctx, model.CompleteRequest{
		PlayerQuizID: bobPQ.ID,
		Answers:      []model.AnswerSubmission{{QuestionID: qs[0].ID, SubmittedAnswer: model.TextAnswer("B")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rank)

	top, err := env.leaderboard.Top(env.ctx, s.ID, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, alicePQ.ID, top[0].PlayerQuizID)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, 3, top[0].Score)
	assert.Equal(t, bobPQ.ID, top[1].PlayerQuizID)
	assert.Equal(t, 2, top[1].Rank)

	members, err := env.mr.ZMembers("session:" + s.ID + ":lb")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestLeaderboardClampsLargeLimits(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host := env.user("host")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	s := env.session(quiz.ID, host.ID)
	for i := 0; i < 12; i++ {
		pq := env.join(s, env.user(fmt.Sprintf("player%02d", i)).ID)
		_, err := env.store.PlayerQuizzes.MarkCompleted(env.ctx, pq.ID, i, env.now)
		require.NoError(t, err)
	}

	for _, limit := range []int{12, 200} {
		top, err := env.leaderboard.Top(env.ctx, s.ID, limit)
		require.NoError(t, err)
		require.Len(t, top, 12, "limit %d", limit)
		assert.Equal(t, 11, top[0].Score)
		assert.Equal(t, 12, top[11].Rank)
	}

	top, err := env.leaderboard.Top(env.ctx, s.ID, 0)
	require.NoError(t, err)
	assert.Len(t, top, defaultLeaderboardSize)
}
