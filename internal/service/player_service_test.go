package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizarena/internal/model"
	"quizarena/pkg/apperr"
)

func TestJoinCreatesPlayerQuiz(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host, player := env.user("host"), env.user("alice")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	s := env.session(quiz.ID, host.ID)

	pq, err := env.players.JoinByCode(env.ctx, s.JoinCode, player.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, pq.SessionID)
	assert.Equal(t, quiz.ID, pq.QuizID)
	assert.Equal(t, player.ID, pq.PlayerID)
	assert.Zero(t, pq.Score)
	assert.Nil(t, pq.CompletedAt)
	assert.Equal(t, "alice", pq.DisplayName)
	assert.Equal(t, 1, env.bc.count(MsgPlayerJoined))
}

func TestJoinTwiceConflicts(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host, player := env.user("host"), env.user("alice")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	s := env.session(quiz.ID, host.ID)

	first := env.join(s, player.ID)
	_, err := env.players.Join(env.ctx, s, player.ID)
	requireCode(t, err, apperr.CodeConflict)
	assert.Equal(t, "Player already joined this session", apperr.PublicMessage(err))

	stored, err := env.store.PlayerQuizzes.GetBySessionAndPlayer(env.ctx, s.ID, player.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
}

func TestConcurrentJoinsCreateOnePlayerQuiz(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host, player := env.user("host"), env.user("alice")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	s := env.session(quiz.ID, host.ID)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, conflicts := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.players.Join(env.ctx, s, player.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if apperr.Is(err, apperr.CodeConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 19, conflicts)
}

func TestJoinRequiresUser(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host := env.user("host")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	s := env.session(quiz.ID, host.ID)

	_, err := env.players.JoinByCode(env.ctx, s.JoinCode, "")
	requireCode(t, err, apperr.CodeUnauthorized)
	assert.Equal(t, "User authentication required", apperr.PublicMessage(err))
}

func TestGetPlayerQuiz(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})

	_, err := env.players.Get(env.ctx, "")
	requireCode(t, err, apperr.CodeValidation)
	assert.Equal(t, "Player Quiz Id is required", apperr.PublicMessage(err))

	_, err = env.players.Get(env.ctx, "missing")
	requireCode(t, err, apperr.CodeNotFound)
}

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host, player, other := env.user("host"), env.user("alice"), env.user("mallory")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	pq := env.join(env.session(quiz.ID, host.ID), player.ID)

	_, err := env.players.UpdateSettings(env.ctx, model.PlayerSettingsRequest{PlayerQuizID: pq.ID, DisplayName: "x", UserID: other.ID})
	requireCode(t, err, apperr.CodeForbidden)

	updated, err := env.players.UpdateSettings(env.ctx, model.PlayerSettingsRequest{
		PlayerQuizID: pq.ID,
		DisplayName:  "<b>Ace</b>",
		Avatar:       "/avatars/fox.png",
		UserID:       player.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ace", updated.DisplayName)

	stored, err := env.store.PlayerQuizzes.GetByID(env.ctx, pq.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ace", stored.DisplayName)
	assert.Equal(t, "/avatars/fox.png", stored.Avatar)
}
