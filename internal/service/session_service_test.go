package service

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizarena/internal/model"
	"quizarena/pkg/apperr"
)

func TestCreateSessionUsesQuizDuration(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host := env.user("host")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))

	s := env.session(quiz.ID, host.ID)
	assert.True(t, s.IsActive)
	assert.Equal(t, 10, s.Duration)
	assert.Equal(t, env.now, s.StartTime)
	assert.Equal(t, env.now.Add(10*time.Minute), s.EndTime)
	assert.Len(t, s.JoinCode, joinCodeLength)
	assert.True(t, env.mr.Exists("session:code:"+s.JoinCode))

	host2, err := env.store.Users.GetByID(env.ctx, host.ID)
	require.NoError(t, err)
	assert.Contains(t, host2.HostedQuizzes, quiz.ID)
}

func TestCreateSessionDurationFallbacks(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host := env.user("host")
	quiz, _ := env.quiz(host.ID, 0, mcq("Q1", "A", 1))

	s, err := env.sessions.Create(env.ctx, model.CreateSessionRequest{QuizID: quiz.ID, HostID: host.ID, Duration: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Duration)

	s = env.session(quiz.ID, host.ID)
	assert.Equal(t, 10, s.Duration, "config default applies when quiz has none")
}

func TestCreateSessionErrors(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host := env.user("host")

	_, err := env.sessions.Create(env.ctx, model.CreateSessionRequest{QuizID: "nope", HostID: host.ID})
	requireCode(t, err, apperr.CodeNotFound)

	_, err = env.sessions.Create(env.ctx, model.CreateSessionRequest{QuizID: "nope"})
	requireCode(t, err, apperr.CodeUnauthorized)

	_, err = env.sessions.Create(env.ctx, model.CreateSessionRequest{HostID: host.ID})
	requireCode(t, err, apperr.CodeValidation)
}

func TestJoinCodesAreDistinct(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host := env.user("host")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		s := env.session(quiz.ID, host.ID)
		require.False(t, seen[s.JoinCode], "duplicate join code %s", s.JoinCode)
		seen[s.JoinCode] = true
	}
}

func TestResolveByJoinCode(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host := env.user("host")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	s := env.session(quiz.ID, host.ID)

	got, err := env.sessions.ResolveByJoinCode(env.ctx, " "+strings.ToLower(s.JoinCode)+" ")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = env.sessions.ResolveByJoinCode(env.ctx, "")
	requireCode(t, err, apperr.CodeValidation)
	assert.Equal(t, "Join Code is required", apperr.PublicMessage(err))

	_, err = env.sessions.ResolveByJoinCode(env.ctx, "ZZZZZZ")
	requireCode(t, err, apperr.CodeNotFound)
	assert.Equal(t, "Invalid join code", apperr.PublicMessage(err))
}

func TestResolveExpiredSessionPersistsInactive(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host := env.user("host")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	s := env.session(quiz.ID, host.ID)

	env.advance(11 * time.Minute)
	_, err := env.sessions.ResolveByJoinCode(env.ctx, s.JoinCode)
	requireCode(t, err, apperr.CodeValidation)
	assert.Equal(t, "Session expired", apperr.PublicMessage(err))

	stored, err := env.store.Sessions.GetByID(env.ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.False(t, env.mr.Exists("session:code:"+s.JoinCode))

	_, err = env.sessions.ResolveByJoinCode(env.ctx, s.JoinCode)
	assert.Equal(t, "Session expired", apperr.PublicMessage(err))
}

func TestResolveAtEndTimeIsStillOpen(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host := env.user("host")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	s := env.session(quiz.ID, host.ID)

	env.advance(10 * time.Minute)
	_, err := env.sessions.ResolveByJoinCode(env.ctx, s.JoinCode)
	require.NoError(t, err)
}

func TestEndSession(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host, other := env.user("host"), env.user("other")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	s := env.session(quiz.ID, host.ID)

	_, err := env.sessions.End(env.ctx, s.ID, other.ID)
	requireCode(t, err, apperr.CodeForbidden)

	ended, err := env.sessions.End(env.ctx, s.ID, host.ID)
	require.NoError(t, err)
	assert.False(t, ended.IsActive)
	require.NotNil(t, ended.EndedAt)
	assert.Equal(t, 2, env.bc.count(MsgSessionEnded))

	_, err = env.sessions.End(env.ctx, s.ID, host.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, env.bc.count(MsgSessionEnded), "second end is a no-op")

	_, err = env.sessions.ResolveByJoinCode(env.ctx, s.JoinCode)
	requireCode(t, err, apperr.CodeValidation)
	assert.Equal(t, "Session has ended", apperr.PublicMessage(err))
}

func TestJoinAfterEndIgnoresStaleCachedSession(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host, player := env.user("host"), env.user("alice")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	s := env.session(quiz.ID, host.ID)
	require.True(t, env.mr.Exists("session:code:"+s.JoinCode))

	// The cache still holds the active copy when End cannot evict it.
	cached, err := env.mr.Get("session:code:" + s.JoinCode)
	require.NoError(t, err)
	_, err = env.sessions.End(env.ctx, s.ID, host.ID)
	require.NoError(t, err)
	require.NoError(t, env.mr.Set("session:code:"+s.JoinCode, cached))

	_, err = env.players.JoinByCode(env.ctx, s.JoinCode, player.ID)
	requireCode(t, err, apperr.CodeValidation)
	assert.Equal(t, "Session has ended", apperr.PublicMessage(err))
	assert.False(t, env.mr.Exists("session:code:"+s.JoinCode))

	enrolled, err := env.store.PlayerQuizzes.GetBySessionAndPlayer(env.ctx, s.ID, player.ID)
	require.NoError(t, err)
	assert.Nil(t, enrolled)
}

func TestEndSessionWhileRedisFailsStillBlocksJoins(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host, player := env.user("host"), env.user("alice")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	s := env.session(quiz.ID, host.ID)

	env.mr.SetError("READONLY You can't write against a read only replica.")
	_, err := env.sessions.End(env.ctx, s.ID, host.ID)
	require.NoError(t, err)
	env.mr.SetError("")
	require.True(t, env.mr.Exists("session:code:"+s.JoinCode))

	_, err = env.players.JoinByCode(env.ctx, s.JoinCode, player.ID)
	requireCode(t, err, apperr.CodeValidation)
	assert.Equal(t, "Session has ended", apperr.PublicMessage(err))
}

func TestRehostCreatesNewSession(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host := env.user("host")
	quiz, _ := env.quiz(host.ID, 10, mcq("Q1", "A", 1))
	first := env.session(quiz.ID, host.ID)

	env.advance(time.Minute)
	second, err := env.sessions.Rehost(env.ctx, model.RehostRequest{QuizID: quiz.ID, HostID: host.ID})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.JoinCode, second.JoinCode)

	list, err := env.sessions.ListByQuiz(env.ctx, quiz.ID, host.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	_, err = env.sessions.ListByQuiz(env.ctx, quiz.ID, "someone-else")
	requireCode(t, err, apperr.CodeForbidden)
}

func TestPlayViewHidesCorrectAnswers(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	host := env.user("host")
	quiz, qs := env.quiz(host.ID, 10, mcq("Q1", "Paris", 1, "Paris", "Rome"), mcq("Q2", "B", 2))
	s := env.session(quiz.ID, host.ID)

	view, err := env.sessions.PlayView(env.ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, view.Questions, 2)
	assert.Equal(t, qs[0].ID, view.Questions[0].ID)
	assert.Equal(t, 3, view.Quiz.TotalPoints)
	assert.True(t, view.IsActive)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correct_answer")
}
