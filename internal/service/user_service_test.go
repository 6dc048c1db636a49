package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizarena/internal/model"
	"quizarena/pkg/apperr"
)

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})

	user, err := env.users.Signup(env.ctx, model.SignupRequest{Username: "alice", Email: "Alice@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = env.users.Signup(env.ctx, model.SignupRequest{Username: "alice", Email: "other@example.com", Password: "secret1"})
	requireCode(t, err, apperr.CodeConflict)
	assert.Equal(t, "User already exists", apperr.PublicMessage(err))

	_, err = env.users.Signup(env.ctx, model.SignupRequest{Username: "bob"})
	requireCode(t, err, apperr.CodeValidation)
	assert.Equal(t, "All fields are required", apperr.PublicMessage(err))

	resp, err := env.users.Login(env.ctx, model.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.UserID)

	claims, err := env.auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = env.users.Login(env.ctx, model.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	requireCode(t, err, apperr.CodeUnauthorized)
}

func TestTokenExpiryAndSecret(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	user := env.user("alice")

	token, err := env.auth.IssueToken(user)
	require.NoError(t, err)

	_, err = NewAuthService("another-secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	env.advance(2 * time.Hour)
	_, err = env.auth.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGlobalLeaderboard(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	for name, points := range map[string]int{"a": 5, "b": 20, "c": 10} {
		u := env.user(name)
		require.NoError(t, env.store.Users.IncrementTotalPoints(env.ctx, u.ID, points))
	}

	ranking, err := env.users.GlobalLeaderboard(env.ctx, 2)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, "b", ranking[0].Username)
	assert.Equal(t, 1, ranking[0].Rank)
	assert.Equal(t, "c", ranking[1].Username)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t, CompletionOptions{})
	user := env.user("alice")

	got, err := env.users.Profile(env.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = env.users.Profile(env.ctx, "missing")
	requireCode(t, err, apperr.CodeNotFound)
}
