package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizarena/internal/app"
	"quizarena/internal/config"
	"quizarena/internal/repository/memory"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.Default()
	cfg.Auth.JWTSecret = "router-test-secret"
	cfg.RateLimit.Requests = 2

	store := memory.NewStore()
	a := app.New(cfg, app.Repositories{
		Users:         store.Users,
		Quizzes:       store.Quizzes,
		Questions:     store.Questions,
		Sessions:      store.Sessions,
		PlayerQuizzes: store.PlayerQuizzes,
		Answers:       store.Answers,
	}, rdb)
	t.Cleanup(a.Close)
	return &apiClient{t: t, handler: a.Handler}
}

func (c *apiClient) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (c *apiClient) register(name string) string {
	c.t.Helper()
	code, _ := c.do("POST", "/v1/auth/signup", "", map[string]string{
		"username": name,
		"email":    name + "@example.com",
		"password": "secret123",
	})
	require.Equal(c.t, http.StatusCreated, code)

	code, body := c.do("POST", "/v1/auth/login", "", map[string]string{
		"email":    name + "@example.com",
		"password": "secret123",
	})
	require.Equal(c.t, http.StatusOK, code)
	return body["token"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	api := newAPI(t)

	code, body := api.do("GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newAPI(t)

	code, body := api.do("GET", "/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, body["error"])

	code, _ = api.do("POST", "/v1/completions", "not-a-token", map[string]interface{}{})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSessionFlow(t *testing.T) {
	api := newAPI(t)
	host := api.register("host")
	player := api.register("player")

	code, body := api.do("POST", "/v1/quizzes", host, map[string]interface{}{
		"title":       "Capitals",
		"description": "European capitals",
		"duration":    5,
		"questions": []map[string]interface{}{
			{"question_type": "MCQ", "question_text": "Capital of France?", "options": []string{"Paris", "Rome"}, "correct_answer": "Paris", "points": 3},
			{"question_type": "MCQ", "question_text": "Capital of Italy?", "options": []string{"Paris", "Rome"}, "correct_answer": "Rome", "points": 2},
		},
	})
	require.Equal(t, http.StatusCreated, code, body)
	quizID := body["quizId"].(string)

	code, body = api.do("GET", "/v1/quizzes/"+quizID, host, nil)
	require.Equal(t, http.StatusOK, code)
	questions := body["questions"].([]interface{})
	require.Len(t, questions, 2)
	q1 := questions[0].(map[string]interface{})["id"].(string)
	q2 := questions[1].(map[string]interface{})["id"].(string)

	code, _ = api.do("GET", "/v1/quizzes/"+quizID, player, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = api.do("POST", "/v1/sessions", host, map[string]interface{}{"quizId": quizID})
	require.Equal(t, http.StatusCreated, code, body)
	sessionID := body["sessionId"].(string)
	joinCode := body["join_code"].(string)
	assert.Len(t, joinCode, 6)

	code, body = api.do("GET", "/v1/sessions/by-code/"+strings.ToLower(joinCode), player, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, sessionID, body["session_id"])
	pqID := body["player_quiz_id"].(string)

	code, body = api.do("GET", "/v1/sessions/"+sessionID, player, nil)
	require.Equal(t, http.StatusOK, code)
	for _, q := range body["questions"].([]interface{}) {
		assert.NotContains(t, q.(map[string]interface{}), "correct_answer")
	}

	code, body = api.do("POST", "/v1/completions", player, map[string]interface{}{
		"player_quiz_id": pqID,
		"answers": []map[string]interface{}{
			{"question_id": q1, "submitted_answer": "paris"},
			{"question_id": q2, "submitted_answer": "Rome"},
		},
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, float64(5), body["score"])
	assert.Equal(t, float64(1), body["rank"])

	code, body = api.do("POST", "/v1/completions", player, map[string]interface{}{
		"player_quiz_id": pqID,
		"answers":        []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Player quiz already completed", body["error"])

	code, body = api.do("GET", "/v1/player-quiz/"+pqID, player, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(5), body["score"])

	code, body = api.do("GET", "/v1/sessions/"+sessionID+"/leaderboard", host, nil)
	require.Equal(t, http.StatusOK, code)
	board := body["leaderboard"].([]interface{})
	require.Len(t, board, 1)
	assert.Equal(t, "player", board[0].(map[string]interface{})["displayName"])

	code, body = api.do("GET", "/v1/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, code)
	top := body["leaderboard"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "player", top["username"])
	assert.Equal(t, float64(5), top["total_points"])

	code, _ = api.do("POST", "/v1/sessions/"+sessionID+"/end", player, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = api.do("POST", "/v1/sessions/"+sessionID+"/end", host, nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = api.do("GET", "/v1/sessions/by-code/"+joinCode, api.register("late"), nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Session has ended", body["error"])
}

func TestJoinIsRateLimited(t *testing.T) {
	api := newAPI(t)
	player := api.register("eager")

	for i := 0; i < 2; i++ {
		code, _ := api.do("GET", "/v1/sessions/by-code/NOPE42", player, nil)
		assert.Equal(t, http.StatusNotFound, code)
	}
	code, body := api.do("GET", "/v1/sessions/by-code/NOPE42", player, nil)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "Too many requests", body["error"])
}

func TestCORSPreflight(t *testing.T) {
	api := newAPI(t)

	req := httptest.NewRequest("OPTIONS", "/v1/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
