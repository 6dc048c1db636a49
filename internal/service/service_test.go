package service

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"quizarena/internal/cache"
	"quizarena/internal/model"
	"quizarena/internal/repository/memory"
	"quizarena/pkg/apperr"
)

type sentMessage struct {
	SessionID string
	Type      string
	ToHost    bool
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []sentMessage
}

func (b *recordingBroadcaster) BroadcastToHost(sessionID, msgType string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, sentMessage{SessionID: sessionID, Type: msgType, ToHost: true})
}

func (b *recordingBroadcaster) BroadcastToPlayers(sessionID, msgType string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, sentMessage{SessionID: sessionID, Type: msgType})
}

func (b *recordingBroadcaster) DisconnectSession(string) {}

func (b *recordingBroadcaster) count(msgType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, m := range b.messages {
		if m.Type == msgType {
			n++
		}
	}
	return n
}

type testEnv struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	mr    *miniredis.Miniredis
	now   time.Time
	bc    *recordingBroadcaster

	auth        *AuthService
	users       *UserService
	quizzes     *QuizService
	sessions    *SessionService
	players     *PlayerService
	recorder    *AnswerRecorder
	aggregator  *ScoreAggregator
	leaderboard *LeaderboardService
	completion  *CompletionService
	answers     *AnswerService
	reports     *ReportService
}

func newTestEnv(t *testing.T, opts CompletionOptions) *testEnv {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := memory.NewStore()
	env := &testEnv{
		t:     t,
		ctx:   context.Background(),
		store: store,
		mr:    mr,
		now:   time.Now().UTC().Truncate(time.Second),
		bc:    &recordingBroadcaster{},
	}
	clockFn := func() time.Time { return env.now }

	questionCache := cache.NewQuestionCache(client, store.Questions, time.Minute)

	env.auth = NewAuthService("test-secret", time.Hour)
	env.auth.SetClock(clockFn)
	env.users = NewUserService(store.Users, env.auth)
	env.quizzes = NewQuizService(store.Quizzes, store.Questions, store.Users)

	env.sessions = NewSessionService(store.Sessions, store.Quizzes, store.Questions, store.Users, cache.NewSessionCache(client), 10)
	env.sessions.SetClock(clockFn)
	env.sessions.SetBroadcaster(env.bc)

	env.players = NewPlayerService(env.sessions, store.PlayerQuizzes, store.Users)
	env.players.SetClock(clockFn)
	env.players.SetBroadcaster(env.bc)

	env.recorder = NewAnswerRecorder(questionCache, store.Answers)
	env.aggregator = NewScoreAggregator(store.Answers)
	env.leaderboard = NewLeaderboardService(cache.NewLeaderboardCache(client, time.Hour), store.PlayerQuizzes)

	env.completion = NewCompletionService(store.PlayerQuizzes, store.Sessions, store.Users, env.recorder, env.aggregator, env.leaderboard, opts)
	env.completion.SetClock(clockFn)
	env.completion.SetBroadcaster(env.bc)

	env.answers = NewAnswerService(store.PlayerQuizzes, env.recorder, env.aggregator)
	env.reports = NewReportService(env.sessions, store.PlayerQuizzes, store.Answers, store.Questions)
	env.reports.SetClock(clockFn)
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func (e *testEnv) user(name string) *model.User {
	e.t.Helper()
	u := &model.User{Username: name, Email: name + "@example.com"}
	require.NoError(e.t, e.store.Users.Create(e.ctx, u))
	return u
}

func mcq(text, correct string, points int, options ...string) model.QuestionInput {
	return model.QuestionInput{
		Type:          "MCQ",
		Text:          text,
		Options:       options,
		CorrectAnswer: model.TextAnswer(correct),
		Points:        points,
	}
}

func (e *testEnv) quiz(hostID string, duration int, inputs ...model.QuestionInput) (*model.Quiz, []*model.Question) {
	e.t.Helper()
	quiz, err := e.quizzes.CreateQuiz(e.ctx, model.CreateQuizRequest{
		Title:       "General knowledge",
		Description: "A test quiz",
		Duration:    duration,
		Questions:   inputs,
		CreatorID:   hostID,
	})
	require.NoError(e.t, err)
	detail, err := e.quizzes.GetQuiz(e.ctx, quiz.ID, hostID)
	require.NoError(e.t, err)
	return detail.Quiz, detail.Questions
}

func (e *testEnv) session(quizID, hostID string) *model.Session {
	e.t.Helper()
	s, err := e.sessions.Create(e.ctx, model.CreateSessionRequest{QuizID: quizID, HostID: hostID})
	require.NoError(e.t, err)
	return s
}

func (e *testEnv) join(session *model.Session, userID string) *model.PlayerQuiz {
	e.t.Helper()
	pq, err := e.players.Join(e.ctx, session, userID)
	require.NoError(e.t, err)
	return pq
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apperr.CodeOf(err), "error: %v", err)
}
