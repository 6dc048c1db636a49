package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizarena/internal/model"
	"quizarena/pkg/apperr"
)

type stubAuth struct{}

// Tokens are the user id itself.
func (stubAuth) ValidateToken(token string) (*model.UserClaims, error) {
	if token == "bad" {
		return nil, errors.New("invalid")
	}
	return &model.UserClaims{UserID: token}, nil
}

type stubSessions map[string]*model.Session

func (s stubSessions) Get(_ context.Context, id string) (*model.Session, error) {
	if sess, ok := s[id]; ok {
		return sess, nil
	}
	return nil, apperr.NotFound("Session not found")
}

type stubEnrollment map[string]bool

func (e stubEnrollment) Enrollment(_ context.Context, sessionID, userID string) (*model.PlayerQuiz, error) {
	if e[sessionID+"/"+userID] {
		return &model.PlayerQuiz{SessionID: sessionID, PlayerID: userID}, nil
	}
	return nil, nil
}

func newWSServer(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	t.Cleanup(hub.Close)

	h := NewHandler(hub, stubAuth{},
		stubSessions{"s1": {ID: "s1", HostID: "host"}},
		stubEnrollment{"s1/alice": true},
		nil,
	)
	r := mux.NewRouter()
	r.HandleFunc("/ws/sessions/{sessionId}/host", h.HostWS)
	r.HandleFunc("/ws/sessions/{sessionId}/player", h.PlayerWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func waitConnections(t *testing.T, hub *Hub, sessionID string, hosts, players int) {
	t.Helper()
	require.Eventually(t, func() bool {
		h, p := hub.ConnectionCount(sessionID)
		return h == hosts && p == players
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubRoutesMessagesByAudience(t *testing.T) {
	hub, base := newWSServer(t)

	host := dial(t, base+"/ws/sessions/s1/host?token=host")
	waitConnections(t, hub, "s1", 1, 0)
	player := dial(t, base+"/ws/sessions/s1/player?token=alice")
	waitConnections(t, hub, "s1", 1, 1)

	connected := readMessage(t, host)
	assert.Equal(t, MsgPlayerConnected, connected.Type)
	assert.JSONEq(t, `{"userId":"alice"}`, string(connected.Payload))

	hub.BroadcastToPlayers("s1", string(MsgLeaderboardUpdate), []string{"alice"})
	msg := readMessage(t, player)
	assert.Equal(t, MsgLeaderboardUpdate, msg.Type)
	assert.JSONEq(t, `["alice"]`, string(msg.Payload))

	hub.BroadcastToHost("s1", string(MsgPlayerCompleted), map[string]int{"score": 5})
	msg = readMessage(t, host)
	assert.Equal(t, MsgPlayerCompleted, msg.Type)

	// Other sessions see nothing.
	hub.BroadcastToHost("s2", string(MsgPlayerCompleted), nil)
	hub.BroadcastToPlayers("s2", string(MsgPlayerCompleted), nil)
	hub.BroadcastToPlayers("s1", string(MsgSessionEnded), nil)
	assert.Equal(t, MsgSessionEnded, readMessage(t, player).Type)

	require.NoError(t, player.Close())
	assert.Equal(t, MsgPlayerDisconnected, readMessage(t, host).Type)
	waitConnections(t, hub, "s1", 1, 0)
}

func TestDisconnectSessionDeliversPendingMessagesFirst(t *testing.T) {
	hub, base := newWSServer(t)

	player := dial(t, base+"/ws/sessions/s1/player?token=alice")
	waitConnections(t, hub, "s1", 0, 1)

	hub.BroadcastToPlayers("s1", string(MsgSessionEnded), map[string]string{"session_id": "s1"})
	hub.DisconnectSession("s1")

	assert.Equal(t, MsgSessionEnded, readMessage(t, player).Type)
	require.NoError(t, player.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := player.ReadMessage()
	assert.Error(t, err)
	waitConnections(t, hub, "s1", 0, 0)
}

func TestHandlerRejectsUnauthorizedConnections(t *testing.T) {
	_, base := newWSServer(t)

	cases := []struct {
		name   string
		path   string
		status int
	}{
		{"missing token", "/ws/sessions/s1/host", http.StatusUnauthorized},
		{"invalid token", "/ws/sessions/s1/host?token=bad", http.StatusUnauthorized},
		{"not the host", "/ws/sessions/s1/host?token=alice", http.StatusForbidden},
		{"not enrolled", "/ws/sessions/s1/player?token=bob", http.StatusForbidden},
		{"unknown session", "/ws/sessions/nope/player?token=alice", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(base+tc.path, nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://quiz.example.com/"})

	req := httptest.NewRequest("GET", "/", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://quiz.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}
