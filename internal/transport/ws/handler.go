package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"quizarena/internal/model"
	"quizarena/pkg/apperr"
	"quizarena/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// TokenValidator checks bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*model.UserClaims, error)
}

// SessionLookup loads sessions.
type SessionLookup interface {
	Get(ctx context.Context, sessionID string) (*model.Session, error)
}

// EnrollmentLookup finds a user's player quiz in a session.
type EnrollmentLookup interface {
	Enrollment(ctx context.Context, sessionID, userID string) (*model.PlayerQuiz, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	auth     TokenValidator
	sessions SessionLookup
	players  EnrollmentLookup
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. An empty origin list or "*"
// accepts any origin.
func NewHandler(hub *Hub, auth TokenValidator, sessions SessionLookup, players EnrollmentLookup, origins []string) *Handler {
	return &Handler{
		hub:      hub,
		auth:     auth,
		sessions: sessions,
		players:  players,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
	}
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.TrimRight(o, "/")] = true
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

// HostWS handles GET /v1/ws/sessions/{sessionId}/host
func (h *Handler) HostWS(w http.ResponseWriter, r *http.Request) {
	session, claims, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if session.HostID != claims.UserID {
		http.Error(w, "only the host can watch this session", http.StatusForbidden)
		return
	}
	h.serve(w, r, session.ID, claims.UserID, true)
}

// PlayerWS handles GET /v1/ws/sessions/{sessionId}/player
func (h *Handler) PlayerWS(w http.ResponseWriter, r *http.Request) {
	session, claims, ok := h.authorize(w, r)
	if !ok {
		return
	}
	pq, err := h.players.Enrollment(r.Context(), session.ID, claims.UserID)
	if err != nil {
		logger.Error("ws enrollment check failed", "sessionId", session.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if pq == nil {
		http.Error(w, "join the session first", http.StatusForbidden)
		return
	}
	h.serve(w, r, session.ID, claims.UserID, false)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) (*model.Session, *model.UserClaims, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return nil, nil, false
	}

	claims, err := h.auth.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return nil, nil, false
	}

	session, err := h.sessions.Get(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		status := apperr.HTTPStatus(err)
		http.Error(w, apperr.PublicMessage(err), status)
		return nil, nil, false
	}
	return session, claims, true
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, sessionID, userID string, host bool) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", "sessionId", sessionID, "error", err)
		return
	}

	conn := &Connection{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		UserID:    userID,
		IsHost:    host,
		Send:      make(chan []byte, 256),
	}
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Clients only receive; inbound frames keep the connection alive.
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws read error", "sessionId", conn.SessionID, "error", err)
			}
			return
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
