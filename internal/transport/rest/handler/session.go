package handler

import (
	"net/http"
	"strconv"

	"quizarena/internal/model"
	"quizarena/internal/service"
	"quizarena/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	sessionSvc     *service.SessionService
	playerSvc      *service.PlayerService
	leaderboardSvc *service.LeaderboardService
	validate       *Validator
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, playerSvc *service.PlayerService, leaderboardSvc *service.LeaderboardService, validate *Validator) *SessionHandler {
	return &SessionHandler{
		sessionSvc:     sessionSvc,
		playerSvc:      playerSvc,
		leaderboardSvc: leaderboardSvc,
		validate:       validate,
	}
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.validate.Check(req, "Quiz Id is required"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req.HostID = middleware.GetUserID(r.Context())

	session, err := h.sessionSvc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreatedSession(w, session)
}

// Rehost handles POST /v1/sessions/rehost
func (h *SessionHandler) Rehost(w http.ResponseWriter, r *http.Request) {
	var req model.RehostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.validate.Check(req, "Quiz Id is required"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req.HostID = middleware.GetUserID(r.Context())

	session, err := h.sessionSvc.Rehost(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreatedSession(w, session)
}

func writeCreatedSession(w http.ResponseWriter, session *model.Session) {
	writeJSON(w, http.StatusCreated, model.CreateSessionResponse{
		Success:   true,
		SessionID: session.ID,
		JoinCode:  session.JoinCode,
		EndTime:   session.EndTime,
		Message:   "New session created successfully",
	})
}

// List handles GET /v1/sessions?quiz_id=
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessionSvc.ListByQuiz(r.Context(), r.URL.Query().Get("quiz_id"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "sessions": sessions})
}

// Get handles GET /v1/sessions/{sessionId}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionSvc.PlayView(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// End handles POST /v1/sessions/{sessionId}/end
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionSvc.End(r.Context(), mux.Vars(r)["sessionId"], middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "session": session})
}

// JoinByCode handles GET /v1/sessions/by-code/{code}
func (h *SessionHandler) JoinByCode(w http.ResponseWriter, r *http.Request) {
	pq, err := h.playerSvc.JoinByCode(r.Context(), mux.Vars(r)["code"], middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.JoinResponse{
		Success:      true,
		SessionID:    pq.SessionID,
		PlayerQuizID: pq.ID,
	})
}

// Leaderboard handles GET /v1/sessions/{sessionId}/leaderboard
func (h *SessionHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionSvc.Get(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	top := 20
	if n, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && n > 0 {
		top = n
	}

	entries, err := h.leaderboardSvc.Top(r.Context(), session.ID, top)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"session_id":  session.ID,
		"leaderboard": entries,
	})
}
