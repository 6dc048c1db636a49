package handler

import (
	"net/http"

	"quizarena/internal/model"
	"quizarena/internal/service"
	"quizarena/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// PlayerHandler handles answering and player quiz endpoints
type PlayerHandler struct {
	playerSvc     *service.PlayerService
	answerSvc     *service.AnswerService
	completionSvc *service.CompletionService
	validate      *Validator
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerSvc *service.PlayerService, answerSvc *service.AnswerService, completionSvc *service.CompletionService, validate *Validator) *PlayerHandler {
	return &PlayerHandler{
		playerSvc:     playerSvc,
		answerSvc:     answerSvc,
		completionSvc: completionSvc,
		validate:      validate,
	}
}

// SubmitAnswer handles POST /v1/answers
func (h *PlayerHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitAnswerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.validate.Check(req, "Missing required fields"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req.UserID = middleware.GetUserID(r.Context())

	resp, err := h.answerSvc.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Complete handles POST /v1/completions
func (h *PlayerHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req model.CompleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.validate.Check(req, "Player quiz Id and answers are required"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req.UserID = middleware.GetUserID(r.Context())

	resp, err := h.completionSvc.Complete(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPlayerQuiz handles GET /v1/player-quiz/{playerQuizId}
func (h *PlayerHandler) GetPlayerQuiz(w http.ResponseWriter, r *http.Request) {
	pq, err := h.playerSvc.Get(r.Context(), mux.Vars(r)["playerQuizId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.PlayerQuizResponse{
		Success:     true,
		SessionID:   pq.SessionID,
		Score:       pq.Score,
		CompletedAt: pq.CompletedAt,
	})
}

// UpdateSettings handles PATCH /v1/player-quiz/{playerQuizId}/settings
func (h *PlayerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req model.PlayerSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req.PlayerQuizID = mux.Vars(r)["playerQuizId"]
	if err := h.validate.Check(req, "PlayerQuizId is required"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req.UserID = middleware.GetUserID(r.Context())

	pq, err := h.playerSvc.UpdateSettings(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"displayName": pq.DisplayName,
		"avatar":      pq.Avatar,
	})
}
