package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"quizarena/internal/model"
	"quizarena/internal/service"
	"quizarena/internal/transport/rest/middleware"
	"quizarena/pkg/apperr"
	"quizarena/pkg/logger"
)

// AuthHandler handles account endpoints
type AuthHandler struct {
	userSvc  *service.UserService
	validate *Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userSvc *service.UserService, validate *Validator) *AuthHandler {
	return &AuthHandler{userSvc: userSvc, validate: validate}
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.validate.Check(req, "All fields are required"); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.userSvc.Signup(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"userId":  user.ID,
		"message": "User created successfully",
	})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp, err := h.userSvc.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Me handles GET /v1/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userSvc.Profile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}

// Leaderboard handles GET /v1/leaderboard
func (h *AuthHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rankings, err := h.userSvc.GlobalLeaderboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "leaderboard": rankings})
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps err onto the error taxonomy. Only whitelisted
// messages reach the client; everything else is logged and hidden.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
	}
	writeError(w, status, apperr.PublicMessage(err))
}
