package handler

import (
	"net/http"

	"quizarena/internal/service"
	"quizarena/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// ReportHandler handles result endpoints
type ReportHandler struct {
	reportSvc *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// PlayerResult handles GET /v1/sessions/{sessionId}/result
func (h *ReportHandler) PlayerResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportSvc.PlayerResult(r.Context(), mux.Vars(r)["sessionId"], middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "result": result})
}
