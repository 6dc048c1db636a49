package handler

import (
	"net/http"

	"quizarena/internal/model"
	"quizarena/internal/service"
	"quizarena/internal/transport/rest/middleware"
	"quizarena/pkg/apperr"

	"github.com/gorilla/mux"
)

const maxImportBytes = 5 << 20

// QuizHandler handles quiz authoring endpoints
type QuizHandler struct {
	quizSvc      *service.QuizService
	generatorSvc *service.GeneratorService
	validate     *Validator
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizSvc *service.QuizService, generatorSvc *service.GeneratorService, validate *Validator) *QuizHandler {
	return &QuizHandler{quizSvc: quizSvc, generatorSvc: generatorSvc, validate: validate}
}

// Create handles POST /v1/quizzes
func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateQuizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.validate.Check(req, "Quiz title and description are required"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req.CreatorID = middleware.GetUserID(r.Context())

	quiz, err := h.quizSvc.CreateQuiz(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.CreateQuizResponse{
		Success: true,
		QuizID:  quiz.ID,
		Message: "Quiz created successfully",
	})
}

// Mine handles GET /v1/quizzes/mine
func (h *QuizHandler) Mine(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizSvc.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "quizzes": quizzes})
}

// Get handles GET /v1/quizzes/{quizId}
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.quizSvc.GetQuiz(r.Context(), mux.Vars(r)["quizId"], middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// AddQuestion handles POST /v1/quizzes/{quizId}/questions
func (h *QuizHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var req model.QuestionInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.validate.Check(req, "Missing required fields"); err != nil {
		writeServiceError(w, r, err)
		return
	}

	question, err := h.quizSvc.AddQuestion(r.Context(), mux.Vars(r)["quizId"], middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"message":  "Question added successfully",
		"question": question,
	})
}

// Import handles POST /v1/quizzes/{quizId}/import with an xlsx "file" field
func (h *QuizHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeServiceError(w, r, apperr.Validation("Invalid upload"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeServiceError(w, r, apperr.Validation("Spreadsheet file is required"))
		return
	}
	defer file.Close()

	n, err := h.quizSvc.ImportQuestions(r.Context(), mux.Vars(r)["quizId"], middleware.GetUserID(r.Context()), file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "imported": n})
}

// Generate handles POST /v1/quizzes/generate
func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateQuizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.validate.Check(req, "Topic and number of questions are required"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req.CreatorID = middleware.GetUserID(r.Context())

	quiz, err := h.generatorSvc.Generate(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "AI Quiz generated successfully",
		"quizId":  quiz.ID,
	})
}
