package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"vstepprep/internal/models"
	"vstepprep/internal/service"
	"vstepprep/internal/vstep"
)

// QuestionHandler serves question bank authoring endpoints
type QuestionHandler struct {
	questions *service.QuestionService
	log       *logrus.Logger
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questions *service.QuestionService, log *logrus.Logger) *QuestionHandler {
	return &QuestionHandler{questions: questions, log: log}
}

// CreateQuestion handles POST /api/questions
func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req createQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(nil, w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(nil, w, http.StatusBadRequest, "invalid question", nil)
		return
	}

	question := &models.Question{
		Skill:         vstep.Skill(req.Skill),
		Level:         vstep.Level(req.Level),
		Section:       req.Section,
		Type:          models.QuestionType(req.Type),
		Prompt:        req.Prompt,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		CorrectList:   req.CorrectList,
		Points:        req.Points,
		Explanation:   req.Explanation,
		Published:     req.Published,
	}

	created, err := h.questions.CreateQuestion(user, question)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			respondError(nil, w, http.StatusForbidden, "only teachers can author questions", nil)
		case errors.Is(err, service.ErrInvalidQuestion), errors.Is(err, service.ErrInvalidSelection):
			respondError(nil, w, http.StatusBadRequest, "invalid question", nil)
		default:
			respondError(h.log, w, http.StatusInternalServerError, "failed to create question", err)
		}
		return
	}

	respondJSON(w, http.StatusCreated, newAuthorQuestionView(*created))
}

// GetQuestion handles GET /api/questions/{id}
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(nil, w, http.StatusBadRequest, "invalid question id", nil)
		return
	}

	question, err := h.questions.GetQuestion(id)
	if err != nil {
		if errors.Is(err, service.ErrUnknownQuestion) {
			respondError(nil, w, http.StatusNotFound, "question not found", nil)
			return
		}
		respondError(h.log, w, http.StatusInternalServerError, "failed to load question", err)
		return
	}

	if user.CanAuthorContent() {
		respondJSON(w, http.StatusOK, newAuthorQuestionView(*question))
		return
	}
	respondJSON(w, http.StatusOK, newQuestionView(*question))
}

// ListQuestions handles GET /api/questions?skill=reading&level=B2
func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	skill := vstep.Skill(r.URL.Query().Get("skill"))
	level := vstep.Level(r.URL.Query().Get("level"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	questions, err := h.questions.ListQuestions(skill, level, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSelection) {
			respondError(nil, w, http.StatusBadRequest, "invalid skill or level", nil)
			return
		}
		respondError(h.log, w, http.StatusInternalServerError, "failed to list questions", err)
		return
	}

	views := make([]authorQuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, newAuthorQuestionView(q))
	}
	respondJSON(w, http.StatusOK, views)
}
