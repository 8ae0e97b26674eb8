package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"vstepprep/internal/metrics"
	"vstepprep/internal/models"
	"vstepprep/internal/scoring"
	"vstepprep/internal/service"
	"vstepprep/internal/vstep"
)

// PracticeHandler serves the practice session API
type PracticeHandler struct {
	practice *service.PracticeService
	email    *service.EmailService
	log      *logrus.Logger
	metrics  *metrics.Metrics
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practice *service.PracticeService, email *service.EmailService, log *logrus.Logger, m *metrics.Metrics) *PracticeHandler {
	return &PracticeHandler{practice: practice, email: email, log: log, metrics: m}
}

type startSessionResponse struct {
	Session   sessionView    `json:"session"`
	Questions []questionView `json:"questions"`
}

// StartSession handles POST /api/sessions
func (h *PracticeHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(nil, w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(nil, w, http.StatusBadRequest, "invalid session parameters", nil)
		return
	}

	session, questions, err := h.practice.StartSession(
		user.ID, vstep.Skill(req.Skill), vstep.Level(req.Level),
		req.Section, models.SessionMode(req.Mode), req.QuestionCount, req.TimeLimitSec)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoQuestions):
			respondError(nil, w, http.StatusNotFound, "no questions available for this selection", nil)
		case errors.Is(err, service.ErrInvalidSelection):
			respondError(nil, w, http.StatusBadRequest, "invalid skill or level", nil)
		default:
			respondError(h.log, w, http.StatusInternalServerError, "failed to start session", err)
		}
		return
	}

	h.metrics.SessionsStarted.WithLabelValues(string(session.Skill), string(session.Level)).Inc()

	resp := startSessionResponse{Session: newSessionView(session)}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, newQuestionView(q))
	}
	respondJSON(w, http.StatusCreated, resp)
}

// GetSession handles GET /api/sessions/{id}
func (h *PracticeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	session, err := h.practice.GetSession(user.ID, r.PathValue("id"))
	if err != nil {
		h.respondSessionError(w, err, "failed to load session")
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// SubmitAnswer handles POST /api/sessions/{id}/answers
func (h *PracticeHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(nil, w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(nil, w, http.StatusBadRequest, "invalid answer", nil)
		return
	}

	answer, err := h.practice.SubmitAnswer(user.ID, r.PathValue("id"), req.QuestionID,
		scoring.Submission{Value: req.Answer, Values: req.AnswerList}, req.TimeSpentSec, req.Flagged)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuestionNotFound):
			respondError(nil, w, http.StatusNotFound, "question not part of this session", nil)
		default:
			h.respondSessionError(w, err, "failed to submit answer")
		}
		return
	}

	h.metrics.AnswersSubmitted.WithLabelValues(string(answer.Outcome)).Inc()
	respondJSON(w, http.StatusOK, newAnswerView(answer))
}

// PauseSession handles POST /api/sessions/{id}/pause
func (h *PracticeHandler) PauseSession(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	session, err := h.practice.PauseSession(user.ID, r.PathValue("id"))
	if err != nil {
		h.respondSessionError(w, err, "failed to pause session")
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// ResumeSession handles POST /api/sessions/{id}/resume
func (h *PracticeHandler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	session, err := h.practice.ResumeSession(user.ID, r.PathValue("id"))
	if err != nil {
		h.respondSessionError(w, err, "failed to resume session")
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// CompleteSession handles POST /api/sessions/{id}/complete
func (h *PracticeHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	session, res, err := h.practice.CompleteSession(user.ID, r.PathValue("id"))
	if err != nil {
		h.respondSessionError(w, err, "failed to complete session")
		return
	}

	h.metrics.SessionsCompleted.WithLabelValues(string(session.Skill), string(session.Level)).Inc()
	suggestions := scoring.Suggestions(*res, session.Level)

	if h.email.IsEnabled() {
		go h.sendSummary(user, session, res, suggestions)
	}

	respondJSON(w, http.StatusOK, newResultsView(session, res, suggestions))
}

// AbandonSession handles POST /api/sessions/{id}/abandon
func (h *PracticeHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	session, err := h.practice.AbandonSession(user.ID, r.PathValue("id"))
	if err != nil {
		h.respondSessionError(w, err, "failed to abandon session")
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// SessionResults handles GET /api/sessions/{id}/results
func (h *PracticeHandler) SessionResults(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	session, res, suggestions, err := h.practice.SessionResults(user.ID, r.PathValue("id"))
	if err != nil {
		h.respondSessionError(w, err, "failed to load results")
		return
	}
	respondJSON(w, http.StatusOK, newResultsView(session, res, suggestions))
}

// History handles GET /api/sessions
func (h *PracticeHandler) History(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	sessions, err := h.practice.GetUserSessions(user.ID, 20)
	if err != nil {
		respondError(h.log, w, http.StatusInternalServerError, "failed to load session history", err)
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, newSessionView(&sessions[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *PracticeHandler) sendSummary(user *models.User, session *models.PracticeSession, res *scoring.SessionScoreResult, suggestions []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := h.email.SendSessionSummary(ctx, user, session, res, suggestions); err != nil {
		h.log.WithError(err).WithField("session", session.ID).Warn("failed to send session summary email")
	}
}

func (h *PracticeHandler) respondSessionError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		respondError(nil, w, http.StatusNotFound, "session not found", nil)
	case errors.Is(err, service.ErrInvalidSessionState):
		respondError(nil, w, http.StatusConflict, "session is not in a state that allows this", nil)
	default:
		respondError(h.log, w, http.StatusInternalServerError, fallback, err)
	}
}
