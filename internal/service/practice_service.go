package service

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"vstepprep/internal/models"
	"vstepprep/internal/scoring"
	"vstepprep/internal/vstep"
)

var (
	// ErrSessionNotFound is returned for missing sessions and, deliberately,
	// for sessions owned by another user: session ids must not leak existence.
	ErrSessionNotFound     = errors.New("practice session not found")
	ErrQuestionNotFound    = errors.New("question not found in this session")
	ErrInvalidSessionState = errors.New("operation not allowed in the session's current state")
	ErrNoQuestions         = errors.New("no questions available for the requested skill and level")
	ErrInvalidSelection    = errors.New("invalid skill or level")
)

const defaultQuestionCount = 10

// QuestionStore is the question-bank access the practice service needs
type QuestionStore interface {
	GetRandomPublished(skill vstep.Skill, level vstep.Level, section string, limit int) ([]models.Question, error)
	GetQuestionsByIDs(ids []int64) (map[int64]models.Question, error)
}

// SessionStore persists practice sessions
type SessionStore interface {
	CreateSession(s *models.PracticeSession) error
	GetSessionByID(id string) (*models.PracticeSession, error)
	UpdateSession(s *models.PracticeSession) error
	GetUserSessions(userID int64, limit int) ([]models.PracticeSession, error)
}

// AnswerStore persists per-question answers within a session
type AnswerStore interface {
	InsertAnswer(a *models.PracticeAnswer) error
	UpdateAnswer(a *models.PracticeAnswer) error
	GetAnswer(sessionID string, questionID int64) (*models.PracticeAnswer, error)
	GetSessionAnswers(sessionID string) ([]models.PracticeAnswer, error)
}

// PracticeService drives the practice session lifecycle: start, answer,
// pause/resume, complete/abandon, plus lazy expiry on read.
type PracticeService struct {
	questions QuestionStore
	sessions  SessionStore
	answers   AnswerStore

	now func() time.Time
}

// NewPracticeService creates a new practice service
func NewPracticeService(questions QuestionStore, sessions SessionStore, answers AnswerStore) *PracticeService {
	return &PracticeService{
		questions: questions,
		sessions:  sessions,
		answers:   answers,
		now:       time.Now,
	}
}

// StartSession creates a new session for the user over a random question set.
// The shuffled order is captured on the session record once; pausing and
// resuming never re-shuffles it.
func (s *PracticeService) StartSession(userID int64, skill vstep.Skill, level vstep.Level, section string, mode models.SessionMode, questionCount, timeLimitSec int) (*models.PracticeSession, []models.Question, error) {
	if !vstep.ValidSkill(skill) || !vstep.ValidLevel(level) {
		return nil, nil, ErrInvalidSelection
	}
	if questionCount <= 0 {
		questionCount = defaultQuestionCount
	}
	if mode == "" {
		mode = models.ModePractice
	}

	selected, err := s.questions.GetRandomPublished(skill, level, section, questionCount)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to select questions: %w", err)
	}
	if len(selected) == 0 {
		return nil, nil, ErrNoQuestions
	}

	// The store's random ordering is advisory; shuffle here so the captured
	// order never depends on how the backend happened to return rows.
	rand.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	order := make([]int64, len(selected))
	maxScore := 0
	for i, q := range selected {
		order[i] = q.ID
		maxScore += q.Points
	}

	now := s.now()
	session := &models.PracticeSession{
		ID:             uuid.New().String(),
		UserID:         userID,
		Skill:          skill,
		Level:          level,
		Section:        section,
		Mode:           mode,
		Status:         models.SessionInProgress,
		QuestionOrder:  order,
		TotalQuestions: len(selected),
		MaxScore:       maxScore,
		TimeLimitSec:   timeLimitSec,
		StartedAt:      now,
	}
	if timeLimitSec > 0 {
		expires := now.Add(time.Duration(timeLimitSec) * time.Second)
		session.ExpiresAt = &expires
	}

	if err := s.sessions.CreateSession(session); err != nil {
		return nil, nil, err
	}

	return session, selected, nil
}

// GetSession returns the user's session, applying lazy expiry
func (s *PracticeService) GetSession(userID int64, sessionID string) (*models.PracticeSession, error) {
	return s.loadOwned(userID, sessionID)
}

// SubmitAnswer evaluates and upserts the answer for one question. The first
// submission moves the session counters; a resubmission overwrites the value,
// outcome and awarded points but leaves the counters alone, and adds the new
// time spent to the accumulated total for that question.
func (s *PracticeService) SubmitAnswer(userID int64, sessionID string, questionID int64, sub scoring.Submission, timeSpentSec int, flagged bool) (*models.PracticeAnswer, error) {
	sess, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionInProgress {
		return nil, ErrInvalidSessionState
	}

	if !containsID(sess.QuestionOrder, questionID) {
		return nil, ErrQuestionNotFound
	}
	qmap, err := s.questions.GetQuestionsByIDs([]int64{questionID})
	if err != nil {
		return nil, fmt.Errorf("failed to load question %d: %w", questionID, err)
	}
	question, ok := qmap[questionID]
	if !ok {
		return nil, ErrQuestionNotFound
	}

	eval, err := scoring.Evaluate(question, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate answer: %w", err)
	}

	existing, err := s.answers.GetAnswer(sessionID, questionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if existing == nil {
		answer := &models.PracticeAnswer{
			ID:            uuid.New().String(),
			SessionID:     sessionID,
			QuestionID:    questionID,
			Submitted:     sub.Value,
			SubmittedList: sub.Values,
			Outcome:       eval.Outcome,
			PointsAwarded: eval.Points,
			TimeSpentSec:  timeSpentSec,
			Flagged:       flagged,
			SubmittedAt:   now,
			UpdatedAt:     now,
		}
		if err := s.answers.InsertAnswer(answer); err != nil {
			return nil, err
		}

		sess.AnsweredCount++
		if eval.Outcome == models.OutcomeCorrect {
			sess.CorrectCount++
			sess.PointsEarned += eval.Points
		}
		if err := s.sessions.UpdateSession(sess); err != nil {
			return nil, err
		}
		return answer, nil
	}

	existing.Submitted = sub.Value
	existing.SubmittedList = sub.Values
	existing.Outcome = eval.Outcome
	existing.PointsAwarded = eval.Points
	existing.TimeSpentSec += timeSpentSec
	existing.Flagged = flagged
	existing.UpdatedAt = now
	if err := s.answers.UpdateAnswer(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// PauseSession pauses an in-progress session
func (s *PracticeService) PauseSession(userID int64, sessionID string) (*models.PracticeSession, error) {
	sess, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionInProgress {
		return nil, ErrInvalidSessionState
	}

	now := s.now()
	sess.Status = models.SessionPaused
	sess.PausedAt = &now
	if err := s.sessions.UpdateSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ResumeSession resumes a paused session. Wall-clock time spent paused is
// excluded from the time budget: the expiry shifts forward by exactly the
// paused duration.
func (s *PracticeService) ResumeSession(userID int64, sessionID string) (*models.PracticeSession, error) {
	sess, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionPaused || sess.PausedAt == nil {
		return nil, ErrInvalidSessionState
	}

	now := s.now()
	if sess.ExpiresAt != nil {
		shifted := sess.ExpiresAt.Add(now.Sub(*sess.PausedAt))
		sess.ExpiresAt = &shifted
	}
	sess.Status = models.SessionInProgress
	sess.PausedAt = nil
	if err := s.sessions.UpdateSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// CompleteSession finalizes a session: the score rollup is recomputed from
// the stored answers and stamped onto the session record. Completing an
// already completed session is idempotent and returns the same result.
func (s *PracticeService) CompleteSession(userID int64, sessionID string) (*models.PracticeSession, *scoring.SessionScoreResult, error) {
	sess, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	if sess.Status == models.SessionCompleted {
		res, err := s.score(sess)
		if err != nil {
			return nil, nil, err
		}
		return sess, res, nil
	}
	if sess.Status.Terminal() {
		return nil, nil, ErrInvalidSessionState
	}

	res, err := s.score(sess)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	sess.Status = models.SessionCompleted
	sess.CompletedAt = &now
	sess.AnsweredCount = res.AnsweredCount
	sess.CorrectCount = res.CorrectCount
	sess.PointsEarned = res.PointsEarned
	sess.BandScore = res.BandScore
	if err := s.sessions.UpdateSession(sess); err != nil {
		return nil, nil, err
	}

	return sess, res, nil
}

// AbandonSession ends a session without scoring it
func (s *PracticeService) AbandonSession(userID int64, sessionID string) (*models.PracticeSession, error) {
	sess, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status.Terminal() {
		return nil, ErrInvalidSessionState
	}

	now := s.now()
	sess.Status = models.SessionAbandoned
	sess.CompletedAt = &now
	if err := s.sessions.UpdateSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SessionResults recomputes the score rollup and study suggestions on demand.
// Recomputing without new answers always yields the same result.
func (s *PracticeService) SessionResults(userID int64, sessionID string) (*models.PracticeSession, *scoring.SessionScoreResult, []string, error) {
	sess, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, nil, nil, err
	}

	res, err := s.score(sess)
	if err != nil {
		return nil, nil, nil, err
	}

	return sess, res, scoring.Suggestions(*res, sess.Level), nil
}

// GetUserSessions returns the user's recent sessions, newest first
func (s *PracticeService) GetUserSessions(userID int64, limit int) ([]models.PracticeSession, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.sessions.GetUserSessions(userID, limit)
}

// loadOwned fetches a session, enforces ownership, and applies lazy expiry:
// an in-progress session read past its expiry transitions to expired here
// rather than via a background sweep.
func (s *PracticeService) loadOwned(userID int64, sessionID string) (*models.PracticeSession, error) {
	sess, err := s.sessions.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.UserID != userID {
		return nil, ErrSessionNotFound
	}

	if sess.Status == models.SessionInProgress && sess.ExpiresAt != nil && s.now().After(*sess.ExpiresAt) {
		sess.Status = models.SessionExpired
		if err := s.sessions.UpdateSession(sess); err != nil {
			return nil, err
		}
	}

	return sess, nil
}

func (s *PracticeService) score(sess *models.PracticeSession) (*scoring.SessionScoreResult, error) {
	qmap, err := s.questions.GetQuestionsByIDs(sess.QuestionOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to load session questions: %w", err)
	}
	answers, err := s.answers.GetSessionAnswers(sess.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session answers: %w", err)
	}

	res := scoring.Aggregate(*sess, answers, qmap)
	return &res, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
