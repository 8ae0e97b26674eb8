package models

import (
	"time"

	"vstepprep/internal/vstep"
)

// SessionStatus is the lifecycle state of a practice session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionPaused     SessionStatus = "paused"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
	SessionExpired    SessionStatus = "expired"
)

// Terminal reports whether the status permits no further transitions.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionCompleted, SessionAbandoned, SessionExpired:
		return true
	}
	return false
}

// SessionMode distinguishes free practice from timed mock tests and review.
type SessionMode string

const (
	ModePractice SessionMode = "practice"
	ModeMock     SessionMode = "mock"
	ModeReview   SessionMode = "review"
)

// PracticeSession is one bounded attempt at a set of questions. The question
// order is captured once at creation and never re-shuffled, so resuming a
// session presents questions in the same order regardless of how the store
// randomizes selection.
type PracticeSession struct {
	ID             string
	UserID         int64
	Skill          vstep.Skill
	Level          vstep.Level
	Section        string
	Mode           SessionMode
	Status         SessionStatus
	QuestionOrder  []int64
	TotalQuestions int
	AnsweredCount  int
	CorrectCount   int
	PointsEarned   int
	MaxScore       int
	BandScore      int
	TimeLimitSec   int
	StartedAt      time.Time
	ExpiresAt      *time.Time
	PausedAt       *time.Time
	CompletedAt    *time.Time
}

// AnswerOutcome records how a submitted answer was judged. Ungraded marks
// essay/speaking answers that await examiner review; it is deliberately a
// third state rather than a nullable correctness flag.
type AnswerOutcome string

const (
	OutcomeCorrect   AnswerOutcome = "correct"
	OutcomeIncorrect AnswerOutcome = "incorrect"
	OutcomeUngraded  AnswerOutcome = "ungraded"
)

// PracticeAnswer is the latest submission for one question within a session.
// Resubmission overwrites the value, outcome and awarded points, but
// TimeSpentSec accumulates across submissions.
type PracticeAnswer struct {
	ID            string
	SessionID     string
	QuestionID    int64
	Submitted     string
	SubmittedList []string
	Outcome       AnswerOutcome
	PointsAwarded int
	TimeSpentSec  int
	Flagged       bool
	SubmittedAt   time.Time
	UpdatedAt     time.Time
}
