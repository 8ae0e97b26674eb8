package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"

	"vstepprep/internal/models"
	"vstepprep/internal/scoring"
)

var validate = validator.New()

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type userView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}
}

type startSessionRequest struct {
	Skill         string `json:"skill" validate:"required,oneof=reading listening writing speaking"`
	Level         string `json:"level" validate:"required,oneof=A2 B1 B2 C1"`
	Section       string `json:"section" validate:"max=100"`
	Mode          string `json:"mode" validate:"omitempty,oneof=practice mock review"`
	QuestionCount int    `json:"questionCount" validate:"gte=0,lte=100"`
	TimeLimitSec  int    `json:"timeLimitSec" validate:"gte=0,lte=14400"`
}

type submitAnswerRequest struct {
	QuestionID   int64    `json:"questionId" validate:"required,gt=0"`
	Answer       string   `json:"answer"`
	AnswerList   []string `json:"answerList"`
	TimeSpentSec int      `json:"timeSpentSec" validate:"gte=0"`
	Flagged      bool     `json:"flagged"`
}

type createQuestionRequest struct {
	Skill         string          `json:"skill" validate:"required,oneof=reading listening writing speaking"`
	Level         string          `json:"level" validate:"required,oneof=A2 B1 B2 C1"`
	Section       string          `json:"section" validate:"max=100"`
	Type          string          `json:"type" validate:"required,oneof=multiple_choice fill_blank matching essay speaking"`
	Prompt        string          `json:"prompt" validate:"required"`
	Options       []models.Option `json:"options"`
	CorrectAnswer string          `json:"correctAnswer"`
	CorrectList   []string        `json:"correctList"`
	Points        int             `json:"points" validate:"gte=0,lte=100"`
	Explanation   string          `json:"explanation"`
	Published     bool            `json:"published"`
}

type sessionView struct {
	ID             string     `json:"id"`
	Skill          string     `json:"skill"`
	Level          string     `json:"level"`
	Section        string     `json:"section,omitempty"`
	Mode           string     `json:"mode"`
	Status         string     `json:"status"`
	QuestionOrder  []int64    `json:"questionOrder"`
	TotalQuestions int        `json:"totalQuestions"`
	AnsweredCount  int        `json:"answeredCount"`
	CorrectCount   int        `json:"correctCount"`
	PointsEarned   int        `json:"pointsEarned"`
	MaxScore       int        `json:"maxScore"`
	BandScore      int        `json:"bandScore"`
	TimeLimitSec   int        `json:"timeLimitSec,omitempty"`
	StartedAt      time.Time  `json:"startedAt"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	PausedAt       *time.Time `json:"pausedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

func newSessionView(s *models.PracticeSession) sessionView {
	return sessionView{
		ID:             s.ID,
		Skill:          string(s.Skill),
		Level:          string(s.Level),
		Section:        s.Section,
		Mode:           string(s.Mode),
		Status:         string(s.Status),
		QuestionOrder:  s.QuestionOrder,
		TotalQuestions: s.TotalQuestions,
		AnsweredCount:  s.AnsweredCount,
		CorrectCount:   s.CorrectCount,
		PointsEarned:   s.PointsEarned,
		MaxScore:       s.MaxScore,
		BandScore:      s.BandScore,
		TimeLimitSec:   s.TimeLimitSec,
		StartedAt:      s.StartedAt,
		ExpiresAt:      s.ExpiresAt,
		PausedAt:       s.PausedAt,
		CompletedAt:    s.CompletedAt,
	}
}

type answerView struct {
	QuestionID    int64    `json:"questionId"`
	Submitted     string   `json:"submitted,omitempty"`
	SubmittedList []string `json:"submittedList,omitempty"`
	Outcome       string   `json:"outcome"`
	PointsAwarded int      `json:"pointsAwarded"`
	TimeSpentSec  int      `json:"timeSpentSec"`
	Flagged       bool     `json:"flagged"`
}

func newAnswerView(a *models.PracticeAnswer) answerView {
	return answerView{
		QuestionID:    a.QuestionID,
		Submitted:     a.Submitted,
		SubmittedList: a.SubmittedList,
		Outcome:       string(a.Outcome),
		PointsAwarded: a.PointsAwarded,
		TimeSpentSec:  a.TimeSpentSec,
		Flagged:       a.Flagged,
	}
}

// questionView hides the correct answers; it is what students see during a
// session. Authors get the full payload through authorQuestionView.
type questionView struct {
	ID      int64           `json:"id"`
	Skill   string          `json:"skill"`
	Level   string          `json:"level"`
	Section string          `json:"section,omitempty"`
	Type    string          `json:"type"`
	Prompt  string          `json:"prompt"`
	Options []models.Option `json:"options,omitempty"`
	Points  int             `json:"points"`
}

func newQuestionView(q models.Question) questionView {
	return questionView{
		ID:      q.ID,
		Skill:   string(q.Skill),
		Level:   string(q.Level),
		Section: q.Section,
		Type:    string(q.Type),
		Prompt:  q.Prompt,
		Options: q.Options,
		Points:  q.Points,
	}
}

type authorQuestionView struct {
	questionView
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	CorrectList   []string `json:"correctList,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	Published     bool     `json:"published"`
}

func newAuthorQuestionView(q models.Question) authorQuestionView {
	return authorQuestionView{
		questionView:  newQuestionView(q),
		CorrectAnswer: q.CorrectAnswer,
		CorrectList:   q.CorrectList,
		Explanation:   q.Explanation,
		Published:     q.Published,
	}
}

type sectionResultView struct {
	Section        string `json:"section"`
	TotalQuestions int    `json:"totalQuestions"`
	AnsweredCount  int    `json:"answeredCount"`
	CorrectCount   int    `json:"correctCount"`
	Percentage     int    `json:"percentage"`
}

type resultsView struct {
	Session        sessionView         `json:"session"`
	TotalQuestions int                 `json:"totalQuestions"`
	AnsweredCount  int                 `json:"answeredCount"`
	CorrectCount   int                 `json:"correctCount"`
	IncorrectCount int                 `json:"incorrectCount"`
	SkippedCount   int                 `json:"skippedCount"`
	UngradedCount  int                 `json:"ungradedCount"`
	PointsEarned   int                 `json:"pointsEarned"`
	MaxPoints      int                 `json:"maxPoints"`
	Percentage     int                 `json:"percentage"`
	BandScore      int                 `json:"bandScore"`
	AvgTimePerQSec int                 `json:"avgTimePerQSec"`
	Sections       []sectionResultView `json:"sections"`
	Suggestions    []string            `json:"suggestions,omitempty"`
}

func newResultsView(s *models.PracticeSession, res *scoring.SessionScoreResult, suggestions []string) resultsView {
	view := resultsView{
		Session:        newSessionView(s),
		TotalQuestions: res.TotalQuestions,
		AnsweredCount:  res.AnsweredCount,
		CorrectCount:   res.CorrectCount,
		IncorrectCount: res.IncorrectCount,
		SkippedCount:   res.SkippedCount,
		UngradedCount:  res.UngradedCount,
		PointsEarned:   res.PointsEarned,
		MaxPoints:      res.PointsAvailable,
		Percentage:     res.Percentage,
		BandScore:      res.BandScore,
		AvgTimePerQSec: res.AvgTimePerQSec,
		Suggestions:    suggestions,
	}
	for _, sec := range res.Sections {
		view.Sections = append(view.Sections, sectionResultView{
			Section:        sec.Section,
			TotalQuestions: sec.TotalQuestions,
			AnsweredCount:  sec.AnsweredCount,
			CorrectCount:   sec.CorrectCount,
			Percentage:     sec.Percentage,
		})
	}
	return view
}
