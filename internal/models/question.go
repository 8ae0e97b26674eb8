package models

import (
	"time"

	"vstepprep/internal/vstep"
)

// QuestionType determines how a submitted answer is evaluated.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionFillBlank      QuestionType = "fill_blank"
	QuestionMatching       QuestionType = "matching"
	QuestionEssay          QuestionType = "essay"
	QuestionSpeaking       QuestionType = "speaking"
)

// MachineGradable reports whether the question type can be scored
// automatically. Essay and speaking answers go to the examiner review
// pathway instead.
func (t QuestionType) MachineGradable() bool {
	switch t {
	case QuestionMultipleChoice, QuestionFillBlank, QuestionMatching:
		return true
	}
	return false
}

// Option is one selectable choice on a multiple-choice question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is a single exam question. Questions are immutable once published;
// only content authors create or change them.
type Question struct {
	ID            int64
	Skill         vstep.Skill
	Level         vstep.Level
	Section       string
	Type          QuestionType
	Prompt        string
	Options       []Option
	CorrectAnswer string   // option id or reference text, depending on type
	CorrectList   []string // reference list for matching questions
	Points        int
	Explanation   string
	Published     bool
	CreatedBy     int64
	CreatedAt     time.Time
}
