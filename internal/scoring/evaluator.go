package scoring

import (
	"errors"
	"sort"
	"strings"

	"vstepprep/internal/models"
)

var (
	// ErrUnknownQuestionType is returned for question types the evaluator
	// does not recognize at all.
	ErrUnknownQuestionType = errors.New("unknown question type")
)

// Submission carries the raw answer a student sent in. Value is used for
// multiple-choice, fill-blank, essay and speaking; Values for matching.
type Submission struct {
	Value  string
	Values []string
}

// Evaluation is the result of judging one submission against its question.
// Ungraded evaluations award no points here; those go to examiner review.
type Evaluation struct {
	Outcome models.AnswerOutcome
	Points  int
}

// Evaluate judges a submission against a question. It is a pure function of
// its inputs: no storage access, no clock, no side effects.
func Evaluate(q models.Question, sub Submission) (Evaluation, error) {
	switch q.Type {
	case models.QuestionMultipleChoice:
		if sub.Value == q.CorrectAnswer {
			return Evaluation{Outcome: models.OutcomeCorrect, Points: q.Points}, nil
		}
		return Evaluation{Outcome: models.OutcomeIncorrect}, nil

	case models.QuestionFillBlank:
		if Normalize(sub.Value) == Normalize(q.CorrectAnswer) {
			return Evaluation{Outcome: models.OutcomeCorrect, Points: q.Points}, nil
		}
		return Evaluation{Outcome: models.OutcomeIncorrect}, nil

	case models.QuestionMatching:
		if matchLists(sub.Values, q.CorrectList) {
			return Evaluation{Outcome: models.OutcomeCorrect, Points: q.Points}, nil
		}
		return Evaluation{Outcome: models.OutcomeIncorrect}, nil

	case models.QuestionEssay, models.QuestionSpeaking:
		// Not machine-gradable; the caller must not treat this as a zero.
		return Evaluation{Outcome: models.OutcomeUngraded}, nil
	}

	return Evaluation{}, ErrUnknownQuestionType
}

// Normalize prepares a free-text answer for comparison: lowercase, trimmed,
// with internal whitespace runs collapsed to single spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// matchLists compares two answer lists ignoring order. Both sides are
// normalized and sorted before comparison.
func matchLists(submitted, reference []string) bool {
	if len(submitted) != len(reference) {
		return false
	}

	a := make([]string, len(submitted))
	for i, s := range submitted {
		a[i] = Normalize(s)
	}
	b := make([]string, len(reference))
	for i, s := range reference {
		b[i] = Normalize(s)
	}

	sort.Strings(a)
	sort.Strings(b)

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
