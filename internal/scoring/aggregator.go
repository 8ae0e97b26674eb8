package scoring

import (
	"math"
	"sort"

	"vstepprep/internal/models"
	"vstepprep/internal/vstep"
)

// SectionResult is the per-section slice of a session rollup.
type SectionResult struct {
	Section         string
	TotalQuestions  int
	AnsweredCount   int
	CorrectCount    int
	PointsAvailable int
	PointsEarned    int
	Percentage      int
}

// SessionScoreResult is the on-demand rollup of a session and its answers.
// It is derived data: recomputing it from the same answers always yields the
// same result.
type SessionScoreResult struct {
	TotalQuestions  int
	AnsweredCount   int
	CorrectCount    int
	IncorrectCount  int
	SkippedCount    int
	UngradedCount   int
	PointsAvailable int
	PointsEarned    int
	Percentage      int
	BandScore       int
	AvgTimePerQSec  int
	Sections        []SectionResult
}

// Percentage computes round(correct/total*100), returning 0 for an empty
// total rather than dividing by zero.
func Percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Aggregate recomputes the full score rollup for a session from its answers.
// Answers whose question no longer resolves in the questions map are skipped
// rather than failing the whole aggregation. Ungraded answers count as
// answered but contribute to neither correct nor incorrect totals.
func Aggregate(sess models.PracticeSession, answers []models.PracticeAnswer, questions map[int64]models.Question) SessionScoreResult {
	res := SessionScoreResult{TotalQuestions: sess.TotalQuestions}

	sections := make(map[string]*SectionResult)
	for _, id := range sess.QuestionOrder {
		q, ok := questions[id]
		if !ok {
			continue
		}
		sec := sectionFor(q, sections)
		sec.TotalQuestions++
		sec.PointsAvailable += q.Points
		res.PointsAvailable += q.Points
	}

	totalTime := 0
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			continue
		}

		res.AnsweredCount++
		totalTime += a.TimeSpentSec

		sec := sectionFor(q, sections)
		sec.AnsweredCount++

		switch a.Outcome {
		case models.OutcomeCorrect:
			res.CorrectCount++
			res.PointsEarned += a.PointsAwarded
			sec.CorrectCount++
			sec.PointsEarned += a.PointsAwarded
		case models.OutcomeIncorrect:
			res.IncorrectCount++
		case models.OutcomeUngraded:
			res.UngradedCount++
		}
	}

	// Earned points can never exceed what the question set offers.
	if res.PointsEarned > res.PointsAvailable {
		res.PointsEarned = res.PointsAvailable
	}

	res.SkippedCount = res.TotalQuestions - res.AnsweredCount
	if res.SkippedCount < 0 {
		res.SkippedCount = 0
	}

	res.Percentage = Percentage(res.CorrectCount, res.TotalQuestions)
	res.BandScore = vstep.BandScore(sess.Skill, sess.Level, res.CorrectCount)

	if res.AnsweredCount > 0 {
		res.AvgTimePerQSec = int(math.Round(float64(totalTime) / float64(res.AnsweredCount)))
	}

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sec := sections[name]
		sec.Percentage = Percentage(sec.CorrectCount, sec.TotalQuestions)
		res.Sections = append(res.Sections, *sec)
	}

	return res
}

func sectionFor(q models.Question, sections map[string]*SectionResult) *SectionResult {
	name := q.Section
	if name == "" {
		name = "general"
	}
	sec, ok := sections[name]
	if !ok {
		sec = &SectionResult{Section: name}
		sections[name] = sec
	}
	return sec
}
