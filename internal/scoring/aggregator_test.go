package scoring

import (
	"reflect"
	"testing"

	"vstepprep/internal/models"
	"vstepprep/internal/vstep"
)

func readingSession(questionIDs []int64) models.PracticeSession {
	return models.PracticeSession{
		ID:             "s1",
		Skill:          vstep.SkillReading,
		Level:          vstep.LevelB2,
		QuestionOrder:  questionIDs,
		TotalQuestions: len(questionIDs),
	}
}

func questionMap(qs ...models.Question) map[int64]models.Question {
	m := make(map[int64]models.Question, len(qs))
	for _, q := range qs {
		m[q.ID] = q
	}
	return m
}

func TestAggregateCounts(t *testing.T) {
	questions := questionMap(
		models.Question{ID: 1, Section: "part1", Type: models.QuestionMultipleChoice, Points: 1},
		models.Question{ID: 2, Section: "part1", Type: models.QuestionMultipleChoice, Points: 1},
		models.Question{ID: 3, Section: "part2", Type: models.QuestionFillBlank, Points: 2},
		models.Question{ID: 4, Section: "part2", Type: models.QuestionFillBlank, Points: 2},
	)
	sess := readingSession([]int64{1, 2, 3, 4})
	answers := []models.PracticeAnswer{
		{QuestionID: 1, Outcome: models.OutcomeCorrect, PointsAwarded: 1, TimeSpentSec: 30},
		{QuestionID: 2, Outcome: models.OutcomeIncorrect, TimeSpentSec: 50},
		{QuestionID: 3, Outcome: models.OutcomeCorrect, PointsAwarded: 2, TimeSpentSec: 40},
	}

	res := Aggregate(sess, answers, questions)

	if res.CorrectCount != 2 || res.IncorrectCount != 1 || res.SkippedCount != 1 {
		t.Errorf("counts = (%d correct, %d incorrect, %d skipped), want (2, 1, 1)",
			res.CorrectCount, res.IncorrectCount, res.SkippedCount)
	}
	if res.CorrectCount+res.IncorrectCount+res.SkippedCount+res.UngradedCount != res.TotalQuestions {
		t.Error("counts do not add up to total questions")
	}
	if res.PointsAvailable != 6 || res.PointsEarned != 3 {
		t.Errorf("points = %d/%d, want 3/6", res.PointsEarned, res.PointsAvailable)
	}
	if res.Percentage != 50 {
		t.Errorf("percentage = %d, want 50", res.Percentage)
	}
	if res.AvgTimePerQSec != 40 {
		t.Errorf("avg time = %d, want 40", res.AvgTimePerQSec)
	}
	if len(res.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(res.Sections))
	}
	if res.Sections[0].Section != "part1" || res.Sections[0].Percentage != 50 {
		t.Errorf("part1 = %+v, want 50%%", res.Sections[0])
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	questions := questionMap(
		models.Question{ID: 1, Type: models.QuestionMultipleChoice, Points: 1},
		models.Question{ID: 2, Type: models.QuestionFillBlank, Points: 1},
	)
	sess := readingSession([]int64{1, 2})
	answers := []models.PracticeAnswer{
		{QuestionID: 1, Outcome: models.OutcomeCorrect, PointsAwarded: 1, TimeSpentSec: 10},
		{QuestionID: 2, Outcome: models.OutcomeIncorrect, TimeSpentSec: 25},
	}

	first := Aggregate(sess, answers, questions)
	second := Aggregate(sess, answers, questions)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated aggregation differs:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestAggregateSkipsUnresolvableQuestions(t *testing.T) {
	questions := questionMap(
		models.Question{ID: 1, Type: models.QuestionMultipleChoice, Points: 1},
	)
	sess := readingSession([]int64{1, 99})
	answers := []models.PracticeAnswer{
		{QuestionID: 1, Outcome: models.OutcomeCorrect, PointsAwarded: 1},
		{QuestionID: 99, Outcome: models.OutcomeCorrect, PointsAwarded: 1}, // question deleted since
	}

	res := Aggregate(sess, answers, questions)

	if res.AnsweredCount != 1 {
		t.Errorf("answered = %d, want 1 (missing question skipped)", res.AnsweredCount)
	}
	if res.PointsEarned != 1 {
		t.Errorf("points earned = %d, want 1", res.PointsEarned)
	}
}

func TestAggregateUngradedNotCountedIncorrect(t *testing.T) {
	questions := questionMap(
		models.Question{ID: 1, Type: models.QuestionEssay, Points: 10},
		models.Question{ID: 2, Type: models.QuestionMultipleChoice, Points: 1},
	)
	sess := readingSession([]int64{1, 2})
	answers := []models.PracticeAnswer{
		{QuestionID: 1, Outcome: models.OutcomeUngraded},
		{QuestionID: 2, Outcome: models.OutcomeCorrect, PointsAwarded: 1},
	}

	res := Aggregate(sess, answers, questions)

	if res.UngradedCount != 1 {
		t.Errorf("ungraded = %d, want 1", res.UngradedCount)
	}
	if res.IncorrectCount != 0 {
		t.Errorf("incorrect = %d, want 0 (ungraded must not count as wrong)", res.IncorrectCount)
	}
}

func TestAggregateEmptySession(t *testing.T) {
	sess := readingSession(nil)
	res := Aggregate(sess, nil, nil)

	if res.Percentage != 0 {
		t.Errorf("percentage = %d, want 0 for empty session", res.Percentage)
	}
	if res.AvgTimePerQSec != 0 {
		t.Errorf("avg time = %d, want 0 when nothing answered", res.AvgTimePerQSec)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{7, 10, 70},
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{40, 40, 100},
	}

	for _, tt := range tests {
		if got := Percentage(tt.correct, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}
