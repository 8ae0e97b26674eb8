package service

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"vstepprep/internal/models"
	"vstepprep/internal/scoring"
	"vstepprep/internal/vstep"
)

type fakeQuestionStore struct {
	questions map[int64]models.Question
}

func (f *fakeQuestionStore) GetRandomPublished(skill vstep.Skill, level vstep.Level, section string, limit int) ([]models.Question, error) {
	var out []models.Question
	for _, q := range f.questions {
		if q.Skill != skill || q.Level != level {
			continue
		}
		if section != "" && q.Section != section {
			continue
		}
		if len(out) < limit {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) GetQuestionsByIDs(ids []int64) (map[int64]models.Question, error) {
	out := make(map[int64]models.Question)
	for _, id := range ids {
		if q, ok := f.questions[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

type fakeSessionStore struct {
	sessions map[string]*models.PracticeSession
	updates  int
}

func (f *fakeSessionStore) CreateSession(s *models.PracticeSession) error {
	copied := *s
	f.sessions[s.ID] = &copied
	return nil
}

func (f *fakeSessionStore) GetSessionByID(id string) (*models.PracticeSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionStore) UpdateSession(s *models.PracticeSession) error {
	copied := *s
	f.sessions[s.ID] = &copied
	f.updates++
	return nil
}

func (f *fakeSessionStore) GetUserSessions(userID int64, limit int) ([]models.PracticeSession, error) {
	var out []models.PracticeSession
	for _, s := range f.sessions {
		if s.UserID == userID && len(out) < limit {
			out = append(out, *s)
		}
	}
	return out, nil
}

type answerKey struct {
	sessionID  string
	questionID int64
}

type fakeAnswerStore struct {
	answers map[answerKey]*models.PracticeAnswer
}

func (f *fakeAnswerStore) InsertAnswer(a *models.PracticeAnswer) error {
	copied := *a
	f.answers[answerKey{a.SessionID, a.QuestionID}] = &copied
	return nil
}

func (f *fakeAnswerStore) UpdateAnswer(a *models.PracticeAnswer) error {
	copied := *a
	f.answers[answerKey{a.SessionID, a.QuestionID}] = &copied
	return nil
}

func (f *fakeAnswerStore) GetAnswer(sessionID string, questionID int64) (*models.PracticeAnswer, error) {
	a, ok := f.answers[answerKey{sessionID, questionID}]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAnswerStore) GetSessionAnswers(sessionID string) ([]models.PracticeAnswer, error) {
	var out []models.PracticeAnswer
	for k, a := range f.answers {
		if k.sessionID == sessionID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func choiceQuestion(id int64, section, correct string, points int) models.Question {
	return models.Question{
		ID:      id,
		Skill:   vstep.SkillReading,
		Level:   vstep.LevelB2,
		Section: section,
		Type:    models.QuestionMultipleChoice,
		Prompt:  "pick one",
		Options: []models.Option{
			{ID: "a", Text: "first"},
			{ID: "b", Text: "second"},
		},
		CorrectAnswer: correct,
		Points:        points,
		Published:     true,
	}
}

// testEnv wires a practice service over fakes with a controllable clock.
type testEnv struct {
	svc      *PracticeService
	sessions *fakeSessionStore
	answers  *fakeAnswerStore
	clock    *time.Time
}

func newTestEnv(questions ...models.Question) *testEnv {
	qs := &fakeQuestionStore{questions: make(map[int64]models.Question)}
	for _, q := range questions {
		qs.questions[q.ID] = q
	}
	ss := &fakeSessionStore{sessions: make(map[string]*models.PracticeSession)}
	as := &fakeAnswerStore{answers: make(map[answerKey]*models.PracticeAnswer)}

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := &start

	svc := NewPracticeService(qs, ss, as)
	svc.now = func() time.Time { return *clock }

	return &testEnv{svc: svc, sessions: ss, answers: as, clock: clock}
}

func (e *testEnv) advance(d time.Duration) {
	*e.clock = e.clock.Add(d)
}

func TestStartSessionCapturesOrder(t *testing.T) {
	env := newTestEnv(
		choiceQuestion(1, "part1", "a", 10),
		choiceQuestion(2, "part1", "b", 10),
		choiceQuestion(3, "part2", "a", 10),
	)

	sess, questions, err := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelB2, "", models.ModePractice, 3, 1800)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	if sess.Status != models.SessionInProgress {
		t.Errorf("Status = %q, want %q", sess.Status, models.SessionInProgress)
	}
	if sess.TotalQuestions != 3 || len(sess.QuestionOrder) != 3 {
		t.Errorf("TotalQuestions = %d, order length = %d, want 3 each", sess.TotalQuestions, len(sess.QuestionOrder))
	}
	if sess.MaxScore != 30 {
		t.Errorf("MaxScore = %d, want 30", sess.MaxScore)
	}
	if sess.ExpiresAt == nil {
		t.Fatal("ExpiresAt not set despite a time limit")
	}
	if got := sess.ExpiresAt.Sub(sess.StartedAt); got != 1800*time.Second {
		t.Errorf("expiry window = %v, want 30m", got)
	}
	for i, q := range questions {
		if sess.QuestionOrder[i] != q.ID {
			t.Errorf("order[%d] = %d, want %d", i, sess.QuestionOrder[i], q.ID)
		}
	}

	// The captured order must not change on later reads
	again, err := env.svc.GetSession(7, sess.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if !reflect.DeepEqual(again.QuestionOrder, sess.QuestionOrder) {
		t.Errorf("question order changed between reads: %v vs %v", again.QuestionOrder, sess.QuestionOrder)
	}
}

func TestStartSessionNoQuestions(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelC1, "", models.ModePractice, 5, 0)
	if !errors.Is(err, ErrNoQuestions) {
		t.Errorf("StartSession() error = %v, want %v", err, ErrNoQuestions)
	}
}

func TestStartSessionInvalidSelection(t *testing.T) {
	env := newTestEnv(choiceQuestion(1, "part1", "a", 10))

	if _, _, err := env.svc.StartSession(7, "grammar", vstep.LevelB2, "", models.ModePractice, 5, 0); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("bad skill error = %v, want %v", err, ErrInvalidSelection)
	}
	if _, _, err := env.svc.StartSession(7, vstep.SkillReading, "D1", "", models.ModePractice, 5, 0); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("bad level error = %v, want %v", err, ErrInvalidSelection)
	}
}

func TestSubmitAnswerFirstSubmissionMovesCounters(t *testing.T) {
	env := newTestEnv(choiceQuestion(1, "part1", "b", 10))
	sess, _, err := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelB2, "", models.ModePractice, 1, 0)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	answer, err := env.svc.SubmitAnswer(7, sess.ID, 1, scoring.Submission{Value: "b"}, 45, false)
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if answer.Outcome != models.OutcomeCorrect {
		t.Errorf("Outcome = %q, want correct", answer.Outcome)
	}
	if answer.PointsAwarded != 10 {
		t.Errorf("PointsAwarded = %d, want 10", answer.PointsAwarded)
	}

	stored, _ := env.svc.GetSession(7, sess.ID)
	if stored.AnsweredCount != 1 || stored.CorrectCount != 1 || stored.PointsEarned != 10 {
		t.Errorf("counters = (%d answered, %d correct, %d points), want (1, 1, 10)",
			stored.AnsweredCount, stored.CorrectCount, stored.PointsEarned)
	}
}

func TestSubmitAnswerResubmissionLeavesCounters(t *testing.T) {
	env := newTestEnv(choiceQuestion(1, "part1", "b", 10))
	sess, _, _ := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelB2, "", models.ModePractice, 1, 0)

	if _, err := env.svc.SubmitAnswer(7, sess.ID, 1, scoring.Submission{Value: "b"}, 30, false); err != nil {
		t.Fatalf("first SubmitAnswer() error = %v", err)
	}
	answer, err := env.svc.SubmitAnswer(7, sess.ID, 1, scoring.Submission{Value: "a"}, 20, true)
	if err != nil {
		t.Fatalf("second SubmitAnswer() error = %v", err)
	}

	if answer.Outcome != models.OutcomeIncorrect {
		t.Errorf("Outcome = %q, want incorrect after resubmission", answer.Outcome)
	}
	if answer.Submitted != "a" {
		t.Errorf("Submitted = %q, want the latest value", answer.Submitted)
	}
	if answer.TimeSpentSec != 50 {
		t.Errorf("TimeSpentSec = %d, want 50 (30 + 20 accumulated)", answer.TimeSpentSec)
	}
	if !answer.Flagged {
		t.Error("Flagged not updated on resubmission")
	}

	stored, _ := env.svc.GetSession(7, sess.ID)
	if stored.AnsweredCount != 1 || stored.CorrectCount != 1 || stored.PointsEarned != 10 {
		t.Errorf("counters moved on resubmission: (%d answered, %d correct, %d points), want (1, 1, 10)",
			stored.AnsweredCount, stored.CorrectCount, stored.PointsEarned)
	}
}

func TestSubmitAnswerQuestionNotInSession(t *testing.T) {
	outside := models.Question{
		ID: 99, Skill: vstep.SkillListening, Level: vstep.LevelB2,
		Type: models.QuestionMultipleChoice, CorrectAnswer: "a", Points: 10, Published: true,
	}
	env := newTestEnv(choiceQuestion(1, "part1", "b", 10), outside)
	sess, _, _ := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelB2, "", models.ModePractice, 1, 0)

	if _, err := env.svc.SubmitAnswer(7, sess.ID, 99, scoring.Submission{Value: "a"}, 5, false); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("SubmitAnswer() error = %v, want %v", err, ErrQuestionNotFound)
	}
}

func TestSubmitAnswerWhilePaused(t *testing.T) {
	env := newTestEnv(choiceQuestion(1, "part1", "b", 10))
	sess, _, _ := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelB2, "", models.ModePractice, 1, 0)

	if _, err := env.svc.PauseSession(7, sess.ID); err != nil {
		t.Fatalf("PauseSession() error = %v", err)
	}
	if _, err := env.svc.SubmitAnswer(7, sess.ID, 1, scoring.Submission{Value: "b"}, 5, false); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("SubmitAnswer() error = %v, want %v", err, ErrInvalidSessionState)
	}
}

func TestPauseResumeShiftsExpiry(t *testing.T) {
	env := newTestEnv(choiceQuestion(1, "part1", "b", 10))
	sess, _, _ := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelB2, "", models.ModePractice, 1, 1800)
	originalExpiry := *sess.ExpiresAt

	env.advance(5 * time.Minute)
	if _, err := env.svc.PauseSession(7, sess.ID); err != nil {
		t.Fatalf("PauseSession() error = %v", err)
	}

	env.advance(600 * time.Second)
	resumed, err := env.svc.ResumeSession(7, sess.ID)
	if err != nil {
		t.Fatalf("ResumeSession() error = %v", err)
	}

	if resumed.Status != models.SessionInProgress {
		t.Errorf("Status = %q, want in_progress", resumed.Status)
	}
	if resumed.PausedAt != nil {
		t.Error("PausedAt not cleared on resume")
	}
	want := originalExpiry.Add(600 * time.Second)
	if !resumed.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v (shifted by the 600s paused)", resumed.ExpiresAt, want)
	}
}

func TestPauseResumeInvalidStates(t *testing.T) {
	env := newTestEnv(choiceQuestion(1, "part1", "b", 10))
	sess, _, _ := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelB2, "", models.ModePractice, 1, 0)

	if _, err := env.svc.ResumeSession(7, sess.ID); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("resume while in progress error = %v, want %v", err, ErrInvalidSessionState)
	}

	if _, err := env.svc.PauseSession(7, sess.ID); err != nil {
		t.Fatalf("PauseSession() error = %v", err)
	}
	if _, err := env.svc.PauseSession(7, sess.ID); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("double pause error = %v, want %v", err, ErrInvalidSessionState)
	}
}

func TestLazyExpiry(t *testing.T) {
	env := newTestEnv(choiceQuestion(1, "part1", "b", 10))
	sess, _, _ := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelB2, "", models.ModePractice, 1, 1800)

	env.advance(1801 * time.Second)
	got, err := env.svc.GetSession(7, sess.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Status != models.SessionExpired {
		t.Errorf("Status = %q, want expired", got.Status)
	}

	// Expired is terminal for everything but reads
	if _, err := env.svc.SubmitAnswer(7, sess.ID, 1, scoring.Submission{Value: "b"}, 5, false); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("SubmitAnswer() error = %v, want %v", err, ErrInvalidSessionState)
	}
	if _, _, err := env.svc.CompleteSession(7, sess.ID); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("CompleteSession() error = %v, want %v", err, ErrInvalidSessionState)
	}
}

func TestPausedSessionDoesNotExpire(t *testing.T) {
	env := newTestEnv(choiceQuestion(1, "part1", "b", 10))
	sess, _, _ := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelB2, "", models.ModePractice, 1, 1800)

	if _, err := env.svc.PauseSession(7, sess.ID); err != nil {
		t.Fatalf("PauseSession() error = %v", err)
	}
	env.advance(3 * time.Hour)

	got, err := env.svc.GetSession(7, sess.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Status != models.SessionPaused {
		t.Errorf("Status = %q, want paused (the clock is frozen while paused)", got.Status)
	}

	resumed, err := env.svc.ResumeSession(7, sess.ID)
	if err != nil {
		t.Fatalf("ResumeSession() error = %v", err)
	}
	if resumed.Status != models.SessionInProgress {
		t.Errorf("Status = %q, want in_progress", resumed.Status)
	}
}

func TestCompleteSessionIdempotent(t *testing.T) {
	env := newTestEnv(
		choiceQuestion(1, "part1", "b", 10),
		choiceQuestion(2, "part1", "a", 10),
	)
	sess, _, _ := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelB2, "", models.ModePractice, 2, 0)

	if _, err := env.svc.SubmitAnswer(7, sess.ID, 1, scoring.Submission{Value: "b"}, 30, false); err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if _, err := env.svc.SubmitAnswer(7, sess.ID, 2, scoring.Submission{Value: "b"}, 30, false); err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}

	first, firstRes, err := env.svc.CompleteSession(7, sess.ID)
	if err != nil {
		t.Fatalf("CompleteSession() error = %v", err)
	}
	if first.Status != models.SessionCompleted {
		t.Errorf("Status = %q, want completed", first.Status)
	}
	if first.CorrectCount != 1 || first.AnsweredCount != 2 || first.PointsEarned != 10 {
		t.Errorf("rollup = (%d answered, %d correct, %d points), want (2, 1, 10)",
			first.AnsweredCount, first.CorrectCount, first.PointsEarned)
	}
	if firstRes.Percentage != 50 {
		t.Errorf("Percentage = %v, want 50", firstRes.Percentage)
	}

	env.advance(time.Minute)
	second, secondRes, err := env.svc.CompleteSession(7, sess.ID)
	if err != nil {
		t.Fatalf("second CompleteSession() error = %v", err)
	}
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("CompletedAt moved on repeat completion: %v vs %v", second.CompletedAt, first.CompletedAt)
	}
	if !reflect.DeepEqual(firstRes, secondRes) {
		t.Errorf("repeat completion changed the result: %+v vs %+v", firstRes, secondRes)
	}
}

func TestAbandonSession(t *testing.T) {
	env := newTestEnv(choiceQuestion(1, "part1", "b", 10))
	sess, _, _ := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelB2, "", models.ModePractice, 1, 0)

	got, err := env.svc.AbandonSession(7, sess.ID)
	if err != nil {
		t.Fatalf("AbandonSession() error = %v", err)
	}
	if got.Status != models.SessionAbandoned {
		t.Errorf("Status = %q, want abandoned", got.Status)
	}

	if _, err := env.svc.AbandonSession(7, sess.ID); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("second abandon error = %v, want %v", err, ErrInvalidSessionState)
	}
	if _, _, err := env.svc.CompleteSession(7, sess.ID); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("complete after abandon error = %v, want %v", err, ErrInvalidSessionState)
	}
}

func TestSessionOwnershipNotLeaked(t *testing.T) {
	env := newTestEnv(choiceQuestion(1, "part1", "b", 10))
	sess, _, _ := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelB2, "", models.ModePractice, 1, 0)

	if _, err := env.svc.GetSession(8, sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("other user's GetSession() error = %v, want %v", err, ErrSessionNotFound)
	}
	if _, err := env.svc.GetSession(7, "no-such-session"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("missing session error = %v, want %v", err, ErrSessionNotFound)
	}
}

func TestSessionResultsIncludeSuggestions(t *testing.T) {
	env := newTestEnv(
		choiceQuestion(1, "part1", "b", 10),
		choiceQuestion(2, "part2", "a", 10),
	)
	sess, _, _ := env.svc.StartSession(7, vstep.SkillReading, vstep.LevelB2, "", models.ModePractice, 2, 0)

	if _, err := env.svc.SubmitAnswer(7, sess.ID, 1, scoring.Submission{Value: "b"}, 30, false); err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if _, err := env.svc.SubmitAnswer(7, sess.ID, 2, scoring.Submission{Value: "b"}, 30, false); err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}

	_, res, suggestions, err := env.svc.SessionResults(7, sess.ID)
	if err != nil {
		t.Fatalf("SessionResults() error = %v", err)
	}
	if res.Percentage != 50 {
		t.Errorf("Percentage = %v, want 50", res.Percentage)
	}
	if len(suggestions) == 0 {
		t.Fatal("no suggestions returned")
	}
}
