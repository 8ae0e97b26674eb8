package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"vstepprep/internal/database"
	"vstepprep/internal/models"
)

// AnswerRepository handles database operations for practice answers
type AnswerRepository struct {
	db *database.DB
}

// NewAnswerRepository creates a new answer repository
func NewAnswerRepository(db *database.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

const answerColumns = `id, session_id, question_id, submitted, submitted_list, outcome,
	       points_awarded, time_spent_sec, flagged, submitted_at, updated_at`

// InsertAnswer records the first submission for a question within a session
func (r *AnswerRepository) InsertAnswer(a *models.PracticeAnswer) error {
	listJSON, err := json.Marshal(a.SubmittedList)
	if err != nil {
		return fmt.Errorf("failed to encode submitted list: %w", err)
	}

	query := `
		INSERT INTO practice_answers
			(id, session_id, question_id, submitted, submitted_list, outcome,
			 points_awarded, time_spent_sec, flagged, submitted_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		a.ID, a.SessionID, a.QuestionID, a.Submitted, string(listJSON), string(a.Outcome),
		a.PointsAwarded, a.TimeSpentSec, a.Flagged, a.SubmittedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}
	return nil
}

// UpdateAnswer overwrites a resubmitted answer. TimeSpentSec is expected to
// already hold the accumulated total; this is a plain write.
func (r *AnswerRepository) UpdateAnswer(a *models.PracticeAnswer) error {
	listJSON, err := json.Marshal(a.SubmittedList)
	if err != nil {
		return fmt.Errorf("failed to encode submitted list: %w", err)
	}

	query := `
		UPDATE practice_answers
		SET submitted = ?, submitted_list = ?, outcome = ?, points_awarded = ?,
		    time_spent_sec = ?, flagged = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.Exec(query,
		a.Submitted, string(listJSON), string(a.Outcome), a.PointsAwarded,
		a.TimeSpentSec, a.Flagged, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update answer %s: %w", a.ID, err)
	}
	return nil
}

// GetAnswer retrieves the answer for (session, question), nil when absent
func (r *AnswerRepository) GetAnswer(sessionID string, questionID int64) (*models.PracticeAnswer, error) {
	query := "SELECT " + answerColumns + ` FROM practice_answers
		WHERE session_id = ? AND question_id = ?`

	rows, err := r.db.Query(query, sessionID, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	a, err := scanAnswer(rows)
	if err != nil {
		return nil, err
	}
	return a, rows.Err()
}

// GetSessionAnswers retrieves all answers for a session in submission order
func (r *AnswerRepository) GetSessionAnswers(sessionID string) ([]models.PracticeAnswer, error) {
	query := "SELECT " + answerColumns + ` FROM practice_answers
		WHERE session_id = ?
		ORDER BY submitted_at ASC`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []models.PracticeAnswer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, *a)
	}

	return answers, rows.Err()
}

func scanAnswer(rows *sql.Rows) (*models.PracticeAnswer, error) {
	a := &models.PracticeAnswer{}
	var listJSON, outcome string

	err := rows.Scan(
		&a.ID,
		&a.SessionID,
		&a.QuestionID,
		&a.Submitted,
		&listJSON,
		&outcome,
		&a.PointsAwarded,
		&a.TimeSpentSec,
		&a.Flagged,
		&a.SubmittedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Outcome = models.AnswerOutcome(outcome)
	if err := json.Unmarshal([]byte(listJSON), &a.SubmittedList); err != nil {
		return nil, fmt.Errorf("failed to decode submitted list for answer %s: %w", a.ID, err)
	}

	return a, nil
}
