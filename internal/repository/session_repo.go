package repository

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"vstepprep/internal/database"
	"vstepprep/internal/models"
	"vstepprep/internal/vstep"
)

// SessionRepository handles database operations for practice sessions
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, user_id, skill, level, section, mode, status, question_order,
	       total_questions, answered_count, correct_count, points_earned, max_score,
	       band_score, time_limit_sec, started_at, expires_at, paused_at, completed_at`

// CreateSession persists a new practice session
func (r *SessionRepository) CreateSession(s *models.PracticeSession) error {
	query := `
		INSERT INTO practice_sessions
			(id, user_id, skill, level, section, mode, status, question_order,
			 total_questions, answered_count, correct_count, points_earned, max_score,
			 band_score, time_limit_sec, started_at, expires_at, paused_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		s.ID, s.UserID, string(s.Skill), string(s.Level), s.Section, string(s.Mode),
		string(s.Status), idsToString(s.QuestionOrder),
		s.TotalQuestions, s.AnsweredCount, s.CorrectCount, s.PointsEarned, s.MaxScore,
		s.BandScore, s.TimeLimitSec, s.StartedAt, s.ExpiresAt, s.PausedAt, s.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSessionByID retrieves a session by id, nil when absent
func (r *SessionRepository) GetSessionByID(id string) (*models.PracticeSession, error) {
	query := "SELECT " + sessionColumns + " FROM practice_sessions WHERE id = ?"

	rows, err := r.db.Query(query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	s, err := scanSession(rows)
	if err != nil {
		return nil, err
	}
	return s, rows.Err()
}

// UpdateSession persists the mutable fields of a session
func (r *SessionRepository) UpdateSession(s *models.PracticeSession) error {
	query := `
		UPDATE practice_sessions
		SET status = ?, answered_count = ?, correct_count = ?, points_earned = ?,
		    band_score = ?, expires_at = ?, paused_at = ?, completed_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		string(s.Status), s.AnsweredCount, s.CorrectCount, s.PointsEarned,
		s.BandScore, s.ExpiresAt, s.PausedAt, s.CompletedAt, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", s.ID, err)
	}
	return nil
}

// GetUserSessions retrieves recent sessions for a user, newest first
func (r *SessionRepository) GetUserSessions(userID int64, limit int) ([]models.PracticeSession, error) {
	query := "SELECT " + sessionColumns + ` FROM practice_sessions
		WHERE user_id = ?
		ORDER BY started_at DESC
		LIMIT ?`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.PracticeSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}

	return sessions, rows.Err()
}

func scanSession(rows *sql.Rows) (*models.PracticeSession, error) {
	s := &models.PracticeSession{}
	var skill, level, mode, status, order string
	var expiresAt, pausedAt, completedAt sql.NullTime

	err := rows.Scan(
		&s.ID,
		&s.UserID,
		&skill,
		&level,
		&s.Section,
		&mode,
		&status,
		&order,
		&s.TotalQuestions,
		&s.AnsweredCount,
		&s.CorrectCount,
		&s.PointsEarned,
		&s.MaxScore,
		&s.BandScore,
		&s.TimeLimitSec,
		&s.StartedAt,
		&expiresAt,
		&pausedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Skill = vstep.Skill(skill)
	s.Level = vstep.Level(level)
	s.Mode = models.SessionMode(mode)
	s.Status = models.SessionStatus(status)
	s.QuestionOrder = parseIDString(order)

	if expiresAt.Valid {
		s.ExpiresAt = &expiresAt.Time
	}
	if pausedAt.Valid {
		s.PausedAt = &pausedAt.Time
	}
	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}

	return s, nil
}

// idsToString serializes a question order as a comma-separated id list
func idsToString(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// parseIDString parses a comma-separated id list, skipping malformed entries
func parseIDString(s string) []int64 {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
