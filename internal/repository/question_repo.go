package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"vstepprep/internal/database"
	"vstepprep/internal/models"
	"vstepprep/internal/vstep"
)

// QuestionRepository handles database operations for the question bank
type QuestionRepository struct {
	db *database.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *database.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `id, skill, level, section, type, prompt, options,
	       correct_answer, correct_list, points, explanation, published, created_by, created_at`

// CreateQuestion inserts a new question into the bank
func (r *QuestionRepository) CreateQuestion(q *models.Question) (*models.Question, error) {
	optionsJSON, err := json.Marshal(q.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	listJSON, err := json.Marshal(q.CorrectList)
	if err != nil {
		return nil, fmt.Errorf("failed to encode correct list: %w", err)
	}

	query := `
		INSERT INTO questions (skill, level, section, type, prompt, options,
		                       correct_answer, correct_list, points, explanation, published, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		string(q.Skill), string(q.Level), q.Section, string(q.Type), q.Prompt,
		string(optionsJSON), q.CorrectAnswer, string(listJSON),
		q.Points, q.Explanation, q.Published, q.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	created := *q
	created.ID = id
	created.CreatedAt = time.Now()
	return &created, nil
}

// GetQuestionByID retrieves a single question, nil when absent
func (r *QuestionRepository) GetQuestionByID(id int64) (*models.Question, error) {
	query := "SELECT " + questionColumns + " FROM questions WHERE id = ?"

	rows, err := r.db.Query(query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	q, err := scanQuestion(rows)
	if err != nil {
		return nil, err
	}
	return q, rows.Err()
}

// GetQuestionsByIDs retrieves the questions for the given ids, keyed by id.
// Missing ids are simply absent from the result map.
func (r *QuestionRepository) GetQuestionsByIDs(ids []int64) (map[int64]models.Question, error) {
	result := make(map[int64]models.Question, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := "SELECT " + questionColumns + " FROM questions WHERE id IN (" +
		strings.Join(placeholders, ", ") + ")"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		result[q.ID] = *q
	}

	return result, rows.Err()
}

// GetRandomPublished selects up to limit published questions for the given
// skill, level and optional section, in store-random order. Callers must
// capture the returned order themselves; it is not stable across calls.
func (r *QuestionRepository) GetRandomPublished(skill vstep.Skill, level vstep.Level, section string, limit int) ([]models.Question, error) {
	query := "SELECT " + questionColumns + ` FROM questions
		WHERE skill = ? AND level = ? AND published = ?`
	args := []interface{}{string(skill), string(level), true}

	if section != "" {
		query += " AND section = ?"
		args = append(args, section)
	}

	query += " ORDER BY " + r.db.Dialect.RandomFunc() + " LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}

	return questions, rows.Err()
}

// ListQuestions returns published and unpublished questions for authoring
func (r *QuestionRepository) ListQuestions(skill vstep.Skill, level vstep.Level, limit int) ([]models.Question, error) {
	query := "SELECT " + questionColumns + ` FROM questions
		WHERE skill = ? AND level = ?
		ORDER BY id DESC
		LIMIT ?`

	rows, err := r.db.Query(query, string(skill), string(level), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}

	return questions, rows.Err()
}

func scanQuestion(rows *sql.Rows) (*models.Question, error) {
	q := &models.Question{}
	var skill, level, qtype, optionsJSON, listJSON string

	err := rows.Scan(
		&q.ID,
		&skill,
		&level,
		&q.Section,
		&qtype,
		&q.Prompt,
		&optionsJSON,
		&q.CorrectAnswer,
		&listJSON,
		&q.Points,
		&q.Explanation,
		&q.Published,
		&q.CreatedBy,
		&q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	q.Skill = vstep.Skill(skill)
	q.Level = vstep.Level(level)
	q.Type = models.QuestionType(qtype)

	if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
		return nil, fmt.Errorf("failed to decode options for question %d: %w", q.ID, err)
	}
	if err := json.Unmarshal([]byte(listJSON), &q.CorrectList); err != nil {
		return nil, fmt.Errorf("failed to decode correct list for question %d: %w", q.ID, err)
	}

	return q, nil
}
