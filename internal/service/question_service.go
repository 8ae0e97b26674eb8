package service

import (
	"errors"

	"vstepprep/internal/models"
	"vstepprep/internal/repository"
	"vstepprep/internal/vstep"
)

var (
	ErrNotAuthorized      = errors.New("not authorized")
	ErrUnknownQuestion    = errors.New("question not found")
	ErrInvalidQuestion    = errors.New("invalid question")
	errChoiceNeedsOptions = errors.New("multiple choice questions need at least two options")
)

// QuestionService handles question bank authoring and browsing
type QuestionService struct {
	questions *repository.QuestionRepository
}

// NewQuestionService creates a new question service
func NewQuestionService(questions *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questions: questions}
}

// CreateQuestion validates and stores a new question authored by the user
func (s *QuestionService) CreateQuestion(author *models.User, q *models.Question) (*models.Question, error) {
	if !author.CanAuthorContent() {
		return nil, ErrNotAuthorized
	}
	if err := validateQuestion(q); err != nil {
		return nil, err
	}

	q.CreatedBy = author.ID
	return s.questions.CreateQuestion(q)
}

// GetQuestion returns one question by id
func (s *QuestionService) GetQuestion(id int64) (*models.Question, error) {
	q, err := s.questions.GetQuestionByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrUnknownQuestion
	}
	return q, nil
}

// ListQuestions returns questions for a skill and level, for authoring
func (s *QuestionService) ListQuestions(skill vstep.Skill, level vstep.Level, limit int) ([]models.Question, error) {
	if !vstep.ValidSkill(skill) || !vstep.ValidLevel(level) {
		return nil, ErrInvalidSelection
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.questions.ListQuestions(skill, level, limit)
}

func validateQuestion(q *models.Question) error {
	if !vstep.ValidSkill(q.Skill) || !vstep.ValidLevel(q.Level) {
		return ErrInvalidSelection
	}
	if q.Prompt == "" {
		return ErrInvalidQuestion
	}
	if q.Points <= 0 {
		q.Points = 10
	}

	switch q.Type {
	case models.QuestionMultipleChoice:
		if len(q.Options) < 2 {
			return errChoiceNeedsOptions
		}
		found := false
		for _, opt := range q.Options {
			if opt.ID == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return ErrInvalidQuestion
		}
	case models.QuestionFillBlank:
		if q.CorrectAnswer == "" {
			return ErrInvalidQuestion
		}
	case models.QuestionMatching:
		if len(q.CorrectList) == 0 {
			return ErrInvalidQuestion
		}
	case models.QuestionEssay, models.QuestionSpeaking:
		// open-ended, nothing machine-checkable to require
	default:
		return ErrInvalidQuestion
	}
	return nil
}
