package service

import (
	"fmt"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	"github.com/yourusername/skillcert-api/internal/domain/repository"
	apperrors "github.com/yourusername/skillcert-api/internal/pkg/errors"
)

// OptionView - вариант ответа без признака правильности
type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// QuestionView - вопрос для прохождения теста
type QuestionView struct {
	ID      uint         `json:"id"`
	Text    string       `json:"text"`
	Order   int          `json:"order"`
	Options []OptionView `json:"options"`
}

// AssessmentSession - тест, подготовленный к прохождению
type AssessmentSession struct {
	AssessmentID uint           `json:"assessment_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Difficulty   int            `json:"difficulty"`
	TimeLimit    int            `json:"time_limit"`
	Questions    []QuestionView `json:"questions"`
}

// AnswerCheck - результат проверки одного ответа
type AnswerCheck struct {
	QuestionID uint `json:"question_id"`
	OptionID   uint `json:"option_id"`
	IsCorrect  bool `json:"is_correct"`
}

// CatalogService - доступ к каталогу тестов только на чтение
type CatalogService struct {
	assessmentRepo repository.AssessmentRepository
}

// NewCatalogService создает сервис каталога
func NewCatalogService(assessmentRepo repository.AssessmentRepository) *CatalogService {
	return &CatalogService{assessmentRepo: assessmentRepo}
}

// GetAssessment возвращает тест по ID
func (s *CatalogService) GetAssessment(id uint) (*entity.Assessment, error) {
	return s.assessmentRepo.GetByID(id)
}

// CountQuestions возвращает количество вопросов теста
func (s *CatalogService) CountQuestions(assessmentID uint) (int64, error) {
	if _, err := s.assessmentRepo.GetByID(assessmentID); err != nil {
		return 0, err
	}
	return s.assessmentRepo.CountQuestions(assessmentID)
}

// StartAssessment возвращает вопросы по порядку без признаков правильности
func (s *CatalogService) StartAssessment(id uint) (*AssessmentSession, error) {
	assessment, err := s.assessmentRepo.GetWithQuestions(id)
	if err != nil {
		return nil, err
	}

	session := &AssessmentSession{
		AssessmentID: assessment.ID,
		Title:        assessment.Title,
		Description:  assessment.Description,
		Difficulty:   assessment.Difficulty,
		TimeLimit:    assessment.TimeLimit,
		Questions:    make([]QuestionView, 0, len(assessment.Questions)),
	}
	for _, q := range assessment.Questions {
		qv := QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Order:   q.Order,
			Options: make([]OptionView, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			qv.Options = append(qv.Options, OptionView{ID: o.ID, Text: o.Text})
		}
		session.Questions = append(session.Questions, qv)
	}
	return session, nil
}

// CheckAnswer сообщает, правилен ли выбранный вариант. Учитывается только этот вариант.
func (s *CatalogService) CheckAnswer(assessmentID, questionID, optionID uint) (*AnswerCheck, error) {
	question, err := s.assessmentRepo.GetQuestion(assessmentID, questionID)
	if err != nil {
		return nil, fmt.Errorf("question #%d in assessment #%d: %w", questionID, assessmentID, err)
	}

	option, ok := question.FindOption(optionID)
	if !ok {
		return nil, fmt.Errorf("option #%d in question #%d: %w", optionID, questionID, apperrors.ErrNotFound)
	}

	return &AnswerCheck{
		QuestionID: question.ID,
		OptionID:   option.ID,
		IsCorrect:  option.IsCorrect,
	}, nil
}
