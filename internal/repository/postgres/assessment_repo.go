package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	apperrors "github.com/yourusername/skillcert-api/internal/pkg/errors"
)

// AssessmentRepo реализует repository.AssessmentRepository
type AssessmentRepo struct {
	db *gorm.DB
}

// NewAssessmentRepo создает новый репозиторий каталога тестов
func NewAssessmentRepo(db *gorm.DB) *AssessmentRepo {
	return &AssessmentRepo{db: db}
}

// GetByID возвращает тест по ID
func (r *AssessmentRepo) GetByID(id uint) (*entity.Assessment, error) {
	var assessment entity.Assessment
	if err := r.db.First(&assessment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &assessment, nil
}

// GetWithQuestions возвращает тест с вопросами в порядке order
func (r *AssessmentRepo) GetWithQuestions(id uint) (*entity.Assessment, error) {
	var assessment entity.Assessment
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC`)
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&assessment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &assessment, nil
}

// CountQuestions возвращает количество вопросов теста
func (r *AssessmentRepo) CountQuestions(assessmentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).Where("assessment_id = ?", assessmentID).Count(&count).Error
	return count, err
}

// GetQuestion возвращает вопрос с вариантами ответов в рамках теста
func (r *AssessmentRepo) GetQuestion(assessmentID, questionID uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.Preload("Options").
		Where("id = ? AND assessment_id = ?", questionID, assessmentID).
		First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}
