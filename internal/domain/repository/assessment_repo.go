package repository

import (
	"github.com/yourusername/skillcert-api/internal/domain/entity"
)

// AssessmentRepository - каталог тестов, только чтение
type AssessmentRepository interface {
	GetByID(id uint) (*entity.Assessment, error)
	// GetWithQuestions возвращает тест с вопросами (по order) и вариантами ответов
	GetWithQuestions(id uint) (*entity.Assessment, error)
	CountQuestions(assessmentID uint) (int64, error)
	// GetQuestion возвращает вопрос с вариантами, только если он принадлежит тесту
	GetQuestion(assessmentID, questionID uint) (*entity.Question, error)
}
