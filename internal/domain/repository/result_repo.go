package repository

import (
	"github.com/yourusername/skillcert-api/internal/domain/entity"
)

// ResultRepository определяет методы для работы с результатами попыток
type ResultRepository interface {
	Create(result *entity.Result) error
	GetByID(id uint) (*entity.Result, error)
	Update(result *entity.Result) error
	// ListByUser возвращает страницу результатов (новые первыми) и общее количество
	ListByUser(userID uint, limit, offset int) ([]entity.Result, int64, error)
	// ListAllByUser возвращает все результаты пользователя для пересчета агрегатов
	ListAllByUser(userID uint) ([]entity.Result, error)
	GetStatsByUser(userID uint) (*entity.UserResultStats, error)
	GetRecent(userID uint, limit int) ([]entity.Result, error)
	// GetLowScores возвращает худшие результаты с баллом ниже threshold
	GetLowScores(userID uint, threshold float64, limit int) ([]entity.Result, error)
}
