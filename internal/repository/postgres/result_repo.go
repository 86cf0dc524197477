package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	apperrors "github.com/yourusername/skillcert-api/internal/pkg/errors"
)

// ResultRepo реализует repository.ResultRepository
type ResultRepo struct {
	db *gorm.DB
}

// NewResultRepo создает новый репозиторий результатов
func NewResultRepo(db *gorm.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// Create сохраняет новую попытку
func (r *ResultRepo) Create(result *entity.Result) error {
	return r.db.Create(result).Error
}

// GetByID возвращает результат по ID
func (r *ResultRepo) GetByID(id uint) (*entity.Result, error) {
	var result entity.Result
	if err := r.db.First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

// Update обновляет числовые поля попытки
func (r *ResultRepo) Update(result *entity.Result) error {
	res := r.db.Model(result).Select("score", "correct_answers", "total_questions", "time_taken", "updated_at").Updates(result)
	if res.Error != nil {
		return fmt.Errorf("update result #%d failed: %w", result.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListByUser возвращает результаты пользователя (новые первыми) с пагинацией
func (r *ResultRepo) ListByUser(userID uint, limit, offset int) ([]entity.Result, int64, error) {
	var results []entity.Result
	var total int64

	query := r.db.Model(&entity.Result{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entity.Result{}, 0, nil
	}

	err := query.Preload("Assessment").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// ListAllByUser возвращает все результаты пользователя
func (r *ResultRepo) ListAllByUser(userID uint) ([]entity.Result, error) {
	var results []entity.Result
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&results).Error
	return results, err
}

// GetStatsByUser считает агрегаты на стороне БД
func (r *ResultRepo) GetStatsByUser(userID uint) (*entity.UserResultStats, error) {
	var stats entity.UserResultStats
	err := r.db.Model(&entity.Result{}).
		Select(`COUNT(*) AS total_assessments,
			COALESCE(AVG(score), 0) AS average_score,
			COALESCE(MAX(score), 0) AS best_score,
			COALESCE(MIN(score), 0) AS worst_score,
			COALESCE(SUM(time_taken), 0) AS total_time,
			COALESCE(AVG(time_taken), 0) AS average_time`).
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetRecent возвращает последние limit попыток пользователя
func (r *ResultRepo) GetRecent(userID uint, limit int) ([]entity.Result, error) {
	var results []entity.Result
	err := r.db.Preload("Assessment").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&results).Error
	return results, err
}

// GetLowScores возвращает попытки с баллом ниже threshold, худшие первыми
func (r *ResultRepo) GetLowScores(userID uint, threshold float64, limit int) ([]entity.Result, error) {
	var results []entity.Result
	err := r.db.Preload("Assessment").
		Where("user_id = ? AND score < ?", userID, threshold).
		Order("score ASC, id ASC").
		Limit(limit).
		Find(&results).Error
	return results, err
}
