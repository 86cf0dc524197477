package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	apperrors "github.com/yourusername/skillcert-api/internal/pkg/errors"
)

// UserScoreRepo реализует repository.UserScoreRepository
type UserScoreRepo struct {
	db *gorm.DB
}

// NewUserScoreRepo создает новый репозиторий агрегатов
func NewUserScoreRepo(db *gorm.DB) *UserScoreRepo {
	return &UserScoreRepo{db: db}
}

// Upsert вставляет или перезаписывает агрегат одним запросом INSERT ... ON CONFLICT (user_id)
func (r *UserScoreRepo) Upsert(score *entity.UserScore) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"global_score",
			"total_assessments",
			"total_correct",
			"total_questions",
			"updated_at",
		}),
	}).Create(score).Error
	if err != nil {
		return fmt.Errorf("upsert user score for user #%d failed: %w", score.UserID, err)
	}
	return nil
}

// GetByUserID возвращает агрегат пользователя
func (r *UserScoreRepo) GetByUserID(userID uint) (*entity.UserScore, error) {
	var score entity.UserScore
	if err := r.db.Where("user_id = ?", userID).First(&score).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &score, nil
}
