package repository

import (
	"github.com/yourusername/skillcert-api/internal/domain/entity"
)

// UserScoreRepository хранит производный агрегат пользователя
type UserScoreRepository interface {
	// Upsert записывает агрегат одной операцией по user_id (last-writer-wins)
	Upsert(score *entity.UserScore) error
	GetByUserID(userID uint) (*entity.UserScore, error)
}
