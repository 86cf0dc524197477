package repository

import (
	"github.com/yourusername/skillcert-api/internal/domain/entity"
)

// UserRepository определяет методы для работы со справочником пользователей
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	List(limit, offset int) ([]entity.User, error)
}
