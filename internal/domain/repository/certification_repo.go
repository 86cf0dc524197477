package repository

import (
	"github.com/google/uuid"
	"github.com/yourusername/skillcert-api/internal/domain/entity"
)

// CertificationRepository определяет методы для работы с сертификатами
type CertificationRepository interface {
	// Create возвращает apperrors.ErrConflict при нарушении уникальности certificate_id
	Create(cert *entity.Certification) error
	GetByID(id uint) (*entity.Certification, error)
	GetByCertificateID(certificateID uuid.UUID) (*entity.Certification, error)
	ListByUser(userID uint) ([]entity.Certification, error)
	// UpdateStatus меняет статус, только если текущий равен fromStatus.
	// ErrConflict, если статус уже изменен другим запросом.
	UpdateStatus(id uint, fromStatus, toStatus string) error
	GetStatsByUser(userID uint) (*entity.CertificationStats, error)
}
