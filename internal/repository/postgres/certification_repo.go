package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	apperrors "github.com/yourusername/skillcert-api/internal/pkg/errors"
)

// CertificationRepo реализует repository.CertificationRepository
type CertificationRepo struct {
	db *gorm.DB
}

// NewCertificationRepo создает новый репозиторий сертификатов
func NewCertificationRepo(db *gorm.DB) *CertificationRepo {
	return &CertificationRepo{db: db}
}

// Create сохраняет сертификат. Уникальность certificate_id гарантирует индекс БД.
func (r *CertificationRepo) Create(cert *entity.Certification) error {
	if err := r.db.Create(cert).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: certificate_id %s", apperrors.ErrConflict, cert.CertificateID)
		}
		return fmt.Errorf("create certification for user #%d failed: %w", cert.UserID, err)
	}
	return nil
}

// GetByID возвращает сертификат по внутреннему ID
func (r *CertificationRepo) GetByID(id uint) (*entity.Certification, error) {
	var cert entity.Certification
	if err := r.db.First(&cert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// GetByCertificateID возвращает сертификат по публичному идентификатору вместе с владельцем
func (r *CertificationRepo) GetByCertificateID(certificateID uuid.UUID) (*entity.Certification, error) {
	var cert entity.Certification
	err := r.db.Preload("User").Where("certificate_id = ?", certificateID).First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// ListByUser возвращает сертификаты пользователя, новые первыми
func (r *CertificationRepo) ListByUser(userID uint) ([]entity.Certification, error) {
	var certs []entity.Certification
	err := r.db.Where("user_id = ?", userID).Order("issued_at DESC, id DESC").Find(&certs).Error
	return certs, err
}

// UpdateStatus меняет статус сертификата условным UPDATE по ожидаемому текущему статусу
func (r *CertificationRepo) UpdateStatus(id uint, fromStatus, toStatus string) error {
	res := r.db.Model(&entity.Certification{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]interface{}{
			"status":     toStatus,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("update certification #%d status failed: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	current, err := r.GetByID(id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: certification #%d status is %s, expected %s",
		apperrors.ErrConflict, id, current.Status, fromStatus)
}

// GetStatsByUser считает сводку по сертификатам пользователя
func (r *CertificationRepo) GetStatsByUser(userID uint) (*entity.CertificationStats, error) {
	var stats entity.CertificationStats
	err := r.db.Model(&entity.Certification{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = ?) AS active,
			COALESCE(MAX(level) FILTER (WHERE status = ?), 0) AS highest_level,
			COALESCE(AVG(total_score), 0) AS average_score`, entity.CertStatusActive, entity.CertStatusActive).
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
