package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yourusername/skillcert-api/internal/domain/scoring"
)

// Статусы сертификата
const (
	CertStatusPending = "pending"
	CertStatusActive  = "active"
	CertStatusExpired = "expired"
	CertStatusRevoked = "revoked"
)

var certStatusDisplay = map[string]string{
	CertStatusPending: "Pending",
	CertStatusActive:  "Active",
	CertStatusExpired: "Expired",
	CertStatusRevoked: "Revoked",
}

// Допустимые переходы статусов. expired и revoked - терминальные.
var certStatusTransitions = map[string][]string{
	CertStatusPending: {CertStatusActive, CertStatusRevoked},
	CertStatusActive:  {CertStatusExpired, CertStatusRevoked},
}

// Certification - аудиторная запись о выданном сертификате.
// TotalScore и Level фиксируются в момент выдачи, последующие результаты их не меняют.
type Certification struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	CertificateID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"certificate_id"`
	UserID               uint           `gorm:"not null;index" json:"user_id"`
	User                 *User          `gorm:"foreignKey:UserID" json:"-"`
	Title                string         `gorm:"size:200;not null" json:"title"`
	Description          string         `gorm:"type:text" json:"description"`
	Level                int            `gorm:"not null;default:0" json:"level"`
	TotalScore           float64        `gorm:"not null;default:0" json:"total_score"`
	AssessmentsCompleted int            `gorm:"not null;default:0" json:"assessments_completed"`
	EvidenceLinks        datatypes.JSON `gorm:"type:jsonb" json:"evidence_links"`
	Status               string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	IssuedAt             time.Time      `gorm:"not null" json:"issued_at"`
	ExpiresAt            *time.Time     `json:"expires_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Certification) TableName() string {
	return "certifications"
}

// IsValidAt вычисляет действительность сертификата на момент now.
// Хранимый статус при этом не меняется.
func (c *Certification) IsValidAt(now time.Time) bool {
	if c.Status != CertStatusActive {
		return false
	}
	return c.ExpiresAt == nil || !now.After(*c.ExpiresAt)
}

// LevelDisplay возвращает название уровня
func (c *Certification) LevelDisplay() string {
	return scoring.Level(c.Level).Label()
}

// StatusDisplay возвращает отображаемое название статуса
func (c *Certification) StatusDisplay() string {
	return CertStatusDisplay(c.Status)
}

// CanTransitionTo проверяет допустимость перехода в новый статус
func (c *Certification) CanTransitionTo(status string) bool {
	for _, allowed := range certStatusTransitions[c.Status] {
		if allowed == status {
			return true
		}
	}
	return false
}

// SetEvidenceLinks сохраняет список ссылок как JSON-массив
func (c *Certification) SetEvidenceLinks(links []string) error {
	if links == nil {
		links = []string{}
	}
	raw, err := json.Marshal(links)
	if err != nil {
		return err
	}
	c.EvidenceLinks = datatypes.JSON(raw)
	return nil
}

// GetEvidenceLinks возвращает ссылки на доказательства
func (c *Certification) GetEvidenceLinks() []string {
	links := []string{}
	if len(c.EvidenceLinks) == 0 {
		return links
	}
	if err := json.Unmarshal(c.EvidenceLinks, &links); err != nil {
		return []string{}
	}
	return links
}

// IsValidCertStatus проверяет, что статус известен
func IsValidCertStatus(status string) bool {
	_, ok := certStatusDisplay[status]
	return ok
}

// CertStatusDisplay возвращает отображаемое название статуса
func CertStatusDisplay(status string) string {
	if display, ok := certStatusDisplay[status]; ok {
		return display
	}
	return status
}

// CertificationStats - сводка по сертификатам пользователя
type CertificationStats struct {
	Total        int64   `json:"total"`
	Active       int64   `json:"active"`
	HighestLevel int     `json:"highest_level"`
	AverageScore float64 `json:"average_score"`
}
