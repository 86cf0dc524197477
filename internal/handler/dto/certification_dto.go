package dto

import (
	"time"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
)

// GenerateCertificationRequest - запрос на выдачу сертификата
type GenerateCertificationRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	EvidenceLinks []string   `json:"evidence_links"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// ChangeStatusRequest - административная смена статуса
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CertificationResponse представляет сертификат в ответе клиенту
type CertificationResponse struct {
	ID                   uint       `json:"id"`
	CertificateID        string     `json:"certificate_id"`
	UserID               uint       `json:"user_id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Level                int        `json:"level"`
	LevelDisplay         string     `json:"level_display"`
	TotalScore           float64    `json:"total_score"`
	AssessmentsCompleted int        `json:"assessments_completed"`
	EvidenceLinks        []string   `json:"evidence_links"`
	Status               string     `json:"status"`
	StatusDisplay        string     `json:"status_display"`
	IsValid              bool       `json:"is_valid"`
	IssuedAt             time.Time  `json:"issued_at"`
	ExpiresAt            *time.Time `json:"expires_at"`
}

// NewCertificationResponse создает DTO сертификата; действительность считается на момент now
func NewCertificationResponse(c *entity.Certification, now time.Time) CertificationResponse {
	return CertificationResponse{
		ID:                   c.ID,
		CertificateID:        c.CertificateID.String(),
		UserID:               c.UserID,
		Title:                c.Title,
		Description:          c.Description,
		Level:                c.Level,
		LevelDisplay:         c.LevelDisplay(),
		TotalScore:           c.TotalScore,
		AssessmentsCompleted: c.AssessmentsCompleted,
		EvidenceLinks:        c.GetEvidenceLinks(),
		Status:               c.Status,
		StatusDisplay:        c.StatusDisplay(),
		IsValid:              c.IsValidAt(now),
		IssuedAt:             c.IssuedAt,
		ExpiresAt:            c.ExpiresAt,
	}
}
