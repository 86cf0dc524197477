package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	"github.com/yourusername/skillcert-api/internal/domain/repository"
	"github.com/yourusername/skillcert-api/internal/domain/scoring"
	apperrors "github.com/yourusername/skillcert-api/internal/pkg/errors"
	"github.com/yourusername/skillcert-api/internal/websocket"
)

// certificateIDAttempts - первая попытка плюс одна регенерация при коллизии
const certificateIDAttempts = 2

const notificationTimeout = 15 * time.Second

// IssueCertificationInput - запрос на выдачу сертификата
type IssueCertificationInput struct {
	UserID        uint       `json:"user_id" validate:"required"`
	Title         string     `json:"title" validate:"required,max=200"`
	Description   string     `json:"description" validate:"max=5000"`
	EvidenceLinks []string   `json:"evidence_links" validate:"omitempty,max=50,dive,url"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// VerificationResult - публичный снимок действительности сертификата
type VerificationResult struct {
	CertificateID string     `json:"certificate_id"`
	IsValid       bool       `json:"is_valid"`
	Status        string     `json:"status"`
	StatusDisplay string     `json:"status_display"`
	Username      string     `json:"username"`
	UserFullName  string     `json:"user_full_name"`
	Title         string     `json:"title"`
	Level         int        `json:"level"`
	LevelDisplay  string     `json:"level_display"`
	TotalScore    float64    `json:"total_score"`
	IssuedAt      time.Time  `json:"issued_at"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// CertificationSummary - элемент истории сертификатов
type CertificationSummary struct {
	ID                   uint       `json:"id"`
	CertificateID        string     `json:"certificate_id"`
	Title                string     `json:"title"`
	Level                int        `json:"level"`
	LevelDisplay         string     `json:"level_display"`
	TotalScore           float64    `json:"total_score"`
	AssessmentsCompleted int        `json:"assessments_completed"`
	Status               string     `json:"status"`
	StatusDisplay        string     `json:"status_display"`
	IsValid              bool       `json:"is_valid"`
	IssuedAt             time.Time  `json:"issued_at"`
	ExpiresAt            *time.Time `json:"expires_at"`
}

// CertificationStatsView - сводка по сертификатам пользователя
type CertificationStatsView struct {
	UserID              uint    `json:"user_id"`
	Username            string  `json:"username"`
	Total               int64   `json:"total_certifications"`
	Active              int64   `json:"active_certifications"`
	HighestLevel        int     `json:"highest_level"`
	HighestLevelDisplay string  `json:"highest_level_display"`
	AverageScore        float64 `json:"average_score"`
}

// CertificationIssuedEvent отправляется владельцу сертификата
type CertificationIssuedEvent struct {
	CertificateID string  `json:"certificate_id"`
	Title         string  `json:"title"`
	Level         int     `json:"level"`
	LevelDisplay  string  `json:"level_display"`
	TotalScore    float64 `json:"total_score"`
}

// CertificationService выдает, проверяет и сопровождает сертификаты
type CertificationService struct {
	certRepo   repository.CertificationRepository
	resultRepo repository.ResultRepository
	userRepo   repository.UserRepository
	cacheRepo  repository.CacheRepository
	events     EventPublisher
	mailer     EmailService
	verifyURL  string

	now   func() time.Time
	newID func() uuid.UUID
	async func(func())
}

// NewCertificationService создает сервис сертификатов.
// verifyURL - базовый публичный адрес проверки, к нему добавляется certificate_id.
// cacheRepo может быть nil, тогда сводка считается на каждый запрос.
func NewCertificationService(
	certRepo repository.CertificationRepository,
	resultRepo repository.ResultRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	events EventPublisher,
	mailer EmailService,
	verifyURL string,
) *CertificationService {
	if mailer == nil {
		mailer = &NoopEmailService{}
	}
	return &CertificationService{
		certRepo:   certRepo,
		resultRepo: resultRepo,
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		events:     events,
		mailer:     mailer,
		verifyURL:  strings.TrimRight(verifyURL, "/"),
		now:        time.Now,
		newID:      uuid.New,
		async:      func(f func()) { go f() },
	}
}

// Issue выдает сертификат по среднему баллу всех попыток пользователя.
// Баллы и уровень фиксируются на момент выдачи.
func (s *CertificationService) Issue(input IssueCertificationInput) (*entity.Certification, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("user #%d: %w", input.UserID, err)
	}

	results, err := s.resultRepo.ListAllByUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for user #%d: %w", user.ID, err)
	}
	if len(results) == 0 {
		return nil, apperrors.ErrNoAssessmentHistory
	}

	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	totalScore := scoring.MeanScore(scores)
	level := scoring.LevelForScore(totalScore)

	issuedAt := s.now()
	cert := &entity.Certification{
		UserID:               user.ID,
		Title:                input.Title,
		Description:          input.Description,
		Level:                int(level),
		TotalScore:           totalScore,
		AssessmentsCompleted: len(results),
		Status:               entity.CertStatusActive,
		IssuedAt:             issuedAt,
		ExpiresAt:            input.ExpiresAt,
		UpdatedAt:            issuedAt,
	}
	if err := cert.SetEvidenceLinks(input.EvidenceLinks); err != nil {
		return nil, fmt.Errorf("failed to encode evidence links: %w", err)
	}

	if err := s.createWithUniqueID(cert); err != nil {
		return nil, err
	}
	log.Printf("[CertificationService] Сертификат %s выдан пользователю %d: level=%d score=%.2f results=%d",
		cert.CertificateID, user.ID, cert.Level, cert.TotalScore, cert.AssessmentsCompleted)

	invalidateStats(s.cacheRepo, certStatsKey(user.ID))
	s.notifyIssued(user, cert)
	return cert, nil
}

// createWithUniqueID сохраняет сертификат, регенерируя certificate_id один раз при коллизии
func (s *CertificationService) createWithUniqueID(cert *entity.Certification) error {
	for attempt := 1; attempt <= certificateIDAttempts; attempt++ {
		cert.CertificateID = s.newID()
		err := s.certRepo.Create(cert)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		log.Printf("[CertificationService] Коллизия certificate_id %s (попытка %d/%d)",
			cert.CertificateID, attempt, certificateIDAttempts)
	}
	return apperrors.ErrCertificateIDCollision
}

// notifyIssued отправляет событие и письмо; ошибки только логируются
func (s *CertificationService) notifyIssued(user *entity.User, cert *entity.Certification) {
	publishToUser(s.events, user.ID, websocket.CERTIFICATION_ISSUED, CertificationIssuedEvent{
		CertificateID: cert.CertificateID.String(),
		Title:         cert.Title,
		Level:         cert.Level,
		LevelDisplay:  cert.LevelDisplay(),
		TotalScore:    cert.TotalScore,
	})

	if user.Email == "" {
		return
	}
	msg := CertificationEmail{
		ToEmail:       user.Email,
		RecipientName: user.FullName(),
		Title:         cert.Title,
		LevelDisplay:  cert.LevelDisplay(),
		TotalScore:    cert.TotalScore,
		CertificateID: cert.CertificateID.String(),
		VerifyURL:     s.verifyURL + "/" + cert.CertificateID.String(),
	}
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()
		if err := s.mailer.SendCertificationIssued(ctx, msg); err != nil {
			log.Printf("[CertificationService] Не удалось отправить письмо о сертификате %s: %v", msg.CertificateID, err)
		}
	})
}

// Verify возвращает снимок действительности. Действительность вычисляется на каждый вызов.
func (s *CertificationService) Verify(certificateID string) (*VerificationResult, error) {
	id, err := uuid.Parse(strings.TrimSpace(certificateID))
	if err != nil {
		return nil, fmt.Errorf("certificate %q: %w", certificateID, apperrors.ErrNotFound)
	}

	cert, err := s.certRepo.GetByCertificateID(id)
	if err != nil {
		return nil, err
	}

	result := &VerificationResult{
		CertificateID: cert.CertificateID.String(),
		IsValid:       cert.IsValidAt(s.now()),
		Status:        cert.Status,
		StatusDisplay: cert.StatusDisplay(),
		Title:         cert.Title,
		Level:         cert.Level,
		LevelDisplay:  cert.LevelDisplay(),
		TotalScore:    cert.TotalScore,
		IssuedAt:      cert.IssuedAt,
		ExpiresAt:     cert.ExpiresAt,
	}
	if cert.User != nil {
		result.Username = cert.User.Username
		result.UserFullName = cert.User.FullName()
	}
	return result, nil
}

// History возвращает сертификаты пользователя, новые первыми
func (s *CertificationService) History(userID uint) ([]CertificationSummary, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, fmt.Errorf("user #%d: %w", userID, err)
	}

	certs, err := s.certRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summaries := make([]CertificationSummary, 0, len(certs))
	for i := range certs {
		c := &certs[i]
		summaries = append(summaries, CertificationSummary{
			ID:                   c.ID,
			CertificateID:        c.CertificateID.String(),
			Title:                c.Title,
			Level:                c.Level,
			LevelDisplay:         c.LevelDisplay(),
			TotalScore:           c.TotalScore,
			AssessmentsCompleted: c.AssessmentsCompleted,
			Status:               c.Status,
			StatusDisplay:        c.StatusDisplay(),
			IsValid:              c.IsValidAt(now),
			IssuedAt:             c.IssuedAt,
			ExpiresAt:            c.ExpiresAt,
		})
	}
	return summaries, nil
}

// Stats возвращает сводку по сертификатам пользователя. Сводка кешируется до выдачи или смены статуса.
func (s *CertificationService) Stats(userID uint) (*CertificationStatsView, error) {
	var cached CertificationStatsView
	if loadCachedStats(s.cacheRepo, certStatsKey(userID), &cached) {
		return &cached, nil
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user #%d: %w", userID, err)
	}

	stats, err := s.certRepo.GetStatsByUser(userID)
	if err != nil {
		return nil, err
	}

	view := &CertificationStatsView{
		UserID:              user.ID,
		Username:            user.Username,
		Total:               stats.Total,
		Active:              stats.Active,
		HighestLevel:        stats.HighestLevel,
		HighestLevelDisplay: scoring.Level(stats.HighestLevel).Label(),
		AverageScore:        scoring.Round2(stats.AverageScore),
	}
	storeCachedStats(s.cacheRepo, certStatsKey(userID), view)
	return view, nil
}

// ChangeStatus выполняет административный переход статуса по таблице допустимых переходов.
// Если статус изменился после чтения, возвращается ErrConflict.
func (s *CertificationService) ChangeStatus(id uint, newStatus string) (*entity.Certification, error) {
	newStatus = strings.ToLower(strings.TrimSpace(newStatus))
	if !entity.IsValidCertStatus(newStatus) {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field:   "status",
			Message: "must be one of: pending active expired revoked",
		})
	}

	cert, err := s.certRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("certification #%d: %w", id, err)
	}

	if !cert.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: cannot change certification status from %s to %s",
			apperrors.ErrConflict, cert.Status, newStatus)
	}

	if err := s.certRepo.UpdateStatus(cert.ID, cert.Status, newStatus); err != nil {
		return nil, fmt.Errorf("certification #%d: %w", id, err)
	}
	log.Printf("[CertificationService] Статус сертификата %s: %s -> %s", cert.CertificateID, cert.Status, newStatus)
	invalidateStats(s.cacheRepo, certStatsKey(cert.UserID))

	cert.Status = newStatus
	cert.UpdatedAt = s.now()
	return cert, nil
}
