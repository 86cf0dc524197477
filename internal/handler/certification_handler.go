package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	"github.com/yourusername/skillcert-api/internal/handler/dto"
	"github.com/yourusername/skillcert-api/internal/middleware"
	"github.com/yourusername/skillcert-api/internal/service"
)

// CertificationUseCase - операции с сертификатами, нужные обработчику
type CertificationUseCase interface {
	Issue(input service.IssueCertificationInput) (*entity.Certification, error)
	Verify(certificateID string) (*service.VerificationResult, error)
	History(userID uint) ([]service.CertificationSummary, error)
	Stats(userID uint) (*service.CertificationStatsView, error)
	ChangeStatus(id uint, newStatus string) (*entity.Certification, error)
}

// CertificationHandler обрабатывает запросы, связанные с сертификатами
type CertificationHandler struct {
	certs CertificationUseCase
	now   func() time.Time
}

// NewCertificationHandler создает новый обработчик сертификатов
func NewCertificationHandler(certs CertificationUseCase) *CertificationHandler {
	return &CertificationHandler{certs: certs, now: time.Now}
}

// Generate выдает сертификат пользователю из пути
func (h *CertificationHandler) Generate(c *gin.Context) {
	userID := middleware.UintParam(c, middleware.ParamUserID)

	var req dto.GenerateCertificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cert, err := h.certs.Issue(service.IssueCertificationInput{
		UserID:        userID,
		Title:         req.Title,
		Description:   req.Description,
		EvidenceLinks: req.EvidenceLinks,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		handleError(c, "CertificationHandler", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewCertificationResponse(cert, h.now()))
}

// Verify - публичная проверка сертификата по certificate_id
func (h *CertificationHandler) Verify(c *gin.Context) {
	result, err := h.certs.Verify(c.Param("certificate_id"))
	if err != nil {
		handleError(c, "CertificationHandler", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// History возвращает сертификаты пользователя
func (h *CertificationHandler) History(c *gin.Context) {
	userID := middleware.UintParam(c, middleware.ParamUserID)

	history, err := h.certs.History(userID)
	if err != nil {
		handleError(c, "CertificationHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":        userID,
		"certifications": history,
		"total":          len(history),
	})
}

// Stats возвращает сводку по сертификатам пользователя
func (h *CertificationHandler) Stats(c *gin.Context) {
	stats, err := h.certs.Stats(middleware.UintParam(c, middleware.ParamUserID))
	if err != nil {
		handleError(c, "CertificationHandler", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ChangeStatus меняет статус сертификата (администратор)
func (h *CertificationHandler) ChangeStatus(c *gin.Context) {
	id := middleware.UintParam(c, middleware.ParamCertificationID)

	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cert, err := h.certs.ChangeStatus(id, req.Status)
	if err != nil {
		handleError(c, "CertificationHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCertificationResponse(cert, h.now()))
}
