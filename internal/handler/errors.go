package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/skillcert-api/internal/pkg/errors"
	"github.com/yourusername/skillcert-api/internal/service"
)

// handleError переводит ошибку сервиса в HTTP-ответ.
// ErrCertificateIDCollision проверяется раньше ErrConflict, так как оборачивает его.
func handleError(c *gin.Context, component string, err error) {
	var validationErr *apperrors.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "Validation failed",
			"error_type": "validation",
			"fields":     validationErr.Fields,
		})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "error_type": "validation"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrNoAssessmentHistory):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User has no assessment results", "error_type": "no_assessment_history"})
	case errors.Is(err, apperrors.ErrCertificateIDCollision):
		log.Printf("[%s] %v", component, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not allocate certificate identifier, retry the request", "error_type": "certificate_id_collision"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "error_type": "unauthorized"})
	case errors.Is(err, service.ErrUserInactive), errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "error_type": "forbidden"})
	default:
		log.Printf("[%s] Internal server error: %v", component, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindError отвечает 400 на некорректное тело запроса
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "bad_request"})
}
