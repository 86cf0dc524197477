package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/skillcert-api/internal/handler/dto"
	"github.com/yourusername/skillcert-api/internal/middleware"
	"github.com/yourusername/skillcert-api/internal/service"
)

// CatalogUseCase - прохождение тестов
type CatalogUseCase interface {
	StartAssessment(id uint) (*service.AssessmentSession, error)
	CheckAnswer(assessmentID, questionID, optionID uint) (*service.AnswerCheck, error)
}

// AssessmentHandler обрабатывает запросы прохождения тестов
type AssessmentHandler struct {
	catalog CatalogUseCase
}

// NewAssessmentHandler создает новый обработчик тестов
func NewAssessmentHandler(catalog CatalogUseCase) *AssessmentHandler {
	return &AssessmentHandler{catalog: catalog}
}

// Start возвращает вопросы теста без правильных ответов
func (h *AssessmentHandler) Start(c *gin.Context) {
	session, err := h.catalog.StartAssessment(middleware.UintParam(c, middleware.ParamAssessmentID))
	if err != nil {
		handleError(c, "AssessmentHandler", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SubmitAnswer проверяет один ответ
func (h *AssessmentHandler) SubmitAnswer(c *gin.Context) {
	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	check, err := h.catalog.CheckAnswer(middleware.UintParam(c, middleware.ParamAssessmentID), req.QuestionID, req.OptionID)
	if err != nil {
		handleError(c, "AssessmentHandler", err)
		return
	}
	c.JSON(http.StatusOK, check)
}
