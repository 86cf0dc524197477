package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	"github.com/yourusername/skillcert-api/internal/handler/dto"
	"github.com/yourusername/skillcert-api/internal/middleware"
	"github.com/yourusername/skillcert-api/internal/policy"
	"github.com/yourusername/skillcert-api/internal/service"
)

// ResultUseCase - операции с попытками, нужные обработчику
type ResultUseCase interface {
	RecordResult(input service.RecordResultInput) (*entity.Result, error)
	UpdateResult(resultID uint, input service.UpdateResultInput) (*entity.Result, error)
	GetUserResults(userID uint, page, pageSize int) (*service.ResultPage, error)
	GetAllUserResults(userID uint) ([]entity.Result, error)
	GetUserStats(userID uint) (*service.UserStats, error)
}

// ScoreUseCase - чтение агрегатов
type ScoreUseCase interface {
	GetUserScore(userID uint) (*entity.UserScore, error)
	GetImprovements(userID uint) (*service.ImprovementReport, error)
}

// ResultHandler обрабатывает запросы, связанные с результатами и баллами
type ResultHandler struct {
	results ResultUseCase
	scores  ScoreUseCase
}

// NewResultHandler создает новый обработчик результатов
func NewResultHandler(results ResultUseCase, scores ScoreUseCase) *ResultHandler {
	return &ResultHandler{results: results, scores: scores}
}

// SubmitResult записывает попытку. aprendiz может записать только свою.
func (h *ResultHandler) SubmitResult(c *gin.Context) {
	var req dto.SubmitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	callerID, _ := middleware.CallerID(c)
	if req.UserID == 0 {
		req.UserID = callerID
	}
	if !policy.Allow(c.GetString(middleware.ContextRole), policy.ActionSubmitResult, req.UserID == callerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot submit results for another user", "error_type": "forbidden"})
		return
	}

	result, err := h.results.RecordResult(service.RecordResultInput{
		UserID:         req.UserID,
		AssessmentID:   req.AssessmentID,
		CorrectAnswers: *req.CorrectAnswers,
		TotalQuestions: *req.TotalQuestions,
		TimeTaken:      req.TimeTaken,
	})
	if err != nil {
		handleError(c, "ResultHandler", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewResultResponse(result))
}

// UpdateResult исправляет числовые поля попытки и пересчитывает агрегат
func (h *ResultHandler) UpdateResult(c *gin.Context) {
	resultID := middleware.UintParam(c, middleware.ParamResultID)

	var req dto.UpdateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.results.UpdateResult(resultID, service.UpdateResultInput{
		CorrectAnswers: *req.CorrectAnswers,
		TotalQuestions: *req.TotalQuestions,
		TimeTaken:      req.TimeTaken,
	})
	if err != nil {
		handleError(c, "ResultHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResultResponse(result))
}

// GetUserResults возвращает историю попыток с пагинацией (?page=&page_size=)
func (h *ResultHandler) GetUserResults(c *gin.Context) {
	userID := middleware.UintParam(c, middleware.ParamUserID)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	resultPage, err := h.results.GetUserResults(userID, page, pageSize)
	if err != nil {
		handleError(c, "ResultHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedResultResponse{
		Results: dto.NewResultResponses(resultPage.Results),
		Total:   resultPage.Total,
		Page:    resultPage.Page,
		PerPage: resultPage.PageSize,
	})
}

// GetUserStats возвращает сводную статистику попыток
func (h *ResultHandler) GetUserStats(c *gin.Context) {
	stats, err := h.results.GetUserStats(middleware.UintParam(c, middleware.ParamUserID))
	if err != nil {
		handleError(c, "ResultHandler", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetUserScore возвращает глобальный балл
func (h *ResultHandler) GetUserScore(c *gin.Context) {
	score, err := h.scores.GetUserScore(middleware.UintParam(c, middleware.ParamUserID))
	if err != nil {
		handleError(c, "ResultHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserScoreResponse(score))
}

// GetImprovements возвращает слабые места и рекомендацию
func (h *ResultHandler) GetImprovements(c *gin.Context) {
	report, err := h.scores.GetImprovements(middleware.UintParam(c, middleware.ParamUserID))
	if err != nil {
		handleError(c, "ResultHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_score":        dto.NewUserScoreResponse(report.UserScore),
		"recent_results":    dto.NewResultResponses(report.RecentResults),
		"improvement_areas": report.ImprovementAreas,
		"recommendations":   report.Recommendations,
	})
}

// ExportUserResults выгружает историю попыток (?format=csv|xlsx)
func (h *ResultHandler) ExportUserResults(c *gin.Context) {
	userID := middleware.UintParam(c, middleware.ParamUserID)
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx", "error_type": "bad_request"})
		return
	}

	results, err := h.results.GetAllUserResults(userID)
	if err != nil {
		handleError(c, "ResultHandler", err)
		return
	}

	filename := fmt.Sprintf("user_%d_results_%s", userID, time.Now().Format("2006-01-02"))
	if format == "xlsx" {
		h.exportXLSX(c, results, filename)
		return
	}
	h.exportCSV(c, results, filename)
}

var exportHeaders = []string{"ID", "Assessment", "Score", "Correct", "Total questions", "Time taken (s)", "Date"}

func exportRow(r *entity.Result) []string {
	title := ""
	if r.Assessment != nil {
		title = r.Assessment.Title
	}
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		sanitizeForExcel(title),
		strconv.FormatFloat(r.Score, 'f', 2, 64),
		strconv.Itoa(r.CorrectAnswers),
		strconv.Itoa(r.TotalQuestions),
		strconv.Itoa(r.TimeTaken),
		r.CreatedAt.Format(time.RFC3339),
	}
}

// exportCSV экспортирует результаты в CSV
func (h *ResultHandler) exportCSV(c *gin.Context, results []entity.Result, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range results {
		writer.Write(exportRow(&results[i]))
	}
}

// exportXLSX экспортирует результаты в Excel через StreamWriter
func (h *ResultHandler) exportXLSX(c *gin.Context, results []entity.Result, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Results"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[ResultHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, name := range exportHeaders {
		headers[i] = name
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[ResultHandler] Ошибка записи заголовков: %v", err)
	}

	for i := range results {
		r := &results[i]
		title := ""
		if r.Assessment != nil {
			title = sanitizeForExcel(r.Assessment.Title)
		}
		row := []interface{}{r.ID, title, r.Score, r.CorrectAnswers, r.TotalQuestions, r.TimeTaken, r.CreatedAt.Format(time.RFC3339)}
		if err := sw.SetRow(fmt.Sprintf("A%d", i+2), row); err != nil {
			log.Printf("[ResultHandler] Ошибка записи строки %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[ResultHandler] Ошибка при Flush: %v", err)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[ResultHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
