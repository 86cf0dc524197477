package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	"github.com/yourusername/skillcert-api/internal/domain/repository"
	"github.com/yourusername/skillcert-api/internal/domain/scoring"
	apperrors "github.com/yourusername/skillcert-api/internal/pkg/errors"
	"github.com/yourusername/skillcert-api/internal/websocket"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxExportRows   = 10000
)

// ScoreRecomputer пересчитывает агрегат пользователя после изменения результатов
type ScoreRecomputer interface {
	RecomputeGlobalScore(userID uint) (*entity.UserScore, error)
	MarkStale(userID uint)
}

// RecordResultInput - данные одной завершенной попытки
type RecordResultInput struct {
	UserID         uint `json:"user_id" validate:"required"`
	AssessmentID   uint `json:"assessment_id" validate:"required"`
	CorrectAnswers int  `json:"correct_answers" validate:"min=0,ltefield=TotalQuestions"`
	TotalQuestions int  `json:"total_questions" validate:"min=0"`
	TimeTaken      int  `json:"time_taken" validate:"min=0"`
}

// UpdateResultInput - явное исправление числовых полей попытки
type UpdateResultInput struct {
	CorrectAnswers int `json:"correct_answers" validate:"min=0,ltefield=TotalQuestions"`
	TotalQuestions int `json:"total_questions" validate:"min=0"`
	TimeTaken      int `json:"time_taken" validate:"min=0"`
}

// ResultPage - страница истории результатов
type ResultPage struct {
	Results  []entity.Result `json:"results"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// UserStats - сводная статистика попыток пользователя
type UserStats struct {
	UserID           uint    `json:"user_id"`
	Username         string  `json:"username"`
	TotalAssessments int64   `json:"total_assessments"`
	AverageScore     float64 `json:"average_score"`
	BestScore        float64 `json:"best_score"`
	WorstScore       float64 `json:"worst_score"`
	TotalTime        int64   `json:"total_time"`
	AverageTime      float64 `json:"average_time"`
}

// ResultRecordedEvent отправляется пользователю после записи попытки
type ResultRecordedEvent struct {
	ResultID     uint      `json:"result_id"`
	AssessmentID uint      `json:"assessment_id"`
	Score        float64   `json:"score"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// ResultService предоставляет методы для работы с результатами
type ResultService struct {
	resultRepo     repository.ResultRepository
	userRepo       repository.UserRepository
	assessmentRepo repository.AssessmentRepository
	cacheRepo      repository.CacheRepository
	scores         ScoreRecomputer
	events         EventPublisher
}

// NewResultService создает новый сервис результатов. cacheRepo может быть nil.
func NewResultService(
	resultRepo repository.ResultRepository,
	userRepo repository.UserRepository,
	assessmentRepo repository.AssessmentRepository,
	cacheRepo repository.CacheRepository,
	scores ScoreRecomputer,
	events EventPublisher,
) *ResultService {
	return &ResultService{
		resultRepo:     resultRepo,
		userRepo:       userRepo,
		assessmentRepo: assessmentRepo,
		cacheRepo:      cacheRepo,
		scores:         scores,
		events:         events,
	}
}

// RecordResult проверяет и сохраняет попытку, затем пересчитывает агрегат пользователя.
// Ошибка пересчета не отменяет запись: агрегат помечается устаревшим.
func (s *ResultService) RecordResult(input RecordResultInput) (*entity.Result, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(input.UserID); err != nil {
		return nil, fmt.Errorf("user #%d: %w", input.UserID, err)
	}
	if _, err := s.assessmentRepo.GetByID(input.AssessmentID); err != nil {
		return nil, fmt.Errorf("assessment #%d: %w", input.AssessmentID, err)
	}

	result := &entity.Result{
		UserID:         input.UserID,
		AssessmentID:   input.AssessmentID,
		Score:          scoring.PercentScore(input.CorrectAnswers, input.TotalQuestions),
		CorrectAnswers: input.CorrectAnswers,
		TotalQuestions: input.TotalQuestions,
		TimeTaken:      input.TimeTaken,
	}
	if err := s.resultRepo.Create(result); err != nil {
		return nil, fmt.Errorf("failed to save result: %w", err)
	}
	log.Printf("[ResultService] Результат #%d записан: user=%d assessment=%d score=%.2f",
		result.ID, result.UserID, result.AssessmentID, result.Score)

	invalidateStats(s.cacheRepo, userStatsKey(result.UserID))
	s.refreshUserScore(result.UserID)

	publishToUser(s.events, result.UserID, websocket.RESULT_RECORDED, ResultRecordedEvent{
		ResultID:     result.ID,
		AssessmentID: result.AssessmentID,
		Score:        result.Score,
		RecordedAt:   result.CreatedAt,
	})
	return result, nil
}

// UpdateResult исправляет числовые поля попытки и пересчитывает балл
func (s *ResultService) UpdateResult(resultID uint, input UpdateResultInput) (*entity.Result, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	result, err := s.resultRepo.GetByID(resultID)
	if err != nil {
		return nil, fmt.Errorf("result #%d: %w", resultID, err)
	}

	result.CorrectAnswers = input.CorrectAnswers
	result.TotalQuestions = input.TotalQuestions
	result.TimeTaken = input.TimeTaken
	result.Score = scoring.PercentScore(input.CorrectAnswers, input.TotalQuestions)

	if err := s.resultRepo.Update(result); err != nil {
		return nil, err
	}
	log.Printf("[ResultService] Результат #%d обновлен: score=%.2f", result.ID, result.Score)

	invalidateStats(s.cacheRepo, userStatsKey(result.UserID))
	s.refreshUserScore(result.UserID)
	return result, nil
}

// refreshUserScore запускает пересчет агрегата; при ошибке откладывает его до следующего чтения
func (s *ResultService) refreshUserScore(userID uint) {
	if s.scores == nil {
		return
	}
	if _, err := s.scores.RecomputeGlobalScore(userID); err != nil {
		log.Printf("[ResultService] Ошибка пересчета агрегата пользователя %d, помечаем устаревшим: %v", userID, err)
		s.scores.MarkStale(userID)
	}
}

// GetUserResults возвращает историю попыток пользователя, новые первыми
func (s *ResultService) GetUserResults(userID uint, page, pageSize int) (*ResultPage, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, fmt.Errorf("user #%d: %w", userID, err)
	}

	page, pageSize = normalizePagination(page, pageSize)
	offset := (page - 1) * pageSize

	results, total, err := s.resultRepo.ListByUser(userID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	return &ResultPage{
		Results:  results,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetAllUserResults возвращает историю для выгрузки (ограничено maxExportRows)
func (s *ResultService) GetAllUserResults(userID uint) ([]entity.Result, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, fmt.Errorf("user #%d: %w", userID, err)
	}
	results, _, err := s.resultRepo.ListByUser(userID, maxExportRows, 0)
	return results, err
}

// GetUserStats считает статистику попыток. NotFound, если попыток нет.
// Посчитанная сводка кешируется на statsCacheTTL и сбрасывается при записи или исправлении попытки.
func (s *ResultService) GetUserStats(userID uint) (*UserStats, error) {
	var cached UserStats
	if loadCachedStats(s.cacheRepo, userStatsKey(userID), &cached) {
		return &cached, nil
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user #%d: %w", userID, err)
	}

	stats, err := s.resultRepo.GetStatsByUser(userID)
	if err != nil {
		return nil, err
	}
	if stats.TotalAssessments == 0 {
		return nil, fmt.Errorf("no results for user #%d: %w", userID, apperrors.ErrNotFound)
	}

	view := &UserStats{
		UserID:           user.ID,
		Username:         user.Username,
		TotalAssessments: stats.TotalAssessments,
		AverageScore:     scoring.Round2(stats.AverageScore),
		BestScore:        scoring.Round2(stats.BestScore),
		WorstScore:       scoring.Round2(stats.WorstScore),
		TotalTime:        stats.TotalTime,
		AverageTime:      scoring.Round2(stats.AverageTime),
	}
	storeCachedStats(s.cacheRepo, userStatsKey(userID), view)
	return view, nil
}

// normalizePagination применяет значения по умолчанию и ограничения
func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
