package service

import (
	"errors"
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
	staleScoreKeyFmt = "user_score:stale:%d"

	recentResultsLimit = 5
	weakAreasLimit     = 3
	weakAreaThreshold  = 60.0
)

// Тексты рекомендаций по глобальному баллу
const (
	RecommendationBasics     = "Focus on practicing the fundamentals. Spend more time on each question."
	RecommendationReview     = "Good progress. Review the topics where you scored lowest."
	RecommendationChallenges = "Excellent work! Try harder assessments to keep improving."
)

// WeakArea - попытка с низким баллом
type WeakArea struct {
	ResultID        uint      `json:"result_id"`
	AssessmentID    uint      `json:"assessment_id"`
	AssessmentTitle string    `json:"assessment"`
	Difficulty      int       `json:"difficulty"`
	Score           float64   `json:"score"`
	Date            time.Time `json:"date"`
}

// ImprovementReport - анализ слабых мест и рекомендация
type ImprovementReport struct {
	UserScore        *entity.UserScore `json:"user_score"`
	RecentResults    []entity.Result   `json:"recent_results"`
	ImprovementAreas []WeakArea        `json:"improvement_areas"`
	Recommendations  string            `json:"recommendations"`
}

// ScoreUpdatedEvent отправляется пользователю после пересчета
type ScoreUpdatedEvent struct {
	GlobalScore      float64 `json:"global_score"`
	TotalAssessments int     `json:"total_assessments"`
}

// ScoreService ведет агрегат UserScore
type ScoreService struct {
	resultRepo repository.ResultRepository
	scoreRepo  repository.UserScoreRepository
	userRepo   repository.UserRepository
	cacheRepo  repository.CacheRepository
	events     EventPublisher
	staleTTL   time.Duration
	now        func() time.Time
}

// NewScoreService создает сервис агрегатов. staleTTL - время жизни маркера устаревшего агрегата.
func NewScoreService(
	resultRepo repository.ResultRepository,
	scoreRepo repository.UserScoreRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	events EventPublisher,
	staleTTL time.Duration,
) *ScoreService {
	if staleTTL <= 0 {
		staleTTL = 7 * 24 * time.Hour
	}
	return &ScoreService{
		resultRepo: resultRepo,
		scoreRepo:  scoreRepo,
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		events:     events,
		staleTTL:   staleTTL,
		now:        time.Now,
	}
}

// RecomputeGlobalScore полностью пересчитывает агрегат из всех результатов и записывает его одним upsert.
// Повторный вызов без новых результатов дает тот же агрегат.
func (s *ScoreService) RecomputeGlobalScore(userID uint) (*entity.UserScore, error) {
	results, err := s.resultRepo.ListAllByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for user #%d: %w", userID, err)
	}

	score := BuildUserScore(userID, results)
	score.UpdatedAt = s.now()

	if err := s.scoreRepo.Upsert(score); err != nil {
		return nil, err
	}

	publishToUser(s.events, userID, websocket.SCORE_UPDATED, ScoreUpdatedEvent{
		GlobalScore:      score.GlobalScore,
		TotalAssessments: score.TotalAssessments,
	})
	return score, nil
}

// BuildUserScore суммирует результаты. Пустой набор дает агрегат без данных (все нули).
func BuildUserScore(userID uint, results []entity.Result) *entity.UserScore {
	score := &entity.UserScore{UserID: userID}
	for _, r := range results {
		score.TotalCorrect += r.CorrectAnswers
		score.TotalQuestions += r.TotalQuestions
	}
	score.TotalAssessments = len(results)
	score.GlobalScore = scoring.RatioScore(score.TotalCorrect, score.TotalQuestions)
	return score
}

// MarkStale помечает агрегат устаревшим; он будет пересчитан при следующем чтении
func (s *ScoreService) MarkStale(userID uint) {
	if s.cacheRepo == nil {
		log.Printf("[ScoreService] Кеш недоступен, маркер устаревания для пользователя %d не сохранен", userID)
		return
	}
	if err := s.cacheRepo.Set(staleKey(userID), "1", s.staleTTL); err != nil {
		log.Printf("[ScoreService] Не удалось сохранить маркер устаревания для пользователя %d: %v", userID, err)
	}
}

// GetUserScore возвращает агрегат, пересчитывая его, если он устарел или еще не создан
func (s *ScoreService) GetUserScore(userID uint) (*entity.UserScore, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, fmt.Errorf("user #%d: %w", userID, err)
	}

	if !s.isStale(userID) {
		score, err := s.scoreRepo.GetByUserID(userID)
		if err == nil {
			return score, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	return s.recomputeClearingStale(userID)
}

// Refresh принудительно пересчитывает агрегат и снимает маркер устаревания
func (s *ScoreService) Refresh(userID uint) (*entity.UserScore, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, fmt.Errorf("user #%d: %w", userID, err)
	}
	return s.recomputeClearingStale(userID)
}

// recomputeClearingStale снимает маркер до чтения результатов: MarkStale, пришедший во время
// пересчета, переживает его. При ошибке маркер восстанавливается.
func (s *ScoreService) recomputeClearingStale(userID uint) (*entity.UserScore, error) {
	s.clearStale(userID)
	score, err := s.RecomputeGlobalScore(userID)
	if err != nil {
		s.MarkStale(userID)
		return nil, err
	}
	return score, nil
}

// GetImprovements анализирует последние и худшие попытки. NotFound, если попыток нет.
func (s *ScoreService) GetImprovements(userID uint) (*ImprovementReport, error) {
	score, err := s.GetUserScore(userID)
	if err != nil {
		return nil, err
	}
	if !score.HasData() {
		return nil, fmt.Errorf("no results for user #%d: %w", userID, apperrors.ErrNotFound)
	}

	recent, err := s.resultRepo.GetRecent(userID, recentResultsLimit)
	if err != nil {
		return nil, err
	}
	low, err := s.resultRepo.GetLowScores(userID, weakAreaThreshold, weakAreasLimit)
	if err != nil {
		return nil, err
	}

	areas := make([]WeakArea, 0, len(low))
	for _, r := range low {
		area := WeakArea{
			ResultID:     r.ID,
			AssessmentID: r.AssessmentID,
			Score:        r.Score,
			Date:         r.CreatedAt,
		}
		if r.Assessment != nil {
			area.AssessmentTitle = r.Assessment.Title
			area.Difficulty = r.Assessment.Difficulty
		}
		areas = append(areas, area)
	}

	return &ImprovementReport{
		UserScore:        score,
		RecentResults:    recent,
		ImprovementAreas: areas,
		Recommendations:  RecommendationFor(score.GlobalScore),
	}, nil
}

// RecommendationFor выбирает текст рекомендации по глобальному баллу
func RecommendationFor(globalScore float64) string {
	switch {
	case globalScore < 50:
		return RecommendationBasics
	case globalScore < 70:
		return RecommendationReview
	default:
		return RecommendationChallenges
	}
}

func (s *ScoreService) isStale(userID uint) bool {
	if s.cacheRepo == nil {
		return false
	}
	stale, err := s.cacheRepo.Exists(staleKey(userID))
	if err != nil {
		log.Printf("[ScoreService] Ошибка чтения маркера устаревания для пользователя %d, пересчитываем: %v", userID, err)
		return true
	}
	return stale
}

func (s *ScoreService) clearStale(userID uint) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(staleKey(userID)); err != nil {
		log.Printf("[ScoreService] Не удалось удалить маркер устаревания для пользователя %d: %v", userID, err)
	}
}

func staleKey(userID uint) string {
	return fmt.Sprintf(staleScoreKeyFmt, userID)
}
