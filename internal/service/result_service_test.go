package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	apperrors "github.com/yourusername/skillcert-api/internal/pkg/errors"
	"github.com/yourusername/skillcert-api/internal/websocket"
)

// ============================================================================
// createTestResultService создаёт ResultService для тестирования
// ============================================================================

type resultServiceMocks struct {
	results     *MockResultRepo
	users       *MockUserRepo
	assessments *MockAssessmentRepo
	scores      *MockScoreRecomputer
	events      *MockEventPublisher
	cache       *MockCacheRepo
}

func createTestResultService() (*ResultService, *resultServiceMocks) {
	m := &resultServiceMocks{
		results:     new(MockResultRepo),
		users:       new(MockUserRepo),
		assessments: new(MockAssessmentRepo),
		scores:      new(MockScoreRecomputer),
		events:      new(MockEventPublisher),
		cache:       new(MockCacheRepo),
	}
	svc := NewResultService(m.results, m.users, m.assessments, nil, m.scores, m.events)
	return svc, m
}

// createCachedResultService подключает мок кеша сводок
func createCachedResultService() (*ResultService, *resultServiceMocks) {
	svc, m := createTestResultService()
	svc.cacheRepo = m.cache
	return svc, m
}

func validRecordInput() RecordResultInput {
	return RecordResultInput{
		UserID:         1,
		AssessmentID:   10,
		CorrectAnswers: 4,
		TotalQuestions: 5,
		TimeTaken:      120,
	}
}

// ============================================================================
// RecordResult
// ============================================================================

func TestResultService_RecordResult_Success(t *testing.T) {
	svc, m := createTestResultService()

	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)
	m.assessments.On("GetByID", uint(10)).Return(&entity.Assessment{ID: 10}, nil)
	m.results.On("Create", mock.AnythingOfType("*entity.Result")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*entity.Result).ID = 100
		}).
		Return(nil)
	m.scores.On("RecomputeGlobalScore", uint(1)).Return(&entity.UserScore{UserID: 1, GlobalScore: 80}, nil)
	m.events.On("SendEventToUser", "1", websocket.RESULT_RECORDED, mock.Anything).Return(nil)

	result, err := svc.RecordResult(validRecordInput())

	require.NoError(t, err)
	assert.Equal(t, uint(100), result.ID)
	assert.Equal(t, 80.0, result.Score, "4 из 5 должно дать 80.00")
	assert.Equal(t, 4, result.CorrectAnswers)
	assert.Equal(t, 5, result.TotalQuestions)
	assert.Equal(t, 120, result.TimeTaken)

	m.scores.AssertCalled(t, "RecomputeGlobalScore", uint(1))
	m.scores.AssertNotCalled(t, "MarkStale", mock.Anything)
	m.events.AssertExpectations(t)
}

func TestResultService_RecordResult_RoundsScore(t *testing.T) {
	svc, m := createTestResultService()

	input := validRecordInput()
	input.CorrectAnswers = 2
	input.TotalQuestions = 3

	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)
	m.assessments.On("GetByID", uint(10)).Return(&entity.Assessment{ID: 10}, nil)
	m.results.On("Create", mock.AnythingOfType("*entity.Result")).Return(nil)
	m.scores.On("RecomputeGlobalScore", uint(1)).Return(&entity.UserScore{}, nil)
	m.events.On("SendEventToUser", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := svc.RecordResult(input)

	require.NoError(t, err)
	assert.Equal(t, 66.67, result.Score)
}

func TestResultService_RecordResult_ZeroQuestions(t *testing.T) {
	svc, m := createTestResultService()

	input := validRecordInput()
	input.CorrectAnswers = 0
	input.TotalQuestions = 0

	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)
	m.assessments.On("GetByID", uint(10)).Return(&entity.Assessment{ID: 10}, nil)
	m.results.On("Create", mock.AnythingOfType("*entity.Result")).Return(nil)
	m.scores.On("RecomputeGlobalScore", uint(1)).Return(&entity.UserScore{}, nil)
	m.events.On("SendEventToUser", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := svc.RecordResult(input)

	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score, "При отсутствии вопросов балл должен быть 0")
}

func TestResultService_RecordResult_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input RecordResultInput
		field string
	}{
		{"правильных больше чем вопросов", RecordResultInput{UserID: 1, AssessmentID: 10, CorrectAnswers: 6, TotalQuestions: 5}, "correct_answers"},
		{"отрицательные правильные", RecordResultInput{UserID: 1, AssessmentID: 10, CorrectAnswers: -1, TotalQuestions: 5}, "correct_answers"},
		{"отрицательное количество вопросов", RecordResultInput{UserID: 1, AssessmentID: 10, CorrectAnswers: 0, TotalQuestions: -1}, "total_questions"},
		{"отрицательное время", RecordResultInput{UserID: 1, AssessmentID: 10, CorrectAnswers: 1, TotalQuestions: 5, TimeTaken: -5}, "time_taken"},
		{"без теста", RecordResultInput{UserID: 1, CorrectAnswers: 1, TotalQuestions: 5}, "assessment_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := createTestResultService()

			result, err := svc.RecordResult(tt.input)

			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, apperrors.ErrValidation)

			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr))
			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tt.field)

			// Валидация выполняется до любых чтений и записей
			m.users.AssertNotCalled(t, "GetByID", mock.Anything)
			m.results.AssertNotCalled(t, "Create", mock.Anything)
			m.scores.AssertNotCalled(t, "RecomputeGlobalScore", mock.Anything)
		})
	}
}

func TestResultService_RecordResult_UserNotFound(t *testing.T) {
	svc, m := createTestResultService()

	m.users.On("GetByID", uint(1)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.RecordResult(validRecordInput())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	m.results.AssertNotCalled(t, "Create", mock.Anything)
}

func TestResultService_RecordResult_AssessmentNotFound(t *testing.T) {
	svc, m := createTestResultService()

	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)
	m.assessments.On("GetByID", uint(10)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.RecordResult(validRecordInput())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	m.results.AssertNotCalled(t, "Create", mock.Anything)
}

func TestResultService_RecordResult_RecomputeFailureMarksStale(t *testing.T) {
	svc, m := createTestResultService()

	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)
	m.assessments.On("GetByID", uint(10)).Return(&entity.Assessment{ID: 10}, nil)
	m.results.On("Create", mock.AnythingOfType("*entity.Result")).Return(nil)
	m.scores.On("RecomputeGlobalScore", uint(1)).Return(nil, errors.New("db unavailable"))
	m.scores.On("MarkStale", uint(1)).Return()
	m.events.On("SendEventToUser", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := svc.RecordResult(validRecordInput())

	require.NoError(t, err, "Ошибка пересчета не должна отменять запись результата")
	assert.NotNil(t, result)
	m.scores.AssertCalled(t, "MarkStale", uint(1))
}

func TestResultService_RecordResult_SaveFailure(t *testing.T) {
	svc, m := createTestResultService()

	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)
	m.assessments.On("GetByID", uint(10)).Return(&entity.Assessment{ID: 10}, nil)
	m.results.On("Create", mock.AnythingOfType("*entity.Result")).Return(errors.New("insert failed"))

	_, err := svc.RecordResult(validRecordInput())

	assert.Error(t, err)
	m.scores.AssertNotCalled(t, "RecomputeGlobalScore", mock.Anything)
	m.events.AssertNotCalled(t, "SendEventToUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestResultService_RecordResult_EventFailureIgnored(t *testing.T) {
	svc, m := createTestResultService()

	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)
	m.assessments.On("GetByID", uint(10)).Return(&entity.Assessment{ID: 10}, nil)
	m.results.On("Create", mock.AnythingOfType("*entity.Result")).Return(nil)
	m.scores.On("RecomputeGlobalScore", uint(1)).Return(&entity.UserScore{}, nil)
	m.events.On("SendEventToUser", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("no connection"))

	_, err := svc.RecordResult(validRecordInput())

	assert.NoError(t, err, "Ошибка доставки события не должна влиять на результат")
}

// ============================================================================
// UpdateResult
// ============================================================================

func TestResultService_UpdateResult_RecomputesScore(t *testing.T) {
	svc, m := createTestResultService()

	existing := &entity.Result{ID: 5, UserID: 1, AssessmentID: 10, Score: 20, CorrectAnswers: 1, TotalQuestions: 5}
	m.results.On("GetByID", uint(5)).Return(existing, nil)
	m.results.On("Update", existing).Return(nil)
	m.scores.On("RecomputeGlobalScore", uint(1)).Return(&entity.UserScore{}, nil)

	result, err := svc.UpdateResult(5, UpdateResultInput{CorrectAnswers: 3, TotalQuestions: 4, TimeTaken: 30})

	require.NoError(t, err)
	assert.Equal(t, 75.0, result.Score)
	assert.Equal(t, 3, result.CorrectAnswers)
	assert.Equal(t, 4, result.TotalQuestions)
	m.scores.AssertCalled(t, "RecomputeGlobalScore", uint(1))
}

func TestResultService_UpdateResult_Validation(t *testing.T) {
	svc, m := createTestResultService()

	_, err := svc.UpdateResult(5, UpdateResultInput{CorrectAnswers: 5, TotalQuestions: 4})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	m.results.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestResultService_UpdateResult_NotFound(t *testing.T) {
	svc, m := createTestResultService()

	m.results.On("GetByID", uint(5)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.UpdateResult(5, UpdateResultInput{CorrectAnswers: 1, TotalQuestions: 4})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================================
// GetUserResults / GetUserStats
// ============================================================================

func TestResultService_GetUserResults_Pagination(t *testing.T) {
	svc, m := createTestResultService()

	expected := []entity.Result{{ID: 3}, {ID: 2}, {ID: 1}}
	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)
	// page=2, pageSize=3 -> offset=3, limit=3
	m.results.On("ListByUser", uint(1), 3, 3).Return(expected, int64(9), nil)

	page, err := svc.GetUserResults(1, 2, 3)

	require.NoError(t, err)
	assert.Equal(t, expected, page.Results)
	assert.Equal(t, int64(9), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.PageSize)
}

func TestResultService_GetUserResults_NormalizesPagination(t *testing.T) {
	svc, m := createTestResultService()

	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)
	m.results.On("ListByUser", uint(1), 100, 0).Return([]entity.Result{}, int64(0), nil)

	page, err := svc.GetUserResults(1, 0, 500)

	require.NoError(t, err)
	assert.Equal(t, 1, page.Page, "Страница меньше 1 должна стать 1")
	assert.Equal(t, 100, page.PageSize, "Размер страницы ограничен 100")
}

func TestResultService_GetUserStats(t *testing.T) {
	svc, m := createTestResultService()

	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1, Username: "ana"}, nil)
	m.results.On("GetStatsByUser", uint(1)).Return(&entity.UserResultStats{
		TotalAssessments: 3,
		AverageScore:     72.2222222,
		BestScore:        90,
		WorstScore:       40.5,
		TotalTime:        300,
		AverageTime:      100.0001,
	}, nil)

	stats, err := svc.GetUserStats(1)

	require.NoError(t, err)
	assert.Equal(t, "ana", stats.Username)
	assert.Equal(t, int64(3), stats.TotalAssessments)
	assert.Equal(t, 72.22, stats.AverageScore)
	assert.Equal(t, 90.0, stats.BestScore)
	assert.Equal(t, 40.5, stats.WorstScore)
	assert.Equal(t, int64(300), stats.TotalTime)
	assert.Equal(t, 100.0, stats.AverageTime)
}

func TestResultService_GetUserStats_NoResults(t *testing.T) {
	svc, m := createTestResultService()

	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)
	m.results.On("GetStatsByUser", uint(1)).Return(&entity.UserResultStats{}, nil)

	_, err := svc.GetUserStats(1)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================================
// Кеш сводки
// ============================================================================

func TestResultService_GetUserStats_CacheHit(t *testing.T) {
	svc, m := createCachedResultService()

	cached := UserStats{UserID: 1, Username: "ana", TotalAssessments: 2, AverageScore: 65}
	m.cache.On("GetJSON", "stats:results:1", mock.AnythingOfType("*service.UserStats")).
		Return(nil).
		Run(func(args mock.Arguments) {
			*args.Get(1).(*UserStats) = cached
		})

	stats, err := svc.GetUserStats(1)

	require.NoError(t, err)
	assert.Equal(t, cached, *stats)
	m.results.AssertNotCalled(t, "GetStatsByUser", mock.Anything)
}

func TestResultService_GetUserStats_CacheMissStores(t *testing.T) {
	svc, m := createCachedResultService()

	m.cache.On("GetJSON", "stats:results:1", mock.Anything).Return(apperrors.ErrNotFound)
	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1, Username: "ana"}, nil)
	m.results.On("GetStatsByUser", uint(1)).Return(&entity.UserResultStats{TotalAssessments: 1, AverageScore: 80}, nil)
	m.cache.On("SetJSON", "stats:results:1", mock.AnythingOfType("*service.UserStats"), statsCacheTTL).Return(nil)

	stats, err := svc.GetUserStats(1)

	require.NoError(t, err)
	assert.Equal(t, 80.0, stats.AverageScore)
	m.cache.AssertCalled(t, "SetJSON", "stats:results:1", stats, statsCacheTTL)
}

func TestResultService_GetUserStats_NoResultsNotCached(t *testing.T) {
	svc, m := createCachedResultService()

	m.cache.On("GetJSON", "stats:results:1", mock.Anything).Return(apperrors.ErrNotFound)
	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)
	m.results.On("GetStatsByUser", uint(1)).Return(&entity.UserResultStats{}, nil)

	_, err := svc.GetUserStats(1)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	m.cache.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestResultService_RecordResult_InvalidatesStats(t *testing.T) {
	svc, m := createCachedResultService()

	m.users.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)
	m.assessments.On("GetByID", uint(10)).Return(&entity.Assessment{ID: 10}, nil)
	m.results.On("Create", mock.AnythingOfType("*entity.Result")).Return(nil)
	m.cache.On("Delete", []string{"stats:results:1"}).Return(nil)
	m.scores.On("RecomputeGlobalScore", uint(1)).Return(&entity.UserScore{}, nil)
	m.events.On("SendEventToUser", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.RecordResult(validRecordInput())

	require.NoError(t, err)
	m.cache.AssertExpectations(t)
}

func TestResultService_UpdateResult_InvalidatesStats(t *testing.T) {
	svc, m := createCachedResultService()

	existing := &entity.Result{ID: 5, UserID: 1, AssessmentID: 10, CorrectAnswers: 1, TotalQuestions: 5}
	m.results.On("GetByID", uint(5)).Return(existing, nil)
	m.results.On("Update", existing).Return(nil)
	m.cache.On("Delete", []string{"stats:results:1"}).Return(errors.New("redis down"))
	m.scores.On("RecomputeGlobalScore", uint(1)).Return(&entity.UserScore{}, nil)

	_, err := svc.UpdateResult(5, UpdateResultInput{CorrectAnswers: 2, TotalQuestions: 5})

	require.NoError(t, err, "Ошибка сброса кеша не должна отменять исправление")
	m.cache.AssertExpectations(t)
}
