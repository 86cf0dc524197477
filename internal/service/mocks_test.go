package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
)

// ============================================================================
// Моки репозиториев
// ============================================================================

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) List(limit, offset int) ([]entity.User, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

type MockAssessmentRepo struct {
	mock.Mock
}

func (m *MockAssessmentRepo) GetByID(id uint) (*entity.Assessment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Assessment), args.Error(1)
}

func (m *MockAssessmentRepo) GetWithQuestions(id uint) (*entity.Assessment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Assessment), args.Error(1)
}

func (m *MockAssessmentRepo) CountQuestions(assessmentID uint) (int64, error) {
	args := m.Called(assessmentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssessmentRepo) GetQuestion(assessmentID, questionID uint) (*entity.Question, error) {
	args := m.Called(assessmentID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

type MockResultRepo struct {
	mock.Mock
}

func (m *MockResultRepo) Create(result *entity.Result) error {
	args := m.Called(result)
	return args.Error(0)
}

func (m *MockResultRepo) GetByID(id uint) (*entity.Result, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Result), args.Error(1)
}

func (m *MockResultRepo) Update(result *entity.Result) error {
	args := m.Called(result)
	return args.Error(0)
}

func (m *MockResultRepo) ListByUser(userID uint, limit, offset int) ([]entity.Result, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Result), args.Get(1).(int64), args.Error(2)
}

func (m *MockResultRepo) ListAllByUser(userID uint) ([]entity.Result, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Result), args.Error(1)
}

func (m *MockResultRepo) GetStatsByUser(userID uint) (*entity.UserResultStats, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserResultStats), args.Error(1)
}

func (m *MockResultRepo) GetRecent(userID uint, limit int) ([]entity.Result, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Result), args.Error(1)
}

func (m *MockResultRepo) GetLowScores(userID uint, threshold float64, limit int) ([]entity.Result, error) {
	args := m.Called(userID, threshold, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Result), args.Error(1)
}

type MockUserScoreRepo struct {
	mock.Mock
}

func (m *MockUserScoreRepo) Upsert(score *entity.UserScore) error {
	args := m.Called(score)
	return args.Error(0)
}

func (m *MockUserScoreRepo) GetByUserID(userID uint) (*entity.UserScore, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserScore), args.Error(1)
}

type MockCertificationRepo struct {
	mock.Mock
}

func (m *MockCertificationRepo) Create(cert *entity.Certification) error {
	args := m.Called(cert)
	return args.Error(0)
}

func (m *MockCertificationRepo) GetByID(id uint) (*entity.Certification, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Certification), args.Error(1)
}

func (m *MockCertificationRepo) GetByCertificateID(certificateID uuid.UUID) (*entity.Certification, error) {
	args := m.Called(certificateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Certification), args.Error(1)
}

func (m *MockCertificationRepo) ListByUser(userID uint) ([]entity.Certification, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Certification), args.Error(1)
}

func (m *MockCertificationRepo) UpdateStatus(id uint, fromStatus, toStatus string) error {
	args := m.Called(id, fromStatus, toStatus)
	return args.Error(0)
}

func (m *MockCertificationRepo) GetStatsByUser(userID uint) (*entity.CertificationStats, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CertificationStats), args.Error(1)
}

type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) Delete(keys ...string) error {
	args := m.Called(keys)
	return args.Error(0)
}

func (m *MockCacheRepo) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

// ============================================================================
// Моки уведомлений и зависимостей сервисов
// ============================================================================

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) SendEventToUser(userID string, eventType string, data interface{}) error {
	args := m.Called(userID, eventType, data)
	return args.Error(0)
}

type MockScoreRecomputer struct {
	mock.Mock
}

func (m *MockScoreRecomputer) RecomputeGlobalScore(userID uint) (*entity.UserScore, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserScore), args.Error(1)
}

func (m *MockScoreRecomputer) MarkStale(userID uint) {
	m.Called(userID)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendCertificationIssued(ctx context.Context, msg CertificationEmail) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
