package handler

import (
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	"github.com/yourusername/skillcert-api/internal/service"
)

// ==========================================================================
// Mock use cases
// ==========================================================================

type MockResultUseCase struct {
	mock.Mock
}

func (m *MockResultUseCase) RecordResult(input service.RecordResultInput) (*entity.Result, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Result), args.Error(1)
}

func (m *MockResultUseCase) UpdateResult(resultID uint, input service.UpdateResultInput) (*entity.Result, error) {
	args := m.Called(resultID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Result), args.Error(1)
}

func (m *MockResultUseCase) GetUserResults(userID uint, page, pageSize int) (*service.ResultPage, error) {
	args := m.Called(userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResultPage), args.Error(1)
}

func (m *MockResultUseCase) GetAllUserResults(userID uint) ([]entity.Result, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Result), args.Error(1)
}

func (m *MockResultUseCase) GetUserStats(userID uint) (*service.UserStats, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserStats), args.Error(1)
}

type MockScoreUseCase struct {
	mock.Mock
}

func (m *MockScoreUseCase) GetUserScore(userID uint) (*entity.UserScore, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserScore), args.Error(1)
}

func (m *MockScoreUseCase) GetImprovements(userID uint) (*service.ImprovementReport, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImprovementReport), args.Error(1)
}

type MockCertificationUseCase struct {
	mock.Mock
}

func (m *MockCertificationUseCase) Issue(input service.IssueCertificationInput) (*entity.Certification, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Certification), args.Error(1)
}

func (m *MockCertificationUseCase) Verify(certificateID string) (*service.VerificationResult, error) {
	args := m.Called(certificateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VerificationResult), args.Error(1)
}

func (m *MockCertificationUseCase) History(userID uint) ([]service.CertificationSummary, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.CertificationSummary), args.Error(1)
}

func (m *MockCertificationUseCase) Stats(userID uint) (*service.CertificationStatsView, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CertificationStatsView), args.Error(1)
}

func (m *MockCertificationUseCase) ChangeStatus(id uint, newStatus string) (*entity.Certification, error) {
	args := m.Called(id, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Certification), args.Error(1)
}

type MockCatalogUseCase struct {
	mock.Mock
}

func (m *MockCatalogUseCase) StartAssessment(id uint) (*service.AssessmentSession, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AssessmentSession), args.Error(1)
}

func (m *MockCatalogUseCase) CheckAnswer(assessmentID, questionID, optionID uint) (*service.AnswerCheck, error) {
	args := m.Called(assessmentID, questionID, optionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnswerCheck), args.Error(1)
}

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Login(username, password string) (*service.LoginResult, error) {
	args := m.Called(username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}
