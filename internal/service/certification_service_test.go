package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	apperrors "github.com/yourusername/skillcert-api/internal/pkg/errors"
	"github.com/yourusername/skillcert-api/internal/websocket"
)

var certTestNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type certServiceMocks struct {
	certs   *MockCertificationRepo
	results *MockResultRepo
	users   *MockUserRepo
	events  *MockEventPublisher
	mailer  *MockEmailService
	cache   *MockCacheRepo
}

func createTestCertificationService() (*CertificationService, *certServiceMocks) {
	m := &certServiceMocks{
		certs:   new(MockCertificationRepo),
		results: new(MockResultRepo),
		users:   new(MockUserRepo),
		events:  new(MockEventPublisher),
		mailer:  new(MockEmailService),
		cache:   new(MockCacheRepo),
	}
	svc := NewCertificationService(m.certs, m.results, m.users, nil, m.events, m.mailer, "https://certs.example.com/verify/")
	svc.now = func() time.Time { return certTestNow }
	// Уведомления выполняем синхронно, чтобы проверять вызовы
	svc.async = func(f func()) { f() }
	return svc, m
}

// createCachedCertificationService подключает мок кеша сводок
func createCachedCertificationService() (*CertificationService, *certServiceMocks) {
	svc, m := createTestCertificationService()
	svc.cacheRepo = m.cache
	return svc, m
}

func testUser() *entity.User {
	return &entity.User{ID: 1, Username: "ana", Email: "ana@example.com", FirstName: "Ana", LastName: "Gomez"}
}

func expectIssueNotifications(m *certServiceMocks) {
	m.events.On("SendEventToUser", "1", websocket.CERTIFICATION_ISSUED, mock.Anything).Return(nil)
	m.mailer.On("SendCertificationIssued", mock.Anything, mock.AnythingOfType("service.CertificationEmail")).Return(nil)
}

// ============================================================================
// Issue
// ============================================================================

func TestCertificationService_Issue_Expert(t *testing.T) {
	svc, m := createTestCertificationService()

	m.users.On("GetByID", uint(1)).Return(testUser(), nil)
	m.results.On("ListAllByUser", uint(1)).Return([]entity.Result{{Score: 90}, {Score: 94}}, nil)
	m.certs.On("Create", mock.AnythingOfType("*entity.Certification")).Return(nil)
	expectIssueNotifications(m)

	cert, err := svc.Issue(IssueCertificationInput{
		UserID:        1,
		Title:         "  Backend Go  ",
		EvidenceLinks: []string{"https://github.com/ana/project"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Backend Go", cert.Title)
	assert.Equal(t, 92.0, cert.TotalScore)
	assert.Equal(t, 5, cert.Level)
	assert.Equal(t, "Expert", cert.LevelDisplay())
	assert.Equal(t, 2, cert.AssessmentsCompleted)
	assert.Equal(t, entity.CertStatusActive, cert.Status)
	assert.Equal(t, certTestNow, cert.IssuedAt)
	assert.Nil(t, cert.ExpiresAt)
	assert.NotEqual(t, uuid.Nil, cert.CertificateID)
	assert.Equal(t, []string{"https://github.com/ana/project"}, cert.GetEvidenceLinks())

	m.events.AssertExpectations(t)
	m.mailer.AssertCalled(t, "SendCertificationIssued", mock.Anything, mock.MatchedBy(func(msg CertificationEmail) bool {
		return msg.ToEmail == "ana@example.com" &&
			msg.RecipientName == "Ana Gomez" &&
			msg.VerifyURL == "https://certs.example.com/verify/"+cert.CertificateID.String()
	}))
}

func TestCertificationService_Issue_UsesMeanOfPercentages(t *testing.T) {
	svc, m := createTestCertificationService()

	// 1/1 = 100% и 0/9 = 0%: среднее 50 (Apprentice), хотя отношение сумм было бы 10
	m.users.On("GetByID", uint(1)).Return(testUser(), nil)
	m.results.On("ListAllByUser", uint(1)).Return([]entity.Result{
		{Score: 100, CorrectAnswers: 1, TotalQuestions: 1},
		{Score: 0, CorrectAnswers: 0, TotalQuestions: 9},
	}, nil)
	m.certs.On("Create", mock.AnythingOfType("*entity.Certification")).Return(nil)
	expectIssueNotifications(m)

	cert, err := svc.Issue(IssueCertificationInput{UserID: 1, Title: "Data"})

	require.NoError(t, err)
	assert.Equal(t, 50.0, cert.TotalScore)
	assert.Equal(t, 2, cert.Level)
}

func TestCertificationService_Issue_Levels(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		level    int
		expected float64
	}{
		{"Advanced", []float64{75}, 4, 75},
		{"Competent", []float64{60, 61}, 3, 60.5},
		{"Novice", []float64{20}, 1, 20},
		{"Uncertified", []float64{15}, 0, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := createTestCertificationService()

			results := make([]entity.Result, len(tt.scores))
			for i, s := range tt.scores {
				results[i] = entity.Result{Score: s}
			}
			m.users.On("GetByID", uint(1)).Return(testUser(), nil)
			m.results.On("ListAllByUser", uint(1)).Return(results, nil)
			m.certs.On("Create", mock.AnythingOfType("*entity.Certification")).Return(nil)
			expectIssueNotifications(m)

			cert, err := svc.Issue(IssueCertificationInput{UserID: 1, Title: "Skill"})

			require.NoError(t, err)
			assert.Equal(t, tt.level, cert.Level)
			assert.Equal(t, tt.expected, cert.TotalScore)
		})
	}
}

func TestCertificationService_Issue_NoHistory(t *testing.T) {
	svc, m := createTestCertificationService()

	m.users.On("GetByID", uint(1)).Return(testUser(), nil)
	m.results.On("ListAllByUser", uint(1)).Return([]entity.Result{}, nil)

	cert, err := svc.Issue(IssueCertificationInput{UserID: 1, Title: "Go"})

	assert.Nil(t, cert)
	assert.ErrorIs(t, err, apperrors.ErrNoAssessmentHistory)
	m.certs.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCertificationService_Issue_UserNotFound(t *testing.T) {
	svc, m := createTestCertificationService()

	m.users.On("GetByID", uint(1)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.Issue(IssueCertificationInput{UserID: 1, Title: "Go"})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	m.results.AssertNotCalled(t, "ListAllByUser", mock.Anything)
}

func TestCertificationService_Issue_Validation(t *testing.T) {
	longTitle := make([]byte, 201)
	for i := range longTitle {
		longTitle[i] = 'a'
	}

	tests := []struct {
		name  string
		input IssueCertificationInput
		field string
	}{
		{"пустой заголовок", IssueCertificationInput{UserID: 1, Title: "   "}, "title"},
		{"слишком длинный заголовок", IssueCertificationInput{UserID: 1, Title: string(longTitle)}, "title"},
		{"некорректная ссылка", IssueCertificationInput{UserID: 1, Title: "Go", EvidenceLinks: []string{"not a url"}}, "evidence_links[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := createTestCertificationService()

			_, err := svc.Issue(tt.input)

			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr))
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			m.users.AssertNotCalled(t, "GetByID", mock.Anything)
			m.certs.AssertNotCalled(t, "Create", mock.Anything)
		})
	}
}

func TestCertificationService_Issue_RetriesOnCollision(t *testing.T) {
	svc, m := createTestCertificationService()

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	call := 0
	svc.newID = func() uuid.UUID {
		id := ids[call]
		call++
		return id
	}

	m.users.On("GetByID", uint(1)).Return(testUser(), nil)
	m.results.On("ListAllByUser", uint(1)).Return([]entity.Result{{Score: 80}}, nil)
	m.certs.On("Create", mock.AnythingOfType("*entity.Certification")).
		Return(fmt.Errorf("%w: certificate_id", apperrors.ErrConflict)).Once()
	m.certs.On("Create", mock.AnythingOfType("*entity.Certification")).Return(nil).Once()
	expectIssueNotifications(m)

	cert, err := svc.Issue(IssueCertificationInput{UserID: 1, Title: "Go"})

	require.NoError(t, err)
	assert.Equal(t, ids[1], cert.CertificateID, "После коллизии должен использоваться новый идентификатор")
	m.certs.AssertNumberOfCalls(t, "Create", 2)
}

func TestCertificationService_Issue_SecondCollisionFails(t *testing.T) {
	svc, m := createTestCertificationService()

	m.users.On("GetByID", uint(1)).Return(testUser(), nil)
	m.results.On("ListAllByUser", uint(1)).Return([]entity.Result{{Score: 80}}, nil)
	m.certs.On("Create", mock.AnythingOfType("*entity.Certification")).
		Return(fmt.Errorf("%w: certificate_id", apperrors.ErrConflict))

	_, err := svc.Issue(IssueCertificationInput{UserID: 1, Title: "Go"})

	assert.ErrorIs(t, err, apperrors.ErrCertificateIDCollision)
	m.certs.AssertNumberOfCalls(t, "Create", 2)
	m.events.AssertNotCalled(t, "SendEventToUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestCertificationService_Issue_StoreError(t *testing.T) {
	svc, m := createTestCertificationService()

	m.users.On("GetByID", uint(1)).Return(testUser(), nil)
	m.results.On("ListAllByUser", uint(1)).Return([]entity.Result{{Score: 80}}, nil)
	m.certs.On("Create", mock.AnythingOfType("*entity.Certification")).Return(errors.New("connection reset"))

	_, err := svc.Issue(IssueCertificationInput{UserID: 1, Title: "Go"})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrCertificateIDCollision)
	m.certs.AssertNumberOfCalls(t, "Create", 1)
}

func TestCertificationService_Issue_MailerFailureIgnored(t *testing.T) {
	svc, m := createTestCertificationService()

	m.users.On("GetByID", uint(1)).Return(testUser(), nil)
	m.results.On("ListAllByUser", uint(1)).Return([]entity.Result{{Score: 80}}, nil)
	m.certs.On("Create", mock.AnythingOfType("*entity.Certification")).Return(nil)
	m.events.On("SendEventToUser", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("offline"))
	m.mailer.On("SendCertificationIssued", mock.Anything, mock.Anything).Return(errors.New("resend down"))

	cert, err := svc.Issue(IssueCertificationInput{UserID: 1, Title: "Go"})

	require.NoError(t, err, "Ошибки уведомлений не должны влиять на выдачу")
	assert.NotNil(t, cert)
}

// ============================================================================
// Verify
// ============================================================================

func TestCertificationService_Verify(t *testing.T) {
	past := certTestNow.Add(-24 * time.Hour)
	future := certTestNow.Add(24 * time.Hour)

	tests := []struct {
		name      string
		status    string
		expiresAt *time.Time
		valid     bool
	}{
		{"активный без срока", entity.CertStatusActive, nil, true},
		{"активный со сроком в будущем", entity.CertStatusActive, &future, true},
		{"активный, но истекший", entity.CertStatusActive, &past, false},
		{"отозванный", entity.CertStatusRevoked, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := createTestCertificationService()

			id := uuid.New()
			m.certs.On("GetByCertificateID", id).Return(&entity.Certification{
				CertificateID: id,
				Title:         "Go",
				Level:         4,
				TotalScore:    80,
				Status:        tt.status,
				ExpiresAt:     tt.expiresAt,
				IssuedAt:      certTestNow.Add(-48 * time.Hour),
				User:          testUser(),
			}, nil)

			result, err := svc.Verify(id.String())

			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.IsValid)
			assert.Equal(t, tt.status, result.Status, "Статус в ответе должен совпадать с хранимым")
			assert.Equal(t, "ana", result.Username)
			assert.Equal(t, "Advanced", result.LevelDisplay)
			assert.Equal(t, id.String(), result.CertificateID)
		})
	}
}

func TestCertificationService_Verify_ValidityUsesCurrentClock(t *testing.T) {
	svc, m := createTestCertificationService()

	id := uuid.New()
	expires := certTestNow.Add(time.Hour)
	m.certs.On("GetByCertificateID", id).Return(&entity.Certification{
		CertificateID: id,
		Status:        entity.CertStatusActive,
		ExpiresAt:     &expires,
	}, nil)

	first, err := svc.Verify(id.String())
	require.NoError(t, err)
	assert.True(t, first.IsValid)

	svc.now = func() time.Time { return certTestNow.Add(2 * time.Hour) }
	second, err := svc.Verify(id.String())
	require.NoError(t, err)
	assert.False(t, second.IsValid, "Действительность должна пересчитываться при каждом вызове")
	assert.Equal(t, entity.CertStatusActive, second.Status)
}

func TestCertificationService_Verify_NotFound(t *testing.T) {
	svc, m := createTestCertificationService()

	id := uuid.New()
	m.certs.On("GetByCertificateID", id).Return(nil, apperrors.ErrNotFound)

	_, err := svc.Verify(id.String())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCertificationService_Verify_MalformedID(t *testing.T) {
	svc, m := createTestCertificationService()

	_, err := svc.Verify("not-a-uuid")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	m.certs.AssertNotCalled(t, "GetByCertificateID", mock.Anything)
}

// ============================================================================
// History / Stats / ChangeStatus
// ============================================================================

func TestCertificationService_History(t *testing.T) {
	svc, m := createTestCertificationService()

	past := certTestNow.Add(-time.Hour)
	m.users.On("GetByID", uint(1)).Return(testUser(), nil)
	m.certs.On("ListByUser", uint(1)).Return([]entity.Certification{
		{ID: 2, CertificateID: uuid.New(), Title: "B", Level: 3, Status: entity.CertStatusActive, IssuedAt: certTestNow},
		{ID: 1, CertificateID: uuid.New(), Title: "A", Level: 5, Status: entity.CertStatusActive, ExpiresAt: &past},
	}, nil)

	history, err := svc.History(1)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, uint(2), history[0].ID)
	assert.True(t, history[0].IsValid)
	assert.Equal(t, "Competent", history[0].LevelDisplay)
	assert.False(t, history[1].IsValid)
}

func TestCertificationService_History_UserNotFound(t *testing.T) {
	svc, m := createTestCertificationService()

	m.users.On("GetByID", uint(3)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.History(3)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCertificationService_Stats(t *testing.T) {
	svc, m := createTestCertificationService()

	m.users.On("GetByID", uint(1)).Return(testUser(), nil)
	m.certs.On("GetStatsByUser", uint(1)).Return(&entity.CertificationStats{
		Total:        3,
		Active:       2,
		HighestLevel: 4,
		AverageScore: 71.6666667,
	}, nil)

	stats, err := svc.Stats(1)

	require.NoError(t, err)
	assert.Equal(t, uint(1), stats.UserID)
	assert.Equal(t, "ana", stats.Username)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Active)
	assert.Equal(t, 4, stats.HighestLevel)
	assert.Equal(t, "Advanced", stats.HighestLevelDisplay)
	assert.Equal(t, 71.67, stats.AverageScore)
}

func TestCertificationService_ChangeStatus(t *testing.T) {
	svc, m := createTestCertificationService()

	m.certs.On("GetByID", uint(5)).Return(&entity.Certification{ID: 5, Status: entity.CertStatusActive}, nil)
	m.certs.On("UpdateStatus", uint(5), entity.CertStatusActive, entity.CertStatusRevoked).Return(nil)

	cert, err := svc.ChangeStatus(5, "Revoked")

	require.NoError(t, err)
	assert.Equal(t, entity.CertStatusRevoked, cert.Status)
}

func TestCertificationService_ChangeStatus_IllegalTransition(t *testing.T) {
	svc, m := createTestCertificationService()

	m.certs.On("GetByID", uint(5)).Return(&entity.Certification{ID: 5, Status: entity.CertStatusRevoked}, nil)

	_, err := svc.ChangeStatus(5, entity.CertStatusActive)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	m.certs.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCertificationService_ChangeStatus_UnknownStatus(t *testing.T) {
	svc, m := createTestCertificationService()

	_, err := svc.ChangeStatus(5, "archived")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	m.certs.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestCertificationService_ChangeStatus_ConcurrentChange(t *testing.T) {
	svc, m := createTestCertificationService()

	// Прочитан active, но другой администратор уже отозвал сертификат
	m.certs.On("GetByID", uint(5)).Return(&entity.Certification{ID: 5, Status: entity.CertStatusActive}, nil)
	m.certs.On("UpdateStatus", uint(5), entity.CertStatusActive, entity.CertStatusExpired).
		Return(fmt.Errorf("%w: certification #5 status is revoked, expected active", apperrors.ErrConflict))

	cert, err := svc.ChangeStatus(5, entity.CertStatusExpired)

	assert.ErrorIs(t, err, apperrors.ErrConflict, "Устаревшее чтение не должно перезаписывать статус")
	assert.Nil(t, cert)
}

func TestCertificationService_ChangeStatus_Deleted(t *testing.T) {
	svc, m := createTestCertificationService()

	m.certs.On("GetByID", uint(5)).Return(&entity.Certification{ID: 5, Status: entity.CertStatusPending}, nil)
	m.certs.On("UpdateStatus", uint(5), entity.CertStatusPending, entity.CertStatusActive).Return(apperrors.ErrNotFound)

	_, err := svc.ChangeStatus(5, entity.CertStatusActive)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================================
// Кеш сводки
// ============================================================================

func TestCertificationService_Stats_CacheHit(t *testing.T) {
	svc, m := createCachedCertificationService()

	cached := CertificationStatsView{UserID: 1, Username: "ana", Total: 2, Active: 1, HighestLevel: 3}
	m.cache.On("GetJSON", "stats:certifications:1", mock.AnythingOfType("*service.CertificationStatsView")).
		Return(nil).
		Run(func(args mock.Arguments) {
			*args.Get(1).(*CertificationStatsView) = cached
		})

	stats, err := svc.Stats(1)

	require.NoError(t, err)
	assert.Equal(t, cached, *stats)
	m.users.AssertNotCalled(t, "GetByID", mock.Anything)
	m.certs.AssertNotCalled(t, "GetStatsByUser", mock.Anything)
}

func TestCertificationService_Stats_CacheMissStores(t *testing.T) {
	svc, m := createCachedCertificationService()

	m.cache.On("GetJSON", "stats:certifications:1", mock.Anything).Return(apperrors.ErrNotFound)
	m.users.On("GetByID", uint(1)).Return(testUser(), nil)
	m.certs.On("GetStatsByUser", uint(1)).Return(&entity.CertificationStats{Total: 1, Active: 1, HighestLevel: 2, AverageScore: 55}, nil)
	m.cache.On("SetJSON", "stats:certifications:1", mock.AnythingOfType("*service.CertificationStatsView"), statsCacheTTL).Return(nil)

	stats, err := svc.Stats(1)

	require.NoError(t, err)
	assert.Equal(t, "ana", stats.Username)
	m.cache.AssertCalled(t, "SetJSON", "stats:certifications:1", stats, statsCacheTTL)
}

func TestCertificationService_Stats_CacheErrorFallsBack(t *testing.T) {
	svc, m := createCachedCertificationService()

	m.cache.On("GetJSON", "stats:certifications:1", mock.Anything).Return(errors.New("redis down"))
	m.users.On("GetByID", uint(1)).Return(testUser(), nil)
	m.certs.On("GetStatsByUser", uint(1)).Return(&entity.CertificationStats{}, nil)
	m.cache.On("SetJSON", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	stats, err := svc.Stats(1)

	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)
}

func TestCertificationService_ChangeStatus_InvalidatesStats(t *testing.T) {
	svc, m := createCachedCertificationService()

	m.certs.On("GetByID", uint(5)).Return(&entity.Certification{ID: 5, UserID: 1, Status: entity.CertStatusActive}, nil)
	m.certs.On("UpdateStatus", uint(5), entity.CertStatusActive, entity.CertStatusRevoked).Return(nil)
	m.cache.On("Delete", []string{"stats:certifications:1"}).Return(nil)

	_, err := svc.ChangeStatus(5, entity.CertStatusRevoked)

	require.NoError(t, err)
	m.cache.AssertExpectations(t)
}

func TestCertificationService_ChangeStatus_ConflictKeepsStats(t *testing.T) {
	svc, m := createCachedCertificationService()

	m.certs.On("GetByID", uint(5)).Return(&entity.Certification{ID: 5, UserID: 1, Status: entity.CertStatusActive}, nil)
	m.certs.On("UpdateStatus", uint(5), entity.CertStatusActive, entity.CertStatusRevoked).Return(apperrors.ErrConflict)

	_, err := svc.ChangeStatus(5, entity.CertStatusRevoked)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	m.cache.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestCertificationService_Issue_InvalidatesStats(t *testing.T) {
	svc, m := createCachedCertificationService()

	m.users.On("GetByID", uint(1)).Return(testUser(), nil)
	m.results.On("ListAllByUser", uint(1)).Return([]entity.Result{{Score: 70}}, nil)
	m.certs.On("Create", mock.AnythingOfType("*entity.Certification")).Return(nil)
	m.cache.On("Delete", []string{"stats:certifications:1"}).Return(nil)
	expectIssueNotifications(m)

	_, err := svc.Issue(IssueCertificationInput{UserID: 1, Title: "Go"})

	require.NoError(t, err)
	m.cache.AssertExpectations(t)
}
