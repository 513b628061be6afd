package services

import (
	"context"
	"testing"
	"time"

	"gatewarden/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type mockAuditLogsRepo struct {
	mock.Mock
}

func (m *mockAuditLogsRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditLogsRepo) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filters)
	entries, _ := args.Get(0).([]*models.AuditLog)
	return entries, args.Error(1)
}

func (m *mockAuditLogsRepo) Summary(ctx context.Context, since time.Time) (map[string]int, error) {
	args := m.Called(ctx, since)
	summary, _ := args.Get(0).(map[string]int)
	return summary, args.Error(1)
}

type AuditLogsServiceTestSuite struct {
	suite.Suite
	repo    *mockAuditLogsRepo
	service AuditLogsService
	actorID uuid.UUID
	context context.Context
}

func (suite *AuditLogsServiceTestSuite) SetupTest() {
	suite.repo = new(mockAuditLogsRepo)
	suite.service = NewAuditLogsService(suite.repo)
	suite.actorID = uuid.New()
	suite.context = context.Background()
}

func TestAuditLogsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuditLogsServiceTestSuite))
}

func (suite *AuditLogsServiceTestSuite) TestRecord_ValidPayload() {
	var captured *models.AuditLog
	suite.repo.On("Create", suite.context, mock.AnythingOfType("*models.AuditLog")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*models.AuditLog)
		}).
		Return(nil)

	payload := models.PlateRecognitionPayload{Plate: "ABC123", Status: models.AuditStatusUnknown}
	err := suite.service.Record(suite.context, &suite.actorID, payload)
	require.NoError(suite.T(), err)

	require.NotNil(suite.T(), captured)
	assert.Equal(suite.T(), models.CategoryPlateRecognition, captured.Category)
	assert.Equal(suite.T(), &suite.actorID, captured.Actor)
	assert.Equal(suite.T(), "ABC123", captured.Payload["plate"])
	assert.Equal(suite.T(), "unknown", captured.Payload["status"])
}

func (suite *AuditLogsServiceTestSuite) TestRecord_RejectsInvalidStatus() {
	payload := models.PlateRecognitionPayload{Plate: "ABC123", Status: "granted"}
	err := suite.service.Record(suite.context, &suite.actorID, payload)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "audit payload rejected")
	suite.repo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *AuditLogsServiceTestSuite) TestRecord_RejectsFailureWithoutReason() {
	payload := models.EntryVerificationPayload{Status: models.AuditStatusFailed}
	err := suite.service.Record(suite.context, &suite.actorID, payload)
	assert.Error(suite.T(), err)
	suite.repo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *AuditLogsServiceTestSuite) TestRecord_EntryVerificationFailureReasons() {
	suite.repo.On("Create", suite.context, mock.AnythingOfType("*models.AuditLog")).Return(nil)

	for _, reason := range []string{
		models.ReasonPlateRecognitionFailed,
		models.ReasonFaceNotRecognized,
		models.ReasonNoMatch,
	} {
		payload := models.EntryVerificationPayload{Status: models.AuditStatusFailed, Reason: reason}
		err := suite.service.Record(suite.context, nil, payload)
		assert.NoError(suite.T(), err)
	}
}

func (suite *AuditLogsServiceTestSuite) TestRecord_OmitsEmptyOptionalFields() {
	var captured *models.AuditLog
	suite.repo.On("Create", suite.context, mock.AnythingOfType("*models.AuditLog")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*models.AuditLog)
		}).
		Return(nil)

	payload := models.FaceRecognitionPayload{Status: models.AuditStatusUnknown}
	err := suite.service.Record(suite.context, nil, payload)
	require.NoError(suite.T(), err)

	require.NotNil(suite.T(), captured)
	assert.NotContains(suite.T(), captured.Payload, "user_id")
	assert.NotContains(suite.T(), captured.Payload, "confidence")
}

func (suite *AuditLogsServiceTestSuite) TestList_DefaultsLimit() {
	suite.repo.On("List", suite.context, mock.MatchedBy(func(f *models.AuditLogFilters) bool {
		return f.Limit == 50
	})).Return([]*models.AuditLog{}, nil)

	_, err := suite.service.List(suite.context, nil)
	assert.NoError(suite.T(), err)

	_, err = suite.service.List(suite.context, &models.AuditLogFilters{Limit: 100000})
	assert.NoError(suite.T(), err)
}
