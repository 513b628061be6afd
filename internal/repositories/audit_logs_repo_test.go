package repositories

import (
	"context"
	"testing"
	"time"

	"gatewarden/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AuditLogsRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    AuditLogsRepository
	actorID uuid.UUID
	context context.Context
}

func (suite *AuditLogsRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewAuditLogsRepo(mock)
	suite.actorID = uuid.New()
	suite.context = context.Background()
}

func (suite *AuditLogsRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestAuditLogsRepoTestSuite(t *testing.T) {
	suite.Run(t, new(AuditLogsRepoTestSuite))
}

func (suite *AuditLogsRepoTestSuite) TestCreate_StampsIDAndCreatedAt() {
	entry := &models.AuditLog{
		Actor:    &suite.actorID,
		Category: models.CategoryPlateRecognition,
		Payload:  models.JSONB{"plate": "ABC123", "status": "unknown"},
	}

	suite.mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(pgxmock.AnyArg(), entry.Actor, entry.Category, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, entry)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, entry.ID)
	assert.False(suite.T(), entry.CreatedAt.IsZero())
}

func (suite *AuditLogsRepoTestSuite) TestCreate_AnonymousActor() {
	entry := &models.AuditLog{
		Category: models.CategoryEntryVerification,
		Payload:  models.JSONB{"status": "failed", "reason": "no_match"},
	}

	suite.mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(pgxmock.AnyArg(), (*uuid.UUID)(nil), entry.Category, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, entry)
	assert.NoError(suite.T(), err)
}

func (suite *AuditLogsRepoTestSuite) TestList_ByCategory() {
	category := models.CategoryEntryVerification
	rows := pgxmock.NewRows([]string{"id", "actor", "category", "payload", "created_at"}).
		AddRow(uuid.New(), &suite.actorID, category, []byte(`{"plate":"ABC123","status":"resident_access"}`), time.Now())

	suite.mock.ExpectQuery(`SELECT id, actor, category, payload, created_at\s+FROM audit_logs\s+WHERE 1=1\s+AND category = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(category, 50).
		WillReturnRows(rows)

	entries, err := suite.repo.List(suite.context, &models.AuditLogFilters{Category: &category, Limit: 50})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), entries, 1)
	assert.Equal(suite.T(), category, entries[0].Category)
	assert.Equal(suite.T(), "ABC123", entries[0].Payload["plate"])
}

func (suite *AuditLogsRepoTestSuite) TestList_DateRange() {
	start := time.Now().Add(-24 * time.Hour)
	end := time.Now()
	rows := pgxmock.NewRows([]string{"id", "actor", "category", "payload", "created_at"})

	suite.mock.ExpectQuery(`AND created_at >= \$1 AND created_at <= \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs(start, end, 100).
		WillReturnRows(rows)

	entries, err := suite.repo.List(suite.context, &models.AuditLogFilters{StartDate: &start, EndDate: &end, Limit: 100})
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), entries)
}

func (suite *AuditLogsRepoTestSuite) TestSummary() {
	since := time.Now().Add(-24 * time.Hour)
	rows := pgxmock.NewRows([]string{"category", "count"}).
		AddRow(models.CategoryPlateRecognition, 12).
		AddRow(models.CategoryEntryVerification, 3)

	suite.mock.ExpectQuery(`SELECT category, COUNT\(\*\)\s+FROM audit_logs\s+WHERE created_at >= \$1\s+GROUP BY category`).
		WithArgs(since).
		WillReturnRows(rows)

	summary, err := suite.repo.Summary(suite.context, since)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 12, summary[models.CategoryPlateRecognition])
	assert.Equal(suite.T(), 3, summary[models.CategoryEntryVerification])
}
