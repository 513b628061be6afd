package services

import (
	"context"
	"time"

	"gatewarden/internal/models"
	"gatewarden/internal/recognition"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockCarRepo struct {
	mock.Mock
}

func (m *mockCarRepo) Create(ctx context.Context, car *models.Car) error {
	return m.Called(ctx, car).Error(0)
}

func (m *mockCarRepo) GetByPlate(ctx context.Context, plate string) (*models.Car, error) {
	args := m.Called(ctx, plate)
	car, _ := args.Get(0).(*models.Car)
	return car, args.Error(1)
}

func (m *mockCarRepo) ListByResident(ctx context.Context, residentID uuid.UUID) ([]*models.Car, error) {
	args := m.Called(ctx, residentID)
	cars, _ := args.Get(0).([]*models.Car)
	return cars, args.Error(1)
}

func (m *mockCarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockGuestRepo struct {
	mock.Mock
}

func (m *mockGuestRepo) Create(ctx context.Context, guest *models.Guest) error {
	return m.Called(ctx, guest).Error(0)
}

func (m *mockGuestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	args := m.Called(ctx, id)
	guest, _ := args.Get(0).(*models.Guest)
	return guest, args.Error(1)
}

func (m *mockGuestRepo) GetPendingByPlate(ctx context.Context, plate string) (*models.Guest, error) {
	args := m.Called(ctx, plate)
	guest, _ := args.Get(0).(*models.Guest)
	return guest, args.Error(1)
}

func (m *mockGuestRepo) GetPendingByIDWithFace(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	args := m.Called(ctx, id)
	guest, _ := args.Get(0).(*models.Guest)
	return guest, args.Error(1)
}

func (m *mockGuestRepo) FindEntryMatch(ctx context.Context, plate string, id uuid.UUID) (*models.Guest, error) {
	args := m.Called(ctx, plate, id)
	guest, _ := args.Get(0).(*models.Guest)
	return guest, args.Error(1)
}

func (m *mockGuestRepo) MarkArrived(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockGuestRepo) ListByResident(ctx context.Context, residentID uuid.UUID) ([]*models.Guest, error) {
	args := m.Called(ctx, residentID)
	guests, _ := args.Get(0).([]*models.Guest)
	return guests, args.Error(1)
}

func (m *mockGuestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockResidentRepo struct {
	mock.Mock
}

func (m *mockResidentRepo) Create(ctx context.Context, resident *models.Resident) error {
	return m.Called(ctx, resident).Error(0)
}

func (m *mockResidentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Resident, error) {
	args := m.Called(ctx, id)
	resident, _ := args.Get(0).(*models.Resident)
	return resident, args.Error(1)
}

func (m *mockResidentRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Resident, error) {
	args := m.Called(ctx, userID)
	resident, _ := args.Get(0).(*models.Resident)
	return resident, args.Error(1)
}

func (m *mockResidentRepo) GetByUserIDWithFace(ctx context.Context, userID uuid.UUID) (*models.Resident, error) {
	args := m.Called(ctx, userID)
	resident, _ := args.Get(0).(*models.Resident)
	return resident, args.Error(1)
}

func (m *mockResidentRepo) FindEntryMatch(ctx context.Context, plate string, userID uuid.UUID) (*models.Resident, error) {
	args := m.Called(ctx, plate, userID)
	resident, _ := args.Get(0).(*models.Resident)
	return resident, args.Error(1)
}

func (m *mockResidentRepo) UpdateFaceRef(ctx context.Context, id uuid.UUID, faceRef *string) error {
	return m.Called(ctx, id, faceRef).Error(0)
}

func (m *mockResidentRepo) List(ctx context.Context, limit, offset int) ([]*models.Resident, error) {
	args := m.Called(ctx, limit, offset)
	residents, _ := args.Get(0).([]*models.Resident)
	return residents, args.Error(1)
}

// recordingAuditService captures every recorded payload so tests can assert
// on the exact audit trail a decision produced.
type recordingAuditService struct {
	entries []recordedAudit
	err     error
}

type recordedAudit struct {
	Actor   *uuid.UUID
	Payload models.AuditPayload
}

func (s *recordingAuditService) Record(ctx context.Context, actor *uuid.UUID, payload models.AuditPayload) error {
	if err := payload.Validate(); err != nil {
		return err
	}
	s.entries = append(s.entries, recordedAudit{Actor: actor, Payload: payload})
	return s.err
}

func (s *recordingAuditService) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	return nil, nil
}

func (s *recordingAuditService) Summary(ctx context.Context, since time.Time) (map[string]int, error) {
	return nil, nil
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) SetSession(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	return m.Called(ctx, tokenID, userID, ttl).Error(0)
}

func (m *mockCache) GetSession(ctx context.Context, tokenID string) (string, error) {
	args := m.Called(ctx, tokenID)
	return args.String(0), args.Error(1)
}

func (m *mockCache) DeleteSession(ctx context.Context, tokenID string) error {
	return m.Called(ctx, tokenID).Error(0)
}

func (m *mockCache) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	return m.Called(ctx, key, window).Error(0)
}

func (m *mockCache) AcquireGateCooldown(ctx context.Context, plate string, window time.Duration) (bool, error) {
	args := m.Called(ctx, plate, window)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockCache) Close() error {
	return m.Called().Error(0)
}

type mockPlateReader struct {
	mock.Mock
}

func (m *mockPlateReader) ReadPlate(ctx context.Context, filename string, image []byte) (*recognition.PlateResult, error) {
	args := m.Called(ctx, filename, image)
	result, _ := args.Get(0).(*recognition.PlateResult)
	return result, args.Error(1)
}

type mockFaceRecognizer struct {
	mock.Mock
}

func (m *mockFaceRecognizer) Recognize(ctx context.Context, filename string, image []byte) (*recognition.FaceResult, error) {
	args := m.Called(ctx, filename, image)
	result, _ := args.Get(0).(*recognition.FaceResult)
	return result, args.Error(1)
}
