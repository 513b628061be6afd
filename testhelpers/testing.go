package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gatewarden/internal/models"
)

// TestDB holds the database connection for integration testing.
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB creates a pooled connection for testing.
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
		if connString == "" {
			connString = "host=localhost port=5432 user=postgres password=postgres dbname=gatewarden_test sslmode=disable"
		}
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestUser inserts a user row with the given role.
func SetupTestUser(t *testing.T, db *TestDB, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	query := `
		INSERT INTO users (id, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`
	email := userID.String() + "@test.local"
	_, err := db.Pool.Exec(context.Background(), query, userID, email, "x", role, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID
}

// SetupTestResident inserts a resident row backed by a fresh user.
func SetupTestResident(t *testing.T, db *TestDB, faceRef *string) *models.Resident {
	t.Helper()

	userID := SetupTestUser(t, db, models.RoleResident)
	resident := &models.Resident{
		ID:        uuid.New(),
		UserID:    userID,
		FaceRef:   faceRef,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO residents (id, user_id, face_ref, unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		resident.ID, resident.UserID, resident.FaceRef, resident.Unit, resident.CreatedAt, resident.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test resident: %v", err)
	}

	return resident
}

// SetupTestCar registers a plate for the given resident.
func SetupTestCar(t *testing.T, db *TestDB, residentID uuid.UUID, plate string) *models.Car {
	t.Helper()

	car := &models.Car{
		ID:           uuid.New(),
		ResidentID:   residentID,
		LicensePlate: plate,
		CreatedAt:    time.Now(),
	}

	query := `
		INSERT INTO cars (id, resident_id, license_plate, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := db.Pool.Exec(context.Background(), query, car.ID, car.ResidentID, car.LicensePlate, car.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test car: %v", err)
	}

	return car
}

// SetupTestGuest invites a pending guest for the given resident.
func SetupTestGuest(t *testing.T, db *TestDB, residentID uuid.UUID, plate, faceRef *string) *models.Guest {
	t.Helper()

	guest := &models.Guest{
		ID:           uuid.New(),
		ResidentID:   residentID,
		Name:         "Test Guest",
		LicensePlate: plate,
		FaceRef:      faceRef,
		Status:       models.GuestStatusPending,
		CreatedAt:    time.Now(),
	}

	query := `
		INSERT INTO guests (id, resident_id, name, license_plate, face_ref, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		guest.ID, guest.ResidentID, guest.Name, guest.LicensePlate, guest.FaceRef, guest.Status, guest.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test guest: %v", err)
	}

	return guest
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
