package repositories

import (
	"context"
	"errors"

	"gatewarden/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CarRepository interface {
	Create(ctx context.Context, car *models.Car) error
	GetByPlate(ctx context.Context, plate string) (*models.Car, error)
	ListByResident(ctx context.Context, residentID uuid.UUID) ([]*models.Car, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type carRepo struct {
	db DB
}

func NewCarRepo(db DB) CarRepository {
	return &carRepo{db: db}
}

func (r *carRepo) Create(ctx context.Context, car *models.Car) error {
	query := `
		INSERT INTO cars (id, resident_id, license_plate, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := r.db.Exec(ctx, query, car.ID, car.ResidentID, car.LicensePlate)
	return err
}

// GetByPlate returns the car registered under the given plate, or nil when
// no car matches. Absence is a domain value for the matchers, not an error.
func (r *carRepo) GetByPlate(ctx context.Context, plate string) (*models.Car, error) {
	car := &models.Car{}
	query := `
		SELECT id, resident_id, license_plate, created_at
		FROM cars
		WHERE license_plate = $1
	`
	err := r.db.QueryRow(ctx, query, plate).Scan(&car.ID, &car.ResidentID, &car.LicensePlate, &car.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return car, nil
}

func (r *carRepo) ListByResident(ctx context.Context, residentID uuid.UUID) ([]*models.Car, error) {
	query := `
		SELECT id, resident_id, license_plate, created_at
		FROM cars
		WHERE resident_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, residentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []*models.Car
	for rows.Next() {
		car := &models.Car{}
		if err := rows.Scan(&car.ID, &car.ResidentID, &car.LicensePlate, &car.CreatedAt); err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}
	return cars, rows.Err()
}

func (r *carRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM cars WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
