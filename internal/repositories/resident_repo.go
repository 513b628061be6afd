package repositories

import (
	"context"
	"errors"

	"gatewarden/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ResidentRepository interface {
	Create(ctx context.Context, resident *models.Resident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Resident, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Resident, error)

	// GetByUserIDWithFace returns the resident for the given user only when
	// a face reference is enrolled. Nil result means no match.
	GetByUserIDWithFace(ctx context.Context, userID uuid.UUID) (*models.Resident, error)

	// FindEntryMatch is the joint lookup of the entry-verification protocol:
	// a single joined query requiring the plate and the recognized identity
	// to resolve to the same resident with enrolled face data.
	FindEntryMatch(ctx context.Context, plate string, userID uuid.UUID) (*models.Resident, error)

	UpdateFaceRef(ctx context.Context, id uuid.UUID, faceRef *string) error
	List(ctx context.Context, limit, offset int) ([]*models.Resident, error)
}

type residentRepo struct {
	db DB
}

func NewResidentRepo(db DB) ResidentRepository {
	return &residentRepo{db: db}
}

func (r *residentRepo) Create(ctx context.Context, resident *models.Resident) error {
	query := `
		INSERT INTO residents (id, user_id, face_ref, unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, resident.ID, resident.UserID, resident.FaceRef, resident.Unit)
	return err
}

func (r *residentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Resident, error) {
	query := `
		SELECT id, user_id, face_ref, unit, created_at, updated_at
		FROM residents
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *residentRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Resident, error) {
	query := `
		SELECT id, user_id, face_ref, unit, created_at, updated_at
		FROM residents
		WHERE user_id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, userID))
}

func (r *residentRepo) GetByUserIDWithFace(ctx context.Context, userID uuid.UUID) (*models.Resident, error) {
	query := `
		SELECT id, user_id, face_ref, unit, created_at, updated_at
		FROM residents
		WHERE user_id = $1 AND face_ref IS NOT NULL
	`
	return r.scanOne(r.db.QueryRow(ctx, query, userID))
}

func (r *residentRepo) FindEntryMatch(ctx context.Context, plate string, userID uuid.UUID) (*models.Resident, error) {
	query := `
		SELECT r.id, r.user_id, r.face_ref, r.unit, r.created_at, r.updated_at
		FROM cars c
		JOIN residents r ON c.resident_id = r.id
		WHERE c.license_plate = $1 AND r.user_id = $2 AND r.face_ref IS NOT NULL
	`
	return r.scanOne(r.db.QueryRow(ctx, query, plate, userID))
}

func (r *residentRepo) UpdateFaceRef(ctx context.Context, id uuid.UUID, faceRef *string) error {
	query := `
		UPDATE residents
		SET face_ref = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, faceRef, id)
	return err
}

func (r *residentRepo) List(ctx context.Context, limit, offset int) ([]*models.Resident, error) {
	query := `
		SELECT id, user_id, face_ref, unit, created_at, updated_at
		FROM residents
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var residents []*models.Resident
	for rows.Next() {
		resident := &models.Resident{}
		if err := rows.Scan(&resident.ID, &resident.UserID, &resident.FaceRef, &resident.Unit, &resident.CreatedAt, &resident.UpdatedAt); err != nil {
			return nil, err
		}
		residents = append(residents, resident)
	}
	return residents, rows.Err()
}

func (r *residentRepo) scanOne(row pgx.Row) (*models.Resident, error) {
	resident := &models.Resident{}
	err := row.Scan(&resident.ID, &resident.UserID, &resident.FaceRef, &resident.Unit, &resident.CreatedAt, &resident.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return resident, nil
}
