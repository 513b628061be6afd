package repositories

import (
	"context"
	"errors"

	"gatewarden/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type GuestRepository interface {
	Create(ctx context.Context, guest *models.Guest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Guest, error)

	// GetPendingByPlate returns the pending guest invited under the given
	// plate. Guests that have already arrived are never returned.
	GetPendingByPlate(ctx context.Context, plate string) (*models.Guest, error)

	// GetPendingByIDWithFace returns the pending guest with the given id
	// only when a face reference is enrolled.
	GetPendingByIDWithFace(ctx context.Context, id uuid.UUID) (*models.Guest, error)

	// FindEntryMatch is the joint lookup of the entry-verification protocol:
	// plate and recognized identity must resolve to the same pending guest
	// with enrolled face data.
	FindEntryMatch(ctx context.Context, plate string, id uuid.UUID) (*models.Guest, error)

	// MarkArrived transitions a guest pending -> arrived and stamps the
	// arrival time. The update is conditioned on the status still being
	// pending, so a concurrent arrival observes false and must re-resolve
	// as no match.
	MarkArrived(ctx context.Context, id uuid.UUID) (bool, error)

	ListByResident(ctx context.Context, residentID uuid.UUID) ([]*models.Guest, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type guestRepo struct {
	db DB
}

func NewGuestRepo(db DB) GuestRepository {
	return &guestRepo{db: db}
}

const guestColumns = `id, resident_id, name, license_plate, face_ref, status, arrival_time, created_at`

func (r *guestRepo) Create(ctx context.Context, guest *models.Guest) error {
	query := `
		INSERT INTO guests (id, resident_id, name, license_plate, face_ref, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, guest.ID, guest.ResidentID, guest.Name, guest.LicensePlate, guest.FaceRef, guest.Status)
	return err
}

func (r *guestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *guestRepo) GetPendingByPlate(ctx context.Context, plate string) (*models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE license_plate = $1 AND status = 'pending'`
	return r.scanOne(r.db.QueryRow(ctx, query, plate))
}

func (r *guestRepo) GetPendingByIDWithFace(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1 AND face_ref IS NOT NULL AND status = 'pending'`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *guestRepo) FindEntryMatch(ctx context.Context, plate string, id uuid.UUID) (*models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE license_plate = $1 AND id = $2 AND status = 'pending' AND face_ref IS NOT NULL`
	return r.scanOne(r.db.QueryRow(ctx, query, plate, id))
}

func (r *guestRepo) MarkArrived(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE guests
		SET status = 'arrived', arrival_time = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *guestRepo) ListByResident(ctx context.Context, residentID uuid.UUID) ([]*models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE resident_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, residentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guests []*models.Guest
	for rows.Next() {
		guest := &models.Guest{}
		if err := rows.Scan(&guest.ID, &guest.ResidentID, &guest.Name, &guest.LicensePlate, &guest.FaceRef, &guest.Status, &guest.ArrivalTime, &guest.CreatedAt); err != nil {
			return nil, err
		}
		guests = append(guests, guest)
	}
	return guests, rows.Err()
}

func (r *guestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM guests WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *guestRepo) scanOne(row pgx.Row) (*models.Guest, error) {
	guest := &models.Guest{}
	err := row.Scan(&guest.ID, &guest.ResidentID, &guest.Name, &guest.LicensePlate, &guest.FaceRef, &guest.Status, &guest.ArrivalTime, &guest.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return guest, nil
}
