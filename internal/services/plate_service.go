package services

import (
	"context"

	"gatewarden/internal/models"
	"gatewarden/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PlateService decides whether a recognized plate belongs to a resident's
// car or a pending guest, advancing the guest's status on a match.
type PlateService interface {
	MatchPlate(ctx context.Context, plate string, actor *uuid.UUID) (*models.MatchResult, error)
}

type plateService struct {
	cars   repositories.CarRepository
	guests repositories.GuestRepository
	audit  AuditLogsService
	log    *logrus.Logger
}

func NewPlateService(cars repositories.CarRepository, guests repositories.GuestRepository, audit AuditLogsService, log *logrus.Logger) PlateService {
	return &plateService{cars: cars, guests: guests, audit: audit, log: log}
}

// MatchPlate checks residents' cars first, then pending guests. First match
// wins; every outcome, including unknown, produces exactly one audit entry.
func (s *plateService) MatchPlate(ctx context.Context, plate string, actor *uuid.UUID) (*models.MatchResult, error) {
	car, err := s.cars.GetByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}
	if car != nil {
		s.record(ctx, actor, models.PlateRecognitionPayload{
			Plate:      plate,
			Status:     models.AuditStatusResidentAccess,
			ResidentID: &car.ResidentID,
		})
		return &models.MatchResult{Type: models.MatchTypeResident, ResidentID: car.ResidentID}, nil
	}

	guest, err := s.guests.GetPendingByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}
	if guest != nil {
		arrived, err := s.guests.MarkArrived(ctx, guest.ID)
		if err != nil {
			return nil, err
		}
		if arrived {
			s.record(ctx, actor, models.PlateRecognitionPayload{
				Plate:      plate,
				Status:     models.AuditStatusGuestArrived,
				GuestID:    &guest.ID,
				ResidentID: &guest.ResidentID,
			})
			return &models.MatchResult{Type: models.MatchTypeGuest, GuestID: guest.ID, ResidentID: guest.ResidentID}, nil
		}
		// Lost the race against a concurrent arrival; the guest is no
		// longer pending, so resolve as unknown.
	}

	s.record(ctx, actor, models.PlateRecognitionPayload{
		Plate:  plate,
		Status: models.AuditStatusUnknown,
	})
	return &models.MatchResult{Type: models.MatchTypeUnknown}, nil
}

func (s *plateService) record(ctx context.Context, actor *uuid.UUID, payload models.PlateRecognitionPayload) {
	if err := s.audit.Record(ctx, actor, payload); err != nil {
		s.log.WithError(err).Error("failed to append plate_recognition audit entry")
	}
}
