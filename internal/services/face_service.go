package services

import (
	"context"

	"gatewarden/internal/common"
	"gatewarden/internal/models"
	"gatewarden/internal/recognition"
	"gatewarden/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FaceService decides whether a recognized identity token belongs to a
// resident with enrolled face data or a pending guest, advancing the
// guest's status on a match. The caller must have verified that the actor
// holds the gatekeeper role before invoking it.
type FaceService interface {
	MatchFace(ctx context.Context, token string, confidence float64, demographics models.Demographics, actor *uuid.UUID) (*models.MatchResult, error)
}

type faceService struct {
	residents repositories.ResidentRepository
	guests    repositories.GuestRepository
	audit     AuditLogsService
	log       *logrus.Logger
}

func NewFaceService(residents repositories.ResidentRepository, guests repositories.GuestRepository, audit AuditLogsService, log *logrus.Logger) FaceService {
	return &faceService{residents: residents, guests: guests, audit: audit, log: log}
}

func (s *faceService) MatchFace(ctx context.Context, token string, confidence float64, demographics models.Demographics, actor *uuid.UUID) (*models.MatchResult, error) {
	if token == recognition.UnknownIdentity {
		s.record(ctx, actor, models.FaceRecognitionPayload{
			Status:       models.AuditStatusUnknown,
			Demographics: &demographics,
		})
		return &models.MatchResult{Type: models.MatchTypeUnknown}, common.ErrFaceNotRecognized
	}

	identity, err := uuid.Parse(token)
	if err != nil {
		// A token that is not one of our ids cannot match any record.
		return &models.MatchResult{Type: models.MatchTypeUnknown},
			common.Wrap(common.ErrNoMatch, "recognized face not in residents or guests")
	}

	resident, err := s.residents.GetByUserIDWithFace(ctx, identity)
	if err != nil {
		return nil, err
	}
	if resident != nil {
		s.record(ctx, actor, models.FaceRecognitionPayload{
			Status:       models.AuditStatusResidentAccess,
			UserID:       &resident.UserID,
			ResidentID:   &resident.ID,
			Confidence:   &confidence,
			Demographics: &demographics,
		})
		return &models.MatchResult{
			Type:       models.MatchTypeResident,
			UserID:     resident.UserID,
			ResidentID: resident.ID,
		}, nil
	}

	guest, err := s.guests.GetPendingByIDWithFace(ctx, identity)
	if err != nil {
		return nil, err
	}
	if guest != nil {
		arrived, err := s.guests.MarkArrived(ctx, guest.ID)
		if err != nil {
			return nil, err
		}
		if arrived {
			s.record(ctx, actor, models.FaceRecognitionPayload{
				Status:       models.AuditStatusGuestArrived,
				GuestID:      &guest.ID,
				ResidentID:   &guest.ResidentID,
				Confidence:   &confidence,
				Demographics: &demographics,
			})
			return &models.MatchResult{
				Type:       models.MatchTypeGuest,
				GuestID:    guest.ID,
				ResidentID: guest.ResidentID,
			}, nil
		}
	}

	return &models.MatchResult{Type: models.MatchTypeUnknown},
		common.Wrap(common.ErrNoMatch, "recognized face not in residents or guests")
}

func (s *faceService) record(ctx context.Context, actor *uuid.UUID, payload models.FaceRecognitionPayload) {
	if err := s.audit.Record(ctx, actor, payload); err != nil {
		s.log.WithError(err).Error("failed to append face_recognition audit entry")
	}
}
