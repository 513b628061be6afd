package services

import (
	"context"
	"errors"

	"gatewarden/internal/common"
	"gatewarden/internal/models"
	"gatewarden/internal/recognition"
	"gatewarden/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Image is an uploaded image held in memory so it can be fed to a
// recognizer and archived afterwards.
type Image struct {
	Name string
	Data []byte
}

// EntryService runs the joint entry-verification protocol: plate OCR, face
// recognition, then a joined lookup requiring both to resolve to the same
// resident or guest record. Matching either independently is not enough; a
// stolen plate paired with an unrelated enrolled face must not open the gate.
type EntryService interface {
	VerifyEntry(ctx context.Context, plateImage, faceImage Image, actor uuid.UUID) (*models.VerificationResult, error)
}

type entryService struct {
	ocr       recognition.PlateReader
	faces     recognition.FaceRecognizer
	residents repositories.ResidentRepository
	guests    repositories.GuestRepository
	audit     AuditLogsService
	log       *logrus.Logger
}

func NewEntryService(
	ocr recognition.PlateReader,
	faces recognition.FaceRecognizer,
	residents repositories.ResidentRepository,
	guests repositories.GuestRepository,
	audit AuditLogsService,
	log *logrus.Logger,
) EntryService {
	return &entryService{
		ocr:       ocr,
		faces:     faces,
		residents: residents,
		guests:    guests,
		audit:     audit,
		log:       log,
	}
}

// VerifyEntry short-circuits in strict order: OCR, face recognition, joint
// lookup. No guest mutation happens before both recognitions succeed and the
// joint lookup matches. On a failed face recognition the returned result
// still carries the demographics for manual review.
func (s *entryService) VerifyEntry(ctx context.Context, plateImage, faceImage Image, actor uuid.UUID) (*models.VerificationResult, error) {
	plateResult, err := s.ocr.ReadPlate(ctx, plateImage.Name, plateImage.Data)
	if err != nil {
		if errors.Is(err, common.ErrPlateUnreadable) {
			s.record(ctx, actor, models.EntryVerificationPayload{
				Status: models.AuditStatusFailed,
				Reason: models.ReasonPlateRecognitionFailed,
			})
		}
		return nil, err
	}
	plate := plateResult.Plate

	faceResult, err := s.faces.Recognize(ctx, faceImage.Name, faceImage.Data)
	if err != nil {
		return nil, err
	}
	if faceResult.ID == recognition.UnknownIdentity {
		s.record(ctx, actor, models.EntryVerificationPayload{
			Plate:  plate,
			Status: models.AuditStatusFailed,
			Reason: models.ReasonFaceNotRecognized,
		})
		return &models.VerificationResult{Demographics: faceResult.Demographics}, common.ErrFaceNotRecognized
	}

	if identity, idErr := uuid.Parse(faceResult.ID); idErr == nil {
		resident, err := s.residents.FindEntryMatch(ctx, plate, identity)
		if err != nil {
			return nil, err
		}
		if resident != nil {
			s.record(ctx, actor, models.EntryVerificationPayload{
				Plate:          plate,
				Status:         models.AuditStatusResidentAccess,
				UserID:         &resident.UserID,
				FaceConfidence: &faceResult.Confidence,
			})
			return &models.VerificationResult{
				Type:           models.MatchTypeResident,
				Plate:          plate,
				UserID:         resident.UserID,
				ResidentID:     resident.ID,
				FaceConfidence: faceResult.Confidence,
				Demographics:   faceResult.Demographics,
			}, nil
		}

		guest, err := s.guests.FindEntryMatch(ctx, plate, identity)
		if err != nil {
			return nil, err
		}
		if guest != nil {
			arrived, err := s.guests.MarkArrived(ctx, guest.ID)
			if err != nil {
				return nil, err
			}
			if arrived {
				s.record(ctx, actor, models.EntryVerificationPayload{
					Plate:          plate,
					Status:         models.AuditStatusGuestArrived,
					GuestID:        &guest.ID,
					ResidentID:     &guest.ResidentID,
					FaceConfidence: &faceResult.Confidence,
				})
				return &models.VerificationResult{
					Type:           models.MatchTypeGuest,
					Plate:          plate,
					GuestID:        guest.ID,
					ResidentID:     guest.ResidentID,
					FaceConfidence: faceResult.Confidence,
					Demographics:   faceResult.Demographics,
				}, nil
			}
			// Concurrent arrival won the conditional update; this request
			// resolves as no match.
		}
	}

	s.record(ctx, actor, models.EntryVerificationPayload{
		Plate:  plate,
		FaceID: faceResult.ID,
		Status: models.AuditStatusFailed,
		Reason: models.ReasonNoMatch,
	})
	return nil, common.Wrap(common.ErrNoMatch, "plate and face do not match any resident or guest")
}

func (s *entryService) record(ctx context.Context, actor uuid.UUID, payload models.EntryVerificationPayload) {
	if err := s.audit.Record(ctx, &actor, payload); err != nil {
		s.log.WithError(err).Error("failed to append entry_verification audit entry")
	}
}
