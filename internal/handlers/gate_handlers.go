package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"gatewarden/internal/caching"
	"gatewarden/internal/common"
	"gatewarden/internal/models"
	"gatewarden/internal/recognition"
	"gatewarden/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// GateHandlers exposes the gatekeeper-facing recognition endpoints. The
// decision logic lives in the services; this layer handles uploads, maps
// error variants to response codes, and archives snapshots.
type GateHandlers struct {
	ocr       recognition.PlateReader
	faces     recognition.FaceRecognizer
	plateSvc  services.PlateService
	faceSvc   services.FaceService
	entrySvc  services.EntryService
	snapshots services.SnapshotService
	cache     caching.CacheService
	cooldown  time.Duration
	log       *logrus.Logger
}

func NewGateHandlers(
	ocr recognition.PlateReader,
	faces recognition.FaceRecognizer,
	plateSvc services.PlateService,
	faceSvc services.FaceService,
	entrySvc services.EntryService,
	snapshots services.SnapshotService,
	cache caching.CacheService,
	cooldown time.Duration,
	log *logrus.Logger,
) *GateHandlers {
	return &GateHandlers{
		ocr:       ocr,
		faces:     faces,
		plateSvc:  plateSvc,
		faceSvc:   faceSvc,
		entrySvc:  entrySvc,
		snapshots: snapshots,
		cache:     cache,
		cooldown:  cooldown,
		log:       log,
	}
}

// RecognizePlate handles POST /gate/plate: OCR the uploaded plate image and
// match it against residents' cars and pending guests.
func (h *GateHandlers) RecognizePlate(c echo.Context) error {
	ctx := c.Request().Context()

	img, err := readImage(c, "plate_image")
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "No image file provided")
	}

	result, err := h.ocr.ReadPlate(ctx, img.Name, img.Data)
	if err != nil {
		if errors.Is(err, common.ErrPlateUnreadable) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
		}
		h.log.WithError(err).Error("plate ocr collaborator failed")
		return common.SendDomainError(c, err)
	}

	// Cameras fire several times for one vehicle; suppress duplicate reads
	// of the same plate inside the cooldown window.
	if h.cooldown > 0 {
		fresh, cdErr := h.cache.AcquireGateCooldown(ctx, result.Plate, h.cooldown)
		if cdErr != nil {
			h.log.WithError(cdErr).Warn("gate cooldown check failed, processing anyway")
		} else if !fresh {
			return common.SendError(c, http.StatusTooManyRequests, "duplicate plate read")
		}
	}

	actor := actorFromContext(ctx)
	match, err := h.plateSvc.MatchPlate(ctx, result.Plate, actor)
	if err != nil {
		h.log.WithError(err).Error("plate match failed")
		return common.SendDomainError(c, err)
	}

	h.archive(ctx, "plate", img)

	resp := echo.Map{
		"success":    true,
		"plate_text": result.Plate,
		"type":       match.Type,
	}
	switch match.Type {
	case models.MatchTypeResident:
		resp["resident_id"] = match.ResidentID
	case models.MatchTypeGuest:
		resp["guest_id"] = match.GuestID
		resp["resident_id"] = match.ResidentID
	}
	return c.JSON(http.StatusOK, resp)
}

// RecognizeFace handles POST /gate/face: identify the uploaded face image
// and match it against residents and pending guests with enrolled faces.
func (h *GateHandlers) RecognizeFace(c echo.Context) error {
	ctx := c.Request().Context()

	img, err := readImage(c, "face_image")
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "No face image provided")
	}

	result, err := h.faces.Recognize(ctx, img.Name, img.Data)
	if err != nil {
		h.log.WithError(err).Error("face recognizer collaborator failed")
		return common.SendDomainError(c, err)
	}

	actor := actorFromContext(ctx)
	match, err := h.faceSvc.MatchFace(ctx, result.ID, result.Confidence, result.Demographics, actor)
	if err != nil {
		if errors.Is(err, common.ErrFaceNotRecognized) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"status":       "error",
				"message":      "Face not recognized",
				"demographics": result.Demographics,
			})
		}
		if errors.Is(err, common.ErrNoMatch) {
			return common.SendError(c, http.StatusNotFound, "Recognized face not found in residents or guests")
		}
		h.log.WithError(err).Error("face match failed")
		return common.SendDomainError(c, err)
	}

	h.archive(ctx, "face", img)

	resp := echo.Map{
		"status":       "success",
		"type":         match.Type,
		"confidence":   result.Confidence,
		"demographics": result.Demographics,
	}
	switch match.Type {
	case models.MatchTypeResident:
		resp["user_id"] = match.UserID
		resp["resident_id"] = match.ResidentID
	case models.MatchTypeGuest:
		resp["guest_id"] = match.GuestID
		resp["resident_id"] = match.ResidentID
	}
	return c.JSON(http.StatusOK, resp)
}

// VerifyEntry handles POST /gate/verify: the joint plate+face protocol.
func (h *GateHandlers) VerifyEntry(c echo.Context) error {
	ctx := c.Request().Context()

	plateImg, plateErr := readImage(c, "plate_image")
	faceImg, faceErr := readImage(c, "face_image")
	if plateErr != nil || faceErr != nil {
		return common.SendError(c, http.StatusBadRequest, "Both plate and face images required")
	}

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "User not authenticated")
	}

	result, err := h.entrySvc.VerifyEntry(ctx, plateImg, faceImg, userID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrPlateUnreadable):
			return common.SendError(c, http.StatusBadRequest, "Failed to read license plate")
		case errors.Is(err, common.ErrFaceNotRecognized):
			resp := echo.Map{"status": "error", "message": "Face not recognized"}
			if result != nil {
				resp["demographics"] = result.Demographics
			}
			return c.JSON(http.StatusNotFound, resp)
		case errors.Is(err, common.ErrNoMatch):
			return common.SendError(c, http.StatusNotFound, "Plate and face do not match any resident or guest")
		}
		h.log.WithError(err).Error("entry verification failed")
		return common.SendDomainError(c, err)
	}

	h.archive(ctx, "entry/plate", plateImg)
	h.archive(ctx, "entry/face", faceImg)

	resp := echo.Map{
		"status":          "success",
		"type":            result.Type,
		"plate":           result.Plate,
		"resident_id":     result.ResidentID,
		"face_confidence": result.FaceConfidence,
		"demographics":    result.Demographics,
	}
	switch result.Type {
	case models.MatchTypeResident:
		resp["user_id"] = result.UserID
	case models.MatchTypeGuest:
		resp["guest_id"] = result.GuestID
	}
	return c.JSON(http.StatusOK, resp)
}

// archive stores a snapshot without failing the request on storage errors.
func (h *GateHandlers) archive(ctx context.Context, category string, img services.Image) {
	if _, err := h.snapshots.Store(ctx, category, img); err != nil {
		h.log.WithError(err).WithField("category", category).Warn("failed to archive snapshot")
	}
}

func readImage(c echo.Context, field string) (services.Image, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return services.Image{}, err
	}
	f, err := fh.Open()
	if err != nil {
		return services.Image{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.Image{}, err
	}
	return services.Image{Name: fh.Filename, Data: data}, nil
}

func actorFromContext(ctx context.Context) *uuid.UUID {
	if userID, ok := common.GetUserIDFromContext(ctx); ok {
		return &userID
	}
	return nil
}
