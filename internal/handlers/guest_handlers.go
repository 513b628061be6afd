package handlers

import (
	"net/http"

	"gatewarden/internal/common"
	"gatewarden/internal/models"
	"gatewarden/internal/recognition"
	"gatewarden/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// GuestHandlers lets residents invite and manage their own guests.
type GuestHandlers struct {
	guests    repositories.GuestRepository
	residents repositories.ResidentRepository
	log       *logrus.Logger
}

func NewGuestHandlers(guests repositories.GuestRepository, residents repositories.ResidentRepository, log *logrus.Logger) *GuestHandlers {
	return &GuestHandlers{guests: guests, residents: residents, log: log}
}

type InviteGuestRequest struct {
	Name         string  `json:"name"`
	LicensePlate *string `json:"license_plate"`
	FaceRef      *string `json:"face_ref"`
}

// InviteGuest handles POST /my/guests. The guest starts pending and becomes
// arrived only through a successful gate match.
func (h *GuestHandlers) InviteGuest(c echo.Context) error {
	ctx := c.Request().Context()

	resident, err := h.requireResident(c)
	if err != nil {
		return err
	}

	var req InviteGuestRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.Name == "" {
		return common.SendError(c, http.StatusBadRequest, "Guest name is required")
	}
	if req.LicensePlate == nil && req.FaceRef == nil {
		return common.SendError(c, http.StatusBadRequest, "A license plate or a face reference is required")
	}
	if req.LicensePlate != nil {
		normalized := recognition.NormalizePlate([]string{*req.LicensePlate})
		if normalized == "" {
			return common.SendError(c, http.StatusBadRequest, "Invalid license plate")
		}
		req.LicensePlate = &normalized
	}

	guest := &models.Guest{
		ID:           uuid.New(),
		ResidentID:   resident.ID,
		Name:         req.Name,
		LicensePlate: req.LicensePlate,
		FaceRef:      req.FaceRef,
		Status:       models.GuestStatusPending,
	}
	if err := h.guests.Create(ctx, guest); err != nil {
		h.log.WithError(err).Error("failed to create guest")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, guest)
}

// ListGuests handles GET /my/guests.
func (h *GuestHandlers) ListGuests(c echo.Context) error {
	ctx := c.Request().Context()

	resident, err := h.requireResident(c)
	if err != nil {
		return err
	}

	guests, err := h.guests.ListByResident(ctx, resident.ID)
	if err != nil {
		h.log.WithError(err).Error("failed to list guests")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, guests)
}

// DeleteGuest handles DELETE /my/guests/:id. Only the host may cancel an
// invitation.
func (h *GuestHandlers) DeleteGuest(c echo.Context) error {
	ctx := c.Request().Context()

	resident, err := h.requireResident(c)
	if err != nil {
		return err
	}

	guestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "Invalid guest id")
	}

	guest, err := h.guests.GetByID(ctx, guestID)
	if err != nil {
		h.log.WithError(err).Error("failed to load guest")
		return common.SendDomainError(c, err)
	}
	if guest == nil || guest.ResidentID != resident.ID {
		return common.SendError(c, http.StatusNotFound, "Guest not found")
	}

	if err := h.guests.Delete(ctx, guestID); err != nil {
		h.log.WithError(err).Error("failed to delete guest")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

func (h *GuestHandlers) requireResident(c echo.Context) (*models.Resident, error) {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return nil, common.SendError(c, http.StatusUnauthorized, "Unauthorized")
	}
	resident, err := h.residents.GetByUserID(ctx, userID)
	if err != nil {
		h.log.WithError(err).Error("failed to load resident")
		return nil, common.SendDomainError(c, err)
	}
	if resident == nil {
		return nil, common.SendError(c, http.StatusNotFound, "Resident record not found")
	}
	return resident, nil
}
