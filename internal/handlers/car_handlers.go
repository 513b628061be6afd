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

// CarHandlers lets residents register and manage their own cars.
type CarHandlers struct {
	cars      repositories.CarRepository
	residents repositories.ResidentRepository
	log       *logrus.Logger
}

func NewCarHandlers(cars repositories.CarRepository, residents repositories.ResidentRepository, log *logrus.Logger) *CarHandlers {
	return &CarHandlers{cars: cars, residents: residents, log: log}
}

type RegisterCarRequest struct {
	LicensePlate string `json:"license_plate"`
}

// RegisterCar handles POST /my/cars.
func (h *CarHandlers) RegisterCar(c echo.Context) error {
	ctx := c.Request().Context()

	resident, err := h.requireResident(c)
	if err != nil {
		return err
	}

	var req RegisterCarRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "Invalid request format")
	}
	plate := recognition.NormalizePlate([]string{req.LicensePlate})
	if plate == "" {
		return common.SendError(c, http.StatusBadRequest, "License plate is required")
	}

	existing, err := h.cars.GetByPlate(ctx, plate)
	if err != nil {
		h.log.WithError(err).Error("failed to check plate")
		return common.SendDomainError(c, err)
	}
	if existing != nil {
		return common.SendError(c, http.StatusConflict, "License plate already registered")
	}

	car := &models.Car{
		ID:           uuid.New(),
		ResidentID:   resident.ID,
		LicensePlate: plate,
	}
	if err := h.cars.Create(ctx, car); err != nil {
		h.log.WithError(err).Error("failed to register car")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, car)
}

// ListCars handles GET /my/cars.
func (h *CarHandlers) ListCars(c echo.Context) error {
	ctx := c.Request().Context()

	resident, err := h.requireResident(c)
	if err != nil {
		return err
	}

	cars, err := h.cars.ListByResident(ctx, resident.ID)
	if err != nil {
		h.log.WithError(err).Error("failed to list cars")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, cars)
}

func (h *CarHandlers) requireResident(c echo.Context) (*models.Resident, error) {
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
