package handlers

import (
	"net/http"
	"strconv"

	"gatewarden/internal/common"
	"gatewarden/internal/models"
	"gatewarden/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AdminHandlers covers account provisioning and resident management. Only
// users with the admin role reach these routes.
type AdminHandlers struct {
	users     repositories.UserRepository
	residents repositories.ResidentRepository
	log       *logrus.Logger
}

func NewAdminHandlers(users repositories.UserRepository, residents repositories.ResidentRepository, log *logrus.Logger) *AdminHandlers {
	return &AdminHandlers{users: users, residents: residents, log: log}
}

type CreateUserRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	Unit     *string `json:"unit"`
}

// CreateUser handles POST /admin/users. Creating a user with the resident
// role also provisions the linked resident record.
func (h *AdminHandlers) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendError(c, http.StatusBadRequest, "Email and password are required")
	}
	if !models.ValidRole(req.Role) {
		return common.SendError(c, http.StatusBadRequest, "Role must be gatekeeper, resident, or admin")
	}

	existing, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		h.log.WithError(err).Error("failed to check email")
		return common.SendDomainError(c, err)
	}
	if existing != nil {
		return common.SendError(c, http.StatusConflict, "User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.WithError(err).Error("failed to hash password")
		return common.SendDomainError(c, err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := h.users.Create(ctx, user); err != nil {
		h.log.WithError(err).Error("failed to create user")
		return common.SendDomainError(c, err)
	}

	if req.Role == models.RoleResident {
		resident := &models.Resident{
			ID:     uuid.New(),
			UserID: user.ID,
			Unit:   req.Unit,
		}
		if err := h.residents.Create(ctx, resident); err != nil {
			h.log.WithError(err).Error("failed to create resident record")
			return common.SendDomainError(c, err)
		}
	}

	return c.JSON(http.StatusCreated, user)
}

// ListUsers handles GET /admin/users.
func (h *AdminHandlers) ListUsers(c echo.Context) error {
	limit, offset := pagination(c)
	users, err := h.users.List(c.Request().Context(), limit, offset)
	if err != nil {
		h.log.WithError(err).Error("failed to list users")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// DeleteUser handles DELETE /admin/users/:id.
func (h *AdminHandlers) DeleteUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "Invalid user id")
	}
	if err := h.users.Delete(c.Request().Context(), userID); err != nil {
		h.log.WithError(err).Error("failed to delete user")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

// ListResidents handles GET /admin/residents.
func (h *AdminHandlers) ListResidents(c echo.Context) error {
	limit, offset := pagination(c)
	residents, err := h.residents.List(c.Request().Context(), limit, offset)
	if err != nil {
		h.log.WithError(err).Error("failed to list residents")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, residents)
}

type EnrollFaceRequest struct {
	FaceRef *string `json:"face_ref"`
}

// EnrollFace handles PUT /admin/residents/:id/face. A nil face_ref clears
// the enrollment, making the resident unmatchable by face.
func (h *AdminHandlers) EnrollFace(c echo.Context) error {
	ctx := c.Request().Context()

	residentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "Invalid resident id")
	}

	var req EnrollFaceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "Invalid request format")
	}

	resident, err := h.residents.GetByID(ctx, residentID)
	if err != nil {
		h.log.WithError(err).Error("failed to load resident")
		return common.SendDomainError(c, err)
	}
	if resident == nil {
		return common.SendError(c, http.StatusNotFound, "Resident not found")
	}

	if err := h.residents.UpdateFaceRef(ctx, residentID, req.FaceRef); err != nil {
		h.log.WithError(err).Error("failed to update face enrollment")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

func pagination(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
