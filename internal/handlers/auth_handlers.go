package handlers

import (
	"errors"
	"net/http"
	"time"

	"gatewarden/internal/caching"
	"gatewarden/internal/common"
	"gatewarden/internal/repositories"
	"gatewarden/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
	userRepo    repositories.UserRepository
	cache       caching.CacheService
	log         *logrus.Logger
}

func NewAuthHandlers(authService services.AuthService, userRepo repositories.UserRepository, cache caching.CacheService, log *logrus.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		userRepo:    userRepo,
		cache:       cache,
		log:         log,
	}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login handles user login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendError(c, http.StatusBadRequest, "Email and password required")
	}

	limited, err := h.cache.IsRateLimited(ctx, "login:"+c.RealIP(), loginRateLimit, loginRateWindow)
	if err != nil {
		h.log.WithError(err).Warn("login rate limit check failed")
	} else if limited {
		return common.SendError(c, http.StatusTooManyRequests, "Too many login attempts")
	}

	result, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			if rlErr := h.cache.IncrementRateLimit(ctx, "login:"+c.RealIP(), loginRateWindow); rlErr != nil {
				h.log.WithError(rlErr).Warn("login rate limit increment failed")
			}
			return common.SendError(c, http.StatusUnauthorized, "Invalid credentials")
		}
		h.log.WithError(err).Error("login failed")
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"token":   result.Token,
		"user_id": result.User.ID,
		"role":    result.User.Role,
	})
}

// Logout revokes the current session.
func (h *AuthHandlers) Logout(c echo.Context) error {
	tokenID, ok := c.Get("token_id").(string)
	if !ok || tokenID == "" {
		return common.SendError(c, http.StatusUnauthorized, "Unauthorized")
	}
	if err := h.authService.Logout(c.Request().Context(), tokenID); err != nil {
		h.log.WithError(err).Error("logout failed")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

// Me returns the authenticated user.
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		h.log.WithError(err).Error("failed to load user")
		return common.SendDomainError(c, err)
	}
	if user == nil {
		return common.SendError(c, http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}
