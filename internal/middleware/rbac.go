package middleware

import (
	"net/http"

	"gatewarden/internal/common"

	"github.com/labstack/echo/v4"
)

// RequireRole rejects requests whose authenticated role is not one of the
// allowed roles. It must run after JWTMiddleware. Unauthorized requests are
// rejected before any matcher runs, so no audit entry is produced for them.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if !allowed[role] {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
