package middleware

import (
	"context"
	"net/http"
	"strings"

	"gatewarden/internal/common"
	"gatewarden/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates the bearer token, checks the session is still
// live, and injects the user id and role into the request context.
func JWTMiddleware(jwtSecret string, auth services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			claims := &services.TokenClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject in token")
			}

			alive, err := auth.SessionAlive(c.Request().Context(), claims.ID)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Session check failed")
			}
			if !alive {
				return echo.NewHTTPError(http.StatusUnauthorized, "Session expired")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.RoleKey, claims.Role)
			c.Set("token_id", claims.ID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
