package handlers

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthCheck returns a basic liveness response.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ReadinessCheck verifies the database is reachable.
func ReadinessCheck(c echo.Context, pool *pgxpool.Pool) error {
	ctx := c.Request().Context()
	if err := pool.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status": "not ready",
			"error":  "database unreachable",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}
