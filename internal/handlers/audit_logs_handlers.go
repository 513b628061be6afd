package handlers

import (
	"net/http"
	"strconv"
	"time"

	"gatewarden/internal/common"
	"gatewarden/internal/models"
	"gatewarden/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// AuditLogsHandlers exposes the audit trail for admin review.
type AuditLogsHandlers struct {
	audit     services.AuditLogsService
	snapshots services.SnapshotService
	log       *logrus.Logger
}

func NewAuditLogsHandlers(audit services.AuditLogsService, snapshots services.SnapshotService, log *logrus.Logger) *AuditLogsHandlers {
	return &AuditLogsHandlers{audit: audit, snapshots: snapshots, log: log}
}

// ListAuditLogs handles GET /admin/audit-logs with optional category, actor
// and date filters.
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	filters := &models.AuditLogFilters{}

	if category := c.QueryParam("category"); category != "" {
		filters.Category = &category
	}
	if actorStr := c.QueryParam("actor"); actorStr != "" {
		actor, err := uuid.Parse(actorStr)
		if err != nil {
			return common.SendError(c, http.StatusBadRequest, "Invalid actor id")
		}
		filters.Actor = &actor
	}
	if startStr := c.QueryParam("start"); startStr != "" {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return common.SendError(c, http.StatusBadRequest, "start must be RFC3339")
		}
		filters.StartDate = &start
	}
	if endStr := c.QueryParam("end"); endStr != "" {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return common.SendError(c, http.StatusBadRequest, "end must be RFC3339")
		}
		filters.EndDate = &end
	}
	filters.Limit, filters.Offset = pagination(c)

	entries, err := h.audit.List(c.Request().Context(), filters)
	if err != nil {
		h.log.WithError(err).Error("failed to list audit logs")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// SnapshotURL handles GET /admin/snapshots?key=... and returns a short-lived
// presigned link to an archived gate snapshot.
func (h *AuditLogsHandlers) SnapshotURL(c echo.Context) error {
	key := c.QueryParam("key")
	if key == "" {
		return common.SendError(c, http.StatusBadRequest, "key query parameter required")
	}

	url, err := h.snapshots.PresignedURL(c.Request().Context(), key, 15*time.Minute)
	if err != nil {
		h.log.WithError(err).WithField("key", key).Error("failed to presign snapshot")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"key": key, "url": url})
}

// AuditSummary handles GET /admin/audit-logs/summary?hours=24.
func (h *AuditLogsHandlers) AuditSummary(c echo.Context) error {
	hours, _ := strconv.Atoi(c.QueryParam("hours"))
	if hours <= 0 || hours > 24*365 {
		hours = 24
	}

	summary, err := h.audit.Summary(c.Request().Context(), time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		h.log.WithError(err).Error("failed to summarize audit logs")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hours": hours, "categories": summary})
}
