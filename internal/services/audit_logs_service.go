package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gatewarden/internal/models"
	"gatewarden/internal/repositories"

	"github.com/google/uuid"
)

type AuditLogsService interface {
	// Record appends one audit entry for a gate decision. The payload is a
	// tagged per-category schema validated here, at the write boundary.
	Record(ctx context.Context, actor *uuid.UUID, payload models.AuditPayload) error

	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
	Summary(ctx context.Context, since time.Time) (map[string]int, error)
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{auditLogsRepo: auditLogsRepo}
}

func (s *auditLogsService) Record(ctx context.Context, actor *uuid.UUID, payload models.AuditPayload) error {
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("audit payload rejected: %w", err)
	}

	data, err := toJSONB(payload)
	if err != nil {
		return fmt.Errorf("audit payload rejected: %w", err)
	}

	entry := &models.AuditLog{
		ID:       uuid.New(),
		Actor:    actor,
		Category: payload.AuditCategory(),
		Payload:  data,
	}
	return s.auditLogsRepo.Create(ctx, entry)
}

func (s *auditLogsService) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{Limit: 50}
	}
	if filters.Limit <= 0 || filters.Limit > 1000 {
		filters.Limit = 50
	}
	return s.auditLogsRepo.List(ctx, filters)
}

func (s *auditLogsService) Summary(ctx context.Context, since time.Time) (map[string]int, error) {
	return s.auditLogsRepo.Summary(ctx, since)
}

func toJSONB(payload models.AuditPayload) (models.JSONB, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var data models.JSONB
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
