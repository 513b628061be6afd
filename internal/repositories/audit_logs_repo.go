package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gatewarden/internal/models"

	"github.com/google/uuid"
)

type AuditLogsRepository interface {
	// Create appends a new audit log entry. Entries are immutable; there is
	// no update or delete.
	Create(ctx context.Context, entry *models.AuditLog) error

	// List audit logs with filtering options
	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)

	// Summary returns per-category event counts since the given time.
	Summary(ctx context.Context, since time.Time) (map[string]int, error)
}

type auditLogsRepo struct {
	db DB
}

func NewAuditLogsRepo(db DB) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()

	payloadBytes, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO audit_logs (id, actor, category, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.db.Exec(ctx, query, entry.ID, entry.Actor, entry.Category, payloadBytes, entry.CreatedAt)
	return err
}

func (r *auditLogsRepo) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}

	query := `
		SELECT id, actor, category, payload, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 0

	if filters.Category != nil {
		argIdx++
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, *filters.Category)
	}
	if filters.Actor != nil {
		argIdx++
		query += fmt.Sprintf(" AND actor = $%d", argIdx)
		args = append(args, *filters.Actor)
	}
	if filters.StartDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *filters.StartDate)
	}
	if filters.EndDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *filters.EndDate)
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		argIdx++
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			argIdx++
			query += fmt.Sprintf(" OFFSET $%d", argIdx)
			args = append(args, filters.Offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		var payloadBytes []byte
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Category, &payloadBytes, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(payloadBytes) > 0 {
			if err := json.Unmarshal(payloadBytes, &entry.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *auditLogsRepo) Summary(ctx context.Context, since time.Time) (map[string]int, error) {
	query := `
		SELECT category, COUNT(*)
		FROM audit_logs
		WHERE created_at >= $1
		GROUP BY category
	`
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		summary[category] = count
	}
	return summary, rows.Err()
}
