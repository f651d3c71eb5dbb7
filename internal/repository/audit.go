package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/shenikar/occurrence_reporting_system/internal/service"
)

// AuditRepository persists the append-only audit trail. Entries are never
// updated or deleted.
type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) service.AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends one entry. Changes and details are stored as JSONB.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	changes, err := marshalJSONB(entry.Changes)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal audit changes: %v", service.ErrStorage, err)
	}
	details, err := marshalJSONB(entry.Details)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal audit details: %v", service.ErrStorage, err)
	}

	query := `
		INSERT INTO audit_logs (user_id, action, entity, entity_id, details, changes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at;
	`
	err = r.db.QueryRow(ctx, query,
		entry.UserID,
		entry.Action,
		entry.Entity,
		entry.EntityID,
		details,
		changes,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to create audit log entry: %v", service.ErrStorage, err)
	}
	return nil
}

// List returns filtered entries newest-first, plus the total count over the
// same predicates.
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditLogEntry, int, error) {
	where, args := buildAuditWhere(filter)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM audit_logs%s;`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: failed to count audit log entries: %v", service.ErrStorage, err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf(`
		SELECT id, user_id, action, entity, entity_id, details, changes, created_at
		FROM audit_logs%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d;
	`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to list audit log entries: %v", service.ErrStorage, err)
	}
	defer rows.Close()

	entries := make([]*models.AuditLogEntry, 0)
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: failed to scan audit log row: %v", service.ErrStorage, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: error in audit list iteration: %v", service.ErrStorage, err)
	}
	return entries, total, nil
}

// CountByAction counts entries per action since the given time.
func (r *AuditRepository) CountByAction(ctx context.Context, since time.Time) (map[string]int, error) {
	query := `
		SELECT action, COUNT(*)
		FROM audit_logs
		WHERE created_at >= $1
		GROUP BY action;
	`
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count audit actions: %v", service.ErrStorage, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("%w: failed to scan action count row: %v", service.ErrStorage, err)
		}
		counts[action] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error in action count iteration: %v", service.ErrStorage, err)
	}
	return counts, nil
}

// TopActors ranks users by recorded actions since the given time. Entries
// whose actor has been deleted are excluded from the ranking.
func (r *AuditRepository) TopActors(ctx context.Context, since time.Time, limit int) ([]models.ActorActivity, error) {
	query := `
		SELECT a.user_id, COALESCE(u.name, ''), COUNT(*) AS actions
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.created_at >= $1 AND a.user_id IS NOT NULL
		GROUP BY a.user_id, u.name
		ORDER BY actions DESC
		LIMIT $2;
	`
	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to rank audit actors: %v", service.ErrStorage, err)
	}
	defer rows.Close()

	actors := make([]models.ActorActivity, 0, limit)
	for rows.Next() {
		var aa models.ActorActivity
		if err := rows.Scan(&aa.UserID, &aa.Name, &aa.Actions); err != nil {
			return nil, fmt.Errorf("%w: failed to scan actor row: %v", service.ErrStorage, err)
		}
		actors = append(actors, aa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error in actor ranking iteration: %v", service.ErrStorage, err)
	}
	return actors, nil
}

func buildAuditWhere(filter models.AuditFilter) (string, []any) {
	conds := make([]string, 0, 6)
	args := make([]any, 0, 6)
	add := func(format string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.Action != nil {
		add("action = $%d", *filter.Action)
	}
	if filter.Entity != nil {
		add("entity = $%d", *filter.Entity)
	}
	if filter.EntityID != nil {
		add("entity_id = $%d", *filter.EntityID)
	}
	if filter.StartDate != nil {
		add("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <= $%d", *filter.EndDate)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanAuditEntry(row pgx.Row) (*models.AuditLogEntry, error) {
	entry := &models.AuditLogEntry{}
	var details, changes []byte
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Action,
		&entry.Entity,
		&entry.EntityID,
		&details,
		&changes,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit details: %w", err)
		}
	}
	if len(changes) > 0 {
		if err := json.Unmarshal(changes, &entry.Changes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit changes: %w", err)
		}
	}
	return entry, nil
}

func marshalJSONB[M ~map[string]V, V any](m M) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}
