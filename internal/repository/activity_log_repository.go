package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// ActivityLog is one recorded change against an equipment, VDCR, member or project record.
// OldValue/NewValue hold the raw JSON as stored; they are decoded into typed values by the
// activity package before display.
type ActivityLog struct {
	ID            string
	ProjectID     string
	EntityType    string
	EntityID      string
	ActivityType  string
	FieldName     *string
	OldValue      json.RawMessage
	NewValue      json.RawMessage
	Metadata      map[string]interface{}
	CreatedBy     *string // nil for system actions
	CreatedByName *string
	CreatedAt     time.Time
}

type ActivityLogRepository interface {
	Create(ctx context.Context, log *ActivityLog) error
	FindByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*ActivityLog, error)
	FindByProject(ctx context.Context, projectID string, limit int) ([]*ActivityLog, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time) (int, error)
}

type activityLogRepository struct {
	db *sql.DB
}

// NewActivityLogRepository creates the database/sql backed activity log repository
func NewActivityLogRepository(db *sql.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func (r *activityLogRepository) Create(ctx context.Context, log *ActivityLog) error {
	metadata := []byte("{}")
	if log.Metadata != nil {
		metadata, _ = json.Marshal(log.Metadata)
	}

	query := `
		INSERT INTO activity_logs (
			id, project_id, entity_type, entity_id, activity_type, field_name, old_value, new_value, metadata, created_by
		) VALUES (
			gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING id, created_at`

	return r.db.QueryRowContext(
		ctx, query,
		log.ProjectID,
		log.EntityType,
		log.EntityID,
		log.ActivityType,
		log.FieldName,
		nullableJSON(log.OldValue),
		nullableJSON(log.NewValue),
		metadata,
		log.CreatedBy,
	).Scan(&log.ID, &log.CreatedAt)
}

const activitySelect = `
	SELECT a.id, a.project_id, a.entity_type, a.entity_id, a.activity_type, a.field_name,
	       a.old_value, a.new_value, a.metadata, a.created_by, u.name, a.created_at
	FROM activity_logs a
	LEFT JOIN users u ON u.id = a.created_by`

// FindByEntity returns the newest entries first
func (r *activityLogRepository) FindByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := activitySelect + `
	WHERE a.entity_type = $1 AND a.entity_id = $2
	ORDER BY a.created_at DESC
	LIMIT $3`
	return r.query(ctx, query, entityType, entityID, limit)
}

func (r *activityLogRepository) FindByProject(ctx context.Context, projectID string, limit int) ([]*ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	query := activitySelect + `
	WHERE a.project_id = $1
	ORDER BY a.created_at DESC
	LIMIT $2`
	return r.query(ctx, query, projectID, limit)
}

func (r *activityLogRepository) query(ctx context.Context, query string, args ...interface{}) ([]*ActivityLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*ActivityLog{}
	for rows.Next() {
		l := &ActivityLog{}
		var oldValue, newValue, metadata []byte
		if err := rows.Scan(
			&l.ID, &l.ProjectID, &l.EntityType, &l.EntityID, &l.ActivityType, &l.FieldName,
			&oldValue, &newValue, &metadata, &l.CreatedBy, &l.CreatedByName, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(oldValue) > 0 {
			l.OldValue = json.RawMessage(oldValue)
		}
		if len(newValue) > 0 {
			l.NewValue = json.RawMessage(newValue)
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &l.Metadata)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *activityLogRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM activity_logs WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}
