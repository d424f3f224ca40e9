package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Notification struct {
	ID        string
	UserID    string
	ProjectID *string
	Type      string
	Title     string
	Message   string
	Read      bool
	Data      map[string]interface{}
	CreatedAt time.Time
}

// NotificationFilter narrows a user's notification list. A zero Limit means DefaultNotificationLimit.
type NotificationFilter struct {
	UnreadOnly bool
	ProjectID  string
	Limit      int
}

const DefaultNotificationLimit = 100

func (f NotificationFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultNotificationLimit
	}
	return f.Limit
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	FindByID(ctx context.Context, id string) (*Notification, error)
	FindByUserID(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error)
	FindForUser(ctx context.Context, userID string, filter NotificationFilter) ([]*Notification, error)
	CountByUserID(ctx context.Context, userID string) (total int, unread int, err error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	DeleteOlderThan(ctx context.Context, olderThan time.Time, readOnly bool) (int, error)
}

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func scanNotification(row pgx.Row) (*Notification, error) {
	n := &Notification{}
	var dataJSON []byte
	err := row.Scan(&n.ID, &n.UserID, &n.ProjectID, &n.Type, &n.Title, &n.Message, &n.Read, &dataJSON, &n.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(dataJSON, &n.Data)
	return n, nil
}

func (r *pgNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	dataJSON := []byte("{}")
	if notification.Data != nil {
		dataJSON, _ = json.Marshal(notification.Data)
	}
	query := `
		INSERT INTO notifications (user_id, project_id, type, title, message, read, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		notification.UserID, notification.ProjectID, notification.Type, notification.Title,
		notification.Message, notification.Read, dataJSON,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *pgNotificationRepository) FindByID(ctx context.Context, id string) (*Notification, error) {
	query := `SELECT id, user_id, project_id, type, title, message, read, data, created_at FROM notifications WHERE id = $1`
	return scanNotification(r.pool.QueryRow(ctx, query, id))
}

func (r *pgNotificationRepository) FindByUserID(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error) {
	return r.FindForUser(ctx, userID, NotificationFilter{UnreadOnly: unreadOnly})
}

func (r *pgNotificationRepository) FindForUser(ctx context.Context, userID string, filter NotificationFilter) ([]*Notification, error) {
	query := `
		SELECT id, user_id, project_id, type, title, message, read, data, created_at
		FROM notifications WHERE user_id = $1
	`
	args := []interface{}{userID}
	if filter.UnreadOnly {
		query += ` AND read = FALSE`
	}
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		query += fmt.Sprintf(` AND project_id = $%d`, len(args))
	}
	args = append(args, filter.limit())
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *pgNotificationRepository) CountByUserID(ctx context.Context, userID string) (total int, unread int, err error) {
	query := `
		SELECT
			COUNT(*) as total,
			COUNT(*) FILTER (WHERE read = FALSE) as unread
		FROM notifications WHERE user_id = $1
	`
	err = r.pool.QueryRow(ctx, query, userID).Scan(&total, &unread)
	return
}

func (r *pgNotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	return err
}

func (r *pgNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1`, userID)
	return err
}

func (r *pgNotificationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	return err
}

func (r *pgNotificationRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time, readOnly bool) (int, error) {
	query := `DELETE FROM notifications WHERE created_at < $1`
	if readOnly {
		query += ` AND read = TRUE`
	}
	result, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}
