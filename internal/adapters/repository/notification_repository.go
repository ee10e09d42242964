package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/collabtrack/core/internal/domain/entities"
	"github.com/collabtrack/core/internal/ports"
)

// NotificationRepositoryImpl implements the NotificationRepository
// interface. Every read-state operation is keyed by recipient as well as
// id, so ownership checks happen in the query itself.
type NotificationRepositoryImpl struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlx.DB) ports.NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

const notificationColumns = `id, recipient_id, sender_id, type, message, project_id, task_id,
		is_read, read_at, data, created_at`

func (r *NotificationRepositoryImpl) Create(ctx context.Context, notification *entities.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}

	data, err := jsonValue(notification.Data)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		notification.ID, notification.RecipientID, notification.SenderID,
		notification.Type, notification.Message,
		notification.ProjectID, notification.TaskID,
		notification.IsRead, notification.ReadAt, data, notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (r *NotificationRepositoryImpl) ListForRecipient(ctx context.Context, recipientID uuid.UUID, filter ports.NotificationFilter) ([]*entities.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1`
	args := []interface{}{recipientID}

	if filter.UnreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*entities.Notification{}
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, nil
}

func (r *NotificationRepositoryImpl) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, recipientID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}

func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (*entities.Notification, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, CURRENT_TIMESTAMP)
		WHERE id = $1 AND recipient_id = $2
		RETURNING ` + notificationColumns

	notification, err := scanNotification(r.db.QueryRowxContext(ctx, query, id, recipientID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.NotFound("Notification not found")
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}

	return notification, nil
}

func (r *NotificationRepositoryImpl) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = CURRENT_TIMESTAMP
		WHERE recipient_id = $1 AND is_read = FALSE`

	result, err := r.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	return result.RowsAffected()
}

func (r *NotificationRepositoryImpl) Delete(ctx context.Context, id, recipientID uuid.UUID) error {
	query := `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.NotFound("Notification not found")
	}

	return nil
}

func (r *NotificationRepositoryImpl) DeleteRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	query := `DELETE FROM notifications WHERE recipient_id = $1 AND is_read = TRUE`

	result, err := r.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		return 0, fmt.Errorf("delete read notifications: %w", err)
	}

	return result.RowsAffected()
}

func (r *NotificationRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired notifications: %w", err)
	}

	return result.RowsAffected()
}

func scanNotification(row rowScanner) (*entities.Notification, error) {
	var notification entities.Notification

	err := row.Scan(
		&notification.ID, &notification.RecipientID, &notification.SenderID,
		&notification.Type, &notification.Message,
		&notification.ProjectID, &notification.TaskID,
		&notification.IsRead, &notification.ReadAt,
		jsonColumn{&notification.Data}, &notification.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &notification, nil
}
