package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/collabtrack/core/internal/domain/entities"
	"github.com/collabtrack/core/internal/infrastructure/logger"
	"github.com/collabtrack/core/internal/ports"
)

// NotificationService handles the read-state side of notifications: the
// records themselves are only ever created by the Dispatcher.
type NotificationService struct {
	notificationRepo ports.NotificationRepository
	logger           *logger.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo ports.NotificationRepository, logger *logger.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filter ports.NotificationFilter) ([]*entities.Notification, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	notifications, err := s.notificationRepo.ListForRecipient(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, nil
}

// UnreadCount returns the number of unread notifications, used for badges.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) (*entities.Notification, error) {
	notification, err := s.notificationRepo.MarkRead(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	return notification, nil
}

// MarkAllRead marks every unread notification of the user as read and
// returns how many were updated.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	return count, nil
}

// Delete removes one of the user's notifications.
func (s *NotificationService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.notificationRepo.Delete(ctx, id, userID)
}

// ClearRead removes all of the user's read notifications and returns how
// many were deleted.
func (s *NotificationService) ClearRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notificationRepo.DeleteRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear read notifications: %w", err)
	}

	return count, nil
}

// PurgeExpired removes notifications past the retention window. It is
// invoked from the CLI, not a background scheduler.
func (s *NotificationService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-entities.NotificationRetention)

	count, err := s.notificationRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge expired notifications: %w", err)
	}

	s.logger.Infow("Purged expired notifications", "count", count, "cutoff", cutoff)
	return count, nil
}
