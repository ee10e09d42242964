package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/collabtrack/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations.
// Unique-constraint collisions on email or username surface as Conflict
// domain errors.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectRepository defines the interface for project data operations,
// including the bulk queries the account-deletion cascade depends on.
type ProjectRepository interface {
	Create(ctx context.Context, project *entities.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Project, error)
	Update(ctx context.Context, project *entities.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*entities.Project, error)
	ListOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]*entities.Project, error)
	AddCollaborator(ctx context.Context, projectID, userID uuid.UUID) error
	RemoveCollaborator(ctx context.Context, projectID, userID uuid.UUID) error
	DeleteOwnedBy(ctx context.Context, ownerID uuid.UUID) error
	RemoveCollaboratorEverywhere(ctx context.Context, userID uuid.UUID) error
}

// TaskRepository defines the interface for task aggregate operations.
// Update writes the whole aggregate guarded by its version; a stale
// version surfaces as a Conflict domain error.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProjects(ctx context.Context, projectIDs []uuid.UUID) error
}

// NotificationFilter narrows notification listings for one recipient.
type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

// NotificationRepository defines the interface for notification records.
// All read-state operations are scoped to the recipient so one user can
// never touch another user's notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *entities.Notification) error
	ListForRecipient(ctx context.Context, recipientID uuid.UUID, filter NotificationFilter) ([]*entities.Notification, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) (*entities.Notification, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, recipientID uuid.UUID) error
	DeleteRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
