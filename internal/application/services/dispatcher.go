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

// NewNotification describes one notification to be persisted.
type NewNotification struct {
	Recipient uuid.UUID
	Sender    *uuid.UUID
	Type      entities.NotificationType
	Message   string
	Project   *uuid.UUID
	Task      *uuid.UUID
	Data      map[string]any
}

// Dispatcher computes notification audiences and persists notification
// records. Delivery is best-effort: persistence failures are logged and
// absorbed so a broken notification path never blocks or rolls back the
// mutation it was attached to. Mutators emit one typed event per
// audience-relevant change; all containment lives here.
type Dispatcher struct {
	notificationRepo ports.NotificationRepository
	logger           *logger.Logger
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(notificationRepo ports.NotificationRepository, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Create persists a single notification. Self-notifications (sender equals
// recipient) are silently skipped. Returns the created record, or nil when
// the notification was suppressed or persistence failed.
func (d *Dispatcher) Create(ctx context.Context, n NewNotification) *entities.Notification {
	if n.Sender != nil && *n.Sender == n.Recipient {
		return nil
	}

	notification := &entities.Notification{
		ID:          uuid.New(),
		RecipientID: n.Recipient,
		SenderID:    n.Sender,
		Type:        n.Type,
		Message:     n.Message,
		ProjectID:   n.Project,
		TaskID:      n.Task,
		Data:        n.Data,
		CreatedAt:   time.Now(),
	}

	if err := d.notificationRepo.Create(ctx, notification); err != nil {
		d.logger.Warnw("Failed to create notification",
			"error", err,
			"type", n.Type,
			"recipient_id", n.Recipient,
		)
		return nil
	}

	return notification
}

// Fanout invokes the single-recipient path once per recipient, each
// independently subject to self-suppression, and collects only the
// records that were actually created.
func (d *Dispatcher) Fanout(ctx context.Context, recipients []uuid.UUID, n NewNotification) []*entities.Notification {
	created := make([]*entities.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		n.Recipient = recipient
		if notification := d.Create(ctx, n); notification != nil {
			created = append(created, notification)
		}
	}
	return created
}

// Typed mutation events. Each computes its own mailing list and message
// text for the change it describes.

func (d *Dispatcher) ProjectUpdated(ctx context.Context, actor *entities.User, project *entities.Project) {
	d.Fanout(ctx, project.Members(actor.ID), NewNotification{
		Sender:  &actor.ID,
		Type:    entities.NotificationProjectUpdated,
		Message: fmt.Sprintf("%s has updated the project '%s'", actor.Username, project.Name),
		Project: &project.ID,
	})
}

func (d *Dispatcher) ProjectDeleted(ctx context.Context, actor *entities.User, project *entities.Project) {
	d.Fanout(ctx, project.Members(actor.ID), NewNotification{
		Sender:  &actor.ID,
		Type:    entities.NotificationProjectDeleted,
		Message: fmt.Sprintf("The project '%s' has been deleted", project.Name),
		Project: &project.ID,
	})
}

func (d *Dispatcher) CollaboratorAdded(ctx context.Context, actor *entities.User, project *entities.Project, userID uuid.UUID) {
	d.Create(ctx, NewNotification{
		Recipient: userID,
		Sender:    &actor.ID,
		Type:      entities.NotificationProjectInvite,
		Message:   fmt.Sprintf("%s has added you to the project '%s'", actor.Username, project.Name),
		Project:   &project.ID,
	})
}

// CollaboratorRemoved must be emitted before the removal is persisted so
// the recipient id is still resolvable from the membership set.
func (d *Dispatcher) CollaboratorRemoved(ctx context.Context, actor *entities.User, project *entities.Project, userID uuid.UUID) {
	d.Create(ctx, NewNotification{
		Recipient: userID,
		Sender:    &actor.ID,
		Type:      entities.NotificationProjectRemoved,
		Message:   fmt.Sprintf("You have been removed from the project '%s'", project.Name),
		Project:   &project.ID,
	})
}

// TaskCreated notifies explicit assignees that they were assigned and the
// remaining members that the task exists. An assignee who is also the
// actor receives neither.
func (d *Dispatcher) TaskCreated(ctx context.Context, actor *entities.User, project *entities.Project, task *entities.Task) {
	assigned := fmt.Sprintf("%s assigned you to the task '%s'", actor.Username, task.Title)
	d.Fanout(ctx, task.AssignedTo, NewNotification{
		Sender:  &actor.ID,
		Type:    entities.NotificationTaskAssigned,
		Message: assigned,
		Project: &project.ID,
		Task:    &task.ID,
	})

	others := make([]uuid.UUID, 0)
	for _, member := range project.Members(actor.ID) {
		if !task.IsAssignee(member) {
			others = append(others, member)
		}
	}
	d.Fanout(ctx, others, NewNotification{
		Sender:  &actor.ID,
		Type:    entities.NotificationTaskCreated,
		Message: fmt.Sprintf("%s created the task '%s' in the project '%s'", actor.Username, task.Title, project.Name),
		Project: &project.ID,
		Task:    &task.ID,
	})
}

func (d *Dispatcher) TaskStatusChanged(ctx context.Context, actor *entities.User, project *entities.Project, task *entities.Task, oldStatus, newStatus entities.TaskStatus) {
	d.Fanout(ctx, project.Members(actor.ID), NewNotification{
		Sender:  &actor.ID,
		Type:    entities.NotificationTaskStatusChanged,
		Message: fmt.Sprintf("%s changed the status of '%s' from '%s' to '%s'", actor.Username, task.Title, oldStatus, newStatus),
		Project: &project.ID,
		Task:    &task.ID,
		Data: map[string]any{
			"old_status": string(oldStatus),
			"new_status": string(newStatus),
		},
	})
}

// TaskAssigneesAdded notifies only the users newly added to the
// assignment list.
func (d *Dispatcher) TaskAssigneesAdded(ctx context.Context, actor *entities.User, project *entities.Project, task *entities.Task, added []uuid.UUID) {
	d.Fanout(ctx, added, NewNotification{
		Sender:  &actor.ID,
		Type:    entities.NotificationTaskAssigned,
		Message: fmt.Sprintf("%s assigned you to the task '%s'", actor.Username, task.Title),
		Project: &project.ID,
		Task:    &task.ID,
	})
}

func (d *Dispatcher) TaskDeleted(ctx context.Context, actor *entities.User, project *entities.Project, task *entities.Task) {
	d.Fanout(ctx, project.Members(actor.ID), NewNotification{
		Sender:  &actor.ID,
		Type:    entities.NotificationTaskDeleted,
		Message: fmt.Sprintf("The task '%s' has been deleted", task.Title),
		Project: &project.ID,
		Task:    &task.ID,
	})
}

// TodoAdded notifies the todo's explicit assignee, then broadcasts the
// addition to all members except the actor.
func (d *Dispatcher) TodoAdded(ctx context.Context, actor *entities.User, project *entities.Project, task *entities.Task, todo *entities.Todo) {
	if todo.AssignedTo != nil {
		d.Create(ctx, NewNotification{
			Recipient: *todo.AssignedTo,
			Sender:    &actor.ID,
			Type:      entities.NotificationTodoAssigned,
			Message:   fmt.Sprintf("%s assigned you a todo in the task '%s'", actor.Username, task.Title),
			Project:   &project.ID,
			Task:      &task.ID,
		})
	}

	d.Fanout(ctx, project.Members(actor.ID), NewNotification{
		Sender:  &actor.ID,
		Type:    entities.NotificationTodoAdded,
		Message: fmt.Sprintf("%s added a todo to the task '%s'", actor.Username, task.Title),
		Project: &project.ID,
		Task:    &task.ID,
	})
}

// TodoCompleted broadcasts the completion and, when that completion was
// the last one outstanding, follows with an all-todos-completed broadcast.
func (d *Dispatcher) TodoCompleted(ctx context.Context, actor *entities.User, project *entities.Project, task *entities.Task) {
	d.Fanout(ctx, project.Members(actor.ID), NewNotification{
		Sender:  &actor.ID,
		Type:    entities.NotificationTodoCompleted,
		Message: fmt.Sprintf("%s completed a todo in the task '%s'", actor.Username, task.Title),
		Project: &project.ID,
		Task:    &task.ID,
	})

	if task.AllTodosCompleted() {
		d.Fanout(ctx, project.Members(actor.ID), NewNotification{
			Sender:  &actor.ID,
			Type:    entities.NotificationAllTodosCompleted,
			Message: fmt.Sprintf("All todos in the task '%s' have been completed", task.Title),
			Project: &project.ID,
			Task:    &task.ID,
		})
	}
}

// TodoReassigned notifies only the new assignee; callers emit it only
// when the assignee actually changed.
func (d *Dispatcher) TodoReassigned(ctx context.Context, actor *entities.User, project *entities.Project, task *entities.Task, newAssignee uuid.UUID) {
	d.Create(ctx, NewNotification{
		Recipient: newAssignee,
		Sender:    &actor.ID,
		Type:      entities.NotificationTodoAssigned,
		Message:   fmt.Sprintf("%s assigned you a todo in the task '%s'", actor.Username, task.Title),
		Project:   &project.ID,
		Task:      &task.ID,
	})
}
