package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Field limits, carried by the persistence schema and validated in the services.
const (
	MaxProjectNameLen        = 100
	MaxProjectDescriptionLen = 500
	MaxTaskTitleLen          = 200
	MaxTaskDescriptionLen    = 1000
	MaxTodoTextLen           = 200
	MaxNotificationMsgLen    = 500
	MaxTodosPerTask          = 50
	MinUsernameLen           = 3
	MaxUsernameLen           = 50
	MinPasswordLen           = 6
)

// NotificationRetention is how long notification records are kept before
// they become eligible for purging.
const NotificationRetention = 30 * 24 * time.Hour

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
)

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// TaskStatusValues lists the accepted status values, used to build
// validation messages.
func TaskStatusValues() []string {
	return []string{string(TaskStatusToDo), string(TaskStatusInProgress), string(TaskStatusDone)}
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

func (tp TaskPriority) IsValid() bool {
	switch tp {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

func TaskPriorityValues() []string {
	return []string{string(TaskPriorityLow), string(TaskPriorityMedium), string(TaskPriorityHigh)}
}

// NotificationType is the closed set of events a notification can describe.
type NotificationType string

const (
	NotificationProjectInvite     NotificationType = "PROJECT_INVITE"
	NotificationProjectRemoved    NotificationType = "PROJECT_REMOVED"
	NotificationProjectUpdated    NotificationType = "PROJECT_UPDATED"
	NotificationProjectDeleted    NotificationType = "PROJECT_DELETED"
	NotificationTaskCreated       NotificationType = "TASK_CREATED"
	NotificationTaskAssigned      NotificationType = "TASK_ASSIGNED"
	NotificationTaskStatusChanged NotificationType = "TASK_STATUS_CHANGED"
	NotificationTaskDeleted       NotificationType = "TASK_DELETED"
	NotificationTodoAdded         NotificationType = "TODO_ADDED"
	NotificationTodoAssigned      NotificationType = "TODO_ASSIGNED"
	NotificationTodoCompleted     NotificationType = "TODO_COMPLETED"
	NotificationAllTodosCompleted NotificationType = "ALL_TODOS_COMPLETED"
)

func (nt NotificationType) IsValid() bool {
	switch nt {
	case NotificationProjectInvite, NotificationProjectRemoved,
		NotificationProjectUpdated, NotificationProjectDeleted,
		NotificationTaskCreated, NotificationTaskAssigned,
		NotificationTaskStatusChanged, NotificationTaskDeleted,
		NotificationTodoAdded, NotificationTodoAssigned,
		NotificationTodoCompleted, NotificationAllTodosCompleted:
		return true
	default:
		return false
	}
}

// User represents an account. Passwords are stored hashed; the hash never
// leaves the API.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Project groups tasks under one owner plus a set of collaborators.
// The owner is never part of the collaborator set.
type Project struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	Name          string      `json:"name" db:"name"`
	Description   string      `json:"description" db:"description"`
	OwnerID       uuid.UUID   `json:"owner_id" db:"owner_id"`
	Collaborators []uuid.UUID `json:"collaborators"`
	Tags          []string    `json:"tags"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

func (p *Project) IsOwner(userID uuid.UUID) bool {
	return p.OwnerID == userID
}

func (p *Project) IsCollaborator(userID uuid.UUID) bool {
	for _, id := range p.Collaborators {
		if id == userID {
			return true
		}
	}
	return false
}

// IsMember reports whether the user is the owner or a collaborator.
func (p *Project) IsMember(userID uuid.UUID) bool {
	return p.IsOwner(userID) || p.IsCollaborator(userID)
}

// Members returns the owner plus all collaborators, optionally excluding
// one user (typically the acting user, so a broadcast skips them). Pass
// uuid.Nil to exclude nobody.
func (p *Project) Members(exclude uuid.UUID) []uuid.UUID {
	members := make([]uuid.UUID, 0, len(p.Collaborators)+1)
	if p.OwnerID != exclude {
		members = append(members, p.OwnerID)
	}
	for _, id := range p.Collaborators {
		if id != exclude {
			members = append(members, id)
		}
	}
	return members
}

// Task belongs to exactly one project and carries its todo and comment
// lists as part of the same aggregate. Version guards against concurrent
// whole-aggregate writes.
type Task struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	ProjectID   uuid.UUID    `json:"project_id" db:"project_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	Status      TaskStatus   `json:"status" db:"status"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	DueDate     *time.Time   `json:"due_date" db:"due_date"`
	AssignedTo  []uuid.UUID  `json:"assigned_to"`
	Tags        []string     `json:"tags"`
	Todos       []Todo       `json:"todos"`
	Comments    []Comment    `json:"comments"`
	Version     int          `json:"version" db:"version"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

func (t *Task) IsAssignee(userID uuid.UUID) bool {
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// FindTodo returns a pointer into the task's todo list, or nil.
func (t *Task) FindTodo(todoID uuid.UUID) *Todo {
	for i := range t.Todos {
		if t.Todos[i].ID == todoID {
			return &t.Todos[i]
		}
	}
	return nil
}

// AllTodosCompleted reports whether every todo is done. An empty list
// counts as not completed.
func (t *Task) AllTodosCompleted() bool {
	if len(t.Todos) == 0 {
		return false
	}
	for _, todo := range t.Todos {
		if !todo.Completed {
			return false
		}
	}
	return true
}

// TodoProgress returns the completed percentage of the todo list, rounded
// to the nearest integer.
func (t *Task) TodoProgress() int {
	if len(t.Todos) == 0 {
		return 0
	}
	completed := 0
	for _, todo := range t.Todos {
		if todo.Completed {
			completed++
		}
	}
	return int(float64(completed)/float64(len(t.Todos))*100 + 0.5)
}

// MarshalJSON adds the computed todo completion percentage to the
// serialized task.
func (t Task) MarshalJSON() ([]byte, error) {
	type taskAlias Task
	return json.Marshal(struct {
		taskAlias
		TodoProgress int `json:"todo_progress"`
	}{taskAlias(t), t.TodoProgress()})
}

// Todo is an embedded checklist item on a task.
type Todo struct {
	ID          uuid.UUID  `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CompletedBy *uuid.UUID `json:"completed_by"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MarkCompleted records the completion edge. It is a no-op on an already
// completed todo so the metadata keeps its original values.
func (td *Todo) MarkCompleted(by uuid.UUID, at time.Time) bool {
	if td.Completed {
		return false
	}
	td.Completed = true
	td.CompletedAt = &at
	td.CompletedBy = &by
	return true
}

// MarkIncomplete reverses completion and clears the completion metadata.
func (td *Todo) MarkIncomplete() bool {
	if !td.Completed {
		return false
	}
	td.Completed = false
	td.CompletedAt = nil
	td.CompletedBy = nil
	return true
}

// Comment is an embedded task comment. The author is snapshotted at write
// time so the comment stays readable after the account changes or goes away.
type Comment struct {
	ID        uuid.UUID     `json:"id"`
	Text      string        `json:"text"`
	Author    CommentAuthor `json:"author"`
	CreatedAt time.Time     `json:"created_at"`
}

type CommentAuthor struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Notification is an independent record referencing users, projects and
// tasks by id only. Referents may be deleted out from under it; readers
// must tolerate dangling ids.
type Notification struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	RecipientID uuid.UUID        `json:"recipient_id" db:"recipient_id"`
	SenderID    *uuid.UUID       `json:"sender_id" db:"sender_id"`
	Type        NotificationType `json:"type" db:"type"`
	Message     string           `json:"message" db:"message"`
	ProjectID   *uuid.UUID       `json:"project_id" db:"project_id"`
	TaskID      *uuid.UUID       `json:"task_id" db:"task_id"`
	IsRead      bool             `json:"is_read" db:"is_read"`
	ReadAt      *time.Time       `json:"read_at" db:"read_at"`
	Data        map[string]any   `json:"data"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}
