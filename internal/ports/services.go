package ports

import (
	"time"

	"github.com/google/uuid"

	"github.com/collabtrack/core/internal/domain/entities"
)

// Request DTOs consumed by the application services. Validation tags are
// enforced at the HTTP boundary; the services re-check the domain rules.

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string         `json:"token"`
	User  *entities.User `json:"user"`
}

// Claims carries the authenticated identity extracted from a token.
type Claims struct {
	UserID uuid.UUID
	Email  string
}

type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type CreateProjectRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"required,max=500"`
	Tags        []string `json:"tags"`
}

type UpdateProjectRequest struct {
	Name          *string      `json:"name" validate:"omitempty,max=100"`
	Description   *string      `json:"description" validate:"omitempty,max=500"`
	Collaborators *[]uuid.UUID `json:"collaborators"`
	Tags          *[]string    `json:"tags"`
}

type AddCollaboratorRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username"`
}

type CreateTaskRequest struct {
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description" validate:"max=1000"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	DueDate     *time.Time  `json:"due_date"`
	AssignedTo  []uuid.UUID `json:"assigned_to"`
	Tags        []string    `json:"tags"`
}

type UpdateTaskRequest struct {
	Title       *string      `json:"title" validate:"omitempty,max=200"`
	Description *string      `json:"description" validate:"omitempty,max=1000"`
	Status      *string      `json:"status"`
	Priority    *string      `json:"priority"`
	DueDate     *time.Time   `json:"due_date"`
	AssignedTo  *[]uuid.UUID `json:"assigned_to"`
	Tags        *[]string    `json:"tags"`
	// Version, when set, must match the stored aggregate or the write is
	// rejected as a conflict.
	Version *int `json:"version"`
}

type AddTodoRequest struct {
	Text       string     `json:"text" validate:"required,max=200"`
	AssignedTo *uuid.UUID `json:"assigned_to"`
	Version    *int       `json:"version"`
}

type UpdateTodoRequest struct {
	Text       *string    `json:"text" validate:"omitempty,max=200"`
	Completed  *bool      `json:"completed"`
	AssignedTo *uuid.UUID `json:"assigned_to"`
	// ClearAssignee distinguishes "unassign" from "leave as is", since a
	// nil AssignedTo means the field was absent.
	ClearAssignee bool `json:"clear_assignee"`
	Version       *int `json:"version"`
}

type AddCommentRequest struct {
	Text string `json:"text" validate:"required"`
}
