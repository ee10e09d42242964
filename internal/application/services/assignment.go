package services

import (
	"github.com/google/uuid"

	"github.com/collabtrack/core/internal/domain/entities"
)

// Assignment validation. Pure decision functions with no side effects.
//
// Assignment is a narrowing relation: task assignment narrows the project
// member pool, and todo assignment narrows the task assignee pool (or the
// project pool when the task has no assignees of its own).

// ValidateTaskAssignment accepts an assignee list iff every id is a member
// of the project. An empty list is always valid and means the task is open
// to all members.
func ValidateTaskAssignment(assignees []uuid.UUID, project *entities.Project) error {
	for _, id := range assignees {
		if !project.IsMember(id) {
			return entities.Invalid("Can only assign tasks to project owner or collaborators")
		}
	}
	return nil
}

// ValidateTodoAssignment applies the two-tier rule: when the task has
// assignees, the todo's assignee must be one of them; otherwise any
// project member is valid. A nil assignee (unassign) is always valid.
func ValidateTodoAssignment(assignee *uuid.UUID, task *entities.Task, project *entities.Project) error {
	if assignee == nil {
		return nil
	}

	if len(task.AssignedTo) > 0 {
		if !task.IsAssignee(*assignee) {
			return entities.Invalid("Todo can only be assigned to users assigned to this task")
		}
		return nil
	}

	if !project.IsMember(*assignee) {
		return entities.Invalid("Todo can only be assigned to project owner or collaborators")
	}
	return nil
}
