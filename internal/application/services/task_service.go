package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/collabtrack/core/internal/domain/entities"
	"github.com/collabtrack/core/internal/infrastructure/logger"
	"github.com/collabtrack/core/internal/ports"
)

// TaskService handles task lifecycle plus the embedded todo and comment
// lists. Todo and comment edits rewrite the whole task aggregate; the
// aggregate's version counter turns a concurrent edit into a conflict
// instead of a silent lost update.
type TaskService struct {
	taskRepo   ports.TaskRepository
	userRepo   ports.UserRepository
	access     *AccessService
	dispatcher *Dispatcher
	logger     *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, userRepo ports.UserRepository, access *AccessService, dispatcher *Dispatcher, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		userRepo:   userRepo,
		access:     access,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Create creates a task in a project the actor is a member of.
func (s *TaskService) Create(ctx context.Context, projectID, actorID uuid.UUID, req ports.CreateTaskRequest) (*entities.Task, error) {
	project, err := s.access.CheckAccess(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, entities.Invalid("Please provide a task title")
	}
	if len(req.Title) > entities.MaxTaskTitleLen {
		return nil, entities.Invalid(fmt.Sprintf("Title cannot exceed %d characters", entities.MaxTaskTitleLen))
	}
	if len(req.Description) > entities.MaxTaskDescriptionLen {
		return nil, entities.Invalid(fmt.Sprintf("Description cannot exceed %d characters", entities.MaxTaskDescriptionLen))
	}

	status := entities.TaskStatusToDo
	if req.Status != "" {
		status = entities.TaskStatus(req.Status)
		if !status.IsValid() {
			return nil, entities.Invalid("Status must be one of: " + strings.Join(entities.TaskStatusValues(), ", "))
		}
	}
	priority := entities.TaskPriorityMedium
	if req.Priority != "" {
		priority = entities.TaskPriority(req.Priority)
		if !priority.IsValid() {
			return nil, entities.Invalid("Priority must be one of: " + strings.Join(entities.TaskPriorityValues(), ", "))
		}
	}

	if err := ValidateTaskAssignment(req.AssignedTo, project); err != nil {
		return nil, err
	}

	task := &entities.Task{
		ID:          uuid.New(),
		ProjectID:   project.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
		AssignedTo:  dedupe(req.AssignedTo),
		Tags:        req.Tags,
		Todos:       []entities.Todo{},
		Comments:    []entities.Comment{},
		Version:     1,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if actor, err := s.userRepo.GetByID(ctx, actorID); err == nil {
		s.dispatcher.TaskCreated(ctx, actor, project, task)
	}

	s.logger.Infow("Task created", "task_id", task.ID, "project_id", project.ID, "actor_id", actorID)
	return task, nil
}

// Get returns a task after authorizing the actor against the parent
// project.
func (s *TaskService) Get(ctx context.Context, taskID, userID uuid.UUID) (*entities.Task, error) {
	task, _, err := s.loadAuthorized(ctx, taskID, userID)
	return task, err
}

// ListByProject returns a project's tasks, newest first.
func (s *TaskService) ListByProject(ctx context.Context, projectID, userID uuid.UUID) ([]*entities.Task, error) {
	if _, err := s.access.CheckAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies field changes to a task. A status change and newly added
// assignees each produce their own notifications; re-saving the same
// status produces none.
func (s *TaskService) Update(ctx context.Context, taskID, actorID uuid.UUID, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, project, err := s.loadAuthorized(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if req.Version != nil {
		// Compare against the client's snapshot, not the fresh load.
		task.Version = *req.Version
	}

	oldStatus := task.Status
	oldAssignees := task.AssignedTo

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, entities.Invalid("Please provide a task title")
		}
		if len(title) > entities.MaxTaskTitleLen {
			return nil, entities.Invalid(fmt.Sprintf("Title cannot exceed %d characters", entities.MaxTaskTitleLen))
		}
		task.Title = title
	}
	if req.Description != nil {
		if len(*req.Description) > entities.MaxTaskDescriptionLen {
			return nil, entities.Invalid(fmt.Sprintf("Description cannot exceed %d characters", entities.MaxTaskDescriptionLen))
		}
		task.Description = *req.Description
	}
	if req.Status != nil {
		status := entities.TaskStatus(*req.Status)
		if !status.IsValid() {
			return nil, entities.Invalid("Status must be one of: " + strings.Join(entities.TaskStatusValues(), ", "))
		}
		task.Status = status
	}
	if req.Priority != nil {
		priority := entities.TaskPriority(*req.Priority)
		if !priority.IsValid() {
			return nil, entities.Invalid("Priority must be one of: " + strings.Join(entities.TaskPriorityValues(), ", "))
		}
		task.Priority = priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Tags != nil {
		task.Tags = *req.Tags
	}

	var added []uuid.UUID
	if req.AssignedTo != nil {
		assignees := dedupe(*req.AssignedTo)
		if err := ValidateTaskAssignment(assignees, project); err != nil {
			return nil, err
		}
		added = diff(assignees, oldAssignees)
		task.AssignedTo = assignees
	}

	task.UpdatedAt = time.Now()
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	actor, actorErr := s.userRepo.GetByID(ctx, actorID)
	if actorErr == nil {
		if task.Status != oldStatus {
			s.dispatcher.TaskStatusChanged(ctx, actor, project, task, oldStatus, task.Status)
		}
		if len(added) > 0 {
			s.dispatcher.TaskAssigneesAdded(ctx, actor, project, task, added)
		}
	}

	s.logger.Infow("Task updated", "task_id", task.ID, "actor_id", actorID)
	return task, nil
}

// Delete removes a task and notifies the remaining project members. The
// member list comes from the parent project resolved before the delete.
func (s *TaskService) Delete(ctx context.Context, taskID, actorID uuid.UUID) error {
	task, project, err := s.loadAuthorized(ctx, taskID, actorID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if actor, err := s.userRepo.GetByID(ctx, actorID); err == nil {
		s.dispatcher.TaskDeleted(ctx, actor, project, task)
	}

	s.logger.Infow("Task deleted", "task_id", task.ID, "actor_id", actorID)
	return nil
}

// AddTodo appends a todo to the task's embedded list.
func (s *TaskService) AddTodo(ctx context.Context, taskID, actorID uuid.UUID, req ports.AddTodoRequest) (*entities.Task, error) {
	task, project, err := s.loadAuthorized(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if req.Version != nil {
		task.Version = *req.Version
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, entities.Invalid("Please provide todo text")
	}
	if len(text) > entities.MaxTodoTextLen {
		return nil, entities.Invalid(fmt.Sprintf("Todo text cannot exceed %d characters", entities.MaxTodoTextLen))
	}
	if len(task.Todos) >= entities.MaxTodosPerTask {
		return nil, entities.Invalid(fmt.Sprintf("A task cannot have more than %d todos", entities.MaxTodosPerTask))
	}
	if err := ValidateTodoAssignment(req.AssignedTo, task, project); err != nil {
		return nil, err
	}

	todo := entities.Todo{
		ID:         uuid.New(),
		Text:       text,
		AssignedTo: req.AssignedTo,
		CreatedAt:  time.Now(),
	}
	task.Todos = append(task.Todos, todo)
	task.UpdatedAt = time.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	if actor, err := s.userRepo.GetByID(ctx, actorID); err == nil {
		s.dispatcher.TodoAdded(ctx, actor, project, task, &todo)
	}

	s.logger.Infow("Todo added", "task_id", task.ID, "todo_id", todo.ID, "actor_id", actorID)
	return task, nil
}

// UpdateTodo edits one todo in place. Completion metadata is set and
// cleared strictly on the 0→1 and 1→0 edges; notifications fire only on
// the 0→1 edge and only on a real reassignment.
func (s *TaskService) UpdateTodo(ctx context.Context, taskID, todoID, actorID uuid.UUID, req ports.UpdateTodoRequest) (*entities.Task, error) {
	task, project, err := s.loadAuthorized(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if req.Version != nil {
		task.Version = *req.Version
	}

	todo := task.FindTodo(todoID)
	if todo == nil {
		return nil, entities.NotFound("Todo not found")
	}

	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			return nil, entities.Invalid("Please provide todo text")
		}
		if len(text) > entities.MaxTodoTextLen {
			return nil, entities.Invalid(fmt.Sprintf("Todo text cannot exceed %d characters", entities.MaxTodoTextLen))
		}
		todo.Text = text
	}

	reassigned := false
	var newAssignee uuid.UUID
	switch {
	case req.ClearAssignee:
		todo.AssignedTo = nil
	case req.AssignedTo != nil:
		if err := ValidateTodoAssignment(req.AssignedTo, task, project); err != nil {
			return nil, err
		}
		if todo.AssignedTo == nil || *todo.AssignedTo != *req.AssignedTo {
			reassigned = true
			newAssignee = *req.AssignedTo
		}
		todo.AssignedTo = req.AssignedTo
	}

	completedEdge := false
	if req.Completed != nil {
		if *req.Completed {
			completedEdge = todo.MarkCompleted(actorID, time.Now())
		} else {
			todo.MarkIncomplete()
		}
	}

	task.UpdatedAt = time.Now()
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	actor, actorErr := s.userRepo.GetByID(ctx, actorID)
	if actorErr == nil {
		if completedEdge {
			s.dispatcher.TodoCompleted(ctx, actor, project, task)
		}
		if reassigned {
			s.dispatcher.TodoReassigned(ctx, actor, project, task, newAssignee)
		}
	}

	s.logger.Infow("Todo updated", "task_id", task.ID, "todo_id", todoID, "actor_id", actorID)
	return task, nil
}

// DeleteTodo removes a todo from the task's list.
func (s *TaskService) DeleteTodo(ctx context.Context, taskID, todoID, actorID uuid.UUID) (*entities.Task, error) {
	task, _, err := s.loadAuthorized(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}

	found := false
	todos := task.Todos[:0]
	for _, todo := range task.Todos {
		if todo.ID == todoID {
			found = true
			continue
		}
		todos = append(todos, todo)
	}
	if !found {
		return nil, entities.NotFound("Todo not found")
	}
	task.Todos = todos
	task.UpdatedAt = time.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Infow("Todo deleted", "task_id", task.ID, "todo_id", todoID, "actor_id", actorID)
	return task, nil
}

// AddComment appends a comment with a snapshot of the author's identity.
func (s *TaskService) AddComment(ctx context.Context, taskID, actorID uuid.UUID, req ports.AddCommentRequest) (*entities.Task, error) {
	task, _, err := s.loadAuthorized(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Text) == "" {
		return nil, entities.Invalid("Please provide comment text")
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("load author: %w", err)
	}

	comment := entities.Comment{
		ID:   uuid.New(),
		Text: strings.TrimSpace(req.Text),
		Author: entities.CommentAuthor{
			Username: actor.Username,
			Email:    actor.Email,
		},
		CreatedAt: time.Now(),
	}
	task.Comments = append(task.Comments, comment)
	task.UpdatedAt = time.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Infow("Comment added", "task_id", task.ID, "comment_id", comment.ID, "actor_id", actorID)
	return task, nil
}

// loadAuthorized resolves a task's parent project and authorizes the user
// against it. There is no task-level ACL.
func (s *TaskService) loadAuthorized(ctx context.Context, taskID, userID uuid.UUID) (*entities.Task, *entities.Project, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}

	project, err := s.access.CheckAccess(ctx, task.ProjectID, userID)
	if err != nil {
		return nil, nil, err
	}

	return task, project, nil
}

// diff returns the ids present in next but not in prev.
func diff(next, prev []uuid.UUID) []uuid.UUID {
	old := make(map[uuid.UUID]struct{}, len(prev))
	for _, id := range prev {
		old[id] = struct{}{}
	}
	var added []uuid.UUID
	for _, id := range next {
		if _, ok := old[id]; !ok {
			added = append(added, id)
		}
	}
	return added
}
