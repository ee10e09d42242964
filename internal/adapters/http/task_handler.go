package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/collabtrack/core/internal/application/services"
	"github.com/collabtrack/core/internal/infrastructure/logger"
	"github.com/collabtrack/core/internal/ports"
)

// TaskHandler handles task, todo and comment requests
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// GetTask returns one task if the user can access its project
func (h *TaskHandler) GetTask(c echo.Context) error {
	userID := getUserIDFromContext(c)

	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	task, err := h.taskService.Get(c.Request().Context(), taskID, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial update to the task aggregate
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	userID := getUserIDFromContext(c)

	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.Update(c.Request().Context(), taskID, userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task from its project
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	userID := getUserIDFromContext(c)

	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.taskService.Delete(c.Request().Context(), taskID, userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

// AddTodo appends a checklist item to the task
func (h *TaskHandler) AddTodo(c echo.Context) error {
	userID := getUserIDFromContext(c)

	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.AddTodoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.AddTodo(c.Request().Context(), taskID, userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, task)
}

// UpdateTodo edits, completes or reassigns a checklist item
func (h *TaskHandler) UpdateTodo(c echo.Context) error {
	userID := getUserIDFromContext(c)

	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	todoID, err := parseIDParam(c, "todoId")
	if err != nil {
		return err
	}

	var req ports.UpdateTodoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.UpdateTodo(c.Request().Context(), taskID, todoID, userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTodo removes a checklist item from the task
func (h *TaskHandler) DeleteTodo(c echo.Context) error {
	userID := getUserIDFromContext(c)

	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	todoID, err := parseIDParam(c, "todoId")
	if err != nil {
		return err
	}

	task, err := h.taskService.DeleteTodo(c.Request().Context(), taskID, todoID, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// AddComment appends a comment to the task
func (h *TaskHandler) AddComment(c echo.Context) error {
	userID := getUserIDFromContext(c)

	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.AddCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.AddComment(c.Request().Context(), taskID, userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, task)
}
