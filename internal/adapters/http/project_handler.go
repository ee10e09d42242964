package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/collabtrack/core/internal/application/services"
	"github.com/collabtrack/core/internal/infrastructure/logger"
	"github.com/collabtrack/core/internal/ports"
)

// ProjectHandler handles project and collaborator requests
type ProjectHandler struct {
	projectService *services.ProjectService
	taskService    *services.TaskService
	logger         *logger.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *services.ProjectService, taskService *services.TaskService, logger *logger.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		taskService:    taskService,
		logger:         logger,
	}
}

// CreateProject handles project creation
func (h *ProjectHandler) CreateProject(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project, err := h.projectService.Create(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, project)
}

// ListProjects returns every project the user is a member of
func (h *ProjectHandler) ListProjects(c echo.Context) error {
	userID := getUserIDFromContext(c)

	projects, err := h.projectService.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, projects)
}

// GetProject returns one project if the user is a member
func (h *ProjectHandler) GetProject(c echo.Context) error {
	userID := getUserIDFromContext(c)

	projectID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	project, err := h.projectService.Get(c.Request().Context(), projectID, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, project)
}

// UpdateProject handles owner-only project edits
func (h *ProjectHandler) UpdateProject(c echo.Context) error {
	userID := getUserIDFromContext(c)

	projectID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project, err := h.projectService.Update(c.Request().Context(), projectID, userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, project)
}

// DeleteProject handles owner-only project deletion
func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	userID := getUserIDFromContext(c)

	projectID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.projectService.Delete(c.Request().Context(), projectID, userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Project deleted successfully"})
}

// AddCollaborator invites a user to the project by email or username
func (h *ProjectHandler) AddCollaborator(c echo.Context) error {
	userID := getUserIDFromContext(c)

	projectID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.AddCollaboratorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	project, err := h.projectService.AddCollaborator(c.Request().Context(), projectID, userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, project)
}

// RemoveCollaborator removes a user from the project
func (h *ProjectHandler) RemoveCollaborator(c echo.Context) error {
	userID := getUserIDFromContext(c)

	projectID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	collaboratorID, err := parseIDParam(c, "userId")
	if err != nil {
		return err
	}

	project, err := h.projectService.RemoveCollaborator(c.Request().Context(), projectID, userID, collaboratorID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, project)
}

// GetProjectTasks lists the tasks under a project
func (h *ProjectHandler) GetProjectTasks(c echo.Context) error {
	userID := getUserIDFromContext(c)

	projectID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	tasks, err := h.taskService.ListByProject(c.Request().Context(), projectID, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tasks)
}

// CreateProjectTask creates a task under a project
func (h *ProjectHandler) CreateProjectTask(c echo.Context) error {
	userID := getUserIDFromContext(c)

	projectID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.Create(c.Request().Context(), projectID, userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, task)
}
