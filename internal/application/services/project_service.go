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

// ProjectService handles project lifecycle and collaborator management.
type ProjectService struct {
	projectRepo ports.ProjectRepository
	taskRepo    ports.TaskRepository
	userRepo    ports.UserRepository
	access      *AccessService
	dispatcher  *Dispatcher
	logger      *logger.Logger
}

// NewProjectService creates a new project service
func NewProjectService(projectRepo ports.ProjectRepository, taskRepo ports.TaskRepository, userRepo ports.UserRepository, access *AccessService, dispatcher *Dispatcher, logger *logger.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		access:      access,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// Create creates a project owned by the acting user.
func (s *ProjectService) Create(ctx context.Context, actorID uuid.UUID, req ports.CreateProjectRequest) (*entities.Project, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, entities.Invalid("Please provide name and description")
	}
	if len(req.Name) > entities.MaxProjectNameLen {
		return nil, entities.Invalid(fmt.Sprintf("Project name cannot exceed %d characters", entities.MaxProjectNameLen))
	}
	if len(req.Description) > entities.MaxProjectDescriptionLen {
		return nil, entities.Invalid(fmt.Sprintf("Description cannot exceed %d characters", entities.MaxProjectDescriptionLen))
	}

	project := &entities.Project{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		OwnerID:     actorID,
		Tags:        req.Tags,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if project.Tags == nil {
		project.Tags = []string{}
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.logger.Infow("Project created", "project_id", project.ID, "owner_id", actorID)
	return project, nil
}

// List returns every project the user owns or collaborates on.
func (s *ProjectService) List(ctx context.Context, userID uuid.UUID) ([]*entities.Project, error) {
	projects, err := s.projectRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Get returns a project the user is a member of.
func (s *ProjectService) Get(ctx context.Context, projectID, userID uuid.UUID) (*entities.Project, error) {
	return s.access.CheckAccess(ctx, projectID, userID)
}

// Update applies owner-only changes and broadcasts the update to the
// remaining members.
func (s *ProjectService) Update(ctx context.Context, projectID, actorID uuid.UUID, req ports.UpdateProjectRequest) (*entities.Project, error) {
	project, err := s.access.CheckOwner(ctx, projectID, actorID, "Not authorized to update this project")
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, entities.Invalid("Project name is required")
		}
		if len(name) > entities.MaxProjectNameLen {
			return nil, entities.Invalid(fmt.Sprintf("Project name cannot exceed %d characters", entities.MaxProjectNameLen))
		}
		project.Name = name
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, entities.Invalid("Project description is required")
		}
		if len(description) > entities.MaxProjectDescriptionLen {
			return nil, entities.Invalid(fmt.Sprintf("Description cannot exceed %d characters", entities.MaxProjectDescriptionLen))
		}
		project.Description = description
	}
	if req.Collaborators != nil {
		for _, id := range *req.Collaborators {
			if id == project.OwnerID {
				return nil, entities.Invalid("Owner cannot be added as collaborator")
			}
		}
		project.Collaborators = dedupe(*req.Collaborators)
	}
	if req.Tags != nil {
		project.Tags = *req.Tags
	}
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	if actor, err := s.userRepo.GetByID(ctx, actorID); err == nil {
		s.dispatcher.ProjectUpdated(ctx, actor, project)
	}

	s.logger.Infow("Project updated", "project_id", project.ID, "actor_id", actorID)
	return project, nil
}

// Delete removes a project and all of its tasks, notifying the remaining
// members first while their membership is still resolvable.
func (s *ProjectService) Delete(ctx context.Context, projectID, actorID uuid.UUID) error {
	project, err := s.access.CheckOwner(ctx, projectID, actorID, "Not authorized to delete this project")
	if err != nil {
		return err
	}

	if actor, err := s.userRepo.GetByID(ctx, actorID); err == nil {
		s.dispatcher.ProjectDeleted(ctx, actor, project)
	}

	// The project owns its task set; tasks go first, then the project.
	// The two writes are not transactional: a crash in between leaves
	// the project without tasks, which is harmless.
	if err := s.taskRepo.DeleteByProjects(ctx, []uuid.UUID{project.ID}); err != nil {
		return fmt.Errorf("delete project tasks: %w", err)
	}
	if err := s.projectRepo.Delete(ctx, project.ID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	s.logger.Infow("Project deleted", "project_id", project.ID, "actor_id", actorID)
	return nil
}

// AddCollaborator adds a user, found by email or username, to the
// project's collaborator set and notifies them.
func (s *ProjectService) AddCollaborator(ctx context.Context, projectID, actorID uuid.UUID, req ports.AddCollaboratorRequest) (*entities.Project, error) {
	if req.Email == "" && req.Username == "" {
		return nil, entities.Invalid("Please provide email or username")
	}

	project, err := s.access.CheckOwner(ctx, projectID, actorID, "Not authorized to add collaborators")
	if err != nil {
		return nil, err
	}

	var user *entities.User
	if req.Email != "" {
		user, err = s.userRepo.GetByEmail(ctx, req.Email)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, req.Username)
	}
	if err != nil {
		return nil, err
	}

	if project.IsCollaborator(user.ID) {
		return nil, entities.Invalid("User is already a collaborator")
	}
	if project.IsOwner(user.ID) {
		return nil, entities.Invalid("Owner cannot be added as collaborator")
	}

	if err := s.projectRepo.AddCollaborator(ctx, project.ID, user.ID); err != nil {
		return nil, fmt.Errorf("add collaborator: %w", err)
	}
	project.Collaborators = append(project.Collaborators, user.ID)

	if actor, err := s.userRepo.GetByID(ctx, actorID); err == nil {
		s.dispatcher.CollaboratorAdded(ctx, actor, project, user.ID)
	}

	s.logger.Infow("Collaborator added", "project_id", project.ID, "user_id", user.ID, "actor_id", actorID)
	return project, nil
}

// RemoveCollaborator removes a user from the collaborator set. The
// notification is sent before the removal is persisted so the recipient
// is still resolvable as a member.
func (s *ProjectService) RemoveCollaborator(ctx context.Context, projectID, actorID, userID uuid.UUID) (*entities.Project, error) {
	project, err := s.access.CheckOwner(ctx, projectID, actorID, "Not authorized to remove collaborators")
	if err != nil {
		return nil, err
	}

	if actor, err := s.userRepo.GetByID(ctx, actorID); err == nil {
		s.dispatcher.CollaboratorRemoved(ctx, actor, project, userID)
	}

	if err := s.projectRepo.RemoveCollaborator(ctx, project.ID, userID); err != nil {
		return nil, fmt.Errorf("remove collaborator: %w", err)
	}

	remaining := project.Collaborators[:0]
	for _, id := range project.Collaborators {
		if id != userID {
			remaining = append(remaining, id)
		}
	}
	project.Collaborators = remaining

	s.logger.Infow("Collaborator removed", "project_id", project.ID, "user_id", userID, "actor_id", actorID)
	return project, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
