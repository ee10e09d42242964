package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/collabtrack/core/internal/domain/entities"
	"github.com/collabtrack/core/internal/ports"
)

// AccessService decides whether a user may view or mutate a project.
// Task-level operations have no ACL of their own; they resolve the parent
// project and delegate here.
type AccessService struct {
	projectRepo ports.ProjectRepository
}

// NewAccessService creates a new access service
func NewAccessService(projectRepo ports.ProjectRepository) *AccessService {
	return &AccessService{projectRepo: projectRepo}
}

// CheckAccess loads the project and authorizes the user as a member
// (owner or collaborator). Returns the project on success so callers can
// reuse it without a second load.
func (s *AccessService) CheckAccess(ctx context.Context, projectID, userID uuid.UUID) (*entities.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if entities.KindOf(err) == entities.KindNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("load project: %w", err)
	}

	if !project.IsMember(userID) {
		return nil, entities.Forbidden("Not authorized to access this project")
	}

	return project, nil
}

// CheckOwner authorizes owner-only mutations (project update/delete,
// collaborator changes). denied is the message returned when the user is
// a member but not the owner.
func (s *AccessService) CheckOwner(ctx context.Context, projectID, userID uuid.UUID, denied string) (*entities.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if entities.KindOf(err) == entities.KindNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("load project: %w", err)
	}

	if !project.IsOwner(userID) {
		return nil, entities.Forbidden(denied)
	}

	return project, nil
}
