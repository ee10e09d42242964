package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/collabtrack/core/internal/domain/entities"
	"github.com/collabtrack/core/internal/infrastructure/logger"
	"github.com/collabtrack/core/internal/ports"
)

// UserService handles profile operations and the account-deletion
// cascade.
type UserService struct {
	userRepo    ports.UserRepository
	projectRepo ports.ProjectRepository
	taskRepo    ports.TaskRepository
	logger      *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo ports.UserRepository, projectRepo ports.ProjectRepository, taskRepo ports.TaskRepository, logger *logger.Logger) *UserService {
	return &UserService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		logger:      logger,
	}
}

// Get returns the user's profile without the password hash.
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile updates username and/or email. Collisions with another
// account surface as conflicts.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req ports.UpdateProfileRequest) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if len(username) < entities.MinUsernameLen {
			return nil, entities.Invalid(fmt.Sprintf("Username must be at least %d characters long", entities.MinUsernameLen))
		}
		if len(username) > entities.MaxUsernameLen {
			return nil, entities.Invalid(fmt.Sprintf("Username cannot exceed %d characters", entities.MaxUsernameLen))
		}
		user.Username = username
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, entities.Invalid("Email is required")
		}
		user.Email = email
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Infow("Profile updated", "user_id", user.ID)

	user.PasswordHash = ""
	return user, nil
}

// UpdatePassword replaces the password after verifying the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, req ports.UpdatePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return entities.Invalid("Please provide current password and new password")
	}
	if len(req.NewPassword) < entities.MinPasswordLen {
		return entities.Invalid(fmt.Sprintf("New password must be at least %d characters long", entities.MinPasswordLen))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return entities.Forbidden("Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Infow("Password updated", "user_id", user.ID)
	return nil
}

// DeleteAccount unwinds everything that references the user, then removes
// the account. The steps run in order because later ones depend on ids
// gathered earlier, and each is idempotent so a partial failure can be
// resumed by re-running the whole sequence. Notifications that reference
// the user are deliberately left behind as weak references.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	// 1. Collect the projects the user owns.
	owned, err := s.projectRepo.ListOwnedBy(ctx, userID)
	if err != nil {
		return fmt.Errorf("list owned projects: %w", err)
	}
	ownedIDs := make([]uuid.UUID, len(owned))
	for i, project := range owned {
		ownedIDs[i] = project.ID
	}

	// 2. Delete every task under those projects.
	if len(ownedIDs) > 0 {
		if err := s.taskRepo.DeleteByProjects(ctx, ownedIDs); err != nil {
			return fmt.Errorf("delete tasks of owned projects: %w", err)
		}
	}

	// 3. Delete the owned projects themselves.
	if err := s.projectRepo.DeleteOwnedBy(ctx, userID); err != nil {
		return fmt.Errorf("delete owned projects: %w", err)
	}

	// 4. Pull the user out of every other project's collaborator set.
	if err := s.projectRepo.RemoveCollaboratorEverywhere(ctx, userID); err != nil {
		return fmt.Errorf("remove collaborations: %w", err)
	}

	// 5. Remove the account.
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Infow("Account deleted",
		"user_id", userID,
		"owned_projects", len(ownedIDs),
	)
	return nil
}
