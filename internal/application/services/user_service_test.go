package services

import (
	"context"
	"strings"
	"testing"

	"github.com/collabtrack/core/internal/domain/entities"
	"github.com/collabtrack/core/internal/ports"
)

func TestDeleteAccountCascade(t *testing.T) {
	env := newTestEnv()
	leaver := env.addUser(t, "leaver")
	friend := env.addUser(t, "friend")
	ctx := context.Background()

	// The leaver owns a project with tasks and a collaborator.
	ownedProject := env.addProject(t, leaver, friend)
	ownedTask := env.addTask(t, ownedProject)

	// The leaver also collaborates on the friend's project.
	friendProject := env.addProject(t, friend, leaver)
	friendTask := env.addTask(t, friendProject, leaver)

	// A notification referencing the leaver exists beforehand.
	env.dispatcher.Create(ctx, NewNotification{
		Recipient: friend.ID,
		Sender:    &leaver.ID,
		Type:      entities.NotificationTaskAssigned,
		Message:   "old news",
	})

	if err := env.userService.DeleteAccount(ctx, leaver.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}

	if _, err := env.users.GetByID(ctx, leaver.ID); entities.KindOf(err) != entities.KindNotFound {
		t.Fatal("account should be gone")
	}
	if _, err := env.projects.GetByID(ctx, ownedProject.ID); entities.KindOf(err) != entities.KindNotFound {
		t.Fatal("owned project should be gone")
	}
	if _, err := env.tasks.GetByID(ctx, ownedTask.ID); entities.KindOf(err) != entities.KindNotFound {
		t.Fatal("owned project's task should be gone")
	}

	// The friend's project survives, with the leaver removed.
	remaining, err := env.projects.GetByID(ctx, friendProject.ID)
	if err != nil {
		t.Fatalf("friend's project should survive: %v", err)
	}
	if remaining.IsCollaborator(leaver.ID) {
		t.Fatal("leaver still a collaborator on friend's project")
	}

	// The friend's task survives even though its assignee list still names
	// the deleted user; assignment ids are weak references.
	if _, err := env.tasks.GetByID(ctx, friendTask.ID); err != nil {
		t.Fatalf("friend's task should survive: %v", err)
	}

	// Notifications referencing the deleted user are kept as weak references.
	if got := env.countByType(friend.ID, entities.NotificationTaskAssigned); got != 1 {
		t.Fatalf("notification referencing deleted user count = %d, want 1", got)
	}
}

func TestDeleteAccountIsRepeatable(t *testing.T) {
	env := newTestEnv()
	leaver := env.addUser(t, "leaver")
	env.addProject(t, leaver)
	ctx := context.Background()

	if err := env.userService.DeleteAccount(ctx, leaver.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}

	// A second run finds nothing to delete.
	err := env.userService.DeleteAccount(ctx, leaver.ID)
	wantKind(t, err, entities.KindNotFound)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv()
	user := env.addUser(t, "someone")
	ctx := context.Background()

	username := "renamed"
	email := "Renamed@Example.COM"
	updated, err := env.userService.UpdateProfile(ctx, user.ID, ports.UpdateProfileRequest{Username: &username, Email: &email})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Username != "renamed" {
		t.Errorf("username = %q", updated.Username)
	}
	if updated.Email != "renamed@example.com" {
		t.Errorf("email = %q, want lowercased", updated.Email)
	}
	if updated.PasswordHash != "" {
		t.Error("password hash leaked in response")
	}

	short := "ab"
	_, err = env.userService.UpdateProfile(ctx, user.ID, ports.UpdateProfileRequest{Username: &short})
	wantKind(t, err, entities.KindValidation)

	long := strings.Repeat("x", entities.MaxUsernameLen+1)
	_, err = env.userService.UpdateProfile(ctx, user.ID, ports.UpdateProfileRequest{Username: &long})
	wantKind(t, err, entities.KindValidation)
}

func TestUpdatePassword(t *testing.T) {
	env := newTestEnv()
	user := env.addUserWithPassword(t, "someone", "original-pass")
	ctx := context.Background()

	t.Run("wrong current password", func(t *testing.T) {
		err := env.userService.UpdatePassword(ctx, user.ID, ports.UpdatePasswordRequest{
			CurrentPassword: "not-it",
			NewPassword:     "new-password",
		})
		wantKind(t, err, entities.KindForbidden)
	})

	t.Run("too short new password", func(t *testing.T) {
		err := env.userService.UpdatePassword(ctx, user.ID, ports.UpdatePasswordRequest{
			CurrentPassword: "original-pass",
			NewPassword:     "x",
		})
		wantKind(t, err, entities.KindValidation)
	})

	t.Run("success", func(t *testing.T) {
		if err := env.userService.UpdatePassword(ctx, user.ID, ports.UpdatePasswordRequest{
			CurrentPassword: "original-pass",
			NewPassword:     "new-password",
		}); err != nil {
			t.Fatalf("UpdatePassword() error = %v", err)
		}

		// The old password no longer works.
		err := env.userService.UpdatePassword(ctx, user.ID, ports.UpdatePasswordRequest{
			CurrentPassword: "original-pass",
			NewPassword:     "another-password",
		})
		wantKind(t, err, entities.KindForbidden)
	})
}
