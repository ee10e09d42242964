package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/collabtrack/core/internal/domain/entities"
	"github.com/collabtrack/core/internal/ports"
)

func TestProjectCreateValidation(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	ctx := context.Background()

	tests := []struct {
		name string
		req  ports.CreateProjectRequest
	}{
		{"missing name", ports.CreateProjectRequest{Description: "d"}},
		{"missing description", ports.CreateProjectRequest{Name: "n"}},
		{"blank name", ports.CreateProjectRequest{Name: "   ", Description: "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.projectService.Create(ctx, owner.ID, tt.req)
			wantKind(t, err, entities.KindValidation)
		})
	}
}

func TestProjectCreateSetsOwner(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")

	project, err := env.projectService.Create(context.Background(), owner.ID, ports.CreateProjectRequest{
		Name:        "Roadmap",
		Description: "Quarterly planning",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if project.OwnerID != owner.ID {
		t.Errorf("owner = %v, want %v", project.OwnerID, owner.ID)
	}
	if project.Tags == nil {
		t.Error("tags should default to empty, not nil")
	}
}

func TestProjectGetMembershipGate(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	collaborator := env.addUser(t, "collaborator")
	outsider := env.addUser(t, "outsider")
	project := env.addProject(t, owner, collaborator)
	ctx := context.Background()

	if _, err := env.projectService.Get(ctx, project.ID, collaborator.ID); err != nil {
		t.Fatalf("Get() as collaborator error = %v", err)
	}

	_, err := env.projectService.Get(ctx, project.ID, outsider.ID)
	wantKind(t, err, entities.KindForbidden)
}

func TestProjectUpdateOwnerOnly(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	collaborator := env.addUser(t, "collaborator")
	project := env.addProject(t, owner, collaborator)

	name := "New name"
	_, err := env.projectService.Update(context.Background(), project.ID, collaborator.ID, ports.UpdateProjectRequest{Name: &name})
	wantKind(t, err, entities.KindForbidden)
}

func TestProjectUpdateRejectsOwnerAsCollaborator(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	collaborator := env.addUser(t, "collaborator")
	project := env.addProject(t, owner, collaborator)

	collaborators := []uuid.UUID{collaborator.ID, owner.ID}
	_, err := env.projectService.Update(context.Background(), project.ID, owner.ID, ports.UpdateProjectRequest{Collaborators: &collaborators})
	wantKind(t, err, entities.KindValidation)
}

func TestProjectUpdateDedupesCollaborators(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	collaborator := env.addUser(t, "collaborator")
	project := env.addProject(t, owner)

	collaborators := []uuid.UUID{collaborator.ID, collaborator.ID}
	updated, err := env.projectService.Update(context.Background(), project.ID, owner.ID, ports.UpdateProjectRequest{Collaborators: &collaborators})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(updated.Collaborators) != 1 {
		t.Fatalf("collaborator count = %d, want 1", len(updated.Collaborators))
	}
}

func TestProjectUpdateNotifiesMembers(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	collaborator := env.addUser(t, "collaborator")
	project := env.addProject(t, owner, collaborator)

	name := "Renamed"
	if _, err := env.projectService.Update(context.Background(), project.ID, owner.ID, ports.UpdateProjectRequest{Name: &name}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if got := env.countByType(collaborator.ID, entities.NotificationProjectUpdated); got != 1 {
		t.Fatalf("PROJECT_UPDATED count = %d, want 1", got)
	}
	if got := len(env.notificationsFor(owner.ID)); got != 0 {
		t.Fatalf("actor received %d notifications, want 0", got)
	}
}

func TestAddCollaborator(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	invitee := env.addUser(t, "invitee")
	project := env.addProject(t, owner)
	ctx := context.Background()

	updated, err := env.projectService.AddCollaborator(ctx, project.ID, owner.ID, ports.AddCollaboratorRequest{Email: invitee.Email})
	if err != nil {
		t.Fatalf("AddCollaborator() error = %v", err)
	}
	if !updated.IsCollaborator(invitee.ID) {
		t.Fatal("invitee not in collaborator set")
	}
	if got := env.countByType(invitee.ID, entities.NotificationProjectInvite); got != 1 {
		t.Fatalf("PROJECT_INVITE count = %d, want 1", got)
	}

	t.Run("duplicate is rejected", func(t *testing.T) {
		_, err := env.projectService.AddCollaborator(ctx, project.ID, owner.ID, ports.AddCollaboratorRequest{Email: invitee.Email})
		wantKind(t, err, entities.KindValidation)
	})

	t.Run("owner cannot be added", func(t *testing.T) {
		_, err := env.projectService.AddCollaborator(ctx, project.ID, owner.ID, ports.AddCollaboratorRequest{Email: owner.Email})
		wantKind(t, err, entities.KindValidation)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		_, err := env.projectService.AddCollaborator(ctx, project.ID, owner.ID, ports.AddCollaboratorRequest{Email: "nobody@example.com"})
		wantKind(t, err, entities.KindNotFound)
	})

	t.Run("missing identifier is invalid", func(t *testing.T) {
		_, err := env.projectService.AddCollaborator(ctx, project.ID, owner.ID, ports.AddCollaboratorRequest{})
		wantKind(t, err, entities.KindValidation)
	})
}

func TestAddCollaboratorByUsername(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	invitee := env.addUser(t, "invitee")
	project := env.addProject(t, owner)

	updated, err := env.projectService.AddCollaborator(context.Background(), project.ID, owner.ID, ports.AddCollaboratorRequest{Username: invitee.Username})
	if err != nil {
		t.Fatalf("AddCollaborator() error = %v", err)
	}
	if !updated.IsCollaborator(invitee.ID) {
		t.Fatal("invitee not in collaborator set")
	}
}

func TestRemoveCollaboratorNotifiesRemovedUser(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	collaborator := env.addUser(t, "collaborator")
	project := env.addProject(t, owner, collaborator)

	updated, err := env.projectService.RemoveCollaborator(context.Background(), project.ID, owner.ID, collaborator.ID)
	if err != nil {
		t.Fatalf("RemoveCollaborator() error = %v", err)
	}
	if updated.IsCollaborator(collaborator.ID) {
		t.Fatal("collaborator still in set")
	}
	if got := env.countByType(collaborator.ID, entities.NotificationProjectRemoved); got != 1 {
		t.Fatalf("PROJECT_REMOVED count = %d, want 1", got)
	}
}

func TestProjectDeleteCascadesTasks(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	collaborator := env.addUser(t, "collaborator")
	project := env.addProject(t, owner, collaborator)
	task := env.addTask(t, project)
	otherProject := env.addProject(t, owner)
	otherTask := env.addTask(t, otherProject)
	ctx := context.Background()

	if err := env.projectService.Delete(ctx, project.ID, owner.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := env.projects.GetByID(ctx, project.ID); entities.KindOf(err) != entities.KindNotFound {
		t.Fatal("project should be gone")
	}
	if _, err := env.tasks.GetByID(ctx, task.ID); entities.KindOf(err) != entities.KindNotFound {
		t.Fatal("project's task should be gone")
	}
	if _, err := env.tasks.GetByID(ctx, otherTask.ID); err != nil {
		t.Fatal("unrelated task should survive")
	}
	if got := env.countByType(collaborator.ID, entities.NotificationProjectDeleted); got != 1 {
		t.Fatalf("PROJECT_DELETED count = %d, want 1", got)
	}
}

func TestProjectDeleteOwnerOnly(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	collaborator := env.addUser(t, "collaborator")
	project := env.addProject(t, owner, collaborator)

	err := env.projectService.Delete(context.Background(), project.ID, collaborator.ID)
	wantKind(t, err, entities.KindForbidden)
}
