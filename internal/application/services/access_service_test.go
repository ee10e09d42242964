package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/collabtrack/core/internal/domain/entities"
)

func TestCheckAccess(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	collaborator := env.addUser(t, "collaborator")
	outsider := env.addUser(t, "outsider")
	project := env.addProject(t, owner, collaborator)

	access := NewAccessService(env.projects)
	ctx := context.Background()

	t.Run("owner has access", func(t *testing.T) {
		got, err := access.CheckAccess(ctx, project.ID, owner.ID)
		if err != nil {
			t.Fatalf("CheckAccess() error = %v", err)
		}
		if got.ID != project.ID {
			t.Fatalf("got project %v, want %v", got.ID, project.ID)
		}
	})

	t.Run("collaborator has access", func(t *testing.T) {
		if _, err := access.CheckAccess(ctx, project.ID, collaborator.ID); err != nil {
			t.Fatalf("CheckAccess() error = %v", err)
		}
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		_, err := access.CheckAccess(ctx, project.ID, outsider.ID)
		wantKind(t, err, entities.KindForbidden)
	})

	t.Run("missing project is not found", func(t *testing.T) {
		_, err := access.CheckAccess(ctx, uuid.New(), owner.ID)
		wantKind(t, err, entities.KindNotFound)
	})
}

func TestCheckOwner(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	collaborator := env.addUser(t, "collaborator")
	project := env.addProject(t, owner, collaborator)

	access := NewAccessService(env.projects)
	ctx := context.Background()

	if _, err := access.CheckOwner(ctx, project.ID, owner.ID, "denied"); err != nil {
		t.Fatalf("CheckOwner() for owner error = %v", err)
	}

	_, err := access.CheckOwner(ctx, project.ID, collaborator.ID, "denied")
	wantKind(t, err, entities.KindForbidden)
	if err.Error() != "denied" {
		t.Fatalf("denied message = %q, want %q", err.Error(), "denied")
	}
}
