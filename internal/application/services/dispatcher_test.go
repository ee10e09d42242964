package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/collabtrack/core/internal/domain/entities"
)

func TestDispatcherSuppressesSelfNotification(t *testing.T) {
	env := newTestEnv()
	actor := uuid.New()

	created := env.dispatcher.Create(context.Background(), NewNotification{
		Recipient: actor,
		Sender:    &actor,
		Type:      entities.NotificationTaskCreated,
		Message:   "should never be stored",
	})

	if created != nil {
		t.Fatalf("expected self-notification to be suppressed, got %+v", created)
	}
	if len(env.notifications.items) != 0 {
		t.Fatalf("expected no stored notifications, got %d", len(env.notifications.items))
	}
}

func TestDispatcherAllowsNilSender(t *testing.T) {
	env := newTestEnv()
	recipient := uuid.New()

	created := env.dispatcher.Create(context.Background(), NewNotification{
		Recipient: recipient,
		Type:      entities.NotificationProjectDeleted,
		Message:   "system message",
	})

	if created == nil {
		t.Fatal("expected notification to be created")
	}
	if created.SenderID != nil {
		t.Fatalf("expected nil sender, got %v", created.SenderID)
	}
}

func TestDispatcherAbsorbsStorageFailure(t *testing.T) {
	env := newTestEnv()
	env.notifications.failCreate = true
	sender := uuid.New()

	created := env.dispatcher.Create(context.Background(), NewNotification{
		Recipient: uuid.New(),
		Sender:    &sender,
		Type:      entities.NotificationTaskAssigned,
		Message:   "lost to the void",
	})

	if created != nil {
		t.Fatalf("expected nil on storage failure, got %+v", created)
	}
}

func TestFanoutSkipsActorAndCollectsCreated(t *testing.T) {
	env := newTestEnv()
	actor := uuid.New()
	other1 := uuid.New()
	other2 := uuid.New()

	created := env.dispatcher.Fanout(context.Background(), []uuid.UUID{actor, other1, other2}, NewNotification{
		Sender:  &actor,
		Type:    entities.NotificationProjectUpdated,
		Message: "updated",
	})

	if len(created) != 2 {
		t.Fatalf("expected 2 created notifications, got %d", len(created))
	}
	for _, n := range created {
		if n.RecipientID == actor {
			t.Fatal("actor received their own notification")
		}
	}
}

func TestTaskCreatedSplitsAudience(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	assignee := env.addUser(t, "assignee")
	bystander := env.addUser(t, "bystander")
	project := env.addProject(t, owner, assignee, bystander)
	task := env.addTask(t, project, assignee)

	env.dispatcher.TaskCreated(context.Background(), owner, project, task)

	if got := env.countByType(assignee.ID, entities.NotificationTaskAssigned); got != 1 {
		t.Fatalf("assignee TASK_ASSIGNED count = %d, want 1", got)
	}
	if got := env.countByType(assignee.ID, entities.NotificationTaskCreated); got != 0 {
		t.Fatalf("assignee TASK_CREATED count = %d, want 0", got)
	}
	if got := env.countByType(bystander.ID, entities.NotificationTaskCreated); got != 1 {
		t.Fatalf("bystander TASK_CREATED count = %d, want 1", got)
	}
	if got := len(env.notificationsFor(owner.ID)); got != 0 {
		t.Fatalf("actor received %d notifications, want 0", got)
	}
}

func TestTodoCompletedFollowsWithAllTodosBroadcast(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	collaborator := env.addUser(t, "collaborator")
	project := env.addProject(t, owner, collaborator)
	task := env.addTask(t, project)
	task.Todos = []entities.Todo{
		{ID: uuid.New(), Text: "first", Completed: true},
		{ID: uuid.New(), Text: "second", Completed: true},
	}

	env.dispatcher.TodoCompleted(context.Background(), owner, project, task)

	if got := env.countByType(collaborator.ID, entities.NotificationTodoCompleted); got != 1 {
		t.Fatalf("TODO_COMPLETED count = %d, want 1", got)
	}
	if got := env.countByType(collaborator.ID, entities.NotificationAllTodosCompleted); got != 1 {
		t.Fatalf("ALL_TODOS_COMPLETED count = %d, want 1", got)
	}
}

func TestTodoCompletedNoBroadcastWhileTodosRemain(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser(t, "owner")
	collaborator := env.addUser(t, "collaborator")
	project := env.addProject(t, owner, collaborator)
	task := env.addTask(t, project)
	task.Todos = []entities.Todo{
		{ID: uuid.New(), Text: "first", Completed: true},
		{ID: uuid.New(), Text: "second", Completed: false},
	}

	env.dispatcher.TodoCompleted(context.Background(), owner, project, task)

	if got := env.countByType(collaborator.ID, entities.NotificationAllTodosCompleted); got != 0 {
		t.Fatalf("ALL_TODOS_COMPLETED count = %d, want 0", got)
	}
}
