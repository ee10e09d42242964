package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/collabtrack/core/internal/domain/entities"
	"github.com/collabtrack/core/internal/infrastructure/config"
	"github.com/collabtrack/core/internal/infrastructure/logger"
	"github.com/collabtrack/core/internal/ports"
)

// In-memory repository fakes. They store copies so service-side mutations
// of returned entities never leak into the stored state, matching how a
// real database behaves.

type memUserRepo struct {
	users map[uuid.UUID]*entities.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*entities.User)}
}

func copyUser(u *entities.User) *entities.User {
	c := *u
	return &c
}

func (r *memUserRepo) Create(_ context.Context, user *entities.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return entities.Conflict("User already exists")
		}
	}
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, entities.NotFound("User not found")
	}
	return copyUser(user), nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, entities.NotFound("User not found")
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return copyUser(user), nil
		}
	}
	return nil, entities.NotFound("User not found")
}

func (r *memUserRepo) Update(_ context.Context, user *entities.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return entities.NotFound("User not found")
	}
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return entities.NotFound("User not found")
	}
	delete(r.users, id)
	return nil
}

type memProjectRepo struct {
	projects map[uuid.UUID]*entities.Project
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{projects: make(map[uuid.UUID]*entities.Project)}
}

func copyProject(p *entities.Project) *entities.Project {
	c := *p
	c.Collaborators = append([]uuid.UUID{}, p.Collaborators...)
	c.Tags = append([]string{}, p.Tags...)
	return &c
}

func (r *memProjectRepo) Create(_ context.Context, project *entities.Project) error {
	r.projects[project.ID] = copyProject(project)
	return nil
}

func (r *memProjectRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Project, error) {
	project, ok := r.projects[id]
	if !ok {
		return nil, entities.NotFound("Project not found")
	}
	return copyProject(project), nil
}

func (r *memProjectRepo) Update(_ context.Context, project *entities.Project) error {
	if _, ok := r.projects[project.ID]; !ok {
		return entities.NotFound("Project not found")
	}
	r.projects[project.ID] = copyProject(project)
	return nil
}

func (r *memProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.projects[id]; !ok {
		return entities.NotFound("Project not found")
	}
	delete(r.projects, id)
	return nil
}

func (r *memProjectRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]*entities.Project, error) {
	var out []*entities.Project
	for _, project := range r.projects {
		if project.IsMember(userID) {
			out = append(out, copyProject(project))
		}
	}
	return out, nil
}

func (r *memProjectRepo) ListOwnedBy(_ context.Context, ownerID uuid.UUID) ([]*entities.Project, error) {
	var out []*entities.Project
	for _, project := range r.projects {
		if project.OwnerID == ownerID {
			out = append(out, copyProject(project))
		}
	}
	return out, nil
}

func (r *memProjectRepo) AddCollaborator(_ context.Context, projectID, userID uuid.UUID) error {
	project, ok := r.projects[projectID]
	if !ok {
		return entities.NotFound("Project not found")
	}
	if !project.IsCollaborator(userID) {
		project.Collaborators = append(project.Collaborators, userID)
	}
	return nil
}

func (r *memProjectRepo) RemoveCollaborator(_ context.Context, projectID, userID uuid.UUID) error {
	project, ok := r.projects[projectID]
	if !ok {
		return entities.NotFound("Project not found")
	}
	remaining := project.Collaborators[:0]
	for _, id := range project.Collaborators {
		if id != userID {
			remaining = append(remaining, id)
		}
	}
	project.Collaborators = remaining
	return nil
}

func (r *memProjectRepo) DeleteOwnedBy(_ context.Context, ownerID uuid.UUID) error {
	for id, project := range r.projects {
		if project.OwnerID == ownerID {
			delete(r.projects, id)
		}
	}
	return nil
}

func (r *memProjectRepo) RemoveCollaboratorEverywhere(_ context.Context, userID uuid.UUID) error {
	for _, project := range r.projects {
		remaining := project.Collaborators[:0]
		for _, id := range project.Collaborators {
			if id != userID {
				remaining = append(remaining, id)
			}
		}
		project.Collaborators = remaining
	}
	return nil
}

type memTaskRepo struct {
	tasks map[uuid.UUID]*entities.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[uuid.UUID]*entities.Task)}
}

func copyTask(t *entities.Task) *entities.Task {
	c := *t
	c.AssignedTo = append([]uuid.UUID{}, t.AssignedTo...)
	c.Tags = append([]string{}, t.Tags...)
	c.Todos = append([]entities.Todo{}, t.Todos...)
	c.Comments = append([]entities.Comment{}, t.Comments...)
	return &c
}

func (r *memTaskRepo) Create(_ context.Context, task *entities.Task) error {
	r.tasks[task.ID] = copyTask(task)
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, entities.NotFound("Task not found")
	}
	return copyTask(task), nil
}

func (r *memTaskRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]*entities.Task, error) {
	var out []*entities.Task
	for _, task := range r.tasks {
		if task.ProjectID == projectID {
			out = append(out, copyTask(task))
		}
	}
	return out, nil
}

func (r *memTaskRepo) Update(_ context.Context, task *entities.Task) error {
	stored, ok := r.tasks[task.ID]
	if !ok {
		return entities.NotFound("Task not found")
	}
	if stored.Version != task.Version {
		return entities.Conflict("Task was modified by another request")
	}
	task.Version++
	r.tasks[task.ID] = copyTask(task)
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.tasks[id]; !ok {
		return entities.NotFound("Task not found")
	}
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) DeleteByProjects(_ context.Context, projectIDs []uuid.UUID) error {
	for id, task := range r.tasks {
		for _, projectID := range projectIDs {
			if task.ProjectID == projectID {
				delete(r.tasks, id)
			}
		}
	}
	return nil
}

type memNotificationRepo struct {
	items      []*entities.Notification
	failCreate bool
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{}
}

func (r *memNotificationRepo) Create(_ context.Context, notification *entities.Notification) error {
	if r.failCreate {
		return errors.New("storage unavailable")
	}
	c := *notification
	r.items = append(r.items, &c)
	return nil
}

func (r *memNotificationRepo) ListForRecipient(_ context.Context, recipientID uuid.UUID, filter ports.NotificationFilter) ([]*entities.Notification, error) {
	var out []*entities.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		n := r.items[i]
		if n.RecipientID != recipientID {
			continue
		}
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	if filter.Offset > 0 && filter.Offset < len(out) {
		out = out[filter.Offset:]
	} else if filter.Offset >= len(out) {
		out = nil
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memNotificationRepo) CountUnread(_ context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.items {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id, recipientID uuid.UUID) (*entities.Notification, error) {
	for _, n := range r.items {
		if n.ID == id && n.RecipientID == recipientID {
			if !n.IsRead {
				n.IsRead = true
				now := time.Now()
				n.ReadAt = &now
			}
			return n, nil
		}
	}
	return nil, entities.NotFound("Notification not found")
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	now := time.Now()
	for _, n := range r.items {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) Delete(_ context.Context, id, recipientID uuid.UUID) error {
	for i, n := range r.items {
		if n.ID == id && n.RecipientID == recipientID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return entities.NotFound("Notification not found")
}

func (r *memNotificationRepo) DeleteRead(_ context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	remaining := r.items[:0]
	for _, n := range r.items {
		if n.RecipientID == recipientID && n.IsRead {
			count++
			continue
		}
		remaining = append(remaining, n)
	}
	r.items = remaining
	return count, nil
}

func (r *memNotificationRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var count int64
	remaining := r.items[:0]
	for _, n := range r.items {
		if n.CreatedAt.Before(cutoff) {
			count++
			continue
		}
		remaining = append(remaining, n)
	}
	r.items = remaining
	return count, nil
}

// testEnv wires every service against the in-memory repositories.
type testEnv struct {
	users         *memUserRepo
	projects      *memProjectRepo
	tasks         *memTaskRepo
	notifications *memNotificationRepo

	auth            *AuthService
	userService     *UserService
	projectService  *ProjectService
	taskService     *TaskService
	notificationSvc *NotificationService
	dispatcher      *Dispatcher
}

func newTestEnv() *testEnv {
	users := newMemUserRepo()
	projects := newMemProjectRepo()
	tasks := newMemTaskRepo()
	notifications := newMemNotificationRepo()

	log := logger.NewNop()
	access := NewAccessService(projects)
	dispatcher := NewDispatcher(notifications, log)

	jwtCfg := config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour, Issuer: "test"}

	return &testEnv{
		users:           users,
		projects:        projects,
		tasks:           tasks,
		notifications:   notifications,
		auth:            NewAuthService(users, jwtCfg, log),
		userService:     NewUserService(users, projects, tasks, log),
		projectService:  NewProjectService(projects, tasks, users, access, dispatcher, log),
		taskService:     NewTaskService(tasks, users, access, dispatcher, log),
		notificationSvc: NewNotificationService(notifications, log),
		dispatcher:      dispatcher,
	}
}

func (e *testEnv) addUser(t *testing.T, username string) *entities.User {
	t.Helper()
	user := &entities.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        strings.ToLower(username) + "@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func (e *testEnv) addUserWithPassword(t *testing.T, username, password string) *entities.User {
	t.Helper()
	user := e.addUser(t, username)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user.PasswordHash = string(hash)
	if err := e.users.Update(context.Background(), user); err != nil {
		t.Fatalf("store password: %v", err)
	}
	return user
}

func (e *testEnv) addProject(t *testing.T, owner *entities.User, collaborators ...*entities.User) *entities.Project {
	t.Helper()
	project := &entities.Project{
		ID:          uuid.New(),
		Name:        "Test Project",
		Description: "A project for testing",
		OwnerID:     owner.ID,
		Tags:        []string{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	for _, c := range collaborators {
		project.Collaborators = append(project.Collaborators, c.ID)
	}
	if err := e.projects.Create(context.Background(), project); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}

func (e *testEnv) addTask(t *testing.T, project *entities.Project, assignees ...*entities.User) *entities.Task {
	t.Helper()
	task := &entities.Task{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Title:     "Test Task",
		Status:    entities.TaskStatusToDo,
		Priority:  entities.TaskPriorityMedium,
		Tags:      []string{},
		Todos:     []entities.Todo{},
		Comments:  []entities.Comment{},
		Version:   1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for _, a := range assignees {
		task.AssignedTo = append(task.AssignedTo, a.ID)
	}
	if err := e.tasks.Create(context.Background(), task); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func (e *testEnv) notificationsFor(userID uuid.UUID) []*entities.Notification {
	var out []*entities.Notification
	for _, n := range e.notifications.items {
		if n.RecipientID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (e *testEnv) countByType(userID uuid.UUID, typ entities.NotificationType) int {
	count := 0
	for _, n := range e.notificationsFor(userID) {
		if n.Type == typ {
			count++
		}
	}
	return count
}

func wantKind(t *testing.T, err error, kind entities.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := entities.KindOf(err); got != kind {
		t.Fatalf("error kind = %v, want %v (err: %v)", got, kind, err)
	}
}
