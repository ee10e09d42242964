package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/collabtrack/core/internal/domain/entities"
	"github.com/collabtrack/core/internal/ports"
)

// jsonColumn round-trips an arbitrary value through a jsonb column.
type jsonColumn struct {
	dest interface{}
}

func (c jsonColumn) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("jsonb scan: unexpected type %T", src)
	}
	return json.Unmarshal(data, c.dest)
}

func jsonValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jsonb value: %w", err)
	}
	return data, nil
}

// TaskRepositoryImpl implements the TaskRepository interface. Todos,
// comments and the assignee list are stored as jsonb on the task row so
// the aggregate reads and writes as one unit.
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

const taskColumns = `id, project_id, title, description, status, priority, due_date,
		assigned_to, tags, todos, comments, version, created_at, updated_at`

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	assigned, err := jsonValue(task.AssignedTo)
	if err != nil {
		return err
	}
	todos, err := jsonValue(task.Todos)
	if err != nil {
		return err
	}
	comments, err := jsonValue(task.Comments)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		task.ID, task.ProjectID, task.Title, task.Description,
		task.Status, task.Priority, task.DueDate,
		assigned, pq.StringArray(task.Tags), todos, comments,
		task.Version, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := r.scanTask(r.db.QueryRowxContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.NotFound("Task not found")
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return task, nil
}

func (r *TaskRepositoryImpl) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryxContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*entities.Task{}
	for rows.Next() {
		task, err := r.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// Update writes the whole aggregate guarded by the version the caller
// holds. A missed match means either the row is gone or another writer
// got there first; the two cases are told apart with a follow-up lookup.
func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) error {
	query := `
		UPDATE tasks
		SET title = $3, description = $4, status = $5, priority = $6, due_date = $7,
			assigned_to = $8, tags = $9, todos = $10, comments = $11,
			version = version + 1, updated_at = $12
		WHERE id = $1 AND version = $2`

	assigned, err := jsonValue(task.AssignedTo)
	if err != nil {
		return err
	}
	todos, err := jsonValue(task.Todos)
	if err != nil {
		return err
	}
	comments, err := jsonValue(task.Comments)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query,
		task.ID, task.Version,
		task.Title, task.Description, task.Status, task.Priority, task.DueDate,
		assigned, pq.StringArray(task.Tags), todos, comments,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, task.ID); err != nil {
			return fmt.Errorf("check task exists: %w", err)
		}
		if exists {
			return entities.Conflict("Task was modified by another request")
		}
		return entities.NotFound("Task not found")
	}

	task.Version++
	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.NotFound("Task not found")
	}

	return nil
}

func (r *TaskRepositoryImpl) DeleteByProjects(ctx context.Context, projectIDs []uuid.UUID) error {
	if len(projectIDs) == 0 {
		return nil
	}

	ids := make([]string, len(projectIDs))
	for i, id := range projectIDs {
		ids[i] = id.String()
	}

	query := `DELETE FROM tasks WHERE project_id = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("delete tasks by projects: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *TaskRepositoryImpl) scanTask(row rowScanner) (*entities.Task, error) {
	var task entities.Task
	var tags pq.StringArray

	task.AssignedTo = []uuid.UUID{}
	task.Todos = []entities.Todo{}
	task.Comments = []entities.Comment{}

	err := row.Scan(
		&task.ID, &task.ProjectID, &task.Title, &task.Description,
		&task.Status, &task.Priority, &task.DueDate,
		jsonColumn{&task.AssignedTo}, &tags,
		jsonColumn{&task.Todos}, jsonColumn{&task.Comments},
		&task.Version, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Tags = []string(tags)
	if task.Tags == nil {
		task.Tags = []string{}
	}

	return &task, nil
}
