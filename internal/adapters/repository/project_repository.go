package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/collabtrack/core/internal/domain/entities"
	"github.com/collabtrack/core/internal/ports"
)

// ProjectRepositoryImpl implements the ProjectRepository interface.
// Collaborators live in a join table and are loaded alongside the row.
type ProjectRepositoryImpl struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sqlx.DB) ports.ProjectRepository {
	return &ProjectRepositoryImpl{db: db}
}

type projectRow struct {
	ID          uuid.UUID      `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	OwnerID     uuid.UUID      `db:"owner_id"`
	Tags        pq.StringArray `db:"tags"`
	CreatedAt   sql.NullTime   `db:"created_at"`
	UpdatedAt   sql.NullTime   `db:"updated_at"`
}

func (row *projectRow) toEntity() *entities.Project {
	return &entities.Project{
		ID:            row.ID,
		Name:          row.Name,
		Description:   row.Description,
		OwnerID:       row.OwnerID,
		Collaborators: []uuid.UUID{},
		Tags:          []string(row.Tags),
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}

func (r *ProjectRepositoryImpl) Create(ctx context.Context, project *entities.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO projects (id, name, description, owner_id, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.ExecContext(ctx, query,
		project.ID, project.Name, project.Description, project.OwnerID,
		pq.StringArray(project.Tags), project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	if err := insertCollaborators(ctx, tx, project.ID, project.Collaborators); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ProjectRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Project, error) {
	query := `
		SELECT id, name, description, owner_id, tags, created_at, updated_at
		FROM projects
		WHERE id = $1`

	var row projectRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.NotFound("Project not found")
		}
		return nil, fmt.Errorf("get project by id: %w", err)
	}

	project := row.toEntity()
	if err := r.loadCollaborators(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

func (r *ProjectRepositoryImpl) Update(ctx context.Context, project *entities.Project) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE projects
		SET name = $2, description = $3, tags = $4, updated_at = $5
		WHERE id = $1`

	result, err := tx.ExecContext(ctx, query,
		project.ID, project.Name, project.Description,
		pq.StringArray(project.Tags), project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.NotFound("Project not found")
	}

	// Replace the collaborator set with what the aggregate carries.
	if _, err := tx.ExecContext(ctx, `DELETE FROM project_collaborators WHERE project_id = $1`, project.ID); err != nil {
		return fmt.Errorf("clear collaborators: %w", err)
	}
	if err := insertCollaborators(ctx, tx, project.ID, project.Collaborators); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ProjectRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM projects WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.NotFound("Project not found")
	}

	return nil
}

// ListForUser returns projects where the user is the owner or a collaborator,
// newest first.
func (r *ProjectRepositoryImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]*entities.Project, error) {
	query := `
		SELECT DISTINCT p.id, p.name, p.description, p.owner_id, p.tags, p.created_at, p.updated_at
		FROM projects p
		LEFT JOIN project_collaborators pc ON pc.project_id = p.id
		WHERE p.owner_id = $1 OR pc.user_id = $1
		ORDER BY p.created_at DESC`

	return r.listProjects(ctx, query, userID)
}

func (r *ProjectRepositoryImpl) ListOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]*entities.Project, error) {
	query := `
		SELECT id, name, description, owner_id, tags, created_at, updated_at
		FROM projects
		WHERE owner_id = $1
		ORDER BY created_at DESC`

	return r.listProjects(ctx, query, ownerID)
}

func (r *ProjectRepositoryImpl) AddCollaborator(ctx context.Context, projectID, userID uuid.UUID) error {
	query := `
		INSERT INTO project_collaborators (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, projectID, userID); err != nil {
		return fmt.Errorf("add collaborator: %w", err)
	}

	return nil
}

func (r *ProjectRepositoryImpl) RemoveCollaborator(ctx context.Context, projectID, userID uuid.UUID) error {
	query := `DELETE FROM project_collaborators WHERE project_id = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, projectID, userID); err != nil {
		return fmt.Errorf("remove collaborator: %w", err)
	}

	return nil
}

func (r *ProjectRepositoryImpl) DeleteOwnedBy(ctx context.Context, ownerID uuid.UUID) error {
	query := `DELETE FROM projects WHERE owner_id = $1`

	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("delete owned projects: %w", err)
	}

	return nil
}

func (r *ProjectRepositoryImpl) RemoveCollaboratorEverywhere(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM project_collaborators WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("remove collaborator everywhere: %w", err)
	}

	return nil
}

func (r *ProjectRepositoryImpl) listProjects(ctx context.Context, query string, args ...interface{}) ([]*entities.Project, error) {
	var rows []projectRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]*entities.Project, 0, len(rows))
	for i := range rows {
		project := rows[i].toEntity()
		if err := r.loadCollaborators(ctx, project); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, nil
}

func (r *ProjectRepositoryImpl) loadCollaborators(ctx context.Context, project *entities.Project) error {
	query := `
		SELECT user_id FROM project_collaborators
		WHERE project_id = $1
		ORDER BY added_at`

	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, project.ID); err != nil {
		return fmt.Errorf("load collaborators: %w", err)
	}

	project.Collaborators = ids
	if project.Collaborators == nil {
		project.Collaborators = []uuid.UUID{}
	}

	return nil
}

func insertCollaborators(ctx context.Context, tx *sqlx.Tx, projectID uuid.UUID, collaborators []uuid.UUID) error {
	query := `
		INSERT INTO project_collaborators (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	for _, userID := range collaborators {
		if _, err := tx.ExecContext(ctx, query, projectID, userID); err != nil {
			return fmt.Errorf("insert collaborator: %w", err)
		}
	}

	return nil
}
