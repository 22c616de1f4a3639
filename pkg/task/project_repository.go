package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type ProjectRepository interface {
	Store(ctx context.Context, project Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	FindAll(ctx context.Context) ([]Project, error)
	Update(ctx context.Context, project Project) error
	// Delete removes the project and moves its tasks to reassignTo.
	Delete(ctx context.Context, id string, reassignTo string) error
	SetDefault(ctx context.Context, id string) error
	MaxDisplayOrder(ctx context.Context) (int, error)
}

type ProjectRepositoryImpl struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepositoryImpl {
	return &ProjectRepositoryImpl{db: db}
}

const projectColumns = `id, name, parent_id, display_order, is_collapsed, is_default`

func (r *ProjectRepositoryImpl) Store(ctx context.Context, project Project) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		project.ID, project.Name, project.ParentID, project.DisplayOrder,
		project.IsCollapsed, project.IsDefault)
	if err != nil {
		return fmt.Errorf("failed to store project: %w", err)
	}
	return nil
}

func (r *ProjectRepositoryImpl) FindByID(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	var project Project
	err := row.Scan(&project.ID, &project.Name, &project.ParentID,
		&project.DisplayOrder, &project.IsCollapsed, &project.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project %s: %w", id, err)
	}
	return &project, nil
}

func (r *ProjectRepositoryImpl) FindAll(ctx context.Context) ([]Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY display_order, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		var project Project
		if err := rows.Scan(&project.ID, &project.Name, &project.ParentID,
			&project.DisplayOrder, &project.IsCollapsed, &project.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (r *ProjectRepositoryImpl) Update(ctx context.Context, project Project) error {
	result, err := r.db.ExecContext(ctx, `UPDATE projects SET
		name = $1, parent_id = $2, display_order = $3, is_collapsed = $4, is_default = $5
		WHERE id = $6`,
		project.Name, project.ParentID, project.DisplayOrder,
		project.IsCollapsed, project.IsDefault, project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project %s: %w", project.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepositoryImpl) Delete(ctx context.Context, id string, reassignTo string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`UPDATE tasks SET project_id = $1 WHERE project_id = $2`, reassignTo, id); err != nil {
		return fmt.Errorf("failed to reassign tasks of project %s: %w", id, err)
	}
	// Children of the deleted project move up to its parent.
	if _, err := tx.ExecContext(ctx,
		`UPDATE projects SET parent_id = (SELECT parent_id FROM projects WHERE id = $1) WHERE parent_id = $1`, id); err != nil {
		return fmt.Errorf("failed to re-parent children of project %s: %w", id, err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProjectNotFound
	}
	return tx.Commit()
}

func (r *ProjectRepositoryImpl) SetDefault(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if _, err := tx.ExecContext(ctx, `UPDATE projects SET is_default = FALSE`); err != nil {
		return fmt.Errorf("failed to clear default project: %w", err)
	}
	result, err := tx.ExecContext(ctx,
		`UPDATE projects SET is_default = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to set default project %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProjectNotFound
	}
	return tx.Commit()
}

func (r *ProjectRepositoryImpl) MaxDisplayOrder(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(display_order), -1) FROM projects`)
	var max int
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to read max project display order: %w", err)
	}
	return max, nil
}
