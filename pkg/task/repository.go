package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Repository interface {
	Store(ctx context.Context, task Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	FindAll(ctx context.Context) ([]Task, error)
	Update(ctx context.Context, task Task) error
	Delete(ctx context.Context, id string) error
	MaxPosition(ctx context.Context) (int, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, task Task) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO tasks (id, content, completed, position, project_id)
		VALUES ($1, $2, $3, $4, $5)`,
		task.ID, task.Content, task.Completed, task.Position, task.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to store task: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id string) (*Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, content, completed, position, project_id FROM tasks WHERE id = $1`, id)
	var task Task
	err := row.Scan(&task.ID, &task.Content, &task.Completed, &task.Position, &task.ProjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task %s: %w", id, err)
	}
	return &task, nil
}

func (r *RepositoryImpl) FindAll(ctx context.Context) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, content, completed, position, project_id FROM tasks ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		var task Task
		if err := rows.Scan(&task.ID, &task.Content, &task.Completed, &task.Position, &task.ProjectID); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *RepositoryImpl) Update(ctx context.Context, task Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET content = $1, completed = $2, position = $3, project_id = $4 WHERE id = $5`,
		task.Content, task.Completed, task.Position, task.ProjectID, task.ID)
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", task.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *RepositoryImpl) MaxPosition(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) FROM tasks`)
	var max int
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to read max task position: %w", err)
	}
	return max, nil
}
