package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, cal Calendar) error
	FindByID(ctx context.Context, id string) (*Calendar, error)
	FindAll(ctx context.Context) ([]Calendar, error)
	Update(ctx context.Context, cal Calendar) error
	Delete(ctx context.Context, id string) error
	// SetDefault marks one calendar as default and clears the flag on all
	// others in a single transaction.
	SetDefault(ctx context.Context, id string) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const calendarColumns = `id, name, color, is_visible, is_default, read_only`

func (r *RepositoryImpl) Store(ctx context.Context, cal Calendar) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO calendars (`+calendarColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		cal.ID, cal.Name, cal.Color, cal.IsVisible, cal.IsDefault, cal.ReadOnly)
	if err != nil {
		return fmt.Errorf("failed to store calendar: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id string) (*Calendar, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+calendarColumns+` FROM calendars WHERE id = $1`, id)
	var cal Calendar
	err := row.Scan(&cal.ID, &cal.Name, &cal.Color, &cal.IsVisible, &cal.IsDefault, &cal.ReadOnly)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar %s: %w", id, err)
	}
	return &cal, nil
}

func (r *RepositoryImpl) FindAll(ctx context.Context) ([]Calendar, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+calendarColumns+` FROM calendars ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendars: %w", err)
	}
	defer rows.Close()

	calendars := make([]Calendar, 0)
	for rows.Next() {
		var cal Calendar
		if err := rows.Scan(&cal.ID, &cal.Name, &cal.Color, &cal.IsVisible, &cal.IsDefault, &cal.ReadOnly); err != nil {
			return nil, fmt.Errorf("failed to scan calendar: %w", err)
		}
		calendars = append(calendars, cal)
	}
	return calendars, rows.Err()
}

func (r *RepositoryImpl) Update(ctx context.Context, cal Calendar) error {
	result, err := r.db.ExecContext(ctx, `UPDATE calendars SET
		name = $1, color = $2, is_visible = $3, is_default = $4, read_only = $5
		WHERE id = $6`,
		cal.Name, cal.Color, cal.IsVisible, cal.IsDefault, cal.ReadOnly, cal.ID)
	if err != nil {
		return fmt.Errorf("failed to update calendar %s: %w", cal.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCalendarNotFound
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM calendars WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete calendar %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCalendarNotFound
	}
	return nil
}

func (r *RepositoryImpl) SetDefault(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if _, err := tx.ExecContext(ctx, `UPDATE calendars SET is_default = FALSE WHERE is_default = TRUE`); err != nil {
		return fmt.Errorf("failed to clear default calendar: %w", err)
	}
	result, err := tx.ExecContext(ctx, `UPDATE calendars SET is_default = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to set default calendar: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCalendarNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
