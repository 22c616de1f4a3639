package ics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Repository interface {
	Store(ctx context.Context, feed Feed) error
	FindByID(ctx context.Context, id string) (*Feed, error)
	FindAll(ctx context.Context) ([]Feed, error)
	Update(ctx context.Context, feed Feed) error
	Delete(ctx context.Context, id string) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, feed Feed) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO ics_feeds (id, name, url, color, last_refreshed_at)
		VALUES ($1, $2, $3, $4, $5)`,
		feed.ID, feed.Name, feed.URL, feed.Color, formatNullableTime(feed.LastRefreshedAt))
	if err != nil {
		return fmt.Errorf("failed to store feed: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id string) (*Feed, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, url, color, last_refreshed_at FROM ics_feeds WHERE id = $1`, id)
	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find feed %s: %w", id, err)
	}
	return &feed, nil
}

func (r *RepositoryImpl) FindAll(ctx context.Context) ([]Feed, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, url, color, last_refreshed_at FROM ics_feeds ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feeds: %w", err)
	}
	defer rows.Close()

	feeds := make([]Feed, 0)
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

func (r *RepositoryImpl) Update(ctx context.Context, feed Feed) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE ics_feeds SET name = $1, url = $2, color = $3, last_refreshed_at = $4 WHERE id = $5`,
		feed.Name, feed.URL, feed.Color, formatNullableTime(feed.LastRefreshedAt), feed.ID)
	if err != nil {
		return fmt.Errorf("failed to update feed %s: %w", feed.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrFeedNotFound
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ics_feeds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feed %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrFeedNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (Feed, error) {
	var feed Feed
	var refreshed sql.NullString
	if err := row.Scan(&feed.ID, &feed.Name, &feed.URL, &feed.Color, &refreshed); err != nil {
		return Feed{}, err
	}
	if refreshed.Valid {
		t, err := time.Parse(time.RFC3339Nano, refreshed.String)
		if err != nil {
			return Feed{}, fmt.Errorf("failed to parse stored time %q: %w", refreshed.String, err)
		}
		feed.LastRefreshedAt = &t
	}
	return feed, nil
}

func formatNullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}
