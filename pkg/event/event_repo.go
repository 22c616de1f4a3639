package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Repository interface {
	Store(ctx context.Context, event Event) error
	FindByID(ctx context.Context, id string) (*Event, error)
	// FindInRange returns plain events intersecting [from, to) plus every
	// recurring master, since a master starting before the range can still
	// produce occurrences inside it.
	FindInRange(ctx context.Context, from, to time.Time) ([]Event, error)
	Update(ctx context.Context, event Event) error
	Delete(ctx context.Context, id string) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const eventColumns = `id, calendar_id, title, description, location, start_time, end_time,
	all_day, is_group_event, parent_group_event_id,
	recurrence_frequency, recurrence_interval, recurrence_end_date,
	exception_dates, read_only`

func (r *RepositoryImpl) Store(ctx context.Context, event Event) error {
	freq, interval, endDate := recurrenceFields(event.Recurrence)
	exceptions, err := encodeDates(event.ExceptionDates)
	if err != nil {
		return fmt.Errorf("failed to encode exception dates: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		event.ID, event.CalendarID, event.Title, event.Description, event.Location,
		formatTime(event.StartTime), formatTime(event.EndTime),
		event.AllDay, event.IsGroupEvent, event.ParentGroupEventID,
		freq, interval, endDate, exceptions, event.ReadOnly,
	)
	if err != nil {
		return fmt.Errorf("failed to store event: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id string) (*Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event %s: %w", id, err)
	}
	return &event, nil
}

func (r *RepositoryImpl) FindInRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events
		WHERE (start_time < $1 AND end_time > $2) OR recurrence_frequency != 'none'
		ORDER BY start_time, id`,
		formatTime(to), formatTime(from))
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *RepositoryImpl) Update(ctx context.Context, event Event) error {
	freq, interval, endDate := recurrenceFields(event.Recurrence)
	exceptions, err := encodeDates(event.ExceptionDates)
	if err != nil {
		return fmt.Errorf("failed to encode exception dates: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `UPDATE events SET
		calendar_id = $1, title = $2, description = $3, location = $4,
		start_time = $5, end_time = $6, all_day = $7,
		is_group_event = $8, parent_group_event_id = $9,
		recurrence_frequency = $10, recurrence_interval = $11, recurrence_end_date = $12,
		exception_dates = $13, read_only = $14
		WHERE id = $15`,
		event.CalendarID, event.Title, event.Description, event.Location,
		formatTime(event.StartTime), formatTime(event.EndTime), event.AllDay,
		event.IsGroupEvent, event.ParentGroupEventID,
		freq, interval, endDate, exceptions, event.ReadOnly, event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", event.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var (
		event      Event
		start, end string
		freq       string
		interval   int
		endDate    sql.NullString
		exceptions string
	)
	err := row.Scan(&event.ID, &event.CalendarID, &event.Title, &event.Description, &event.Location,
		&start, &end, &event.AllDay, &event.IsGroupEvent, &event.ParentGroupEventID,
		&freq, &interval, &endDate, &exceptions, &event.ReadOnly)
	if err != nil {
		return Event{}, err
	}

	if event.StartTime, err = parseTime(start); err != nil {
		return Event{}, err
	}
	if event.EndTime, err = parseTime(end); err != nil {
		return Event{}, err
	}
	if Frequency(freq) != FrequencyNone {
		pattern := RecurrencePattern{Frequency: Frequency(freq), Interval: interval}
		if endDate.Valid {
			t, err := parseTime(endDate.String)
			if err != nil {
				return Event{}, err
			}
			pattern.EndDate = &t
		}
		event.Recurrence = &pattern
	}
	if event.ExceptionDates, err = decodeDates(exceptions); err != nil {
		return Event{}, err
	}
	return event, nil
}

func recurrenceFields(pattern *RecurrencePattern) (freq string, interval int, endDate sql.NullString) {
	if pattern == nil || pattern.Frequency == FrequencyNone {
		return string(FrequencyNone), 1, sql.NullString{}
	}
	freq = string(pattern.Frequency)
	interval = pattern.Interval
	if pattern.EndDate != nil {
		endDate = sql.NullString{String: formatTime(*pattern.EndDate), Valid: true}
	}
	return freq, interval, endDate
}

// Timestamps are stored as RFC 3339 text so the same migrations and queries
// work on PostgreSQL and the in-memory SQLite used in tests. They are
// normalized to UTC first: the range queries compare these strings, which is
// only a total order when every stored value shares one offset.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}

func encodeDates(dates []time.Time) (string, error) {
	strs := make([]string, 0, len(dates))
	for _, d := range dates {
		strs = append(strs, formatTime(d))
	}
	b, err := json.Marshal(strs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeDates(encoded string) ([]time.Time, error) {
	if encoded == "" {
		return nil, nil
	}
	var strs []string
	if err := json.Unmarshal([]byte(encoded), &strs); err != nil {
		return nil, fmt.Errorf("failed to decode exception dates: %w", err)
	}
	if len(strs) == 0 {
		return nil, nil
	}
	dates := make([]time.Time, 0, len(strs))
	for _, s := range strs {
		t, err := parseTime(s)
		if err != nil {
			return nil, err
		}
		dates = append(dates, t)
	}
	return dates, nil
}
