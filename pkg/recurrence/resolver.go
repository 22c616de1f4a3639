package recurrence

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timegrid/timegrid/pkg/event"
)

// Scope is the breadth of a recurring-event edit.
type Scope string

const (
	ScopeOccurrence Scope = "occurrence"
	ScopeFuture     Scope = "future"
	ScopeSeries     Scope = "series"
)

// Action on the targeted occurrence or series.
type Action string

const (
	ActionDelete Action = "delete"
	ActionModify Action = "modify"
)

var ErrUnknownScope = fmt.Errorf("unknown edit scope")

// Fields carries the modified values of a scoped Modify. Nil members are
// left untouched.
type Fields struct {
	Title       *string
	Description *string
	Location    *string
	StartTime   *time.Time
	EndTime     *time.Time
	AllDay      *bool
	CalendarID  *string
}

func (f Fields) applyTo(ev event.Event) event.Event {
	if f.Title != nil {
		ev.Title = *f.Title
	}
	if f.Description != nil {
		ev.Description = *f.Description
	}
	if f.Location != nil {
		ev.Location = *f.Location
	}
	if f.StartTime != nil {
		ev.StartTime = *f.StartTime
	}
	if f.EndTime != nil {
		ev.EndTime = *f.EndTime
	}
	if f.AllDay != nil {
		ev.AllDay = *f.AllDay
	}
	if f.CalendarID != nil {
		ev.CalendarID = *f.CalendarID
	}
	return ev
}

// ChangeSet is the record-level outcome of a scoped edit: which master to
// rewrite, which standalone events or new masters to create, and which
// master to delete. The caller persists it; the resolver itself never
// touches storage.
type ChangeSet struct {
	UpdateMaster *event.Event
	Create       []event.Event
	DeleteID     string
}

// Resolve decides the record mutations for an edit of the given scope on an
// occurrence of master starting at occurrenceStart. Read-only (imported)
// events are rejected before any record is considered.
func Resolve(master event.Event, occurrenceStart time.Time, action Action, scope Scope, fields Fields) (ChangeSet, error) {
	if master.IsReadOnly() {
		return ChangeSet{}, event.ErrReadOnlyEvent
	}

	switch scope {
	case ScopeOccurrence:
		return resolveOccurrence(master, occurrenceStart, action, fields), nil
	case ScopeFuture:
		return resolveFuture(master, occurrenceStart, action, fields), nil
	case ScopeSeries:
		return resolveSeries(master, action, fields), nil
	default:
		return ChangeSet{}, fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}
}

func resolveOccurrence(master event.Event, occurrenceStart time.Time, action Action, fields Fields) ChangeSet {
	updated := master
	updated.ExceptionDates = append(append([]time.Time{}, master.ExceptionDates...), dateOf(occurrenceStart))

	cs := ChangeSet{UpdateMaster: &updated}
	if action == ActionModify {
		// The edited occurrence becomes a standalone, non-recurring event.
		detached := master
		detached.ID = uuid.NewString()
		detached.Recurrence = nil
		detached.ExceptionDates = nil
		detached.StartTime = occurrenceStart
		detached.EndTime = occurrenceStart.Add(master.Duration())
		detached = fields.applyTo(detached)
		cs.Create = []event.Event{detached}
	}
	return cs
}

func resolveFuture(master event.Event, occurrenceStart time.Time, action Action, fields Fields) ChangeSet {
	// Truncate the existing series the day before the targeted occurrence.
	truncated := master
	pattern := *master.Recurrence
	newEnd := dateOf(occurrenceStart).AddDate(0, 0, -1)
	pattern.EndDate = &newEnd
	truncated.Recurrence = &pattern

	cs := ChangeSet{UpdateMaster: &truncated}
	if action == ActionModify {
		// A new master continues the series from the occurrence date with the
		// original pattern; its end date is carried over unchanged.
		successor := master
		successor.ID = uuid.NewString()
		successor.StartTime = occurrenceStart
		successor.EndTime = occurrenceStart.Add(master.Duration())
		successorPattern := *master.Recurrence
		successor.Recurrence = &successorPattern
		successor.ExceptionDates = nil
		successor = fields.applyTo(successor)
		cs.Create = []event.Event{successor}
	}
	return cs
}

func resolveSeries(master event.Event, action Action, fields Fields) ChangeSet {
	if action == ActionDelete {
		return ChangeSet{DeleteID: master.ID}
	}
	updated := fields.applyTo(master)
	return ChangeSet{UpdateMaster: &updated}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
