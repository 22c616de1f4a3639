package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEventNotFound = fmt.Errorf("event not found")
	ErrReadOnlyEvent = fmt.Errorf("event is read-only and cannot be modified")
	ErrInvalidTimes  = fmt.Errorf("event end time must be after start time")
)

// Frequency of a recurrence pattern.
type Frequency string

const (
	FrequencyNone    Frequency = "none"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// RecurrencePattern is only ever present on a master event. Occurrences
// derived from a master never carry a pattern of their own.
type RecurrencePattern struct {
	Frequency Frequency
	Interval  int
	EndDate   *time.Time
}

type Event struct {
	ID                 string
	CalendarID         string
	Title              string
	Description        string
	Location           string
	StartTime          time.Time
	EndTime            time.Time
	AllDay             bool
	IsGroupEvent       bool
	ParentGroupEventID string
	Recurrence         *RecurrencePattern
	// ExceptionDates are dates excluded from the master's expansion by a
	// prior "this occurrence" scoped edit.
	ExceptionDates []time.Time
	// ReadOnly marks events imported from an external feed. They are never
	// written back by this application.
	ReadOnly bool
}

// Prefixes of ids assigned to events imported from external sources.
const (
	ICSEventIDPrefix    = "ics-"
	GoogleEventIDPrefix = "google-"
)

const occurrenceIDSeparator = "-recurrence-"

// IsExternalID reports whether an event id belongs to an imported feed.
// Imported events are immutable regardless of what record the id resolves to.
func IsExternalID(id string) bool {
	return strings.HasPrefix(id, ICSEventIDPrefix) || strings.HasPrefix(id, GoogleEventIDPrefix)
}

func (e Event) IsReadOnly() bool {
	return e.ReadOnly || IsExternalID(e.ID)
}

func (e Event) IsRecurring() bool {
	return e.Recurrence != nil && e.Recurrence.Frequency != FrequencyNone
}

// IsOccurrence reports whether the event is a derived instance produced by
// recurrence expansion rather than a persisted record.
func (e Event) IsOccurrence() bool {
	return strings.Contains(e.ID, occurrenceIDSeparator)
}

// OccurrenceID builds the synthetic id of the n-th expanded instance of a master.
func OccurrenceID(masterID string, n int) string {
	return masterID + occurrenceIDSeparator + strconv.Itoa(n)
}

// SplitOccurrenceID extracts the master id from a synthetic occurrence id.
// It returns ok=false when the id is not an occurrence id.
func SplitOccurrenceID(id string) (masterID string, n int, ok bool) {
	idx := strings.LastIndex(id, occurrenceIDSeparator)
	if idx < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[idx+len(occurrenceIDSeparator):])
	if err != nil {
		return "", 0, false
	}
	return id[:idx], n, true
}

func (e Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// Overlaps reports whether two events' time intervals intersect.
func (e Event) Overlaps(other Event) bool {
	return e.StartTime.Before(other.EndTime) && other.StartTime.Before(e.EndTime)
}

// HasValidTimes reports whether both time fields are present and ordered.
// Events failing this check are excluded from layout instead of crashing it.
func (e Event) HasValidTimes() bool {
	return !e.StartTime.IsZero() && !e.EndTime.IsZero() && e.EndTime.After(e.StartTime)
}

func (e Event) Validate() error {
	if !e.HasValidTimes() {
		return ErrInvalidTimes
	}
	if e.Recurrence != nil && e.Recurrence.Frequency != FrequencyNone && e.Recurrence.Interval < 1 {
		return fmt.Errorf("recurrence interval must be at least 1")
	}
	return nil
}

// HasExceptionOn reports whether the given date (compared by calendar day,
// naive local time) is excluded from expansion.
func (e Event) HasExceptionOn(date time.Time) bool {
	for _, d := range e.ExceptionDates {
		if SameDay(d, date) {
			return true
		}
	}
	return false
}

// SameDay compares two instants by calendar date, ignoring time of day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
