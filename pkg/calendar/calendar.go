package calendar

import "errors"

var (
	ErrCalendarNotFound = errors.New("calendar not found")
	ErrReadOnlyCalendar = errors.New("calendar is read-only")
	ErrDefaultCalendar  = errors.New("the default calendar cannot be deleted")
)

// Calendar groups events under a name and a display color. Exactly one
// calendar is the default target for new events.
type Calendar struct {
	ID        string
	Name      string
	Color     string
	IsVisible bool
	IsDefault bool
	ReadOnly  bool
}
