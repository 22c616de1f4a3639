package recurrence

import (
	"time"

	"github.com/timegrid/timegrid/pkg/event"
)

// Expand turns a master event into the concrete occurrence instances visible
// in [rangeStart, rangeEnd]. Stepping is naive local-time arithmetic: the
// occurrence keeps the master's wall-clock time of day. Occurrences whose
// date is in the master's exception set are skipped but still consume their
// sequence number, so instance ids stay stable across scoped edits.
//
// Monthly (and yearly Feb 29) targets shorter than the master's day-of-month
// clamp to the last day of the target month.
func Expand(master event.Event, rangeStart, rangeEnd time.Time) []event.Event {
	if !master.IsRecurring() {
		if master.HasValidTimes() && intersects(master.StartTime, master.EndTime, rangeStart, rangeEnd) {
			return []event.Event{master}
		}
		return nil
	}
	if !master.HasValidTimes() {
		return nil
	}

	pattern := *master.Recurrence
	interval := pattern.Interval
	if interval < 1 {
		interval = 1
	}

	stop := rangeEnd
	if pattern.EndDate != nil {
		// The series end date is inclusive: an occurrence on the end date
		// itself is still emitted.
		seriesEnd := endOfDay(*pattern.EndDate)
		if seriesEnd.Before(stop) {
			stop = seriesEnd
		}
	}

	duration := master.Duration()
	occurrences := make([]event.Event, 0)
	for n := 0; ; n++ {
		start := occurrenceStart(master.StartTime, pattern.Frequency, interval, n)
		if start.After(stop) {
			break
		}
		end := start.Add(duration)
		if master.HasExceptionOn(start) {
			continue
		}
		if !intersects(start, end, rangeStart, rangeEnd) {
			continue
		}
		occurrences = append(occurrences, makeInstance(master, n, start, end))
	}
	return occurrences
}

// ExpandAll expands every master in the list and passes plain events through,
// restricted to the given range.
func ExpandAll(events []event.Event, rangeStart, rangeEnd time.Time) []event.Event {
	out := make([]event.Event, 0, len(events))
	for _, ev := range events {
		out = append(out, Expand(ev, rangeStart, rangeEnd)...)
	}
	return out
}

// Instance rebuilds the n-th occurrence of a recurring master independent of
// any view range. ok is false when the master does not recur, the occurrence
// date is excepted, or it lies past the series end.
func Instance(master event.Event, n int) (event.Event, bool) {
	if n < 0 || !master.IsRecurring() || !master.HasValidTimes() {
		return event.Event{}, false
	}
	interval := master.Recurrence.Interval
	if interval < 1 {
		interval = 1
	}
	start := occurrenceStart(master.StartTime, master.Recurrence.Frequency, interval, n)
	if master.Recurrence.EndDate != nil && start.After(endOfDay(*master.Recurrence.EndDate)) {
		return event.Event{}, false
	}
	if master.HasExceptionOn(start) {
		return event.Event{}, false
	}
	return makeInstance(master, n, start, start.Add(master.Duration())), true
}

func occurrenceStart(base time.Time, freq event.Frequency, interval, n int) time.Time {
	if n == 0 {
		return base
	}
	switch freq {
	case event.FrequencyDaily:
		return base.AddDate(0, 0, n*interval)
	case event.FrequencyWeekly:
		return base.AddDate(0, 0, 7*n*interval)
	case event.FrequencyMonthly:
		return addMonthsClamped(base, n*interval)
	case event.FrequencyYearly:
		return addYearsClamped(base, n*interval)
	default:
		return base
	}
}

// addMonthsClamped advances by whole months keeping the base day-of-month,
// clamping to the target month's last day when it is shorter. time.AddDate
// would normalize Jan 31 + 1 month into March, which is not what a calendar
// user expects.
func addMonthsClamped(t time.Time, months int) time.Time {
	year := t.Year()
	month := int(t.Month()) - 1 + months
	year += month / 12
	month = month % 12
	if month < 0 {
		month += 12
		year--
	}
	day := t.Day()
	if last := daysIn(year, time.Month(month+1)); day > last {
		day = last
	}
	return time.Date(year, time.Month(month+1), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func addYearsClamped(t time.Time, years int) time.Time {
	year := t.Year() + years
	day := t.Day()
	if last := daysIn(year, t.Month()); day > last {
		day = last
	}
	return time.Date(year, t.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
}

func makeInstance(master event.Event, n int, start, end time.Time) event.Event {
	instance := master
	instance.ID = event.OccurrenceID(master.ID, n)
	instance.StartTime = start
	instance.EndTime = end
	instance.Recurrence = nil
	instance.ExceptionDates = nil
	return instance
}

func intersects(start, end, rangeStart, rangeEnd time.Time) bool {
	return start.Before(rangeEnd) && end.After(rangeStart)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}
