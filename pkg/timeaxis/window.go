package timeaxis

import "time"

const (
	// FullDayStart and FullDayEnd are the bounds of the unzoomed time axis.
	FullDayStart = 0.0
	FullDayEnd   = 24.0

	minWindowHours = 2.0
	maxWindowHours = 24.0

	wheelStepHours = 2.0
)

// Window is the visible hour range of the time axis. Bounds may become
// fractional after re-centering a zoom on the pointer position.
type Window struct {
	StartHour float64
	EndHour   float64
}

func FullDay() Window {
	return Window{StartHour: FullDayStart, EndHour: FullDayEnd}
}

func (w Window) Size() float64 {
	return w.EndHour - w.StartHour
}

// Granularity is the tick spacing derived from the window size. Main is the
// labeled interval used for all coordinate math; Preview is a finer unlabeled
// interval shown between main ticks, zero when none applies.
type Granularity struct {
	Main    int // minutes
	Preview int // minutes, 0 = no preview ticks
}

// Granularity selects tick intervals by window size.
func (w Window) Granularity() Granularity {
	size := w.Size()
	switch {
	case size <= 2:
		return Granularity{Main: 5}
	case size <= 3:
		return Granularity{Main: 15, Preview: 5}
	case size <= 4:
		return Granularity{Main: 15}
	case size <= 6:
		return Granularity{Main: 30, Preview: 15}
	case size <= 8:
		return Granularity{Main: 30}
	case size <= 12:
		return Granularity{Main: 60, Preview: 30}
	default:
		return Granularity{Main: 60}
	}
}

// Start returns the instant the window begins on the given day.
func (w Window) Start(day time.Time) time.Time {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return midnight.Add(time.Duration(w.StartHour * float64(time.Hour)))
}

// End returns the instant the window ends on the given day.
func (w Window) End(day time.Time) time.Time {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return midnight.Add(time.Duration(w.EndHour * float64(time.Hour)))
}
