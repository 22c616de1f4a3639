package layout

import (
	"time"

	"github.com/timegrid/timegrid/pkg/timeaxis"
)

// columnGutterPercent is the fixed horizontal gap subtracted from each
// event's column width.
const columnGutterPercent = 1.0

// Box is the computed screen geometry of one event: vertical position in
// pixels, horizontal position in percent of the day column width.
type Box struct {
	Top    float64
	Height float64
	Left   float64
	Width  float64
}

// Mapper converts event times into vertical pixel offsets for one rendered
// day under the current zoom state. It is a pure value; re-creating it on
// every layout pass is free.
type Mapper struct {
	Window     timeaxis.Window
	Zoomed     bool
	SlotHeight float64 // pixels per main-interval tick
}

// VerticalExtent computes top and height for an event on the given day.
// Events partially outside the zoom window are clipped to the visible
// portion; visible=false means the event does not intersect the window at
// all and should not be rendered on the time axis.
func (m Mapper) VerticalExtent(day, start, end time.Time) (top, height float64, visible bool) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	// Clip to the rendered day first.
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}
	if !end.After(start) {
		return 0, 0, false
	}

	if !m.Zoomed {
		top = start.Sub(dayStart).Minutes() / 60 * m.SlotHeight
		height = end.Sub(start).Minutes() / 60 * m.SlotHeight
		return top, height, true
	}

	windowStart := m.Window.Start(day)
	windowEnd := m.Window.End(day)
	if start.Before(windowStart) {
		start = windowStart
	}
	if end.After(windowEnd) {
		end = windowEnd
	}
	if !end.After(start) {
		return 0, 0, false
	}

	g := float64(m.Window.Granularity().Main)
	top = start.Sub(windowStart).Minutes() / g * m.SlotHeight
	height = end.Sub(start).Minutes() / g * m.SlotHeight
	return top, height, true
}

// HorizontalExtent computes left offset and width (percent) for a column slot.
func HorizontalExtent(slot ColumnSlot) (left, width float64) {
	columnWidth := 100.0 / float64(slot.Total)
	width = columnWidth - columnGutterPercent
	if width < 0 {
		width = 0
	}
	left = columnWidth * float64(slot.Index)
	return left, width
}
