package timeaxis

// Controller holds the zoom state of the time axis. While inactive the
// stored bounds are ignored and the full day is reported, so clearing the
// zoom never has to reconstruct anything.
type Controller struct {
	window Window
	active bool
}

func NewController() *Controller {
	return &Controller{window: FullDay()}
}

// Window returns the effective visible range: the full day until a zoom
// gesture activates the controller.
func (c *Controller) Window() Window {
	if !c.active {
		return FullDay()
	}
	return c.window
}

func (c *Controller) Active() bool {
	return c.active
}

// Wheel applies a scroll-wheel zoom step. The window grows or shrinks by two
// hours depending on the sign of delta and is re-centered on the hour under
// the pointer, which is computed relative to the current window when already
// zoomed and relative to the full day otherwise. At the day boundaries the
// window is shifted rather than shrunk.
func (c *Controller) Wheel(delta, pointerY, axisHeight float64) {
	if axisHeight <= 0 {
		return
	}
	current := c.Window()
	size := current.Size()

	newSize := size
	if delta > 0 {
		newSize += wheelStepHours
	} else if delta < 0 {
		newSize -= wheelStepHours
	}
	newSize = clamp(newSize, minWindowHours, maxWindowHours)

	pointerHour := current.StartHour + pointerY/axisHeight*size

	start := pointerHour - newSize/2
	if start < FullDayStart {
		start = FullDayStart
	}
	if start+newSize > FullDayEnd {
		start = FullDayEnd - newSize
	}

	c.window = Window{StartHour: start, EndHour: start + newSize}
	c.active = true
}

// Pan shifts a zoomed window vertically by a pointer drag on the time-axis
// gutter, preserving the window size. Upward motion moves the window later.
func (c *Controller) Pan(deltaY, axisHeight float64) {
	if !c.active || axisHeight <= 0 {
		return
	}
	size := c.window.Size()
	deltaHours := -deltaY / axisHeight * FullDayEnd

	start := c.window.StartHour + deltaHours
	if start < FullDayStart {
		start = FullDayStart
	}
	if start+size > FullDayEnd {
		start = FullDayEnd - size
	}
	c.window = Window{StartHour: start, EndHour: start + size}
}

// Clear resets the axis to the full day.
func (c *Controller) Clear() {
	c.window = FullDay()
	c.active = false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
