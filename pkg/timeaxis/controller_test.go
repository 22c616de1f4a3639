package timeaxis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow_Granularity(t *testing.T) {
	tests := []struct {
		name    string
		window  Window
		main    int
		preview int
	}{
		{name: "2h window uses 5 minute ticks without preview", window: Window{9, 11}, main: 5, preview: 0},
		{name: "3h window uses 15 minute ticks with 5 minute preview", window: Window{9, 12}, main: 15, preview: 5},
		{name: "4h window uses 15 minute ticks without preview", window: Window{8, 12}, main: 15, preview: 0},
		{name: "6h window uses 30 minute ticks with 15 minute preview", window: Window{8, 14}, main: 30, preview: 15},
		{name: "8h window uses 30 minute ticks without preview", window: Window{8, 16}, main: 30, preview: 0},
		{name: "12h window uses 60 minute ticks with 30 minute preview", window: Window{6, 18}, main: 60, preview: 30},
		{name: "full day uses 60 minute ticks without preview", window: FullDay(), main: 60, preview: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.window.Granularity()
			assert.Equal(t, tt.main, g.Main)
			assert.Equal(t, tt.preview, g.Preview)
		})
	}
}

func TestController_Wheel(t *testing.T) {
	t.Run("first zoom-in centers on the hour under the pointer", func(t *testing.T) {
		c := NewController()
		// Pointer at midday on a 480px axis over the full day.
		c.Wheel(-1, 240, 480)

		w := c.Window()
		assert.True(t, c.Active())
		assert.InDelta(t, 22.0, w.Size(), 1e-9)
		assert.InDelta(t, 1.0, w.StartHour, 1e-9)
		assert.InDelta(t, 23.0, w.EndHour, 1e-9)
	})

	t.Run("zooming in repeatedly never shrinks below two hours", func(t *testing.T) {
		c := NewController()
		for i := 0; i < 20; i++ {
			c.Wheel(-1, 240, 480)
		}
		assert.InDelta(t, 2.0, c.Window().Size(), 1e-9)
	})

	t.Run("zooming out grows the window and caps at the full day", func(t *testing.T) {
		c := NewController()
		c.Wheel(-1, 240, 480)
		for i := 0; i < 20; i++ {
			c.Wheel(1, 240, 480)
		}
		w := c.Window()
		assert.InDelta(t, 24.0, w.Size(), 1e-9)
		assert.InDelta(t, 0.0, w.StartHour, 1e-9)
	})

	t.Run("window shifts instead of shrinking at the day boundary", func(t *testing.T) {
		c := NewController()
		// Pointer near the very top: naive centering would go below hour 0.
		c.Wheel(-1, 0, 480)

		w := c.Window()
		assert.InDelta(t, 0.0, w.StartHour, 1e-9)
		assert.InDelta(t, 22.0, w.EndHour, 1e-9)
	})

	t.Run("pointer position is interpreted within the current window once zoomed", func(t *testing.T) {
		c := NewController()
		c.window = Window{8, 14}
		c.active = true

		// Pointer in the middle of the 8-14 window -> hour 11.
		c.Wheel(-1, 240, 480)
		w := c.Window()
		assert.InDelta(t, 4.0, w.Size(), 1e-9)
		assert.InDelta(t, 9.0, w.StartHour, 1e-9)
		assert.InDelta(t, 13.0, w.EndHour, 1e-9)
	})
}

func TestController_Pan(t *testing.T) {
	t.Run("dragging the gutter shifts the window preserving its size", func(t *testing.T) {
		c := NewController()
		c.window = Window{8, 12}
		c.active = true

		// Dragging down by 80px on a 480px axis moves the window 4h earlier.
		c.Pan(80, 480)
		w := c.Window()
		assert.InDelta(t, 4.0, w.StartHour, 1e-9)
		assert.InDelta(t, 8.0, w.EndHour, 1e-9)
	})

	t.Run("pan clamps at day bounds", func(t *testing.T) {
		c := NewController()
		c.window = Window{20, 24}
		c.active = true

		c.Pan(-480, 480)
		w := c.Window()
		assert.InDelta(t, 20.0, w.StartHour, 1e-9)
		assert.InDelta(t, 24.0, w.EndHour, 1e-9)
	})

	t.Run("pan is ignored while not zoomed", func(t *testing.T) {
		c := NewController()
		c.Pan(100, 480)
		assert.Equal(t, FullDay(), c.Window())
		assert.False(t, c.Active())
	})
}

func TestController_Clear(t *testing.T) {
	c := NewController()
	c.Wheel(-1, 100, 480)
	assert.True(t, c.Active())

	c.Clear()
	assert.False(t, c.Active())
	assert.Equal(t, FullDay(), c.Window())
}
