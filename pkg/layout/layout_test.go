package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timegrid/timegrid/pkg/event"
	"github.com/timegrid/timegrid/pkg/timeaxis"
)

var testDay = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.Local)

func timedEvent(id string, startHour, startMin, endHour, endMin int) event.Event {
	return event.Event{
		ID:        id,
		Title:     id,
		StartTime: time.Date(2026, time.March, 10, startHour, startMin, 0, 0, time.Local),
		EndTime:   time.Date(2026, time.March, 10, endHour, endMin, 0, 0, time.Local),
	}
}

func TestGroupOverlapping(t *testing.T) {
	t.Run("transitively overlapping events form one group", func(t *testing.T) {
		a := timedEvent("a", 10, 0, 11, 0)
		b := timedEvent("b", 10, 30, 11, 30)
		c := timedEvent("c", 12, 0, 13, 0)

		groups := GroupOverlapping([]event.Event{a, b, c})
		require.Len(t, groups, 2)
		assert.Len(t, groups[0].Events, 2)
		assert.Len(t, groups[1].Events, 1)
		assert.Equal(t, "c", groups[1].Events[0].ID)
	})

	t.Run("closure connects events through a shared middle event", func(t *testing.T) {
		// a and c never overlap each other but both overlap b.
		a := timedEvent("a", 9, 0, 10, 0)
		b := timedEvent("b", 9, 30, 11, 0)
		c := timedEvent("c", 10, 30, 12, 0)

		groups := GroupOverlapping([]event.Event{a, b, c})
		require.Len(t, groups, 1)
		assert.Len(t, groups[0].Events, 3)
	})

	t.Run("membership does not depend on input order", func(t *testing.T) {
		a := timedEvent("a", 9, 0, 10, 0)
		b := timedEvent("b", 9, 30, 11, 0)
		c := timedEvent("c", 10, 30, 12, 0)
		d := timedEvent("d", 14, 0, 15, 0)

		forward := GroupOverlapping([]event.Event{a, b, c, d})
		backward := GroupOverlapping([]event.Event{d, c, b, a})
		require.Len(t, forward, 2)
		require.Len(t, backward, 2)
		assert.Len(t, forward[0].Events, 3)
		assert.Len(t, backward[0].Events, 3)
	})

	t.Run("touching intervals do not overlap", func(t *testing.T) {
		a := timedEvent("a", 9, 0, 10, 0)
		b := timedEvent("b", 10, 0, 11, 0)

		groups := GroupOverlapping([]event.Event{a, b})
		assert.Len(t, groups, 2)
	})
}

func TestStartOrderColumns_Assign(t *testing.T) {
	t.Run("singleton gets the only column", func(t *testing.T) {
		slots := StartOrderColumns{}.Assign([]event.Event{timedEvent("a", 9, 0, 10, 0)})
		require.Len(t, slots, 1)
		assert.Equal(t, ColumnSlot{Index: 0, Total: 1}, slots[0])
	})

	t.Run("columns follow start-time order regardless of insertion order", func(t *testing.T) {
		first := timedEvent("x", 9, 0, 12, 0)
		second := timedEvent("y", 9, 30, 12, 0)
		third := timedEvent("z", 10, 0, 12, 0)

		slots := StartOrderColumns{}.Assign([]event.Event{third, first, second})
		require.Len(t, slots, 3)
		assert.Equal(t, ColumnSlot{Index: 2, Total: 3}, slots[0])
		assert.Equal(t, ColumnSlot{Index: 0, Total: 3}, slots[1])
		assert.Equal(t, ColumnSlot{Index: 1, Total: 3}, slots[2])
	})

	t.Run("equal start times break ties on id", func(t *testing.T) {
		a := timedEvent("a", 9, 0, 10, 0)
		b := timedEvent("b", 9, 0, 10, 0)

		slots := StartOrderColumns{}.Assign([]event.Event{b, a})
		assert.Equal(t, 1, slots[0].Index)
		assert.Equal(t, 0, slots[1].Index)
	})
}

func TestMapper_VerticalExtent(t *testing.T) {
	t.Run("unzoomed maps an hour to one slot height", func(t *testing.T) {
		m := Mapper{Window: timeaxis.FullDay(), Zoomed: false, SlotHeight: 40}
		start := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)
		end := time.Date(2026, time.March, 10, 10, 30, 0, 0, time.Local)

		top, height, visible := m.VerticalExtent(testDay, start, end)
		require.True(t, visible)
		assert.InDelta(t, 9*40.0, top, 1e-9)
		assert.InDelta(t, 1.5*40.0, height, 1e-9)
	})

	t.Run("zoomed maps one granularity tick to one slot height", func(t *testing.T) {
		// 2h window -> 5 minute ticks.
		m := Mapper{Window: timeaxis.Window{StartHour: 9, EndHour: 11}, Zoomed: true, SlotHeight: 40}
		start := time.Date(2026, time.March, 10, 9, 15, 0, 0, time.Local)
		end := time.Date(2026, time.March, 10, 9, 45, 0, 0, time.Local)

		top, height, visible := m.VerticalExtent(testDay, start, end)
		require.True(t, visible)
		assert.InDelta(t, 15.0/5.0*40.0, top, 1e-9)
		assert.InDelta(t, 30.0/5.0*40.0, height, 1e-9)
	})

	t.Run("event spilling over the window is clipped not hidden", func(t *testing.T) {
		m := Mapper{Window: timeaxis.Window{StartHour: 9, EndHour: 11}, Zoomed: true, SlotHeight: 40}
		start := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.Local)
		end := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.Local)

		top, height, visible := m.VerticalExtent(testDay, start, end)
		require.True(t, visible)
		assert.InDelta(t, 0.0, top, 1e-9)
		assert.InDelta(t, 120.0/5.0*40.0, height, 1e-9)
	})

	t.Run("event entirely outside the window is not visible", func(t *testing.T) {
		m := Mapper{Window: timeaxis.Window{StartHour: 9, EndHour: 11}, Zoomed: true, SlotHeight: 40}
		start := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.Local)
		end := time.Date(2026, time.March, 10, 15, 0, 0, 0, time.Local)

		_, _, visible := m.VerticalExtent(testDay, start, end)
		assert.False(t, visible)
	})
}

func TestHorizontalExtent(t *testing.T) {
	left, width := HorizontalExtent(ColumnSlot{Index: 1, Total: 2})
	assert.InDelta(t, 50.0, left, 1e-9)
	assert.InDelta(t, 49.0, width, 1e-9)

	left, width = HorizontalExtent(ColumnSlot{Index: 0, Total: 1})
	assert.InDelta(t, 0.0, left, 1e-9)
	assert.InDelta(t, 99.0, width, 1e-9)
}

func TestService_LayoutDay(t *testing.T) {
	service := NewService(nil)
	mapper := Mapper{Window: timeaxis.FullDay(), SlotHeight: 40}

	t.Run("overlapping events share columns, disjoint event gets full width", func(t *testing.T) {
		a := timedEvent("a", 10, 0, 11, 0)
		b := timedEvent("b", 10, 30, 11, 30)
		c := timedEvent("c", 12, 0, 13, 0)

		placed := service.LayoutDay([]event.Event{a, b, c}, testDay, mapper)
		require.Len(t, placed, 3)

		byID := map[string]Placed{}
		for _, p := range placed {
			byID[p.Event.ID] = p
		}
		assert.Equal(t, 2, byID["a"].Slot.Total)
		assert.Equal(t, 2, byID["b"].Slot.Total)
		assert.Equal(t, 0, byID["a"].Slot.Index)
		assert.Equal(t, 1, byID["b"].Slot.Index)
		assert.Equal(t, 1, byID["c"].Slot.Total)
	})

	t.Run("all-day, child and malformed events are excluded", func(t *testing.T) {
		allDay := timedEvent("all", 0, 0, 23, 59)
		allDay.AllDay = true
		child := timedEvent("child", 10, 0, 11, 0)
		child.ParentGroupEventID = "parent"
		broken := event.Event{ID: "broken", StartTime: time.Date(2026, time.March, 10, 10, 0, 0, 0, time.Local)}
		good := timedEvent("good", 9, 0, 10, 0)

		placed := service.LayoutDay([]event.Event{allDay, child, broken, good}, testDay, mapper)
		require.Len(t, placed, 1)
		assert.Equal(t, "good", placed[0].Event.ID)
	})

	t.Run("events on another day are excluded", func(t *testing.T) {
		other := event.Event{
			ID:        "other",
			StartTime: time.Date(2026, time.March, 11, 9, 0, 0, 0, time.Local),
			EndTime:   time.Date(2026, time.March, 11, 10, 0, 0, 0, time.Local),
		}
		placed := service.LayoutDay([]event.Event{other}, testDay, mapper)
		assert.Empty(t, placed)
	})
}

func TestService_LayoutAllDay(t *testing.T) {
	service := NewService(nil)

	one := timedEvent("one", 0, 0, 23, 0)
	one.AllDay = true
	two := timedEvent("two", 0, 0, 23, 0)
	two.AllDay = true
	timed := timedEvent("timed", 9, 0, 10, 0)

	rows := service.LayoutAllDay([]event.Event{two, one, timed}, testDay)
	require.Len(t, rows, 2)
	assert.Equal(t, "one", rows[0].Event.ID)
	assert.Equal(t, 0, rows[0].Row)
	assert.Equal(t, "two", rows[1].Event.ID)
	assert.Equal(t, 1, rows[1].Row)
}

func TestDayGrid_ColumnAt(t *testing.T) {
	grid := NewDayGrid(testDay, 7, 60, 100)

	t.Run("x inside a column resolves to its date", func(t *testing.T) {
		col, ok := grid.ColumnAt(275)
		require.True(t, ok)
		assert.Equal(t, testDay.AddDate(0, 0, 2), col.Date)
	})

	t.Run("x left of the grid misses", func(t *testing.T) {
		_, ok := grid.ColumnAt(10)
		assert.False(t, ok)
	})

	t.Run("x past the last column misses", func(t *testing.T) {
		_, ok := grid.ColumnAt(60 + 7*100)
		assert.False(t, ok)
	})
}
