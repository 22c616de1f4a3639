package layout

import (
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/timegrid/timegrid/pkg/event"
)

// Placed is one event with its computed geometry for a rendered day.
type Placed struct {
	Event event.Event
	Slot  ColumnSlot
	Box   Box
}

// AllDayPlaced is one all-day event with its fixed row index.
type AllDayPlaced struct {
	Event event.Event
	Row   int
}

// Service computes the full geometry of one day: overlap grouping, column
// assignment and coordinate mapping. It holds no mutable state beyond the
// pluggable column strategy and is safe to re-invoke on every input change.
type Service struct {
	strategy ColumnStrategy
}

func NewService(strategy ColumnStrategy) *Service {
	if strategy == nil {
		strategy = StartOrderColumns{}
	}
	return &Service{strategy: strategy}
}

// LayoutDay lays out the timed events of one day. All-day events and child
// events of a group are excluded here (they are laid out separately); events
// with malformed times are dropped rather than crashing the pass.
func (s *Service) LayoutDay(events []event.Event, day time.Time, mapper Mapper) []Placed {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	timed := make([]event.Event, 0, len(events))
	for _, ev := range events {
		if !ev.HasValidTimes() {
			log.Debugf("excluding event %s from layout: malformed times", ev.ID)
			continue
		}
		if ev.AllDay || ev.ParentGroupEventID != "" {
			continue
		}
		if !ev.StartTime.Before(dayEnd) || !ev.EndTime.After(dayStart) {
			continue
		}
		timed = append(timed, ev)
	}

	placed := make([]Placed, 0, len(timed))
	for _, group := range GroupOverlapping(timed) {
		slots := s.strategy.Assign(group.Events)
		for i, ev := range group.Events {
			top, height, visible := mapper.VerticalExtent(day, ev.StartTime, ev.EndTime)
			if !visible {
				continue
			}
			left, width := HorizontalExtent(slots[i])
			placed = append(placed, Placed{
				Event: ev,
				Slot:  slots[i],
				Box:   Box{Top: top, Height: height, Left: left, Width: width},
			})
		}
	}

	sort.SliceStable(placed, func(a, b int) bool {
		return placed[a].Event.ID < placed[b].Event.ID
	})
	return placed
}

// LayoutAllDay assigns fixed rows to the day's all-day events, ordered by
// start time then id. The time axis plays no part here.
func (s *Service) LayoutAllDay(events []event.Event, day time.Time) []AllDayPlaced {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	allDay := make([]event.Event, 0)
	for _, ev := range events {
		if !ev.AllDay || !ev.HasValidTimes() || ev.ParentGroupEventID != "" {
			continue
		}
		if !ev.StartTime.Before(dayEnd) || !ev.EndTime.After(dayStart) {
			continue
		}
		allDay = append(allDay, ev)
	}
	sort.SliceStable(allDay, func(a, b int) bool {
		if allDay[a].StartTime.Equal(allDay[b].StartTime) {
			return allDay[a].ID < allDay[b].ID
		}
		return allDay[a].StartTime.Before(allDay[b].StartTime)
	})

	rows := make([]AllDayPlaced, 0, len(allDay))
	for i, ev := range allDay {
		rows = append(rows, AllDayPlaced{Event: ev, Row: i})
	}
	return rows
}
