package event

import (
	"context"
	"sort"
	"time"
)

// StubRepository is an in-memory Repository used by tests across packages.
type StubRepository struct {
	data map[string]Event
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]Event{}}
}

func (r *StubRepository) Store(_ context.Context, event Event) error {
	r.data[event.ID] = event
	return nil
}

func (r *StubRepository) FindByID(_ context.Context, id string) (*Event, error) {
	event, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return &event, nil
}

func (r *StubRepository) FindInRange(_ context.Context, from, to time.Time) ([]Event, error) {
	events := make([]Event, 0)
	for _, event := range r.data {
		if event.IsRecurring() || (event.StartTime.Before(to) && event.EndTime.After(from)) {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(a, b int) bool {
		if events[a].StartTime.Equal(events[b].StartTime) {
			return events[a].ID < events[b].ID
		}
		return events[a].StartTime.Before(events[b].StartTime)
	})
	return events, nil
}

func (r *StubRepository) Update(_ context.Context, event Event) error {
	if _, ok := r.data[event.ID]; !ok {
		return ErrEventNotFound
	}
	r.data[event.ID] = event
	return nil
}

func (r *StubRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.data[id]; !ok {
		return ErrEventNotFound
	}
	delete(r.data, id)
	return nil
}
