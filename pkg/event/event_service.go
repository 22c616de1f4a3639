package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/timegrid/timegrid/internal/event_bus"
)

type Service interface {
	Create(ctx context.Context, event Event) (Event, error)
	Get(ctx context.Context, id string) (Event, error)
	// List returns the persisted records intersecting [from, to), including
	// recurring masters. Expansion into occurrences is the caller's concern.
	List(ctx context.Context, from, to time.Time) ([]Event, error)
	Update(ctx context.Context, event Event) (Event, error)
	// Move applies a finalized drag/resize: new times and, when the drop
	// landed on a group event, a new parent.
	Move(ctx context.Context, id string, start, end time.Time, parentGroupEventID string) (Event, error)
	Delete(ctx context.Context, id string) error
}

type ServiceImpl struct {
	repo Repository
	bus  *event_bus.EventBus
}

func NewService(repo Repository, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: bus}
}

func (s *ServiceImpl) Create(ctx context.Context, event Event) (Event, error) {
	if err := event.Validate(); err != nil {
		return Event{}, err
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if err := s.repo.Store(ctx, event); err != nil {
		return Event{}, err
	}
	s.notify(ctx, event_bus.EventCreated, event)
	return event, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Event, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if found == nil {
		return Event{}, ErrEventNotFound
	}
	return *found, nil
}

func (s *ServiceImpl) List(ctx context.Context, from, to time.Time) ([]Event, error) {
	return s.repo.FindInRange(ctx, from, to)
}

func (s *ServiceImpl) Update(ctx context.Context, event Event) (Event, error) {
	if err := event.Validate(); err != nil {
		return Event{}, err
	}
	if IsExternalID(event.ID) {
		return Event{}, ErrReadOnlyEvent
	}
	existing, err := s.repo.FindByID(ctx, event.ID)
	if err != nil {
		return Event{}, err
	}
	if existing != nil {
		if existing.IsReadOnly() {
			return Event{}, ErrReadOnlyEvent
		}
		// Exception dates are only ever written by scoped edits. A plain
		// field update carries the stored set forward so occurrences removed
		// with "this occurrence" stay removed.
		if event.ExceptionDates == nil {
			event.ExceptionDates = existing.ExceptionDates
		}
	}
	if err := s.repo.Update(ctx, event); err != nil {
		return Event{}, err
	}
	s.notify(ctx, event_bus.EventUpdated, event)
	return event, nil
}

func (s *ServiceImpl) Move(ctx context.Context, id string, start, end time.Time, parentGroupEventID string) (Event, error) {
	if !end.After(start) {
		return Event{}, ErrInvalidTimes
	}
	if err := s.guardWritable(ctx, id); err != nil {
		return Event{}, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}

	current.StartTime = start
	current.EndTime = end

	if parentGroupEventID != "" && parentGroupEventID != id {
		if current.IsGroupEvent {
			// Nesting one group inside another is rejected; the drop only
			// changes the group's own times.
			log.Debugf("ignoring re-parent of group event %s into %s", id, parentGroupEventID)
		} else {
			target, err := s.Get(ctx, parentGroupEventID)
			if err != nil {
				return Event{}, fmt.Errorf("re-parent target: %w", err)
			}
			if !target.IsGroupEvent {
				return Event{}, fmt.Errorf("event %s is not a group event", parentGroupEventID)
			}
			current.ParentGroupEventID = parentGroupEventID
		}
	}

	if err := s.repo.Update(ctx, current); err != nil {
		return Event{}, err
	}
	s.notify(ctx, event_bus.EventUpdated, current)
	return current, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.guardWritable(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, event_bus.EventDeleted, Event{ID: id})
	return nil
}

// guardWritable rejects writes on imported read-only events before any
// storage call is attempted.
func (s *ServiceImpl) guardWritable(ctx context.Context, id string) error {
	if IsExternalID(id) {
		return ErrReadOnlyEvent
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing != nil && existing.IsReadOnly() {
		return ErrReadOnlyEvent
	}
	return nil
}

func (s *ServiceImpl) notify(ctx context.Context, eventType event_bus.EventType, payload Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, eventType, payload)); err != nil {
		log.Errorf("failed to publish %s notification: %v", eventType, err)
	}
}
