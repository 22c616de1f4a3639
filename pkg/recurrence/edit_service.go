package recurrence

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/timegrid/timegrid/pkg/event"
)

// EditService applies scoped edits: it resolves which records must change
// and persists them through the event service. Persistence failures are
// reported upward; state already written stays written and heals on the
// next full refetch.
type EditService struct {
	events event.Service
}

func NewEditService(events event.Service) *EditService {
	return &EditService{events: events}
}

// Delete removes an occurrence, the rest of the series, or the whole series.
// The id may be a synthetic occurrence id or a master id.
func (s *EditService) Delete(ctx context.Context, id string, scope Scope) error {
	master, occurrenceStart, err := s.resolveTarget(ctx, id)
	if err != nil {
		return err
	}
	if master.IsReadOnly() {
		return event.ErrReadOnlyEvent
	}
	if !master.IsRecurring() {
		return s.events.Delete(ctx, master.ID)
	}

	changes, err := Resolve(master, occurrenceStart, ActionDelete, scope, Fields{})
	if err != nil {
		return err
	}
	return s.apply(ctx, changes)
}

// Modify rewrites an occurrence, the rest of the series, or the whole series
// with the given fields.
func (s *EditService) Modify(ctx context.Context, id string, scope Scope, fields Fields) error {
	master, occurrenceStart, err := s.resolveTarget(ctx, id)
	if err != nil {
		return err
	}
	if master.IsReadOnly() {
		return event.ErrReadOnlyEvent
	}
	if !master.IsRecurring() {
		_, err := s.events.Update(ctx, fields.applyTo(master))
		return err
	}

	changes, err := Resolve(master, occurrenceStart, ActionModify, scope, fields)
	if err != nil {
		return err
	}
	return s.apply(ctx, changes)
}

// resolveTarget loads the master record behind an occurrence or master id
// and computes the start time of the targeted occurrence.
func (s *EditService) resolveTarget(ctx context.Context, id string) (event.Event, time.Time, error) {
	if event.IsExternalID(id) {
		return event.Event{}, time.Time{}, event.ErrReadOnlyEvent
	}

	masterID, n, isOccurrence := event.SplitOccurrenceID(id)
	if !isOccurrence {
		masterID, n = id, 0
	}
	master, err := s.events.Get(ctx, masterID)
	if err != nil {
		return event.Event{}, time.Time{}, fmt.Errorf("failed to load master event %s: %w", masterID, err)
	}

	start := master.StartTime
	if master.IsRecurring() && n > 0 {
		interval := master.Recurrence.Interval
		if interval < 1 {
			interval = 1
		}
		start = occurrenceStart(master.StartTime, master.Recurrence.Frequency, interval, n)
	}
	return master, start, nil
}

func (s *EditService) apply(ctx context.Context, changes ChangeSet) error {
	if changes.UpdateMaster != nil {
		if _, err := s.events.Update(ctx, *changes.UpdateMaster); err != nil {
			return fmt.Errorf("failed to update master event: %w", err)
		}
	}
	for _, create := range changes.Create {
		if _, err := s.events.Create(ctx, create); err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
	}
	if changes.DeleteID != "" {
		if err := s.events.Delete(ctx, changes.DeleteID); err != nil {
			return fmt.Errorf("failed to delete master event: %w", err)
		}
	}
	log.Debugf("applied scoped edit: update=%v creates=%d delete=%q",
		changes.UpdateMaster != nil, len(changes.Create), changes.DeleteID)
	return nil
}
