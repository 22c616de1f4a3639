package ics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
	"github.com/timegrid/timegrid/internal/event_bus"
	"github.com/timegrid/timegrid/internal/utils"
	"github.com/timegrid/timegrid/pkg/event"
)

// Expansion safety cap per recurring VEVENT.
const maxOccurrencesPerEvent = 1000

type Service interface {
	AddFeed(ctx context.Context, feed Feed) (Feed, error)
	ListFeeds(ctx context.Context) ([]Feed, error)
	UpdateFeed(ctx context.Context, feed Feed) (Feed, error)
	DeleteFeed(ctx context.Context, id string) error
	// RefreshAll re-downloads every feed and replaces its in-memory snapshot.
	RefreshAll(ctx context.Context) error
	RefreshFeed(ctx context.Context, id string) error
	// EventsInRange expands the snapshots into read-only events intersecting
	// [from, to).
	EventsInRange(ctx context.Context, from, to time.Time) ([]event.Event, error)
}

type ServiceImpl struct {
	repo    Repository
	fetcher Fetcher
	bus     *event_bus.EventBus
	clock   utils.Clock

	mu        sync.RWMutex
	snapshots map[string][]parsedEvent
}

func NewService(repo Repository, fetcher Fetcher, bus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &ServiceImpl{
		repo:      repo,
		fetcher:   fetcher,
		bus:       bus,
		clock:     clock,
		snapshots: make(map[string][]parsedEvent),
	}
}

func (s *ServiceImpl) AddFeed(ctx context.Context, feed Feed) (Feed, error) {
	if feed.ID == "" {
		feed.ID = uuid.New().String()
	}
	if err := s.repo.Store(ctx, feed); err != nil {
		return Feed{}, err
	}
	// First refresh is best effort; the scheduler retries later.
	if err := s.RefreshFeed(ctx, feed.ID); err != nil {
		log.Warnf("initial refresh of feed %s failed: %v", feed.ID, err)
	}
	return feed, nil
}

func (s *ServiceImpl) ListFeeds(ctx context.Context) ([]Feed, error) {
	return s.repo.FindAll(ctx)
}

func (s *ServiceImpl) UpdateFeed(ctx context.Context, feed Feed) (Feed, error) {
	current, err := s.repo.FindByID(ctx, feed.ID)
	if err != nil {
		return Feed{}, err
	}
	if current == nil {
		return Feed{}, ErrFeedNotFound
	}
	feed.LastRefreshedAt = current.LastRefreshedAt
	if err := s.repo.Update(ctx, feed); err != nil {
		return Feed{}, err
	}
	if feed.URL != current.URL {
		if err := s.RefreshFeed(ctx, feed.ID); err != nil {
			log.Warnf("refresh after URL change of feed %s failed: %v", feed.ID, err)
		}
	}
	return feed, nil
}

func (s *ServiceImpl) DeleteFeed(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.snapshots, id)
	s.mu.Unlock()
	s.notify(ctx)
	return nil
}

func (s *ServiceImpl) RefreshAll(ctx context.Context) error {
	feeds, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	var firstErr error
	for _, feed := range feeds {
		if err := s.RefreshFeed(ctx, feed.ID); err != nil {
			log.Errorf("refresh of feed %s (%s) failed: %v", feed.Name, feed.ID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *ServiceImpl) RefreshFeed(ctx context.Context, id string) error {
	feed, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if feed == nil {
		return ErrFeedNotFound
	}

	body, err := s.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return err
	}
	parsed, err := parseFeed(feed.ID, body)
	if err != nil {
		return fmt.Errorf("failed to parse feed %s: %w", feed.ID, err)
	}

	s.mu.Lock()
	s.snapshots[feed.ID] = parsed
	s.mu.Unlock()

	now := s.clock.Now()
	feed.LastRefreshedAt = &now
	if err := s.repo.Update(ctx, *feed); err != nil {
		return err
	}
	log.Infof("refreshed feed %s: %d events", feed.ID, len(parsed))
	s.notify(ctx)
	return nil
}

func (s *ServiceImpl) EventsInRange(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]event.Event, 0)
	for feedID, parsed := range s.snapshots {
		for _, ev := range parsed {
			events = append(events, expandParsed(feedID, ev, from, to)...)
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

func expandParsed(feedID string, ev parsedEvent, from, to time.Time) []event.Event {
	if ev.RawRRule == "" {
		if !ev.Start.Before(to) || !ev.End.After(from) {
			return nil
		}
		return []event.Event{importedEvent(feedID, ev, ev.Start, ev.End)}
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		log.Warnf("skipping event %s in feed %s: invalid RRULE %q: %v", ev.UID, feedID, ev.RawRRule, err)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	duration := ev.End.Sub(ev.Start)
	// Widen the lower bound so an occurrence that starts before the range
	// but overlaps into it is kept.
	starts := set.Between(from.Add(-duration).In(ev.Start.Location()), to.In(ev.Start.Location()), true)
	if len(starts) > maxOccurrencesPerEvent {
		log.Warnf("truncating occurrences of event %s in feed %s at %d", ev.UID, feedID, maxOccurrencesPerEvent)
		starts = starts[:maxOccurrencesPerEvent]
	}

	out := make([]event.Event, 0, len(starts))
	for _, start := range starts {
		end := start.Add(duration)
		if !start.Before(to) || !end.After(from) {
			continue
		}
		out = append(out, importedEvent(feedID, ev, start, end))
	}
	return out
}

func importedEvent(feedID string, ev parsedEvent, start, end time.Time) event.Event {
	return event.Event{
		ID:          fmt.Sprintf("%s%s-%s-%s", event.ICSEventIDPrefix, feedID, ev.UID, start.Format("20060102T150405")),
		CalendarID:  feedID,
		Title:       ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		StartTime:   start,
		EndTime:     end,
		AllDay:      ev.AllDay,
		ReadOnly:    true,
	}
}

func (s *ServiceImpl) notify(ctx context.Context) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.FeedRefreshed, nil)); err != nil {
		log.Warnf("feed refresh notification failed: %v", err)
	}
}
