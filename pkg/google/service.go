package google

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/timegrid/timegrid/pkg/event"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type CalendarItem struct {
	ID      string
	Summary string
}

type Service interface {
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
	// EventsInRange imports the user's Google events intersecting [from, to)
	// as read-only events. An unauthenticated integration yields no events.
	EventsInRange(ctx context.Context, from, to time.Time) ([]event.Event, error)
}

type ServiceImpl struct {
	auth *GoogleAuth
}

func NewService(auth *GoogleAuth) *ServiceImpl {
	return &ServiceImpl{auth: auth}
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	googleService, err := s.prepareGoogleService(ctx)
	if err != nil {
		return nil, err
	}
	calendars, err := googleService.CalendarList.List().Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %v", err)
		log.Error(err)
		return nil, err
	}
	items := make([]CalendarItem, 0, len(calendars.Items))
	for _, cal := range calendars.Items {
		items = append(items, CalendarItem{ID: cal.Id, Summary: cal.Summary})
	}
	return items, nil
}

func (s *ServiceImpl) EventsInRange(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	googleService, err := s.prepareGoogleService(ctx)
	if err == ErrUnauthenticated {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	call := googleService.Events.List("primary").
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	result, err := call.Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve events from Google Calendar: %v", err)
		log.Error(err)
		return nil, err
	}

	events := make([]event.Event, 0, len(result.Items))
	for _, item := range result.Items {
		imported, err := importedEvent(item)
		if err != nil {
			log.Warnf("skipping Google event %s: %v", item.Id, err)
			continue
		}
		events = append(events, imported)
	}
	return events, nil
}

func importedEvent(item *calendar.Event) (event.Event, error) {
	start, allDay, err := parseEventTime(item.Start)
	if err != nil {
		return event.Event{}, fmt.Errorf("invalid start: %w", err)
	}
	end, _, err := parseEventTime(item.End)
	if err != nil {
		return event.Event{}, fmt.Errorf("invalid end: %w", err)
	}
	return event.Event{
		ID:          event.GoogleEventIDPrefix + item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
		StartTime:   start,
		EndTime:     end,
		AllDay:      allDay,
		ReadOnly:    true,
	}, nil
}

func parseEventTime(t *calendar.EventDateTime) (time.Time, bool, error) {
	if t == nil {
		return time.Time{}, false, fmt.Errorf("missing time")
	}
	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		return parsed, false, err
	}
	parsed, err := time.ParseInLocation("2006-01-02", t.Date, time.Local)
	return parsed, true, err
}

func (s *ServiceImpl) prepareGoogleService(ctx context.Context) (*calendar.Service, error) {
	client, err := s.auth.getClient(ctx)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Google auth client: %v", err)
		log.Error(err)
		return nil, err
	}
	if client == nil {
		log.Debug("google integration is unauthenticated")
		return nil, ErrUnauthenticated
	}
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		err := fmt.Errorf("unable to create Google Calendar client: %v", err)
		log.Error(err)
		return nil, err
	}
	return service, nil
}
