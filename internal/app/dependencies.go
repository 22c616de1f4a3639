package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/timegrid/timegrid/internal/config"
	"github.com/timegrid/timegrid/internal/event_bus"
	"github.com/timegrid/timegrid/internal/utils"
	"github.com/timegrid/timegrid/pkg/calendar"
	"github.com/timegrid/timegrid/pkg/event"
	"github.com/timegrid/timegrid/pkg/gesture"
	"github.com/timegrid/timegrid/pkg/google"
	"github.com/timegrid/timegrid/pkg/ics"
	"github.com/timegrid/timegrid/pkg/layout"
	"github.com/timegrid/timegrid/pkg/recurrence"
	"github.com/timegrid/timegrid/pkg/sync"
	"github.com/timegrid/timegrid/pkg/task"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus   *event_bus.EventBus
	Clock utils.Clock

	EventService event.Service
	EventHandler *event.Handler

	EditService *recurrence.EditService
	EditHandler *recurrence.Handler

	LayoutService  *layout.Service
	LayoutHandler  *layout.Handler
	GestureHandler *gesture.Handler

	CalendarService calendar.Service
	CalendarHandler *calendar.Handler

	TaskService task.Service
	TaskHandler *task.Handler

	ProjectService task.ProjectService
	ProjectHandler *task.ProjectHandler

	FeedService   ics.Service
	FeedScheduler *ics.Scheduler
	FeedHandler   *ics.Handler

	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler

	SyncTracker *sync.Tracker
	SyncHandler *sync.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Bus = event_bus.NewEventBus()
	deps.Clock = utils.SystemClock{}

	deps.GoogleAuth = google.NewGoogleAuth(db, cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	deps.FeedService = ics.NewService(ics.NewRepository(db), ics.NewHTTPFetcher(), deps.Bus, deps.Clock)
	deps.FeedScheduler = ics.NewScheduler(deps.FeedService)
	deps.FeedHandler = ics.NewHandler(deps.FeedService)

	deps.EventService = event.NewService(event.NewRepository(db), deps.Bus)
	deps.EventHandler = event.NewHandler(deps.EventService, recurrence.ExpandAll, deps.externalEvents)

	deps.EditService = recurrence.NewEditService(deps.EventService)
	deps.EditHandler = recurrence.NewHandler(deps.EditService)

	deps.LayoutService = layout.NewService(nil)
	deps.LayoutHandler = layout.NewHandler(deps.LayoutService, deps.visibleEvents)
	deps.GestureHandler = gesture.NewHandler(deps.EventService, deps.EditService)

	deps.CalendarService = calendar.NewService(calendar.NewRepository(db), deps.Bus)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	deps.TaskService = task.NewService(task.NewRepository(db), deps.Bus)
	deps.TaskHandler = task.NewHandler(deps.TaskService)

	deps.ProjectService = task.NewProjectService(task.NewProjectRepository(db), deps.Bus)
	deps.ProjectHandler = task.NewProjectHandler(deps.ProjectService)

	deps.SyncTracker = sync.NewTracker(deps.Clock)
	deps.SyncTracker.Subscribe(deps.Bus)
	deps.SyncHandler = sync.NewHandler(deps.SyncTracker)

	return deps
}

// externalEvents merges the read-only imports from ICS feeds and the Google
// integration.
func (d *Dependencies) externalEvents(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	imported, err := d.FeedService.EventsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	googleEvents, err := d.GoogleService.EventsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return append(imported, googleEvents...), nil
}

// visibleEvents is the layout endpoint's event source: persisted records
// expanded into occurrences plus the external imports.
func (d *Dependencies) visibleEvents(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	records, err := d.EventService.List(ctx, from, to)
	if err != nil {
		return nil, err
	}
	events := recurrence.ExpandAll(records, from, to)
	external, err := d.externalEvents(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return append(events, external...), nil
}
