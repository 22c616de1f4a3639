package sync

import (
	"sync"
	"time"

	"github.com/timegrid/timegrid/internal/event_bus"
	"github.com/timegrid/timegrid/internal/utils"
)

// Tracker records when each data category last changed. Clients poll the
// status endpoint and refetch when a timestamp moved past their own; a failed
// optimistic update on the client heals the same way.
type Tracker struct {
	clock utils.Clock

	mu          sync.RWMutex
	lastChanged map[string]time.Time
}

func NewTracker(clock utils.Clock) *Tracker {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &Tracker{clock: clock, lastChanged: make(map[string]time.Time)}
}

// Subscribe registers the tracker on all change notifications the services
// publish. The returned function unsubscribes everything.
func (t *Tracker) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	categories := map[event_bus.EventType]string{
		event_bus.EventCreated:    "events",
		event_bus.EventUpdated:    "events",
		event_bus.EventDeleted:    "events",
		event_bus.CalendarChanged: "calendars",
		event_bus.TaskChanged:     "tasks",
		event_bus.FeedRefreshed:   "feeds",
	}

	unsubs := make([]func(), 0, len(categories))
	for eventType, category := range categories {
		category := category
		unsubs = append(unsubs, bus.Subscribe(eventType, func(event_bus.Event) error {
			t.mark(category)
			return nil
		}))
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

func (t *Tracker) mark(category string) {
	t.mu.Lock()
	t.lastChanged[category] = t.clock.Now()
	t.mu.Unlock()
}

// Status returns the last change time per category plus the overall latest.
func (t *Tracker) Status() (map[string]time.Time, time.Time) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	perCategory := make(map[string]time.Time, len(t.lastChanged))
	var latest time.Time
	for category, at := range t.lastChanged {
		perCategory[category] = at
		if at.After(latest) {
			latest = at
		}
	}
	return perCategory, latest
}
