package sync

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timegrid/timegrid/internal/event_bus"
	"github.com/timegrid/timegrid/internal/utils"
)

func TestTracker_RecordsChangesPerCategory(t *testing.T) {
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	tracker := NewTracker(clock)
	unsubscribe := tracker.Subscribe(bus)
	defer unsubscribe()

	ctx := context.Background()
	require.NoError(t, bus.Publish(event_bus.NewEvent(ctx, event_bus.EventCreated, nil)))

	clock.SetNow(clock.Now().Add(time.Minute))
	require.NoError(t, bus.Publish(event_bus.NewEvent(ctx, event_bus.TaskChanged, nil)))

	perCategory, latest := tracker.Status()
	assert.Equal(t, time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC), perCategory["events"])
	assert.Equal(t, time.Date(2026, time.March, 10, 12, 1, 0, 0, time.UTC), perCategory["tasks"])
	assert.Equal(t, perCategory["tasks"], latest)
	assert.NotContains(t, perCategory, "calendars")
}

func TestTracker_UnsubscribeStopsTracking(t *testing.T) {
	bus := event_bus.NewEventBus()
	tracker := NewTracker(nil)
	unsubscribe := tracker.Subscribe(bus)
	unsubscribe()

	require.NoError(t, bus.Publish(event_bus.NewEvent(context.Background(), event_bus.EventCreated, nil)))

	perCategory, latest := tracker.Status()
	assert.Empty(t, perCategory)
	assert.True(t, latest.IsZero())
}

func TestHandler_GetStatus(t *testing.T) {
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	tracker := NewTracker(clock)
	defer tracker.Subscribe(bus)()
	handler := NewHandler(tracker)

	// Before any change the status is empty.
	rec := httptest.NewRecorder()
	handler.GetStatus(rec, httptest.NewRequest("GET", "/api/sync/status", nil))
	var dto StatusDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Empty(t, dto.LastChangedAt)
	assert.Empty(t, dto.Categories)

	require.NoError(t, bus.Publish(event_bus.NewEvent(context.Background(), event_bus.CalendarChanged, nil)))

	rec = httptest.NewRecorder()
	handler.GetStatus(rec, httptest.NewRequest("GET", "/api/sync/status", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "2026-03-10T12:00:00Z", dto.LastChangedAt)
	assert.Contains(t, dto.Categories, "calendars")
}
