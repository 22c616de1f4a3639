package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timegrid/timegrid/internal/event_bus"
	"github.com/timegrid/timegrid/internal/test_utils"
	"github.com/timegrid/timegrid/internal/utils"
)

func setupService(t *testing.T) (*ServiceImpl, *utils.MockClock) {
	t.Helper()
	db := test_utils.SetupTestDB(t)
	clock := &utils.MockClock{FixedNow: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	service := NewService(NewRepository(db), NewHTTPFetcher(), event_bus.NewEventBus(), clock)
	return service, clock
}

func serveICS(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestService_AddFeedRefreshesImmediately(t *testing.T) {
	service, clock := setupService(t)
	server := serveICS(t, sampleFeed)
	ctx := context.Background()

	created, err := service.AddFeed(ctx, Feed{Name: "Team", URL: server.URL})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	feeds, err := service.ListFeeds(ctx)
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	require.NotNil(t, feeds[0].LastRefreshedAt)
	assert.Equal(t, clock.Now().UTC(), feeds[0].LastRefreshedAt.UTC())

	from := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)
	events, err := service.EventsInRange(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Dentist", events[0].Title)
	assert.True(t, events[0].ReadOnly)
	assert.True(t, events[0].IsReadOnly())
}

func TestService_RefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	service, _ := setupService(t)
	server := serveICS(t, sampleFeed)
	ctx := context.Background()

	created, err := service.AddFeed(ctx, Feed{Name: "Team", URL: server.URL})
	require.NoError(t, err)

	server.Close()
	err = service.RefreshFeed(ctx, created.ID)
	assert.Error(t, err)

	// The previous snapshot still serves events.
	from := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)
	events, err := service.EventsInRange(ctx, from, to)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestService_DeleteFeedDropsItsEvents(t *testing.T) {
	service, _ := setupService(t)
	server := serveICS(t, sampleFeed)
	ctx := context.Background()

	created, err := service.AddFeed(ctx, Feed{Name: "Team", URL: server.URL})
	require.NoError(t, err)

	require.NoError(t, service.DeleteFeed(ctx, created.ID))

	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	events, err := service.EventsInRange(ctx, from, to)
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.ErrorIs(t, service.DeleteFeed(ctx, created.ID), ErrFeedNotFound)
}

func TestService_RefreshUnknownFeed(t *testing.T) {
	service, _ := setupService(t)
	assert.ErrorIs(t, service.RefreshFeed(context.Background(), "missing"), ErrFeedNotFound)
}
