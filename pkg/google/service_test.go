package google

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timegrid/timegrid/internal/config"
	"github.com/timegrid/timegrid/internal/test_utils"
	"github.com/timegrid/timegrid/pkg/event"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
)

func TestEventsInRange_UnauthenticatedYieldsNoEvents(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	auth := NewGoogleAuth(db, config.Application{})
	service := NewService(auth)

	events, err := service.EventsInRange(context.Background(),
		time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestImportedEvent_TimedEvent(t *testing.T) {
	imported, err := importedEvent(&calendar.Event{
		Id:          "abc123",
		Summary:     "Team sync",
		Description: "weekly",
		Location:    "Meet",
		Start:       &calendar.EventDateTime{DateTime: "2026-03-10T09:00:00Z"},
		End:         &calendar.EventDateTime{DateTime: "2026-03-10T10:00:00Z"},
	})
	require.NoError(t, err)

	assert.Equal(t, "google-abc123", imported.ID)
	assert.True(t, imported.ReadOnly)
	assert.True(t, imported.IsReadOnly())
	assert.True(t, event.IsExternalID(imported.ID))
	assert.False(t, imported.AllDay)
	assert.Equal(t, time.Hour, imported.Duration())
}

func TestImportedEvent_AllDayEvent(t *testing.T) {
	imported, err := importedEvent(&calendar.Event{
		Id:    "holiday",
		Start: &calendar.EventDateTime{Date: "2026-03-17"},
		End:   &calendar.EventDateTime{Date: "2026-03-18"},
	})
	require.NoError(t, err)
	assert.True(t, imported.AllDay)
	assert.Equal(t, 24*time.Hour, imported.Duration())
}

func TestImportedEvent_MissingTimes(t *testing.T) {
	_, err := importedEvent(&calendar.Event{Id: "broken"})
	assert.Error(t, err)
}

func TestAuth_StoreAndGetToken(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	auth := NewGoogleAuth(db, config.Application{})
	ctx := context.Background()

	token, err := auth.getToken(ctx)
	require.NoError(t, err)
	assert.Nil(t, token)

	expiry := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, auth.storeToken(ctx, &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}))

	token, err = auth.getToken(ctx)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "access", token.AccessToken)
	assert.Equal(t, "refresh", token.RefreshToken)
	assert.Equal(t, expiry, token.Expiry.UTC())
}
