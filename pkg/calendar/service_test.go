package calendar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timegrid/timegrid/internal/event_bus"
)

func setupService() (*ServiceImpl, *StubRepository) {
	repo := NewStubRepository()
	return NewService(repo, event_bus.NewEventBus()), repo
}

func TestService_CreateFirstCalendarBecomesDefault(t *testing.T) {
	service, _ := setupService()
	ctx := context.Background()

	created, err := service.Create(ctx, Calendar{Name: "Personal"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsDefault)

	second, err := service.Create(ctx, Calendar{Name: "Work"})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
}

func TestService_SetDefaultMovesTheFlag(t *testing.T) {
	service, _ := setupService()
	ctx := context.Background()

	_, err := service.Create(ctx, Calendar{Name: "Personal"})
	require.NoError(t, err)
	second, err := service.Create(ctx, Calendar{Name: "Work"})
	require.NoError(t, err)

	require.NoError(t, service.SetDefault(ctx, second.ID))

	all, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, cal := range all {
		assert.Equal(t, cal.ID == second.ID, cal.IsDefault, "calendar %s", cal.Name)
	}
}

func TestService_UpdateKeepsDefaultFlag(t *testing.T) {
	service, _ := setupService()
	ctx := context.Background()

	created, err := service.Create(ctx, Calendar{Name: "Personal"})
	require.NoError(t, err)

	// A client cannot flip the default flag through a plain update.
	created.Name = "Renamed"
	created.IsDefault = false
	updated, err := service.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.IsDefault)
}

func TestService_UpdateReadOnlyCalendarIsRejected(t *testing.T) {
	service, repo := setupService()
	ctx := context.Background()

	require.NoError(t, repo.Store(ctx, Calendar{ID: "feed", Name: "Holidays", ReadOnly: true}))

	_, err := service.Update(ctx, Calendar{ID: "feed", Name: "Renamed"})
	assert.ErrorIs(t, err, ErrReadOnlyCalendar)
}

func TestService_DeleteDefaultCalendarIsRejected(t *testing.T) {
	service, _ := setupService()
	ctx := context.Background()

	created, err := service.Create(ctx, Calendar{Name: "Personal"})
	require.NoError(t, err)

	err = service.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, ErrDefaultCalendar)

	other, err := service.Create(ctx, Calendar{Name: "Work"})
	require.NoError(t, err)
	assert.NoError(t, service.Delete(ctx, other.ID))
}

func TestService_GetUnknownCalendar(t *testing.T) {
	service, _ := setupService()

	_, err := service.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCalendarNotFound)
}
