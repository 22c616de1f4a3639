package calendar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timegrid/timegrid/internal/test_utils"
)

func TestRepository_StoreAndFind(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cal := Calendar{ID: "cal-1", Name: "Personal", Color: "#3366ff", IsVisible: true, IsDefault: true}
	require.NoError(t, repo.Store(ctx, cal))

	found, err := repo.FindByID(ctx, "cal-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, cal, *found)

	missing, err := repo.FindByID(ctx, "cal-2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_FindAllOrdersByName(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Store(ctx, Calendar{ID: "b", Name: "Work"}))
	require.NoError(t, repo.Store(ctx, Calendar{ID: "a", Name: "Personal"}))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Personal", all[0].Name)
	assert.Equal(t, "Work", all[1].Name)
}

func TestRepository_SetDefaultClearsOthers(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Store(ctx, Calendar{ID: "a", Name: "Personal", IsDefault: true}))
	require.NoError(t, repo.Store(ctx, Calendar{ID: "b", Name: "Work"}))

	require.NoError(t, repo.SetDefault(ctx, "b"))

	a, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.False(t, a.IsDefault)
	b, err := repo.FindByID(ctx, "b")
	require.NoError(t, err)
	assert.True(t, b.IsDefault)

	assert.ErrorIs(t, repo.SetDefault(ctx, "missing"), ErrCalendarNotFound)
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Store(ctx, Calendar{ID: "a", Name: "Personal"}))

	updated := Calendar{ID: "a", Name: "Renamed", Color: "#ff0000", IsVisible: true}
	require.NoError(t, repo.Update(ctx, updated))
	found, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, updated, *found)

	assert.ErrorIs(t, repo.Update(ctx, Calendar{ID: "missing"}), ErrCalendarNotFound)

	require.NoError(t, repo.Delete(ctx, "a"))
	assert.ErrorIs(t, repo.Delete(ctx, "a"), ErrCalendarNotFound)
}
