package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timegrid/timegrid/internal/event_bus"
	"github.com/timegrid/timegrid/internal/test_utils"
)

func setupProjectService(t *testing.T) (*ProjectServiceImpl, *ServiceImpl) {
	t.Helper()
	db := test_utils.SetupTestDB(t)
	bus := event_bus.NewEventBus()
	return NewProjectService(NewProjectRepository(db), bus), NewService(NewRepository(db), bus)
}

func TestProjectService_FirstProjectBecomesDefault(t *testing.T) {
	service, _ := setupProjectService(t)
	ctx := context.Background()

	inbox, err := service.Create(ctx, "Inbox", "")
	require.NoError(t, err)
	assert.True(t, inbox.IsDefault)
	assert.Equal(t, 0, inbox.DisplayOrder)

	chores, err := service.Create(ctx, "Chores", "")
	require.NoError(t, err)
	assert.False(t, chores.IsDefault)
	assert.Equal(t, 1, chores.DisplayOrder)
}

func TestProjectService_CreateUnderParent(t *testing.T) {
	service, _ := setupProjectService(t)
	ctx := context.Background()

	home, err := service.Create(ctx, "Home", "")
	require.NoError(t, err)

	garden, err := service.Create(ctx, "Garden", home.ID)
	require.NoError(t, err)
	assert.Equal(t, home.ID, garden.ParentID)

	_, err = service.Create(ctx, "Orphan", "missing")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_UpdateRejectsCycles(t *testing.T) {
	service, _ := setupProjectService(t)
	ctx := context.Background()

	home, err := service.Create(ctx, "Home", "")
	require.NoError(t, err)
	garden, err := service.Create(ctx, "Garden", home.ID)
	require.NoError(t, err)
	beds, err := service.Create(ctx, "Beds", garden.ID)
	require.NoError(t, err)

	// A project cannot become its own parent.
	home.ParentID = home.ID
	_, err = service.Update(ctx, home)
	assert.ErrorIs(t, err, ErrProjectCycle)

	// Nor move under one of its descendants.
	home.ParentID = beds.ID
	_, err = service.Update(ctx, home)
	assert.ErrorIs(t, err, ErrProjectCycle)
}

func TestProjectService_UpdateKeepsDefaultAndOrder(t *testing.T) {
	service, _ := setupProjectService(t)
	ctx := context.Background()

	inbox, err := service.Create(ctx, "Inbox", "")
	require.NoError(t, err)

	updated, err := service.Update(ctx, Project{
		ID:          inbox.ID,
		Name:        "Inbox (renamed)",
		IsCollapsed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Inbox (renamed)", updated.Name)
	assert.True(t, updated.IsCollapsed)
	assert.True(t, updated.IsDefault)
	assert.Equal(t, inbox.DisplayOrder, updated.DisplayOrder)
}

func TestProjectService_SetPositionReordersList(t *testing.T) {
	service, _ := setupProjectService(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		created, err := service.Create(ctx, name, "")
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	require.NoError(t, service.SetPosition(ctx, ids[2], 0))

	all, err := service.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for i, project := range all {
		names = append(names, project.Name)
		assert.Equal(t, i, project.DisplayOrder)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestProjectService_SetDefaultMovesFlag(t *testing.T) {
	service, _ := setupProjectService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, "Inbox", "")
	require.NoError(t, err)
	work, err := service.Create(ctx, "Work", "")
	require.NoError(t, err)

	require.NoError(t, service.SetDefault(ctx, work.ID))

	all, err := service.List(ctx)
	require.NoError(t, err)
	for _, project := range all {
		assert.Equal(t, project.ID == work.ID, project.IsDefault)
	}

	assert.ErrorIs(t, service.SetDefault(ctx, "missing"), ErrProjectNotFound)
}

func TestProjectService_DeleteReassignsTasksAndChildren(t *testing.T) {
	projects, tasks := setupProjectService(t)
	ctx := context.Background()

	inbox, err := projects.Create(ctx, "Inbox", "")
	require.NoError(t, err)
	home, err := projects.Create(ctx, "Home", "")
	require.NoError(t, err)
	garden, err := projects.Create(ctx, "Garden", home.ID)
	require.NoError(t, err)

	chore, err := tasks.Create(ctx, "mow the lawn", home.ID)
	require.NoError(t, err)

	require.NoError(t, projects.Delete(ctx, home.ID))

	// The deleted project's tasks land in the default project.
	stored, err := tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, chore.ID, stored[0].ID)
	assert.Equal(t, inbox.ID, stored[0].ProjectID)

	// Its children move up to its parent.
	remaining, err := projects.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	for _, project := range remaining {
		if project.ID == garden.ID {
			assert.Equal(t, "", project.ParentID)
		}
	}

	assert.ErrorIs(t, projects.Delete(ctx, "missing"), ErrProjectNotFound)
}

func TestProjectService_DefaultProjectCannotBeDeleted(t *testing.T) {
	service, _ := setupProjectService(t)
	ctx := context.Background()

	inbox, err := service.Create(ctx, "Inbox", "")
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(ctx, inbox.ID), ErrDefaultProject)
}

func TestService_CreateAssignsProject(t *testing.T) {
	projects, tasks := setupProjectService(t)
	ctx := context.Background()

	inbox, err := projects.Create(ctx, "Inbox", "")
	require.NoError(t, err)

	created, err := tasks.Create(ctx, "water the plants", inbox.ID)
	require.NoError(t, err)
	assert.Equal(t, inbox.ID, created.ProjectID)

	stored, err := tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, inbox.ID, stored[0].ProjectID)
}
