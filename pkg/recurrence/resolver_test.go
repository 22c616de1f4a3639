package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timegrid/timegrid/pkg/event"
)

func TestResolve_ThisOccurrence(t *testing.T) {
	master := weeklyMaster()
	secondStart := master.StartTime.AddDate(0, 0, 7)

	t.Run("delete adds the date to the exception set", func(t *testing.T) {
		changes, err := Resolve(master, secondStart, ActionDelete, ScopeOccurrence, Fields{})
		require.NoError(t, err)

		require.NotNil(t, changes.UpdateMaster)
		assert.Empty(t, changes.Create)
		assert.Empty(t, changes.DeleteID)
		require.Len(t, changes.UpdateMaster.ExceptionDates, 1)
		assert.True(t, event.SameDay(secondStart, changes.UpdateMaster.ExceptionDates[0]))
		// The pattern itself is untouched.
		assert.Nil(t, changes.UpdateMaster.Recurrence.EndDate)
	})

	t.Run("modify detaches a standalone event and excepts the date", func(t *testing.T) {
		title := "Moved standup"
		changes, err := Resolve(master, secondStart, ActionModify, ScopeOccurrence, Fields{Title: &title})
		require.NoError(t, err)

		require.NotNil(t, changes.UpdateMaster)
		require.Len(t, changes.Create, 1)
		detached := changes.Create[0]
		assert.NotEqual(t, master.ID, detached.ID)
		assert.Nil(t, detached.Recurrence)
		assert.Equal(t, "Moved standup", detached.Title)
		assert.Equal(t, secondStart, detached.StartTime)
		assert.Equal(t, master.Duration(), detached.Duration())
		assert.True(t, event.SameDay(secondStart, changes.UpdateMaster.ExceptionDates[0]))
	})
}

func TestResolve_ThisAndFuture(t *testing.T) {
	master := weeklyMaster()
	secondStart := master.StartTime.AddDate(0, 0, 7)

	t.Run("delete truncates the series the day before", func(t *testing.T) {
		changes, err := Resolve(master, secondStart, ActionDelete, ScopeFuture, Fields{})
		require.NoError(t, err)

		require.NotNil(t, changes.UpdateMaster)
		require.NotNil(t, changes.UpdateMaster.Recurrence.EndDate)
		wantEnd := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.Local)
		assert.Equal(t, wantEnd, *changes.UpdateMaster.Recurrence.EndDate)
		assert.Empty(t, changes.Create)
	})

	t.Run("modify additionally creates a successor master with the original pattern", func(t *testing.T) {
		title := "New standup"
		changes, err := Resolve(master, secondStart, ActionModify, ScopeFuture, Fields{Title: &title})
		require.NoError(t, err)

		require.NotNil(t, changes.UpdateMaster)
		require.Len(t, changes.Create, 1)
		successor := changes.Create[0]
		assert.NotEqual(t, master.ID, successor.ID)
		assert.Equal(t, secondStart, successor.StartTime)
		assert.Equal(t, "New standup", successor.Title)
		require.NotNil(t, successor.Recurrence)
		assert.Equal(t, event.FrequencyWeekly, successor.Recurrence.Frequency)
		assert.Equal(t, 1, successor.Recurrence.Interval)
		assert.Nil(t, successor.Recurrence.EndDate)
	})

	t.Run("an existing series end date carries over to the successor", func(t *testing.T) {
		bounded := weeklyMaster()
		endDate := bounded.StartTime.AddDate(0, 0, 28)
		bounded.Recurrence.EndDate = &endDate

		changes, err := Resolve(bounded, secondStart, ActionModify, ScopeFuture, Fields{})
		require.NoError(t, err)
		require.Len(t, changes.Create, 1)
		require.NotNil(t, changes.Create[0].Recurrence.EndDate)
		assert.Equal(t, endDate, *changes.Create[0].Recurrence.EndDate)
	})
}

func TestResolve_AllInSeries(t *testing.T) {
	master := weeklyMaster()

	t.Run("delete removes the master outright", func(t *testing.T) {
		changes, err := Resolve(master, master.StartTime, ActionDelete, ScopeSeries, Fields{})
		require.NoError(t, err)
		assert.Equal(t, master.ID, changes.DeleteID)
		assert.Nil(t, changes.UpdateMaster)
		assert.Empty(t, changes.Create)
	})

	t.Run("modify rewrites the master in place", func(t *testing.T) {
		location := "Room 4"
		changes, err := Resolve(master, master.StartTime, ActionModify, ScopeSeries, Fields{Location: &location})
		require.NoError(t, err)
		require.NotNil(t, changes.UpdateMaster)
		assert.Equal(t, master.ID, changes.UpdateMaster.ID)
		assert.Equal(t, "Room 4", changes.UpdateMaster.Location)
		assert.NotNil(t, changes.UpdateMaster.Recurrence)
	})
}

func TestResolve_ReadOnlyRejected(t *testing.T) {
	imported := weeklyMaster()
	imported.ID = event.ICSEventIDPrefix + "feed-abc"

	for _, scope := range []Scope{ScopeOccurrence, ScopeFuture, ScopeSeries} {
		_, err := Resolve(imported, imported.StartTime, ActionDelete, scope, Fields{})
		assert.ErrorIs(t, err, event.ErrReadOnlyEvent)
	}
}

func TestResolve_UnknownScope(t *testing.T) {
	_, err := Resolve(weeklyMaster(), time.Now(), ActionDelete, Scope("sometimes"), Fields{})
	assert.ErrorIs(t, err, ErrUnknownScope)
}
