package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:plain-1
SUMMARY:Dentist
DESCRIPTION:Bring insurance card
LOCATION:Main St 1
DTSTART:20260310T090000Z
DTEND:20260310T100000Z
END:VEVENT
BEGIN:VEVENT
UID:allday-1
SUMMARY:Public holiday
DTSTART;VALUE=DATE:20260317
DTEND;VALUE=DATE:20260318
END:VEVENT
BEGIN:VEVENT
UID:weekly-1
SUMMARY:Standup
DTSTART:20260302T080000Z
DTEND:20260302T081500Z
RRULE:FREQ=WEEKLY
EXDATE:20260309T080000Z
END:VEVENT
BEGIN:VEVENT
SUMMARY:No UID, must be skipped
DTSTART:20260310T090000Z
END:VEVENT
END:VCALENDAR
`

func TestParseFeed(t *testing.T) {
	events, err := parseFeed("feed-1", []byte(sampleFeed))
	require.NoError(t, err)
	require.Len(t, events, 3, "the UID-less event is skipped")

	plain := events[0]
	assert.Equal(t, "plain-1", plain.UID)
	assert.Equal(t, "Dentist", plain.Summary)
	assert.Equal(t, "Bring insurance card", plain.Description)
	assert.Equal(t, "Main St 1", plain.Location)
	assert.Equal(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC), plain.Start.UTC())
	assert.False(t, plain.AllDay)
	assert.Empty(t, plain.RawRRule)

	allDay := events[1]
	assert.Equal(t, "allday-1", allDay.UID)
	assert.True(t, allDay.AllDay)

	weekly := events[2]
	assert.Equal(t, "FREQ=WEEKLY", weekly.RawRRule)
	require.Len(t, weekly.ExDates, 1)
	assert.Equal(t, time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC), weekly.ExDates[0].UTC())
}

func TestParseFeed_EmptyBody(t *testing.T) {
	_, err := parseFeed("feed-1", nil)
	assert.Error(t, err)
}

func TestExpandParsed_Weekly(t *testing.T) {
	ev := parsedEvent{
		UID:      "weekly-1",
		Summary:  "Standup",
		Start:    time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC),
		End:      time.Date(2026, time.March, 2, 8, 15, 0, 0, time.UTC),
		RawRRule: "FREQ=WEEKLY",
		ExDates:  []time.Time{time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)},
	}

	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 24, 0, 0, 0, 0, time.UTC)
	out := expandParsed("feed-1", ev, from, to)

	// March 2, 16, 23; March 9 is excluded by EXDATE.
	require.Len(t, out, 3)
	for _, occurrence := range out {
		assert.True(t, occurrence.ReadOnly)
		assert.Contains(t, occurrence.ID, "ics-feed-1-weekly-1-")
		assert.Equal(t, 15*time.Minute, occurrence.Duration())
	}
	assert.Equal(t, time.Date(2026, time.March, 16, 8, 0, 0, 0, time.UTC), out[1].StartTime.UTC())
}

func TestExpandParsed_NonRecurringOutsideRange(t *testing.T) {
	ev := parsedEvent{
		UID:   "plain-1",
		Start: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC),
	}

	from := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, expandParsed("feed-1", ev, from, to))
}
