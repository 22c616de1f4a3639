package event_bus

// Change notifications published by the services. Clients poll the sync
// status endpoint instead of receiving these directly.
const (
	EventCreated EventType = "event.created"
	EventUpdated EventType = "event.updated"
	EventDeleted EventType = "event.deleted"

	CalendarChanged EventType = "calendar.changed"
	TaskChanged     EventType = "task.changed"
	FeedRefreshed   EventType = "feed.refreshed"
)
