package app

import (
	"github.com/gorilla/mux"
	"github.com/timegrid/timegrid/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Events
	r.HandleFunc("/api/event", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/event", deps.EventHandler.GetEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.DeleteEvent).Methods("DELETE")

	// Recurrence-scoped edits
	r.HandleFunc("/api/event/{eventId}/scoped", deps.EditHandler.ModifyScoped).Queries("scope", "{scope}").Methods("PUT")
	r.HandleFunc("/api/event/{eventId}/scoped", deps.EditHandler.DeleteScoped).Queries("scope", "{scope}").Methods("DELETE")

	// Layout and gestures
	r.HandleFunc("/api/layout/day", deps.LayoutHandler.GetDayLayout).Queries("date", "{date}").Methods("GET")
	r.HandleFunc("/api/layout/gesture", deps.GestureHandler.ApplyGesture).Methods("POST")

	// Calendars
	r.HandleFunc("/api/calendar", deps.CalendarHandler.CreateCalendar).Methods("POST")
	r.HandleFunc("/api/calendar", deps.CalendarHandler.GetCalendars).Methods("GET")
	r.HandleFunc("/api/calendar/{calendarId}", deps.CalendarHandler.UpdateCalendar).Methods("PUT")
	r.HandleFunc("/api/calendar/{calendarId}/default", deps.CalendarHandler.SetDefaultCalendar).Methods("PUT")
	r.HandleFunc("/api/calendar/{calendarId}", deps.CalendarHandler.DeleteCalendar).Methods("DELETE")

	// Tasks
	r.HandleFunc("/api/task", deps.TaskHandler.CreateTask).Methods("POST")
	r.HandleFunc("/api/task", deps.TaskHandler.GetTasks).Methods("GET")
	r.HandleFunc("/api/task/{taskId}", deps.TaskHandler.UpdateTask).Methods("PUT")
	r.HandleFunc("/api/task/{taskId}/position", deps.TaskHandler.SetTaskPosition).Queries("position", "{position}").Methods("PUT")
	r.HandleFunc("/api/task/{taskId}", deps.TaskHandler.DeleteTask).Methods("DELETE")

	// Projects
	r.HandleFunc("/api/project", deps.ProjectHandler.CreateProject).Methods("POST")
	r.HandleFunc("/api/project", deps.ProjectHandler.GetProjects).Methods("GET")
	r.HandleFunc("/api/project/{projectId}", deps.ProjectHandler.UpdateProject).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}/position", deps.ProjectHandler.SetProjectPosition).Queries("position", "{position}").Methods("PUT")
	r.HandleFunc("/api/project/{projectId}/default", deps.ProjectHandler.SetDefaultProject).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}", deps.ProjectHandler.DeleteProject).Methods("DELETE")

	// ICS feeds
	r.HandleFunc("/api/feed", deps.FeedHandler.AddFeed).Methods("POST")
	r.HandleFunc("/api/feed", deps.FeedHandler.GetFeeds).Methods("GET")
	r.HandleFunc("/api/feed/{feedId}", deps.FeedHandler.UpdateFeed).Methods("PUT")
	r.HandleFunc("/api/feed/{feedId}", deps.FeedHandler.DeleteFeed).Methods("DELETE")
	r.HandleFunc("/api/feed/{feedId}/refresh", deps.FeedHandler.RefreshFeed).Methods("POST")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth", deps.GoogleAuth.IsAuthenticated).Methods("GET")
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")

	// Sync status
	r.HandleFunc("/api/sync/status", deps.SyncHandler.GetStatus).Methods("GET")
}
