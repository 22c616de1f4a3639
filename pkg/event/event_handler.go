package event

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type RecurrenceDTO struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`
	EndDate   string `json:"endDate,omitempty"`
}

type EventDTO struct {
	ID                 string         `json:"id"`
	CalendarID         string         `json:"calendarId"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	Location           string         `json:"location,omitempty"`
	StartTime          string         `json:"startTime"`
	EndTime            string         `json:"endTime"`
	AllDay             bool           `json:"allDay"`
	IsGroupEvent       bool           `json:"isGroupEvent"`
	ParentGroupEventID string         `json:"parentGroupEventId,omitempty"`
	Recurrence         *RecurrenceDTO `json:"recurrence,omitempty"`
	// ExceptionDates is informational output. Exceptions are written through
	// scoped edits only; values sent here are ignored.
	ExceptionDates []string `json:"exceptionDates,omitempty"`
	ReadOnly       bool     `json:"readOnly"`
}

// ExpandFunc turns persisted records into the occurrence instances visible
// in a range. Injected to keep this package free of the recurrence logic.
type ExpandFunc func(events []Event, from, to time.Time) []Event

// ExternalEventsFunc supplies read-only events imported from external feeds.
type ExternalEventsFunc func(ctx context.Context, from, to time.Time) ([]Event, error)

type Handler struct {
	service        Service
	expand         ExpandFunc
	externalEvents ExternalEventsFunc
}

func NewHandler(service Service, expand ExpandFunc, externalEvents ExternalEventsFunc) *Handler {
	return &Handler{service: service, expand: expand, externalEvents: externalEvents}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new event")
	w.Header().Set("Content-Type", "application/json")

	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	event, err := dtoToEvent(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), event)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "invalid 'from' time", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "invalid 'to' time", http.StatusBadRequest)
		return
	}

	events, err := h.service.List(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// expand=false returns raw records (masters included) for edit dialogs.
	if r.URL.Query().Get("expand") != "false" && h.expand != nil {
		events = h.expand(events, from, to)
	}

	if h.externalEvents != nil {
		external, err := h.externalEvents(r.Context(), from, to)
		if err != nil {
			log.Errorf("failed to load external events: %v", err)
		} else {
			events = append(events, external...)
		}
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, ToDTO(event))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	event, err := h.service.Get(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(ToDTO(event)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	eventId := mux.Vars(r)["eventId"]

	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ID == "" {
		dto.ID = eventId
	}
	if dto.ID != eventId {
		http.Error(w, "event id in body does not match URL", http.StatusBadRequest)
		return
	}
	event, err := dtoToEvent(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), event)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	if err := h.service.Delete(r.Context(), eventId); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrReadOnlyEvent):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrEventNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidTimes):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func dtoToEvent(dto EventDTO) (Event, error) {
	start, err := time.Parse(time.RFC3339, dto.StartTime)
	if err != nil {
		return Event{}, errors.New("invalid startTime, expected ISO-8601")
	}
	end, err := time.Parse(time.RFC3339, dto.EndTime)
	if err != nil {
		return Event{}, errors.New("invalid endTime, expected ISO-8601")
	}

	event := Event{
		ID:                 dto.ID,
		CalendarID:         dto.CalendarID,
		Title:              dto.Title,
		Description:        dto.Description,
		Location:           dto.Location,
		StartTime:          start,
		EndTime:            end,
		AllDay:             dto.AllDay,
		IsGroupEvent:       dto.IsGroupEvent,
		ParentGroupEventID: dto.ParentGroupEventID,
		ReadOnly:           dto.ReadOnly,
	}
	if dto.Recurrence != nil && Frequency(dto.Recurrence.Frequency) != FrequencyNone {
		pattern := RecurrencePattern{
			Frequency: Frequency(dto.Recurrence.Frequency),
			Interval:  dto.Recurrence.Interval,
		}
		if dto.Recurrence.EndDate != "" {
			endDate, err := time.Parse(time.RFC3339, dto.Recurrence.EndDate)
			if err != nil {
				return Event{}, errors.New("invalid recurrence endDate, expected ISO-8601")
			}
			pattern.EndDate = &endDate
		}
		event.Recurrence = &pattern
	}
	return event, nil
}

// ToDTO converts an Event to its JSON representation.
func ToDTO(event Event) EventDTO {
	dto := EventDTO{
		ID:                 event.ID,
		CalendarID:         event.CalendarID,
		Title:              event.Title,
		Description:        event.Description,
		Location:           event.Location,
		StartTime:          event.StartTime.Format(time.RFC3339),
		EndTime:            event.EndTime.Format(time.RFC3339),
		AllDay:             event.AllDay,
		IsGroupEvent:       event.IsGroupEvent,
		ParentGroupEventID: event.ParentGroupEventID,
		ReadOnly:           event.IsReadOnly(),
	}
	if event.Recurrence != nil {
		dto.Recurrence = &RecurrenceDTO{
			Frequency: string(event.Recurrence.Frequency),
			Interval:  event.Recurrence.Interval,
		}
		if event.Recurrence.EndDate != nil {
			dto.Recurrence.EndDate = event.Recurrence.EndDate.Format(time.RFC3339)
		}
	}
	for _, d := range event.ExceptionDates {
		dto.ExceptionDates = append(dto.ExceptionDates, d.Format(time.RFC3339))
	}
	return dto
}
