package recurrence

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/timegrid/timegrid/pkg/event"
)

// ScopedModifyDTO carries the changed field values of a scoped edit. Absent
// fields keep their current values.
type ScopedModifyDTO struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	AllDay      *bool   `json:"allDay,omitempty"`
	CalendarID  *string `json:"calendarId,omitempty"`
}

type Handler struct {
	edits *EditService
}

func NewHandler(edits *EditService) *Handler {
	return &Handler{edits: edits}
}

// DeleteScoped handles DELETE /api/event/{eventId}/scoped?scope=...
func (h *Handler) DeleteScoped(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	scope, ok := parseScope(r)
	if !ok {
		http.Error(w, "invalid scope, expected occurrence|future|series", http.StatusBadRequest)
		return
	}
	log.Debugf("scoped delete of %s, scope=%s", eventId, scope)

	if err := h.edits.Delete(r.Context(), eventId, scope); err != nil {
		writeEditError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ModifyScoped handles PUT /api/event/{eventId}/scoped?scope=...
func (h *Handler) ModifyScoped(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	eventId := mux.Vars(r)["eventId"]
	scope, ok := parseScope(r)
	if !ok {
		http.Error(w, "invalid scope, expected occurrence|future|series", http.StatusBadRequest)
		return
	}

	var dto ScopedModifyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fields, err := dtoToFields(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Debugf("scoped modify of %s, scope=%s", eventId, scope)

	if err := h.edits.Modify(r.Context(), eventId, scope, fields); err != nil {
		writeEditError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func parseScope(r *http.Request) (Scope, bool) {
	switch Scope(r.URL.Query().Get("scope")) {
	case ScopeOccurrence:
		return ScopeOccurrence, true
	case ScopeFuture:
		return ScopeFuture, true
	case ScopeSeries:
		return ScopeSeries, true
	default:
		return "", false
	}
}

func dtoToFields(dto ScopedModifyDTO) (Fields, error) {
	fields := Fields{
		Title:       dto.Title,
		Description: dto.Description,
		Location:    dto.Location,
		AllDay:      dto.AllDay,
		CalendarID:  dto.CalendarID,
	}
	if dto.StartTime != nil {
		t, err := time.Parse(time.RFC3339, *dto.StartTime)
		if err != nil {
			return Fields{}, errors.New("invalid startTime, expected ISO-8601")
		}
		fields.StartTime = &t
	}
	if dto.EndTime != nil {
		t, err := time.Parse(time.RFC3339, *dto.EndTime)
		if err != nil {
			return Fields{}, errors.New("invalid endTime, expected ISO-8601")
		}
		fields.EndTime = &t
	}
	return fields, nil
}

func writeEditError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, event.ErrReadOnlyEvent):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, event.ErrEventNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrUnknownScope):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
