package calendar

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type CalendarDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsVisible bool   `json:"isVisible"`
	IsDefault bool   `json:"isDefault"`
	ReadOnly  bool   `json:"readOnly"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto CalendarDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Name == "" {
		http.Error(w, "calendar name is required", http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), dtoToCalendar(dto))
	if err != nil {
		writeCalendarError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(calendarToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetCalendars(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	calendars, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]CalendarDTO, 0, len(calendars))
	for _, cal := range calendars {
		dtos = append(dtos, calendarToDTO(cal))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateCalendar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	calendarId := mux.Vars(r)["calendarId"]

	var dto CalendarDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cal := dtoToCalendar(dto)
	cal.ID = calendarId

	updated, err := h.service.Update(r.Context(), cal)
	if err != nil {
		writeCalendarError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(calendarToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SetDefaultCalendar(w http.ResponseWriter, r *http.Request) {
	calendarId := mux.Vars(r)["calendarId"]
	log.Debugf("Setting default calendar to %s", calendarId)

	if err := h.service.SetDefault(r.Context(), calendarId); err != nil {
		writeCalendarError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteCalendar(w http.ResponseWriter, r *http.Request) {
	calendarId := mux.Vars(r)["calendarId"]

	if err := h.service.Delete(r.Context(), calendarId); err != nil {
		writeCalendarError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func dtoToCalendar(dto CalendarDTO) Calendar {
	return Calendar{
		ID:        dto.ID,
		Name:      dto.Name,
		Color:     dto.Color,
		IsVisible: dto.IsVisible,
		IsDefault: dto.IsDefault,
		ReadOnly:  dto.ReadOnly,
	}
}

func calendarToDTO(cal Calendar) CalendarDTO {
	return CalendarDTO{
		ID:        cal.ID,
		Name:      cal.Name,
		Color:     cal.Color,
		IsVisible: cal.IsVisible,
		IsDefault: cal.IsDefault,
		ReadOnly:  cal.ReadOnly,
	}
}

func writeCalendarError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCalendarNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrReadOnlyCalendar):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrDefaultCalendar):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
