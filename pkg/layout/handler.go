package layout

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/timegrid/timegrid/pkg/event"
	"github.com/timegrid/timegrid/pkg/timeaxis"
)

// EventsProvider supplies the expanded, externally merged events visible in a
// range. Injected so this package stays independent of the recurrence and
// feed packages.
type EventsProvider func(ctx context.Context, from, to time.Time) ([]event.Event, error)

type PlacedDTO struct {
	Event        event.EventDTO `json:"event"`
	ColumnIndex  int            `json:"columnIndex"`
	TotalColumns int            `json:"totalColumns"`
	Top          float64        `json:"top"`
	Height       float64        `json:"height"`
	Left         float64        `json:"left"`
	Width        float64        `json:"width"`
}

type AllDayPlacedDTO struct {
	Event event.EventDTO `json:"event"`
	Row   int            `json:"row"`
}

type DayLayoutDTO struct {
	Date   string            `json:"date"`
	Timed  []PlacedDTO       `json:"timed"`
	AllDay []AllDayPlacedDTO `json:"allDay"`
}

type Handler struct {
	service *Service
	events  EventsProvider
}

func NewHandler(service *Service, events EventsProvider) *Handler {
	return &Handler{service: service, events: events}
}

// GetDayLayout handles GET /api/layout/day?date=YYYY-MM-DD. Optional
// startHour/endHour describe an active zoom window; slotHeight defaults to
// one slot per granularity step at 40px.
func (h *Handler) GetDayLayout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	day, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("date"), time.Local)
	if err != nil {
		http.Error(w, "invalid 'date', expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	mapper, err := mapperFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dayStart := day
	dayEnd := day.AddDate(0, 0, 1)
	events, err := h.events(r.Context(), dayStart, dayEnd)
	if err != nil {
		log.Errorf("failed to load events for layout: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result := DayLayoutDTO{
		Date:   day.Format("2006-01-02"),
		Timed:  make([]PlacedDTO, 0),
		AllDay: make([]AllDayPlacedDTO, 0),
	}
	for _, placed := range h.service.LayoutDay(events, day, mapper) {
		result.Timed = append(result.Timed, PlacedDTO{
			Event:        event.ToDTO(placed.Event),
			ColumnIndex:  placed.Slot.Index,
			TotalColumns: placed.Slot.Total,
			Top:          placed.Box.Top,
			Height:       placed.Box.Height,
			Left:         placed.Box.Left,
			Width:        placed.Box.Width,
		})
	}
	for _, placed := range h.service.LayoutAllDay(events, day) {
		result.AllDay = append(result.AllDay, AllDayPlacedDTO{
			Event: event.ToDTO(placed.Event),
			Row:   placed.Row,
		})
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func mapperFromQuery(r *http.Request) (Mapper, error) {
	mapper := Mapper{Window: timeaxis.FullDay(), SlotHeight: 40}

	if raw := r.URL.Query().Get("slotHeight"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			return Mapper{}, errInvalidQuery("slotHeight")
		}
		mapper.SlotHeight = v
	}

	startRaw := r.URL.Query().Get("startHour")
	endRaw := r.URL.Query().Get("endHour")
	if startRaw == "" && endRaw == "" {
		return mapper, nil
	}
	start, err := strconv.ParseFloat(startRaw, 64)
	if err != nil {
		return Mapper{}, errInvalidQuery("startHour")
	}
	end, err := strconv.ParseFloat(endRaw, 64)
	if err != nil {
		return Mapper{}, errInvalidQuery("endHour")
	}
	if start < timeaxis.FullDayStart || end > timeaxis.FullDayEnd || end <= start {
		return Mapper{}, errInvalidQuery("window")
	}
	mapper.Window = timeaxis.Window{StartHour: start, EndHour: end}
	mapper.Zoomed = true
	return mapper, nil
}

type errInvalidQuery string

func (e errInvalidQuery) Error() string {
	return "invalid '" + string(e) + "' query parameter"
}
