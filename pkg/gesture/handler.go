package gesture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/timegrid/timegrid/pkg/event"
	"github.com/timegrid/timegrid/pkg/layout"
	"github.com/timegrid/timegrid/pkg/recurrence"
	"github.com/timegrid/timegrid/pkg/timeaxis"
)

// GestureRequestDTO replays a completed pointer gesture server-side. The
// client sends the grid geometry it rendered with plus the raw pointer
// samples; the engine recomputes the drop so snapping rules live in one place.
type GestureRequestDTO struct {
	EventID        string          `json:"eventId"`
	Mode           string          `json:"mode"`
	PointerOffsetY float64         `json:"pointerOffsetY"`
	Grid           GridDTO         `json:"grid"`
	Window         *WindowDTO      `json:"window,omitempty"`
	SlotHeight     float64         `json:"slotHeight"`
	Samples        []PointerSample `json:"samples"`
}

type GridDTO struct {
	FirstDay    string  `json:"firstDay"`
	Days        int     `json:"days"`
	OriginX     float64 `json:"originX"`
	ColumnWidth float64 `json:"columnWidth"`
}

type WindowDTO struct {
	StartHour float64 `json:"startHour"`
	EndHour   float64 `json:"endHour"`
}

type PointerSample struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	HoverEventID string  `json:"hoverEventId,omitempty"`
	HoverClear   bool    `json:"hoverClear,omitempty"`
}

// GestureResultDTO reports what the replay concluded. On a drop the event is
// already persisted by the time the response is written.
type GestureResultDTO struct {
	Outcome   string          `json:"outcome"`
	Event     *event.EventDTO `json:"event,omitempty"`
	StartTime string          `json:"startTime,omitempty"`
	EndTime   string          `json:"endTime,omitempty"`
}

type Handler struct {
	events event.Service
	edits  *recurrence.EditService
}

func NewHandler(events event.Service, edits *recurrence.EditService) *Handler {
	return &Handler{events: events, edits: edits}
}

// ApplyGesture handles POST /api/layout/gesture.
func (h *Handler) ApplyGesture(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto GestureRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := h.replay(r.Context(), dto)
	if err != nil {
		writeGestureError(w, err)
		return
	}

	result := GestureResultDTO{Outcome: outcomeName(outcome.Kind)}
	if outcome.Kind == OutcomeDrop {
		moved, err := h.persistDrop(r.Context(), outcome)
		if err != nil {
			writeGestureError(w, err)
			return
		}
		evDTO := event.ToDTO(moved)
		result.Event = &evDTO
		result.StartTime = outcome.Start.Format(time.RFC3339)
		result.EndTime = outcome.End.Format(time.RFC3339)
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Errorf("encoding gesture result: %v", err)
	}
}

func (h *Handler) replay(ctx context.Context, dto GestureRequestDTO) (Outcome, error) {
	mode, ok := parseMode(dto.Mode)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: invalid mode %q", errBadGesture, dto.Mode)
	}
	if len(dto.Samples) == 0 {
		return Outcome{}, fmt.Errorf("%w: no pointer samples", errBadGesture)
	}
	firstDay, err := time.ParseInLocation("2006-01-02", dto.Grid.FirstDay, time.Local)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: invalid firstDay, expected YYYY-MM-DD", errBadGesture)
	}
	if dto.Grid.Days < 1 || dto.Grid.ColumnWidth <= 0 {
		return Outcome{}, fmt.Errorf("%w: invalid grid geometry", errBadGesture)
	}

	window := timeaxis.FullDay()
	zoomed := false
	if dto.Window != nil {
		window = timeaxis.Window{StartHour: dto.Window.StartHour, EndHour: dto.Window.EndHour}
		zoomed = true
	}

	grid := layout.NewDayGrid(firstDay, dto.Grid.Days, dto.Grid.OriginX, dto.Grid.ColumnWidth)
	engine, err := NewEngine(grid, window, zoomed, dto.SlotHeight)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", errBadGesture, err)
	}

	target, err := h.resolveTarget(ctx, dto.EventID)
	if err != nil {
		return Outcome{}, err
	}

	first := dto.Samples[0]
	if err := engine.PointerDown(target, Point{X: first.X, Y: first.Y}, mode, dto.PointerOffsetY); err != nil {
		return Outcome{}, err
	}
	var last Point
	for _, sample := range dto.Samples[1:] {
		last = Point{X: sample.X, Y: sample.Y}
		if sample.HoverClear {
			engine.CancelHover()
		}
		hover, err := h.hoverEvent(ctx, sample.HoverEventID)
		if err != nil {
			return Outcome{}, err
		}
		engine.PointerMove(last, hover)
	}
	if len(dto.Samples) == 1 {
		last = Point{X: first.X, Y: first.Y}
	}
	return engine.PointerUp(last), nil
}

// resolveTarget loads the dragged event. A synthetic occurrence id resolves
// through its master, since occurrences are what the layout endpoint renders
// but only masters are persisted.
func (h *Handler) resolveTarget(ctx context.Context, id string) (event.Event, error) {
	masterID, n, isOccurrence := event.SplitOccurrenceID(id)
	if !isOccurrence {
		return h.events.Get(ctx, id)
	}
	master, err := h.events.Get(ctx, masterID)
	if err != nil {
		return event.Event{}, err
	}
	instance, ok := recurrence.Instance(master, n)
	if !ok {
		return event.Event{}, event.ErrEventNotFound
	}
	return instance, nil
}

// persistDrop writes the computed drop. A plain record moves directly; a
// dragged occurrence becomes a "this occurrence" scoped edit, which excepts
// the date on the master and creates a standalone record at the new times.
// Re-parenting only applies to plain records.
func (h *Handler) persistDrop(ctx context.Context, outcome Outcome) (event.Event, error) {
	if !outcome.Event.IsOccurrence() {
		return h.events.Move(ctx, outcome.Event.ID, outcome.Start, outcome.End, outcome.ParentGroupEventID)
	}
	fields := recurrence.Fields{StartTime: &outcome.Start, EndTime: &outcome.End}
	if err := h.edits.Modify(ctx, outcome.Event.ID, recurrence.ScopeOccurrence, fields); err != nil {
		return event.Event{}, err
	}
	moved := outcome.Event
	moved.StartTime = outcome.Start
	moved.EndTime = outcome.End
	return moved, nil
}

func (h *Handler) hoverEvent(ctx context.Context, id string) (*event.Event, error) {
	if id == "" {
		return nil, nil
	}
	hovered, err := h.events.Get(ctx, id)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hovered, nil
}

var errBadGesture = errors.New("invalid gesture")

func parseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeMove, ModeResizeTop, ModeResizeBottom:
		return Mode(s), true
	default:
		return "", false
	}
}

func outcomeName(kind OutcomeKind) string {
	switch kind {
	case OutcomeClick:
		return "click"
	case OutcomeDrop:
		return "drop"
	default:
		return "none"
	}
}

func writeGestureError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, event.ErrReadOnlyEvent):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, event.ErrEventNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, event.ErrInvalidTimes), errors.Is(err, errBadGesture), errors.Is(err, ErrSessionActive):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
