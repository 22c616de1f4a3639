package gesture

import (
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/timegrid/timegrid/pkg/event"
	"github.com/timegrid/timegrid/pkg/layout"
	"github.com/timegrid/timegrid/pkg/timeaxis"
)

// dragThresholdPx is the pointer travel required before a pointer-down turns
// into a drag; smaller motion falls through to click handling.
const dragThresholdPx = 5.0

var (
	ErrSessionActive   = fmt.Errorf("a drag session is already active")
	ErrNoSession       = fmt.Errorf("no drag session is active")
	ErrInvalidGeometry = fmt.Errorf("slot height must be positive")
)

// Mode of an active drag gesture.
type Mode string

const (
	ModeMove         Mode = "move"
	ModeResizeTop    Mode = "resize-top"
	ModeResizeBottom Mode = "resize-bottom"
)

// Phase of the gesture state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseArmed
	PhaseDragging
)

type Point struct {
	X float64
	Y float64
}

// Session is the state of one pointer gesture, created on pointer-down and
// destroyed unconditionally on pointer-up. Exactly one may exist at a time,
// which makes concurrent gestures impossible by construction.
type Session struct {
	Event          event.Event
	InitialPointer Point
	// PointerOffsetY is the grab point within the event box, so a move keeps
	// the event anchored under the finger rather than snapping its top edge.
	PointerOffsetY float64
	Mode           Mode
}

// Candidate is the currently computed drop target of a drag in progress.
type Candidate struct {
	Day   time.Time
	Start time.Time
	End   time.Time
}

// OutcomeKind classifies what a pointer-up means.
type OutcomeKind int

const (
	// OutcomeNone: motion happened but no valid drop target was available;
	// the event stays where it was.
	OutcomeNone OutcomeKind = iota
	// OutcomeClick: the pointer never crossed the drag threshold.
	OutcomeClick
	// OutcomeDrop: a new position was computed and should be persisted.
	OutcomeDrop
)

type Outcome struct {
	Kind  OutcomeKind
	Event event.Event
	Start time.Time
	End   time.Time
	// ParentGroupEventID is set when the drop landed on a group event and
	// the dragged event may be re-parented into it.
	ParentGroupEventID string
}

// Engine is the drag/resize state machine. It owns the single active
// Session and is fed pointer samples plus the render-independent day grid,
// zoom window, and slot height captured at gesture start.
type Engine struct {
	grid       layout.DayGrid
	window     timeaxis.Window
	zoomed     bool
	slotHeight float64

	phase      Phase
	session    Session
	candidate  *Candidate
	hoverGroup string
}

func NewEngine(grid layout.DayGrid, window timeaxis.Window, zoomed bool, slotHeight float64) (*Engine, error) {
	if slotHeight <= 0 {
		return nil, ErrInvalidGeometry
	}
	return &Engine{
		grid:       grid,
		window:     window,
		zoomed:     zoomed,
		slotHeight: slotHeight,
		phase:      PhaseIdle,
	}, nil
}

func (e *Engine) Phase() Phase {
	return e.phase
}

// HoverGroupID returns the id of the group event currently indicated as a
// re-parent candidate, empty when none.
func (e *Engine) HoverGroupID() string {
	return e.hoverGroup
}

// Candidate returns the current drop candidate, nil while none is valid.
func (e *Engine) Candidate() *Candidate {
	return e.candidate
}

// PointerDown arms a gesture on the given event. Imported read-only events
// never start a session.
func (e *Engine) PointerDown(ev event.Event, p Point, mode Mode, pointerOffsetY float64) error {
	if e.phase != PhaseIdle {
		return ErrSessionActive
	}
	if ev.IsReadOnly() {
		return event.ErrReadOnlyEvent
	}
	e.session = Session{
		Event:          ev,
		InitialPointer: p,
		PointerOffsetY: pointerOffsetY,
		Mode:           mode,
	}
	e.phase = PhaseArmed
	return nil
}

// PointerMove feeds a pointer sample. hover is the event currently under the
// pointer (nil when over empty space); a group event there becomes a
// re-parent indicator rather than an immediate write.
func (e *Engine) PointerMove(p Point, hover *event.Event) {
	switch e.phase {
	case PhaseIdle:
		return
	case PhaseArmed:
		dx := math.Abs(p.X - e.session.InitialPointer.X)
		dy := math.Abs(p.Y - e.session.InitialPointer.Y)
		if dx <= dragThresholdPx && dy <= dragThresholdPx {
			return
		}
		e.phase = PhaseDragging
	}

	e.updateCandidate(p)
	e.updateHover(hover)
}

// CancelHover clears the group re-parent indicator (Escape). The drag itself
// continues; there is no general gesture cancel.
func (e *Engine) CancelHover() {
	e.hoverGroup = ""
}

// PointerUp finalizes the gesture and releases the session unconditionally.
func (e *Engine) PointerUp(p Point) Outcome {
	defer e.reset()

	switch e.phase {
	case PhaseIdle:
		return Outcome{Kind: OutcomeNone}
	case PhaseArmed:
		// No real motion: a click, not a drop.
		return Outcome{Kind: OutcomeClick, Event: e.session.Event}
	}

	e.updateCandidate(p)
	if e.candidate == nil {
		log.Debugf("drag of %s ended without a valid target, restoring original position", e.session.Event.ID)
		return Outcome{Kind: OutcomeNone, Event: e.session.Event}
	}

	outcome := Outcome{
		Kind:  OutcomeDrop,
		Event: e.session.Event,
		Start: e.candidate.Start,
		End:   e.candidate.End,
	}
	if e.hoverGroup != "" && !e.session.Event.IsGroupEvent {
		outcome.ParentGroupEventID = e.hoverGroup
	}
	return outcome
}

// Release drops any active session without producing an outcome, for
// teardown paths that never see a pointer-up.
func (e *Engine) Release() {
	e.reset()
}

func (e *Engine) reset() {
	e.phase = PhaseIdle
	e.session = Session{}
	e.candidate = nil
	e.hoverGroup = ""
}

// updateCandidate recomputes the drop target from the pointer position:
// hit-test the day column, convert the y offset to time at the current
// granularity, snap to the nearest tick, then apply the session mode.
func (e *Engine) updateCandidate(p Point) {
	column, ok := e.grid.ColumnAt(p.X)
	if !ok {
		// No day under the pointer: abort the candidate without mutating
		// anything; the event springs back on drop.
		e.candidate = nil
		return
	}

	switch e.session.Mode {
	case ModeMove:
		start := e.timeAt(column.Date, p.Y-e.session.PointerOffsetY)
		e.candidate = &Candidate{
			Day:   column.Date,
			Start: start,
			End:   start.Add(e.session.Event.Duration()),
		}
	case ModeResizeTop:
		start := e.timeAt(column.Date, p.Y)
		end := e.session.Event.EndTime
		if !start.Before(end) {
			start = end.Add(-e.tick())
		}
		e.candidate = &Candidate{Day: column.Date, Start: start, End: end}
	case ModeResizeBottom:
		end := e.timeAt(column.Date, p.Y)
		start := e.session.Event.StartTime
		if !end.After(start) {
			end = start.Add(e.tick())
		}
		e.candidate = &Candidate{Day: column.Date, Start: start, End: end}
	}
}

func (e *Engine) updateHover(hover *event.Event) {
	if hover == nil || !hover.IsGroupEvent || hover.ID == e.session.Event.ID || e.session.Event.IsGroupEvent {
		e.hoverGroup = ""
		return
	}
	e.hoverGroup = hover.ID
}

// timeAt converts a y offset within a day column into a snapped instant.
func (e *Engine) timeAt(day time.Time, y float64) time.Time {
	granularity := float64(e.granularityMinutes())
	minutes := y / e.slotHeight * granularity
	snapped := math.Round(minutes/granularity) * granularity

	base := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	if e.zoomed {
		base = e.window.Start(day)
	}
	return base.Add(time.Duration(snapped) * time.Minute)
}

func (e *Engine) granularityMinutes() int {
	if !e.zoomed {
		return 60
	}
	return e.window.Granularity().Main
}

func (e *Engine) tick() time.Duration {
	return time.Duration(e.granularityMinutes()) * time.Minute
}
