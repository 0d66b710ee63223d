package panel

import "errors"

// State is the visibility of the announcement panel.
type State string

// Panel states
const (
	Closed State = "closed"
	Open   State = "open"
)

// Event is a user interaction that may move the panel.
type Event string

// Panel events
const (
	BellClicked    Event = "bell"    // toggles the panel
	CloseClicked   Event = "close"   // the panel's close button
	OutsideClicked Event = "outside" // a click on neither bell nor panel
	PanelClicked   Event = "panel"   // a click inside the panel, absorbed
)

// Effect is work the caller must perform after a transition.
type Effect int

// Transition effects
const (
	EffectNone Effect = iota
	// EffectMarkActiveRead: recompute the active set, mark it all read, zero the badge.
	EffectMarkActiveRead
)

// Domain errors
var (
	ErrUnknownState = errors.New("panel state must be one of: closed, open")
	ErrUnknownEvent = errors.New("panel event must be one of: bell, close, outside, panel")
)

// ParseState validates a state string from a request.
func ParseState(s string) (State, error) {
	switch State(s) {
	case Closed, Open:
		return State(s), nil
	case "":
		return Closed, nil
	}
	return "", ErrUnknownState
}

// ParseEvent validates an event string from a request.
func ParseEvent(s string) (Event, error) {
	switch Event(s) {
	case BellClicked, CloseClicked, OutsideClicked, PanelClicked:
		return Event(s), nil
	}
	return "", ErrUnknownEvent
}

// Transition is the pure panel state machine.
// Closed->Open happens only through the bell and carries EffectMarkActiveRead.
// Open->Closed never recomputes anything.
// PRE: s and e are valid
// POST: Returns the next state and the effect to apply
func Transition(s State, e Event) (State, Effect) {
	switch e {
	case BellClicked:
		if s == Open {
			return Closed, EffectNone
		}
		return Open, EffectMarkActiveRead
	case CloseClicked, OutsideClicked:
		return Closed, EffectNone
	case PanelClicked:
		return s, EffectNone
	}
	return s, EffectNone
}
