// Package interaction turns raw pointer and wheel input into viewport
// mutations. Transitions are pure: Step takes the drag state and an event
// and returns the next state plus the effects a driver must execute.
package interaction

import "fmt"

// Wheel zoom factors. One notch zooms by a fixed ratio regardless of the
// delta magnitude.
const (
	ZoomInFactor  = 1.2
	ZoomOutFactor = 1.0 / 1.2
)

// Button is a pointer button code. Only ButtonPrimary starts a drag.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

// EventKind is the kind of an input event.
type EventKind uint8

const (
	EventButtonDown EventKind = iota + 1
	EventButtonUp
	EventMove
	EventWheel
)

func (k EventKind) String() string {
	switch k {
	case EventButtonDown:
		return "button-down"
	case EventButtonUp:
		return "button-up"
	case EventMove:
		return "move"
	case EventWheel:
		return "wheel"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is one input event in screen coordinates. Button is used by
// button events, Delta by wheel events (positive zooms in).
type Event struct {
	Kind   EventKind
	X, Y   float64
	Button Button
	Delta  float64
}

func ButtonDown(x, y float64, b Button) Event {
	return Event{Kind: EventButtonDown, X: x, Y: y, Button: b}
}

func ButtonUp(x, y float64, b Button) Event {
	return Event{Kind: EventButtonUp, X: x, Y: y, Button: b}
}

func Move(x, y float64) Event {
	return Event{Kind: EventMove, X: x, Y: y}
}

func Wheel(delta, x, y float64) Event {
	return Event{Kind: EventWheel, X: x, Y: y, Delta: delta}
}

// State is the pointer drag state. The zero value is IDLE.
type State struct {
	Dragging bool
	LastX    float64
	LastY    float64
}

// EffectKind is the kind of work a transition asks the driver to do.
type EffectKind uint8

const (
	// EffectPan pans the viewport by (DX, DY).
	EffectPan EffectKind = iota + 1
	// EffectZoom zooms the viewport by Factor around (X, Y).
	EffectZoom
	// EffectCursor refreshes the scene-coordinate read-out for screen (X, Y).
	EffectCursor
	// EffectRender redraws the frame.
	EffectRender
)

// Effect is a single driver action. Effects are executed in order.
type Effect struct {
	Kind   EffectKind
	X, Y   float64
	DX, DY float64
	Factor float64
}

// Step applies ev to s. Unknown event kinds and buttons leave the state
// unchanged; they are not errors.
func Step(s State, ev Event) (State, []Effect) {
	switch ev.Kind {
	case EventButtonDown:
		effects := []Effect{cursor(ev)}
		if ev.Button != ButtonPrimary {
			return s, effects
		}
		return State{Dragging: true, LastX: ev.X, LastY: ev.Y}, effects

	case EventButtonUp:
		effects := []Effect{cursor(ev)}
		if ev.Button != ButtonPrimary {
			return s, effects
		}
		return State{LastX: s.LastX, LastY: s.LastY}, effects

	case EventMove:
		if !s.Dragging {
			return s, []Effect{cursor(ev)}
		}
		pan := Effect{Kind: EffectPan, DX: ev.X - s.LastX, DY: ev.Y - s.LastY}
		next := State{Dragging: true, LastX: ev.X, LastY: ev.Y}
		return next, []Effect{pan, cursor(ev), {Kind: EffectRender}}

	case EventWheel:
		var factor float64
		switch {
		case ev.Delta > 0:
			factor = ZoomInFactor
		case ev.Delta < 0:
			factor = ZoomOutFactor
		default:
			return s, nil
		}
		zoom := Effect{Kind: EffectZoom, X: ev.X, Y: ev.Y, Factor: factor}
		return s, []Effect{zoom, {Kind: EffectRender}}
	}
	return s, nil
}

func cursor(ev Event) Effect {
	return Effect{Kind: EffectCursor, X: ev.X, Y: ev.Y}
}
