package player

import (
	"fmt"

	"github.com/gogpu/ggplay"
)

// EventKind classifies an input event.
type EventKind int

const (
	// EventKey is a key press carrying a rune.
	EventKey EventKind = iota + 1

	// EventResize reports the new terminal size in cells.
	EventResize

	// EventInterrupt is a termination request from outside the keymap,
	// such as Ctrl-C in raw mode or a signal.
	EventInterrupt
)

// Event is one input event delivered to the scheduler.
type Event struct {
	Kind EventKind
	Rune rune
	Size ggplay.Geometry
}

// KeyEvent returns a key press event.
func KeyEvent(r rune) Event { return Event{Kind: EventKey, Rune: r} }

// ResizeEvent returns a resize event for a terminal of size cells.
func ResizeEvent(size ggplay.Geometry) Event { return Event{Kind: EventResize, Size: size} }

// InterruptEvent returns an interrupt event.
func InterruptEvent() Event { return Event{Kind: EventInterrupt} }

func (e Event) String() string {
	switch e.Kind {
	case EventKey:
		return fmt.Sprintf("key(%q)", e.Rune)
	case EventResize:
		return "resize(" + e.Size.String() + ")"
	case EventInterrupt:
		return "interrupt"
	default:
		return fmt.Sprintf("event(%d)", int(e.Kind))
	}
}
