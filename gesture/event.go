package gesture

import (
	"fmt"
	"time"
)

type EventType string

const (
	EventTouchStart  EventType = "touchstart"
	EventTouchMove   EventType = "touchmove"
	EventTouchEnd    EventType = "touchend"
	EventTouchCancel EventType = "touchcancel"
	EventMouseDown   EventType = "mousedown"
	EventMouseMove   EventType = "mousemove"
	EventMouseUp     EventType = "mouseup"
)

var (
	touchEvents = []EventType{EventTouchStart, EventTouchMove, EventTouchEnd, EventTouchCancel}
	mouseEvents = []EventType{EventMouseDown, EventMouseMove, EventMouseUp}
)

// ParseEventType validates an event name received over the wire
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	for _, known := range touchEvents {
		if t == known {
			return t, nil
		}
	}
	for _, known := range mouseEvents {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown event type: %s", s)
}

// Touch is one active contact point.
type Touch struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Event is a low-level pointer event. For touch events Touches holds the contacts
// still active after the event, so a final touchend carries an empty list.
// X and Y are only meaningful for mouse events.
type Event struct {
	Type      EventType `json:"type"`
	Touches   []Touch   `json:"touches,omitempty"`
	X         float64   `json:"x,omitempty"`
	Y         float64   `json:"y,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Validate checks that the event is well formed
func (e Event) Validate() error {
	if _, err := ParseEventType(string(e.Type)); err != nil {
		return err
	}
	switch e.Type {
	case EventTouchStart, EventTouchMove:
		if len(e.Touches) == 0 {
			return fmt.Errorf("%s requires at least one touch", e.Type)
		}
	}
	return nil
}

type Listener func(Event)

type ListenerID uint64

// EventTarget is anything pointer listeners can be registered on.
type EventTarget interface {
	AddEventListener(eventType EventType, listener Listener) ListenerID
	RemoveEventListener(eventType EventType, id ListenerID)
}

// TouchPrimary is implemented by targets that know whether the host is a
// touch-first device. Mouse listeners are skipped on such targets.
type TouchPrimary interface {
	TouchPrimary() bool
}

func isTouchPrimary(target EventTarget) bool {
	tp, ok := target.(TouchPrimary)
	return ok && tp.TouchPrimary()
}
