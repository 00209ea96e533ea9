package types

import (
	"time"
)

// TouchPoint is a sampled screen position and the time it was captured.
type TouchPoint struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Timestamp time.Time `json:"timestamp"`
}

// Point is a plain 2D coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "left"
	SwipeRight SwipeDirection = "right"
	SwipeUp    SwipeDirection = "up"
	SwipeDown  SwipeDirection = "down"
)

// TapGesture is delivered for both taps and double taps.
type TapGesture struct {
	Point    TouchPoint `json:"point"`
	TapCount int        `json:"tapCount"`
}

// SwipeGesture describes a completed swipe. Velocity is in pixels per millisecond.
type SwipeGesture struct {
	Direction SwipeDirection `json:"direction"`
	Distance  float64        `json:"distance"`
	Velocity  float64        `json:"velocity"`
	Duration  time.Duration  `json:"-"`
}

// DurationMs returns the swipe duration in milliseconds
func (s SwipeGesture) DurationMs() int64 {
	return s.Duration.Milliseconds()
}

type PinchGesture struct {
	Scale    float64 `json:"scale"`
	Center   Point   `json:"center"`
	Distance float64 `json:"distance"`
}

// Gesture kinds reported in Recognized.Type
const (
	GestureTap       = "tap"
	GestureDoubleTap = "doubletap"
	GestureLongPress = "longpress"
	GestureSwipe     = "swipe"
	GesturePinch     = "pinch"
)

// SwipeInfo is the JSON form of a SwipeGesture
type SwipeInfo struct {
	Direction  SwipeDirection `json:"direction"`
	Distance   float64        `json:"distance"`
	Velocity   float64        `json:"velocity"`
	DurationMs int64          `json:"durationMs"`
}

// Recognized is a single recognised gesture as reported by the CLI and server.
type Recognized struct {
	Type      string        `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Point     *TouchPoint   `json:"point,omitempty"`
	Tap       *TapGesture   `json:"tap,omitempty"`
	Swipe     *SwipeInfo    `json:"swipe,omitempty"`
	Pinch     *PinchGesture `json:"pinch,omitempty"`
}

func NewTapRecognized(kind string, at time.Time, tap TapGesture) Recognized {
	return Recognized{Type: kind, Timestamp: at, Tap: &tap}
}

func NewLongPressRecognized(at time.Time, point TouchPoint) Recognized {
	return Recognized{Type: GestureLongPress, Timestamp: at, Point: &point}
}

func NewSwipeRecognized(at time.Time, swipe SwipeGesture) Recognized {
	return Recognized{
		Type:      GestureSwipe,
		Timestamp: at,
		Swipe: &SwipeInfo{
			Direction:  swipe.Direction,
			Distance:   swipe.Distance,
			Velocity:   swipe.Velocity,
			DurationMs: swipe.DurationMs(),
		},
	}
}

func NewPinchRecognized(at time.Time, pinch PinchGesture) Recognized {
	return Recognized{Type: GesturePinch, Timestamp: at, Pinch: &pinch}
}
