package gesture

import (
	"math"
	"time"

	"github.com/mobile-next/gesturekit/types"
)

// Distance returns the euclidean distance between two points
func Distance(a, b types.TouchPoint) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func touchDistance(a, b Touch) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func midpoint(a, b Touch) types.Point {
	return types.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func touchPoint(t Touch, at time.Time) types.TouchPoint {
	return types.TouchPoint{X: t.X, Y: t.Y, Timestamp: at}
}

// SwipeDirectionOf picks the dominant axis of a displacement. Ties go to the vertical axis.
func SwipeDirectionOf(dx, dy float64) types.SwipeDirection {
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return types.SwipeRight
		}
		return types.SwipeLeft
	}
	if dy > 0 {
		return types.SwipeDown
	}
	return types.SwipeUp
}

// Velocity returns distance over duration in pixels per millisecond.
// Durations under a millisecond count as one millisecond.
func Velocity(distance float64, duration time.Duration) float64 {
	ms := float64(duration) / float64(time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return distance / ms
}
