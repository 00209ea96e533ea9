package gesture

import (
	"testing"
	"time"

	"github.com/mobile-next/gesturekit/types"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	assert.Equal(t, 5.0, Distance(types.TouchPoint{X: 0, Y: 0}, types.TouchPoint{X: 3, Y: 4}))
	assert.Equal(t, 0.0, Distance(types.TouchPoint{X: 7, Y: 7}, types.TouchPoint{X: 7, Y: 7}))
}

func TestVelocity(t *testing.T) {
	assert.InDelta(t, 0.5333, Velocity(80, 150*time.Millisecond), 0.0001)
	assert.Equal(t, 80.0, Velocity(80, 0), "sub-millisecond durations clamp to one millisecond")
}

func TestMidpoint(t *testing.T) {
	assert.Equal(t, types.Point{X: 50, Y: 25}, midpoint(Touch{X: 0, Y: 0}, Touch{X: 100, Y: 50}))
}

func TestSwipeDirectionOf(t *testing.T) {
	assert.Equal(t, types.SwipeRight, SwipeDirectionOf(10, 1))
	assert.Equal(t, types.SwipeLeft, SwipeDirectionOf(-10, 1))
	assert.Equal(t, types.SwipeDown, SwipeDirectionOf(1, 10))
	assert.Equal(t, types.SwipeUp, SwipeDirectionOf(1, -10))
	assert.Equal(t, types.SwipeUp, SwipeDirectionOf(0, 0))
}
