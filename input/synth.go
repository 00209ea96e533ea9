package input

import (
	"github.com/mobile-next/gesturekit/types"
)

// Defaults for synthesised gestures, in milliseconds
const (
	DefaultTapPause       = 100
	DefaultDoubleTapGap   = 100
	DefaultLongPressHold  = 1000
	DefaultSwipeDuration  = 250
	DefaultPinchDuration  = 300
	defaultFirstFingerID  = "finger1"
	defaultSecondFingerID = "finger2"
)

func tapSequence(x, y int) []types.TapAction {
	return []types.TapAction{
		{Type: types.ActionPointerMove, Duration: 0, X: x, Y: y},
		{Type: types.ActionPointerDown, Button: 0},
		{Type: types.ActionPause, Duration: DefaultTapPause},
		{Type: types.ActionPointerUp, Button: 0},
	}
}

func TapActions(x, y int) []types.Pointer {
	return []types.Pointer{types.NewTouchPointer(defaultFirstFingerID, tapSequence(x, y)...)}
}

// DoubleTapActions produces two taps on the same spot separated by gap milliseconds
func DoubleTapActions(x, y, gap int) []types.Pointer {
	if gap <= 0 {
		gap = DefaultDoubleTapGap
	}
	actions := tapSequence(x, y)
	actions = append(actions, types.TapAction{Type: types.ActionPause, Duration: gap})
	actions = append(actions, tapSequence(x, y)...)
	return []types.Pointer{types.NewTouchPointer(defaultFirstFingerID, actions...)}
}

func LongPressActions(x, y, hold int) []types.Pointer {
	if hold <= 0 {
		hold = DefaultLongPressHold
	}
	return []types.Pointer{
		types.NewTouchPointer(defaultFirstFingerID,
			types.TapAction{Type: types.ActionPointerMove, Duration: 0, X: x, Y: y},
			types.TapAction{Type: types.ActionPointerDown, Button: 0},
			types.TapAction{Type: types.ActionPause, Duration: hold},
			types.TapAction{Type: types.ActionPointerUp, Button: 0},
		),
	}
}

func SwipeActions(x1, y1, x2, y2, duration int) []types.Pointer {
	if duration <= 0 {
		duration = DefaultSwipeDuration
	}
	return []types.Pointer{
		types.NewTouchPointer(defaultFirstFingerID,
			types.TapAction{Type: types.ActionPointerMove, Duration: 0, X: x1, Y: y1},
			types.TapAction{Type: types.ActionPointerDown, Button: 0},
			types.TapAction{Type: types.ActionPointerMove, Duration: duration, X: x2, Y: y2},
			types.TapAction{Type: types.ActionPointerUp, Button: 0},
		),
	}
}

// PinchActions moves two fingers placed horizontally around (cx, cy) from
// fromDist to toDist pixels apart. toDist > fromDist zooms in.
func PinchActions(cx, cy, fromDist, toDist, duration int) []types.Pointer {
	if duration <= 0 {
		duration = DefaultPinchDuration
	}
	finger := func(id string, sign int) types.Pointer {
		return types.NewTouchPointer(id,
			types.TapAction{Type: types.ActionPointerMove, Duration: 0, X: cx + sign*fromDist/2, Y: cy},
			types.TapAction{Type: types.ActionPointerDown, Button: 0},
			types.TapAction{Type: types.ActionPointerMove, Duration: duration, X: cx + sign*toDist/2, Y: cy},
			types.TapAction{Type: types.ActionPointerUp, Button: 0},
		)
	}
	return []types.Pointer{finger(defaultFirstFingerID, -1), finger(defaultSecondFingerID, 1)}
}
