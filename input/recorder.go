package input

import (
	"sync"

	"github.com/mobile-next/gesturekit/gesture"
	"github.com/mobile-next/gesturekit/types"
)

// Recorder collects recognised gestures and optionally forwards each one to a sink.
type Recorder struct {
	mu       sync.Mutex
	clock    gesture.Clock
	gestures []types.Recognized
	sink     func(types.Recognized)
}

func NewRecorder(clock gesture.Clock, sink func(types.Recognized)) *Recorder {
	if clock == nil {
		clock = gesture.SystemClock()
	}
	return &Recorder{clock: clock, sink: sink}
}

func (r *Recorder) add(g types.Recognized) {
	r.mu.Lock()
	r.gestures = append(r.gestures, g)
	sink := r.sink
	r.mu.Unlock()

	if sink != nil {
		sink(g)
	}
}

// Handlers returns gesture handlers that record into r
func (r *Recorder) Handlers() gesture.Handlers {
	return gesture.Handlers{
		OnTap: func(g types.TapGesture) {
			r.add(types.NewTapRecognized(types.GestureTap, r.clock.Now(), g))
		},
		OnDoubleTap: func(g types.TapGesture) {
			r.add(types.NewTapRecognized(types.GestureDoubleTap, r.clock.Now(), g))
		},
		OnLongPress: func(p types.TouchPoint) {
			r.add(types.NewLongPressRecognized(r.clock.Now(), p))
		},
		OnSwipe: func(g types.SwipeGesture) {
			r.add(types.NewSwipeRecognized(r.clock.Now(), g))
		},
		OnPinch: func(g types.PinchGesture) {
			r.add(types.NewPinchRecognized(r.clock.Now(), g))
		},
	}
}

// Gestures returns a copy of everything recorded so far
func (r *Recorder) Gestures() []types.Recognized {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Recognized(nil), r.gestures...)
}

// Drain returns the recorded gestures and clears the buffer
func (r *Recorder) Drain() []types.Recognized {
	r.mu.Lock()
	defer r.mu.Unlock()
	drained := r.gestures
	r.gestures = nil
	return drained
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gestures)
}
