package commands

import (
	"context"
	"fmt"

	"github.com/mobile-next/gesturekit/gesture"
	"github.com/mobile-next/gesturekit/input"
	"github.com/mobile-next/gesturekit/types"
)

// SynthesizeRequest describes a gesture to turn into pointer actions.
// Duration means the hold time for longpress, the gap between taps for
// doubletap and the movement time for swipe and pinch.
type SynthesizeRequest struct {
	Kind         string               `json:"kind"`
	X            int                  `json:"x"`
	Y            int                  `json:"y"`
	X2           int                  `json:"x2,omitempty"`
	Y2           int                  `json:"y2,omitempty"`
	Duration     int                  `json:"duration,omitempty"`
	FromDistance int                  `json:"fromDistance,omitempty"`
	ToDistance   int                  `json:"toDistance,omitempty"`
	Recognize    bool                 `json:"recognize,omitempty"`
	Config       *gesture.ConfigPatch `json:"config,omitempty"`
}

type SynthesizeResponse struct {
	Actions  []types.Pointer    `json:"actions"`
	Gestures []types.Recognized `json:"gestures,omitempty"`
}

// BuildActions returns the pointer actions for req
func BuildActions(req SynthesizeRequest) ([]types.Pointer, error) {
	if req.X < 0 || req.Y < 0 {
		return nil, fmt.Errorf("x and y coordinates must be non-negative, got x=%d, y=%d", req.X, req.Y)
	}
	if req.Duration < 0 {
		return nil, fmt.Errorf("duration must be non-negative, got %d", req.Duration)
	}

	switch req.Kind {
	case types.GestureTap:
		return input.TapActions(req.X, req.Y), nil
	case types.GestureDoubleTap:
		return input.DoubleTapActions(req.X, req.Y, req.Duration), nil
	case types.GestureLongPress:
		return input.LongPressActions(req.X, req.Y, req.Duration), nil
	case types.GestureSwipe:
		if req.X2 < 0 || req.Y2 < 0 {
			return nil, fmt.Errorf("x2 and y2 coordinates must be non-negative, got x2=%d, y2=%d", req.X2, req.Y2)
		}
		return input.SwipeActions(req.X, req.Y, req.X2, req.Y2, req.Duration), nil
	case types.GesturePinch:
		if req.FromDistance <= 0 || req.ToDistance <= 0 {
			return nil, fmt.Errorf("pinch distances must be positive, got from=%d, to=%d", req.FromDistance, req.ToDistance)
		}
		return input.PinchActions(req.X, req.Y, req.FromDistance, req.ToDistance, req.Duration), nil
	default:
		return nil, fmt.Errorf("unknown gesture kind: %s", req.Kind)
	}
}

// SynthesizeCommand builds pointer actions for a gesture and optionally
// reports what the recogniser makes of them
func SynthesizeCommand(ctx context.Context, req SynthesizeRequest) *CommandResponse {
	actions, err := BuildActions(req)
	if err != nil {
		return NewErrorResponse(err)
	}

	resp := SynthesizeResponse{Actions: actions}
	if req.Recognize {
		cfg := gesture.DefaultConfig()
		if req.Config != nil {
			cfg = cfg.Apply(*req.Config)
		}
		resp.Gestures, err = input.RecognizeActions(ctx, cfg, actions)
		if err != nil {
			return NewErrorResponse(fmt.Errorf("error recognizing synthesized gesture: %w", err))
		}
	}

	return NewSuccessResponse(resp)
}
