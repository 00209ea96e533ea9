package input

import (
	"context"
	"fmt"
	"time"

	"github.com/mobile-next/gesturekit/gesture"
	"github.com/mobile-next/gesturekit/types"
)

// Epoch is the start time used when a replay has no timestamps of its own
var Epoch = time.Unix(0, 0).UTC()

// SettleDuration is how long replay waits after the last event so that every
// pending tap or long press timer under cfg has fired.
func SettleDuration(cfg gesture.Config) time.Duration {
	settle := cfg.DoubleTapDelay
	if cfg.LongPressDelay > settle {
		settle = cfg.LongPressDelay
	}
	return settle + time.Millisecond
}

// Recognize runs events through a fresh manager on a virtual clock and returns
// the gestures in the order they were recognised.
func Recognize(ctx context.Context, cfg gesture.Config, events []gesture.Event) ([]types.Recognized, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gesture config: %w", err)
	}
	for i, ev := range events {
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}

	start := Epoch
	for _, ev := range sortedByTime(events) {
		if !ev.Timestamp.IsZero() {
			start = ev.Timestamp
			break
		}
	}

	clock := gesture.NewVirtualClock(start)
	element := gesture.NewElement()
	recorder := NewRecorder(clock, nil)

	manager := gesture.NewManager(cfg, gesture.WithClock(clock))
	detach := manager.Attach(element, recorder.Handlers())
	defer detach()

	if err := Replay(ctx, element, clock, events, SettleDuration(cfg)); err != nil {
		return nil, err
	}
	return recorder.Gestures(), nil
}

// RecognizeActions converts pointer actions to events and recognises them
func RecognizeActions(ctx context.Context, cfg gesture.Config, pointers []types.Pointer) ([]types.Recognized, error) {
	events, err := ActionsToEvents(pointers, Epoch)
	if err != nil {
		return nil, err
	}
	return Recognize(ctx, cfg, events)
}
