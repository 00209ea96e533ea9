package input

import (
	"context"
	"sort"
	"time"

	"github.com/mobile-next/gesturekit/gesture"
)

// Dispatcher delivers events to registered listeners; gesture.Element implements it.
type Dispatcher interface {
	Dispatch(ev gesture.Event) int
}

type keyedEvent struct {
	key time.Time
	ev  gesture.Event
}

// sortedByTime orders events by timestamp. An event without a timestamp sorts
// with the timestamped event before it in input order, so it stays right
// behind that event.
func sortedByTime(events []gesture.Event) []gesture.Event {
	keyed := make([]keyedEvent, len(events))
	var last time.Time
	for i, ev := range events {
		if !ev.Timestamp.IsZero() {
			last = ev.Timestamp
		}
		keyed[i] = keyedEvent{key: last, ev: ev}
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		return keyed[i].key.Before(keyed[j].key)
	})

	sorted := make([]gesture.Event, len(keyed))
	for i, k := range keyed {
		sorted[i] = k.ev
	}
	return sorted
}

// Replay dispatches events on a virtual timeline. Before each event the clock is
// moved to the event's timestamp so timers due earlier fire first. Events without
// a timestamp happen at the current clock time. After the last event the clock
// advances by settle so pending taps are delivered.
func Replay(ctx context.Context, target Dispatcher, clock *gesture.VirtualClock, events []gesture.Event, settle time.Duration) error {
	for _, ev := range sortedByTime(events) {
		if err := ctx.Err(); err != nil {
			return err
		}

		if ev.Timestamp.IsZero() {
			ev.Timestamp = clock.Now()
		} else {
			clock.Set(ev.Timestamp)
		}
		target.Dispatch(ev)
	}

	clock.Advance(settle)
	return ctx.Err()
}

// ReplayRealtime dispatches events with their original spacing in wall-clock
// time. Events are restamped on dispatch so they agree with the system clock.
func ReplayRealtime(ctx context.Context, target Dispatcher, events []gesture.Event, settle time.Duration) error {
	sorted := sortedByTime(events)
	began := time.Now()

	var base time.Time
	for _, ev := range sorted {
		if !ev.Timestamp.IsZero() {
			base = ev.Timestamp
			break
		}
	}

	for _, ev := range sorted {
		if !ev.Timestamp.IsZero() && !base.IsZero() {
			if err := SleepUntil(ctx, began.Add(ev.Timestamp.Sub(base))); err != nil {
				return err
			}
		}
		ev.Timestamp = time.Now()
		target.Dispatch(ev)
	}

	return SleepUntil(ctx, time.Now().Add(settle))
}

// SleepUntil blocks until deadline or until ctx is done.
func SleepUntil(ctx context.Context, deadline time.Time) error {
	wait := time.Until(deadline)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
