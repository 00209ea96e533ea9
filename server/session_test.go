package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mobile-next/gesturekit/gesture"
	"github.com/mobile-next/gesturekit/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_EvictsLeastRecentlyUsed(t *testing.T) {
	registry := gesture.NewRegistry()
	store, err := NewSessionStore(2, registry)
	require.NoError(t, err)

	first, err := store.Create(gesture.DefaultConfig(), gesture.ConfigPatch{}, false, nil)
	require.NoError(t, err)
	second, err := store.Create(gesture.DefaultConfig(), gesture.ConfigPatch{}, false, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// touch the first so the second becomes the eviction candidate
	_, err = store.Get(first.ID)
	require.NoError(t, err)

	third, err := store.Create(gesture.DefaultConfig(), gesture.ConfigPatch{}, false, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 2, registry.Len())

	_, err = store.Get(second.ID)
	assert.Error(t, err)
	_, err = second.Dispatch(context.Background(), []gesture.Event{{Type: gesture.EventTouchEnd}})
	assert.Error(t, err, "evicted sessions are closed")

	_, err = store.Get(third.ID)
	assert.NoError(t, err)
}

func TestSessionStore_DefaultLimit(t *testing.T) {
	store, err := NewSessionStore(0, nil)
	require.NoError(t, err)

	for i := 0; i < DefaultSessionLimit+3; i++ {
		_, err := store.Create(gesture.DefaultConfig(), gesture.ConfigPatch{}, false, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, DefaultSessionLimit, store.Len())

	store.CloseAll()
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_RejectsInvalidConfig(t *testing.T) {
	store, err := NewSessionStore(4, nil)
	require.NoError(t, err)

	cfg := gesture.DefaultConfig()
	cfg.TapThreshold = -1
	_, err = store.Create(cfg, gesture.ConfigPatch{}, false, nil)
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestSession_NotifierAndPoll(t *testing.T) {
	store, err := NewSessionStore(4, nil)
	require.NoError(t, err)

	var mu sync.Mutex
	var notified []string
	s, err := store.Create(gesture.DefaultConfig(), gesture.ConfigPatch{}, false, func(id string, g types.Recognized) {
		mu.Lock()
		defer mu.Unlock()
		notified = append(notified, id+":"+g.Type)
	})
	require.NoError(t, err)

	n, err := s.Dispatch(context.Background(), []gesture.Event{
		{Type: gesture.EventTouchStart, Touches: []gesture.Touch{{X: 100, Y: 300}}},
		{Type: gesture.EventTouchMove, Touches: []gesture.Touch{{X: 100, Y: 100}}},
		{Type: gesture.EventTouchEnd},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	mu.Lock()
	assert.Equal(t, []string{s.ID + ":" + types.GestureSwipe}, notified)
	mu.Unlock()

	gestures := s.Poll()
	require.Len(t, gestures, 1)
	assert.Equal(t, types.SwipeUp, gestures[0].Swipe.Direction)
	assert.Empty(t, s.Poll())
}

func TestSession_TouchPrimaryIgnoresMouse(t *testing.T) {
	store, err := NewSessionStore(4, nil)
	require.NoError(t, err)

	s, err := store.Create(gesture.DefaultConfig(), gesture.ConfigPatch{}, true, nil)
	require.NoError(t, err)

	_, err = s.Dispatch(context.Background(), []gesture.Event{
		{Type: gesture.EventMouseDown, X: 10, Y: 10},
		{Type: gesture.EventMouseMove, X: 300, Y: 10},
		{Type: gesture.EventMouseUp, X: 300, Y: 10},
	})
	require.NoError(t, err)
	assert.Empty(t, s.Poll())
}

func TestSession_DispatchValidatesBeforeDelivering(t *testing.T) {
	store, err := NewSessionStore(4, nil)
	require.NoError(t, err)
	s, err := store.Create(gesture.DefaultConfig(), gesture.ConfigPatch{}, false, nil)
	require.NoError(t, err)

	n, err := s.Dispatch(context.Background(), []gesture.Event{
		{Type: gesture.EventTouchStart, Touches: []gesture.Touch{{X: 1, Y: 1}}},
		{Type: "hover"},
	})
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestSessionStore_RebaseKeepsSessionOverrides(t *testing.T) {
	store, err := NewSessionStore(4, nil)
	require.NoError(t, err)

	swipe := 90.0
	a, err := store.Create(gesture.DefaultConfig(), gesture.ConfigPatch{SwipeThreshold: &swipe}, false, nil)
	require.NoError(t, err)
	b, err := store.Create(gesture.DefaultConfig(), gesture.ConfigPatch{}, false, nil)
	require.NoError(t, err)

	tap := 4.0
	require.NoError(t, b.UpdateConfig(gesture.ConfigPatch{TapThreshold: &tap}))

	base := gesture.DefaultConfig()
	base.SwipeThreshold = 70
	base.TapThreshold = 8
	require.NoError(t, store.Rebase(base))

	assert.Equal(t, 90.0, a.Config().SwipeThreshold)
	assert.Equal(t, 8.0, a.Config().TapThreshold)
	assert.Equal(t, 70.0, b.Config().SwipeThreshold)
	assert.Equal(t, 4.0, b.Config().TapThreshold)

	// a key dropped from the base falls back to the default
	require.NoError(t, store.Rebase(gesture.DefaultConfig()))
	assert.Equal(t, float64(gesture.DefaultSwipeThreshold), b.Config().SwipeThreshold)
	assert.Equal(t, 90.0, a.Config().SwipeThreshold)

	base.TapThreshold = -1
	assert.Error(t, store.Rebase(base))
	assert.Equal(t, float64(gesture.DefaultSwipeThreshold), b.Config().SwipeThreshold)
}

func TestSession_SlowTimestampedDragIsNotASwipe(t *testing.T) {
	store, err := NewSessionStore(4, nil)
	require.NoError(t, err)
	s, err := store.Create(gesture.DefaultConfig(), gesture.ConfigPatch{}, false, nil)
	require.NoError(t, err)

	// 80px in 400ms is 0.2 px/ms, under the 0.3 px/ms swipe velocity
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	began := time.Now()
	n, err := s.Dispatch(context.Background(), []gesture.Event{
		{Type: gesture.EventTouchStart, Touches: []gesture.Touch{{X: 0, Y: 0}}, Timestamp: t0},
		{Type: gesture.EventTouchMove, Touches: []gesture.Touch{{X: 20, Y: 0}}, Timestamp: t0.Add(100 * time.Millisecond)},
		{Type: gesture.EventTouchMove, Touches: []gesture.Touch{{X: 50, Y: 0}}, Timestamp: t0.Add(250 * time.Millisecond)},
		{Type: gesture.EventTouchMove, Touches: []gesture.Touch{{X: 80, Y: 0}}, Timestamp: t0.Add(400 * time.Millisecond)},
		{Type: gesture.EventTouchEnd, Timestamp: t0.Add(400 * time.Millisecond)},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.GreaterOrEqual(t, time.Since(began), 400*time.Millisecond, "events are delivered at their shifted times")

	assert.Empty(t, s.Poll())
}

func TestSession_TimestampedSwipeKeepsClientTiming(t *testing.T) {
	store, err := NewSessionStore(4, nil)
	require.NoError(t, err)
	s, err := store.Create(gesture.DefaultConfig(), gesture.ConfigPatch{}, false, nil)
	require.NoError(t, err)

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err = s.Dispatch(context.Background(), []gesture.Event{
		{Type: gesture.EventTouchStart, Touches: []gesture.Touch{{X: 0, Y: 0}}, Timestamp: t0},
		{Type: gesture.EventTouchMove, Touches: []gesture.Touch{{X: 100, Y: 0}}, Timestamp: t0.Add(100 * time.Millisecond)},
		{Type: gesture.EventTouchEnd, Timestamp: t0.Add(100 * time.Millisecond)},
	})
	require.NoError(t, err)

	gestures := s.Poll()
	require.Len(t, gestures, 1)
	require.NotNil(t, gestures[0].Swipe)
	assert.Equal(t, types.SwipeRight, gestures[0].Swipe.Direction)
	assert.Equal(t, int64(100), gestures[0].Swipe.DurationMs)
	assert.InDelta(t, 1.0, gestures[0].Swipe.Velocity, 1e-9)
}

func TestSession_DispatchCancelled(t *testing.T) {
	store, err := NewSessionStore(4, nil)
	require.NoError(t, err)
	s, err := store.Create(gesture.DefaultConfig(), gesture.ConfigPatch{}, false, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n, err := s.Dispatch(ctx, []gesture.Event{
		{Type: gesture.EventTouchStart, Touches: []gesture.Touch{{X: 0, Y: 0}}, Timestamp: t0},
		{Type: gesture.EventTouchEnd, Timestamp: t0.Add(time.Second)},
	})
	// nothing is delivered once the caller has gone away
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
}

func TestSessionStore_CloseUnknown(t *testing.T) {
	store, err := NewSessionStore(4, nil)
	require.NoError(t, err)
	assert.Error(t, store.Close("missing"))
	_, err = store.Get("")
	assert.Error(t, err)
}
