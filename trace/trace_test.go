package trace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mobile-next/gesturekit/gesture"
	"github.com/mobile-next/gesturekit/input"
	"github.com/mobile-next/gesturekit/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

const swipeTrace = `{
  "version": 1,
  "name": "swipe right",
  "config": {"swipeThreshold": 40, "longPressDelay": 800},
  "events": [
    {"t": 0, "type": "touchstart", "touches": [{"id": 0, "x": 100, "y": 200}]},
    {"t": 150, "type": "touchmove", "touches": [{"id": 0, "x": 180, "y": 205}]},
    {"t": 150, "type": "touchend"}
  ]
}`

const tapPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>version</key>
	<integer>1</integer>
	<key>pointers</key>
	<array>
		<dict>
			<key>type</key>
			<string>pointer</string>
			<key>id</key>
			<string>finger1</string>
			<key>parameters</key>
			<dict>
				<key>pointerType</key>
				<string>touch</string>
			</dict>
			<key>actions</key>
			<array>
				<dict>
					<key>type</key>
					<string>pointerMove</string>
					<key>x</key>
					<integer>50</integer>
					<key>y</key>
					<integer>60</integer>
				</dict>
				<dict>
					<key>type</key>
					<string>pointerDown</string>
				</dict>
				<dict>
					<key>type</key>
					<string>pause</string>
					<key>duration</key>
					<integer>100</integer>
				</dict>
				<dict>
					<key>type</key>
					<string>pointerUp</string>
				</dict>
			</array>
		</dict>
	</array>
</dict>
</plist>`

func TestParse_JSON(t *testing.T) {
	tr, err := Parse([]byte(swipeTrace), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, 1, tr.Version)
	assert.Equal(t, "swipe right", tr.Name)
	require.Len(t, tr.Events, 3)
	assert.Equal(t, gesture.EventTouchMove, tr.Events[1].Type)
	assert.Equal(t, int64(150), tr.Events[1].OffsetMs)

	require.NotNil(t, tr.Config)
	cfg := tr.EffectiveConfig(gesture.DefaultConfig())
	assert.Equal(t, 40.0, cfg.SwipeThreshold)
	assert.Equal(t, 800*time.Millisecond, cfg.LongPressDelay)
	assert.Equal(t, gesture.DefaultTapThreshold, int(cfg.TapThreshold))
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing version", `{"events": []}`},
		{"wrong version", `{"version": 2}`},
		{"unknown event type", `{"version": 1, "events": [{"t": 0, "type": "click"}]}`},
		{"negative offset", `{"version": 1, "events": [{"t": -5, "type": "touchend"}]}`},
		{"negative threshold", `{"version": 1, "config": {"tapThreshold": -1}}`},
		{"unknown config key", `{"version": 1, "config": {"tapRadius": 4}}`},
		{"unknown action", `{"version": 1, "pointers": [{"id": "f", "actions": [{"type": "hover"}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatJSON)
			assert.Error(t, err)
		})
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte("{"), FormatJSON)
	assert.Error(t, err)
}

func TestParse_Plist(t *testing.T) {
	tr, err := Parse([]byte(tapPlist), FormatPlist)
	require.NoError(t, err)

	require.Len(t, tr.Pointers, 1)
	p := tr.Pointers[0]
	assert.Equal(t, "finger1", p.ID)
	assert.Equal(t, "touch", p.Parameters.PointerType)
	require.Len(t, p.Actions, 4)
	assert.Equal(t, types.ActionPointerMove, p.Actions[0].Type)
	assert.Equal(t, 50, p.Actions[0].X)
	assert.Equal(t, 100, p.Actions[2].Duration)
}

func TestFormatForPath(t *testing.T) {
	f, err := FormatForPath("/tmp/a.JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = FormatForPath("b.plist")
	require.NoError(t, err)
	assert.Equal(t, FormatPlist, f)

	_, err = FormatForPath("c.yaml")
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	tapThreshold := 12.0
	original := &Trace{
		Name:   "tap",
		Config: &gesture.ConfigPatch{TapThreshold: &tapThreshold},
		Pointers: input.TapActions(10, 20),
	}

	path := filepath.Join(t.TempDir(), "tap.json")
	require.NoError(t, Save(path, original))
	assert.Equal(t, CurrentVersion, original.Version)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original.Name, loaded.Name)
	require.NotNil(t, loaded.Config)
	require.NotNil(t, loaded.Config.TapThreshold)
	assert.Equal(t, 12.0, *loaded.Config.TapThreshold)
	assert.Equal(t, original.Pointers, loaded.Pointers)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load("trace.txt")
	assert.Error(t, err)
}

func TestFromEvents(t *testing.T) {
	events := []gesture.Event{
		{Type: gesture.EventTouchStart, Touches: []gesture.Touch{{ID: 0, X: 1, Y: 2}}, Timestamp: start},
		{Type: gesture.EventTouchEnd, Timestamp: start.Add(80 * time.Millisecond)},
	}

	tr := FromEvents(events)
	assert.Equal(t, CurrentVersion, tr.Version)
	require.Len(t, tr.Events, 2)
	assert.Equal(t, int64(0), tr.Events[0].OffsetMs)
	assert.Equal(t, int64(80), tr.Events[1].OffsetMs)
	assert.Equal(t, events[0].Touches, tr.Events[0].Touches)

	assert.Empty(t, FromEvents(nil).Events)
}

func TestTimeline_EventsThenActions(t *testing.T) {
	tr, err := Parse([]byte(swipeTrace), FormatJSON)
	require.NoError(t, err)
	tr.Pointers = input.TapActions(10, 10)

	events, err := tr.Timeline(start)
	require.NoError(t, err)
	require.Greater(t, len(events), 3)

	assert.Equal(t, start, events[0].Timestamp)
	assert.Equal(t, start.Add(150*time.Millisecond), events[2].Timestamp)

	actionStart := start.Add(150*time.Millisecond + ActionGap)
	for _, ev := range events[3:] {
		assert.False(t, ev.Timestamp.Before(actionStart))
	}
}

func TestTimeline_RecognizesSwipe(t *testing.T) {
	tr, err := Parse([]byte(swipeTrace), FormatJSON)
	require.NoError(t, err)

	events, err := tr.Timeline(start)
	require.NoError(t, err)

	gestures, err := input.Recognize(context.Background(), tr.EffectiveConfig(gesture.DefaultConfig()), events)
	require.NoError(t, err)
	require.Len(t, gestures, 1)
	assert.Equal(t, types.GestureSwipe, gestures[0].Type)
	require.NotNil(t, gestures[0].Swipe)
	assert.Equal(t, types.SwipeRight, gestures[0].Swipe.Direction)
}

func TestTimeline_RecognizesPlistTap(t *testing.T) {
	tr, err := Parse([]byte(tapPlist), FormatPlist)
	require.NoError(t, err)

	events, err := tr.Timeline(start)
	require.NoError(t, err)

	gestures, err := input.Recognize(context.Background(), gesture.DefaultConfig(), events)
	require.NoError(t, err)
	require.Len(t, gestures, 1)
	assert.Equal(t, types.GestureTap, gestures[0].Type)
}
