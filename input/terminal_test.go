package input

import (
	"context"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/mobile-next/gesturekit/gesture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalSource_ConvertsMouseButtons(t *testing.T) {
	log := &dispatchLog{}
	src := NewTerminalSource(nil, log, WithCellSize(10, 20))

	assert.True(t, src.HandleEvent(tcell.NewEventMouse(3, 4, tcell.ButtonNone, tcell.ModNone)))
	assert.True(t, src.HandleEvent(tcell.NewEventMouse(3, 4, tcell.Button1, tcell.ModNone)))
	assert.True(t, src.HandleEvent(tcell.NewEventMouse(9, 4, tcell.Button1, tcell.ModNone)))
	assert.True(t, src.HandleEvent(tcell.NewEventMouse(9, 4, tcell.ButtonNone, tcell.ModNone)))

	assert.Equal(t, []gesture.EventType{
		gesture.EventMouseMove, gesture.EventMouseDown, gesture.EventMouseMove, gesture.EventMouseUp,
	}, eventTypes(log.events))

	assert.Equal(t, 35.0, log.events[1].X)
	assert.Equal(t, 90.0, log.events[1].Y)
	assert.Equal(t, 95.0, log.events[3].X)
}

func TestTerminalSource_QuitKeys(t *testing.T) {
	src := NewTerminalSource(nil, &dispatchLog{})

	assert.False(t, src.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.False(t, src.HandleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)))
	assert.False(t, src.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.True(t, src.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
}

func TestTerminalSource_RunOnSimulationScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	log := &dispatchLog{}
	src := NewTerminalSource(screen, log)

	screen.InjectMouse(1, 1, tcell.Button1, tcell.ModNone)
	screen.InjectMouse(30, 1, tcell.Button1, tcell.ModNone)
	screen.InjectMouse(30, 1, tcell.ButtonNone, tcell.ModNone)
	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	require.NoError(t, src.Run(context.Background()))
	assert.Equal(t, []gesture.EventType{
		gesture.EventMouseDown, gesture.EventMouseMove, gesture.EventMouseUp,
	}, eventTypes(log.events))
}
