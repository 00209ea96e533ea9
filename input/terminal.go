package input

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/mobile-next/gesturekit/gesture"
	"github.com/mobile-next/gesturekit/utils"
)

// Default size of a terminal cell in pixels
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// TerminalSource feeds terminal mouse input into a Dispatcher as mouse events.
// Holding the primary button and dragging becomes mousedown, mousemove, mouseup.
type TerminalSource struct {
	screen     tcell.Screen
	target     Dispatcher
	cellWidth  float64
	cellHeight float64
	pressed    bool
}

type TerminalOption func(*TerminalSource)

// WithCellSize sets how many pixels one terminal cell represents
func WithCellSize(width, height float64) TerminalOption {
	return func(s *TerminalSource) {
		if width > 0 {
			s.cellWidth = width
		}
		if height > 0 {
			s.cellHeight = height
		}
	}
}

func NewTerminalSource(screen tcell.Screen, target Dispatcher, opts ...TerminalOption) *TerminalSource {
	s := &TerminalSource{
		screen:     screen,
		target:     target,
		cellWidth:  DefaultCellWidth,
		cellHeight: DefaultCellHeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run polls the screen until ctx is done, the user presses Escape, q or
// Ctrl-C, or the screen is finalised. The screen must already be initialised.
func (s *TerminalSource) Run(ctx context.Context) error {
	s.screen.EnableMouse()
	defer s.screen.DisableMouse()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			// wake PollEvent so the loop notices cancellation
			_ = s.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-stop:
		}
	}()

	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.HandleEvent(ev) {
			return nil
		}
	}
}

// HandleEvent converts one terminal event. It returns false when the user asked to quit.
func (s *TerminalSource) HandleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventKey:
		switch {
		case e.Key() == tcell.KeyEscape, e.Key() == tcell.KeyCtrlC:
			return false
		case e.Key() == tcell.KeyRune && e.Rune() == 'q':
			return false
		}

	case *tcell.EventMouse:
		col, row := e.Position()
		x := (float64(col) + 0.5) * s.cellWidth
		y := (float64(row) + 0.5) * s.cellHeight
		primary := e.Buttons()&tcell.Button1 != 0

		var eventType gesture.EventType
		switch {
		case primary && !s.pressed:
			s.pressed = true
			eventType = gesture.EventMouseDown
		case !primary && s.pressed:
			s.pressed = false
			eventType = gesture.EventMouseUp
		default:
			eventType = gesture.EventMouseMove
		}

		utils.Verbose("terminal %s at cell %d,%d", eventType, col, row)
		s.target.Dispatch(gesture.Event{Type: eventType, X: x, Y: y, Timestamp: e.When()})
	}
	return true
}
