package input

import (
	"fmt"
	"time"

	"github.com/mobile-next/gesturekit/gesture"
	"github.com/mobile-next/gesturekit/types"
)

// SampleInterval is the spacing of interpolated move samples
const SampleInterval = 16 * time.Millisecond

type pointerState struct {
	id    int
	mouse bool
	x, y  float64
	down  bool
}

type pendingMove struct {
	state        *pointerState
	fromX, fromY float64
	toX, toY     float64
	duration     time.Duration
}

// converter accumulates events while pointer actions execute
type converter struct {
	states []*pointerState
	events []gesture.Event
}

// ActionsToEvents executes pointer action lists tick by tick and returns the
// resulting pointer events starting at start. As with W3C actions, tick n runs
// the n-th action of every pointer together and lasts as long as its longest action.
func ActionsToEvents(pointers []types.Pointer, start time.Time) ([]gesture.Event, error) {
	c := &converter{}
	ticks := 0
	for i, p := range pointers {
		switch p.Parameters.PointerType {
		case "", "touch", "pen":
			c.states = append(c.states, &pointerState{id: i})
		case "mouse":
			c.states = append(c.states, &pointerState{id: i, mouse: true})
		default:
			return nil, fmt.Errorf("pointer %s: unsupported pointer type %q", p.ID, p.Parameters.PointerType)
		}
		if len(p.Actions) > ticks {
			ticks = len(p.Actions)
		}
	}

	now := start
	for tick := 0; tick < ticks; tick++ {
		var tickDuration time.Duration
		var moves []pendingMove

		for i, p := range pointers {
			if tick >= len(p.Actions) {
				continue
			}
			action := p.Actions[tick]
			if action.Duration < 0 {
				return nil, fmt.Errorf("pointer %s action %d: negative duration %d", p.ID, tick, action.Duration)
			}
			duration := time.Duration(action.Duration) * time.Millisecond
			state := c.states[i]

			switch action.Type {
			case types.ActionPause:
				// nothing besides the duration

			case types.ActionPointerMove, "move":
				moves = append(moves, pendingMove{
					state:    state,
					fromX:    state.x,
					fromY:    state.y,
					toX:      float64(action.X),
					toY:      float64(action.Y),
					duration: duration,
				})

			case types.ActionPointerDown, "press":
				if action.Type == "press" {
					state.x, state.y = float64(action.X), float64(action.Y)
				}
				if state.down {
					return nil, fmt.Errorf("pointer %s action %d: pointer is already down", p.ID, tick)
				}
				state.down = true
				c.emitDown(state, now)

			case types.ActionPointerUp, "release":
				if !state.down {
					return nil, fmt.Errorf("pointer %s action %d: pointer is not down", p.ID, tick)
				}
				state.down = false
				c.emitUp(state, now)

			default:
				return nil, fmt.Errorf("pointer %s action %d: unknown action type %q", p.ID, tick, action.Type)
			}

			if duration > tickDuration {
				tickDuration = duration
			}
		}

		c.interpolate(moves, now)
		now = now.Add(tickDuration)
	}

	return c.events, nil
}

func (c *converter) activeTouches() []gesture.Touch {
	var touches []gesture.Touch
	for _, s := range c.states {
		if s.down && !s.mouse {
			touches = append(touches, gesture.Touch{ID: s.id, X: s.x, Y: s.y})
		}
	}
	return touches
}

func (c *converter) emitDown(s *pointerState, at time.Time) {
	if s.mouse {
		c.events = append(c.events, gesture.Event{Type: gesture.EventMouseDown, X: s.x, Y: s.y, Timestamp: at})
		return
	}
	c.events = append(c.events, gesture.Event{Type: gesture.EventTouchStart, Touches: c.activeTouches(), Timestamp: at})
}

func (c *converter) emitUp(s *pointerState, at time.Time) {
	if s.mouse {
		c.events = append(c.events, gesture.Event{Type: gesture.EventMouseUp, X: s.x, Y: s.y, Timestamp: at})
		return
	}
	c.events = append(c.events, gesture.Event{Type: gesture.EventTouchEnd, Touches: c.activeTouches(), Timestamp: at})
}

// emitMove reports the moved pointers. Touch pointers that are not down move silently.
func (c *converter) emitMove(moved []*pointerState, at time.Time) {
	touchMoved := false
	for _, s := range moved {
		if s.mouse {
			c.events = append(c.events, gesture.Event{Type: gesture.EventMouseMove, X: s.x, Y: s.y, Timestamp: at})
			continue
		}
		if s.down {
			touchMoved = true
		}
	}
	if touchMoved {
		c.events = append(c.events, gesture.Event{Type: gesture.EventTouchMove, Touches: c.activeTouches(), Timestamp: at})
	}
}

// interpolate samples all moves of one tick on a shared timeline
func (c *converter) interpolate(moves []pendingMove, start time.Time) {
	if len(moves) == 0 {
		return
	}

	var longest time.Duration
	for _, m := range moves {
		if m.duration > longest {
			longest = m.duration
		}
	}

	elapsed := time.Duration(0)
	for {
		if elapsed < longest {
			elapsed += SampleInterval
			if elapsed > longest {
				elapsed = longest
			}
		}

		moved := make([]*pointerState, 0, len(moves))
		for _, m := range moves {
			progress := 1.0
			if m.duration > 0 && elapsed < m.duration {
				progress = float64(elapsed) / float64(m.duration)
			}
			x := m.fromX + (m.toX-m.fromX)*progress
			y := m.fromY + (m.toY-m.fromY)*progress
			if x == m.state.x && y == m.state.y && elapsed > 0 {
				continue
			}
			m.state.x, m.state.y = x, y
			moved = append(moved, m.state)
		}
		c.emitMove(moved, start.Add(elapsed))

		if elapsed >= longest {
			return
		}
	}
}
