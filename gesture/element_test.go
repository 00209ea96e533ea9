package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElement_DispatchInRegistrationOrder(t *testing.T) {
	el := NewElement()
	var order []int
	el.AddEventListener(EventTouchStart, func(Event) { order = append(order, 1) })
	el.AddEventListener(EventTouchStart, func(Event) { order = append(order, 2) })
	el.AddEventListener(EventTouchEnd, func(Event) { order = append(order, 3) })

	n := el.Dispatch(Event{Type: EventTouchStart})
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{1, 2}, order)
}

func TestElement_RemoveEventListener(t *testing.T) {
	el := NewElement()
	calls := 0
	id := el.AddEventListener(EventMouseDown, func(Event) { calls++ })
	el.AddEventListener(EventMouseDown, func(Event) { calls += 10 })

	el.RemoveEventListener(EventMouseDown, id)
	el.RemoveEventListener(EventMouseDown, id)
	el.RemoveEventListener(EventTouchMove, 42)

	el.Dispatch(Event{Type: EventMouseDown})
	assert.Equal(t, 10, calls)
	assert.Equal(t, 1, el.ListenerCount(EventMouseDown))
}

func TestElement_ListenerMayRemoveItself(t *testing.T) {
	el := NewElement()
	var id ListenerID
	calls := 0
	id = el.AddEventListener(EventTouchEnd, func(Event) {
		calls++
		el.RemoveEventListener(EventTouchEnd, id)
	})

	el.Dispatch(Event{Type: EventTouchEnd})
	el.Dispatch(Event{Type: EventTouchEnd})
	assert.Equal(t, 1, calls)
}

func TestElement_TouchPrimary(t *testing.T) {
	assert.False(t, NewElement().TouchPrimary())
	assert.True(t, NewTouchElement().TouchPrimary())
	assert.True(t, isTouchPrimary(NewTouchElement()))
}

func TestEvent_Validate(t *testing.T) {
	assert.NoError(t, Event{Type: EventTouchStart, Touches: []Touch{{X: 1}}}.Validate())
	assert.NoError(t, Event{Type: EventTouchEnd}.Validate())
	assert.NoError(t, Event{Type: EventMouseUp}.Validate())
	assert.Error(t, Event{Type: EventTouchMove}.Validate())
	assert.Error(t, Event{Type: "pointerdown"}.Validate())
}
