package gesture

import (
	"sync"
)

type listenerEntry struct {
	id       ListenerID
	listener Listener
}

// Element is an in-memory EventTarget. Dispatch delivers an event to the
// listeners registered for its type, in registration order.
type Element struct {
	mu           sync.RWMutex
	nextID       ListenerID
	listeners    map[EventType][]listenerEntry
	touchPrimary bool
}

func NewElement() *Element {
	return &Element{
		listeners: make(map[EventType][]listenerEntry),
	}
}

// NewTouchElement creates an element that reports itself as touch primary
func NewTouchElement() *Element {
	e := NewElement()
	e.touchPrimary = true
	return e
}

func (e *Element) TouchPrimary() bool {
	return e.touchPrimary
}

func (e *Element) AddEventListener(eventType EventType, listener Listener) ListenerID {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	e.listeners[eventType] = append(e.listeners[eventType], listenerEntry{id: e.nextID, listener: listener})
	return e.nextID
}

func (e *Element) RemoveEventListener(eventType EventType, id ListenerID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.listeners[eventType]
	for i := range entries {
		if entries[i].id == id {
			e.listeners[eventType] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(e.listeners[eventType]) == 0 {
		delete(e.listeners, eventType)
	}
}

// ListenerCount returns the number of listeners registered for eventType
func (e *Element) ListenerCount(eventType EventType) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[eventType])
}

// Dispatch calls every listener for ev.Type and returns how many were called.
// Listeners run without the element lock held, so they may add or remove listeners.
func (e *Element) Dispatch(ev Event) int {
	e.mu.RLock()
	entries := append([]listenerEntry(nil), e.listeners[ev.Type]...)
	e.mu.RUnlock()

	for _, entry := range entries {
		entry.listener(ev)
	}
	return len(entries)
}
