package gesture

import (
	"fmt"
	"math"
	"runtime/debug"
	"sync"
	"time"

	"github.com/mobile-next/gesturekit/types"
	"github.com/mobile-next/gesturekit/utils"
	"github.com/sirupsen/logrus"
)

// Handlers are the callbacks a Manager invokes. Every field is optional.
type Handlers struct {
	OnTap       func(types.TapGesture)
	OnDoubleTap func(types.TapGesture)
	OnLongPress func(types.TouchPoint)
	OnSwipe     func(types.SwipeGesture)
	OnPinch     func(types.PinchGesture)

	OnTouchStart func(Event)
	OnTouchMove  func(Event)
	OnTouchEnd   func(Event)
}

type registration struct {
	eventType EventType
	id        ListenerID
}

// session is the bookkeeping for the touch sequence in progress plus the
// tap-correlation window, which outlives a single sequence.
type session struct {
	touchStart     *types.TouchPoint
	touchCurrent   *types.TouchPoint
	touches        []Touch
	multiTouch     bool
	mouseDown      bool
	longPressTimer Timer
	longPressGen   uint64
	longPressFired bool

	initialDistance float64
	initialScale    float64

	lastTap        *types.TouchPoint
	tapCount       int
	pendingTap     types.TapGesture
	doubleTapTimer Timer
	doubleTapGen   uint64
}

// Manager turns pointer events on one EventTarget into tap, double tap,
// long press, swipe and pinch notifications.
type Manager struct {
	mu     sync.Mutex
	config Config
	clock  Clock
	log    *logrus.Entry

	target    EventTarget
	handlers  Handlers
	listeners []registration
	attachGen uint64
	timerGen  uint64

	session session
}

type Option func(*Manager)

// WithClock replaces the system clock, typically with a VirtualClock
func WithClock(clock Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

func WithLogger(entry *logrus.Entry) Option {
	return func(m *Manager) {
		m.log = entry
	}
}

func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		config: cfg,
		clock:  SystemClock(),
		log:    utils.Logger().WithField("component", "gesture"),
	}
	m.session.initialScale = 1
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the active configuration
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Attached reports whether the manager is currently bound to a target
func (m *Manager) Attached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target != nil
}

// UpdateConfig merges patch into the active configuration. Timers that are
// already armed keep the delay they were armed with.
func (m *Manager) UpdateConfig(patch ConfigPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.config.Apply(patch)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid gesture config: %w", err)
	}
	m.config = next
	return nil
}

// Attach registers listeners on target and starts recognising gestures.
// An existing attachment is torn down first. The returned function detaches
// this attachment only; it is a no-op once the manager has been re-attached.
func (m *Manager) Attach(target EventTarget, handlers Handlers) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.detachLocked()

	m.attachGen++
	gen := m.attachGen
	m.target = target
	m.handlers = handlers

	eventTypes := append([]EventType(nil), touchEvents...)
	if !isTouchPrimary(target) {
		eventTypes = append(eventTypes, mouseEvents...)
	}

	for _, eventType := range eventTypes {
		id := target.AddEventListener(eventType, m.listener(gen))
		m.listeners = append(m.listeners, registration{eventType: eventType, id: id})
	}

	m.log.Debugf("attached with %d listeners", len(m.listeners))

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.attachGen == gen {
			m.detachLocked()
		}
	}
}

// Detach removes all listeners, stops pending timers and forgets the handlers.
// Calling it when nothing is attached does nothing.
func (m *Manager) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detachLocked()
}

func (m *Manager) detachLocked() {
	if m.target == nil {
		return
	}

	for _, reg := range m.listeners {
		m.target.RemoveEventListener(reg.eventType, reg.id)
	}
	m.listeners = nil
	m.target = nil
	m.handlers = Handlers{}
	m.attachGen++

	m.resetSequenceLocked()
	m.resetTapLocked()
	m.log.Debug("detached")
}

func (m *Manager) listener(gen uint64) Listener {
	return func(ev Event) {
		defer m.recoverPanic(string(ev.Type))

		calls := m.handleEvent(gen, ev)
		m.invoke(calls)
	}
}

func (m *Manager) recoverPanic(where string) {
	if r := recover(); r != nil {
		m.log.WithField("event", where).Errorf("recovered from panic: %v\n%s", r, debug.Stack())
	}
}

// invoke runs handler calls outside the manager lock, isolating each one.
func (m *Manager) invoke(calls []func()) {
	for _, call := range calls {
		func() {
			defer m.recoverPanic("handler")
			call()
		}()
	}
}

func (m *Manager) handleEvent(gen uint64, ev Event) []func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.target == nil || m.attachGen != gen {
		return nil
	}

	if ev.Timestamp.IsZero() {
		ev.Timestamp = m.clock.Now()
	}

	switch ev.Type {
	case EventTouchStart:
		return m.touchStartLocked(ev)
	case EventTouchMove:
		return m.touchMoveLocked(ev)
	case EventTouchEnd:
		return m.touchEndLocked(ev)
	case EventTouchCancel:
		m.log.Debug("touch cancelled")
		m.resetSequenceLocked()
		m.resetTapLocked()
		return nil
	case EventMouseDown:
		m.session.mouseDown = true
		return m.touchStartLocked(mouseAsTouch(EventTouchStart, ev))
	case EventMouseMove:
		if !m.session.mouseDown {
			return nil
		}
		return m.touchMoveLocked(mouseAsTouch(EventTouchMove, ev))
	case EventMouseUp:
		if !m.session.mouseDown {
			return nil
		}
		m.session.mouseDown = false
		m.releaseMouseLocked(ev)
		return m.touchEndLocked(Event{Type: EventTouchEnd, X: ev.X, Y: ev.Y, Timestamp: ev.Timestamp})
	}
	return nil
}

// mouseTouchID identifies the synthetic touch created from mouse input
const mouseTouchID = -1

func mouseAsTouch(eventType EventType, ev Event) Event {
	return Event{
		Type:      eventType,
		Touches:   []Touch{{ID: mouseTouchID, X: ev.X, Y: ev.Y}},
		X:         ev.X,
		Y:         ev.Y,
		Timestamp: ev.Timestamp,
	}
}

// releaseMouseLocked takes the release point as the final position of the
// mouse touch. Pointers that report no motion while pressed only tell us
// where the button went up.
func (m *Manager) releaseMouseLocked(ev Event) {
	s := &m.session
	if s.touchStart == nil || s.multiTouch {
		return
	}
	p := touchPoint(Touch{ID: mouseTouchID, X: ev.X, Y: ev.Y}, ev.Timestamp)
	s.touchCurrent = &p
}

func (m *Manager) touchStartLocked(ev Event) []func() {
	var calls []func()
	if h := m.handlers.OnTouchStart; h != nil {
		calls = append(calls, func() { h(ev) })
	}

	s := &m.session
	if len(s.touches) == 0 {
		m.resetSequenceLocked()
	}
	s.touches = append([]Touch(nil), ev.Touches...)

	switch len(ev.Touches) {
	case 0:
	case 1:
		p := touchPoint(ev.Touches[0], ev.Timestamp)
		s.touchStart = &p
		current := p
		s.touchCurrent = &current
		m.armLongPressLocked()
	case 2:
		s.multiTouch = true
		m.cancelLongPressLocked()
		m.beginPinchLocked()
	default:
		s.multiTouch = true
		m.cancelLongPressLocked()
	}
	return calls
}

func (m *Manager) touchMoveLocked(ev Event) []func() {
	var calls []func()
	if h := m.handlers.OnTouchMove; h != nil {
		calls = append(calls, func() { h(ev) })
	}

	s := &m.session
	s.touches = append([]Touch(nil), ev.Touches...)

	switch len(ev.Touches) {
	case 1:
		if s.touchStart == nil || s.multiTouch {
			break
		}
		p := touchPoint(ev.Touches[0], ev.Timestamp)
		s.touchCurrent = &p
		if Distance(*s.touchStart, p) > m.config.TapThreshold {
			m.cancelLongPressLocked()
		}
	case 2:
		if call := m.pinchLocked(ev.Touches[0], ev.Touches[1]); call != nil {
			calls = append(calls, call)
		}
	}
	return calls
}

func (m *Manager) touchEndLocked(ev Event) []func() {
	var calls []func()
	if h := m.handlers.OnTouchEnd; h != nil {
		calls = append(calls, func() { h(ev) })
	}

	s := &m.session
	s.touches = append([]Touch(nil), ev.Touches...)

	switch remaining := len(ev.Touches); {
	case remaining == 2:
		m.beginPinchLocked()
		return calls
	case remaining > 0:
		return calls
	}

	m.cancelLongPressLocked()
	if s.touchStart != nil && s.touchCurrent != nil && !s.multiTouch && !s.longPressFired {
		if call := m.classifyLocked(ev.Timestamp); call != nil {
			calls = append(calls, call)
		}
	}
	m.resetSequenceLocked()
	return calls
}

// classifyLocked decides between swipe and tap for a finished single-touch sequence.
func (m *Manager) classifyLocked(at time.Time) func() {
	s := &m.session
	start, current := *s.touchStart, *s.touchCurrent
	distance := Distance(start, current)

	switch {
	case distance >= m.config.SwipeThreshold:
		return m.swipeLocked(start, current, distance)
	case distance <= m.config.TapThreshold:
		return m.tapLocked(current, at)
	}
	// between the tap and swipe thresholds nothing fires
	return nil
}

func (m *Manager) swipeLocked(start, current types.TouchPoint, distance float64) func() {
	duration := current.Timestamp.Sub(start.Timestamp)
	velocity := Velocity(distance, duration)
	if velocity < m.config.SwipeVelocityThreshold {
		m.log.Debugf("swipe suppressed, velocity %.3f below %.3f", velocity, m.config.SwipeVelocityThreshold)
		return nil
	}

	swipe := types.SwipeGesture{
		Direction: SwipeDirectionOf(current.X-start.X, current.Y-start.Y),
		Distance:  distance,
		Velocity:  velocity,
		Duration:  duration,
	}
	h := m.handlers.OnSwipe
	if h == nil {
		return nil
	}
	return func() { h(swipe) }
}

func (m *Manager) tapLocked(current types.TouchPoint, at time.Time) func() {
	s := &m.session
	point := current
	point.Timestamp = at

	if s.lastTap != nil &&
		Distance(*s.lastTap, point) <= m.config.TapThreshold &&
		point.Timestamp.Sub(s.lastTap.Timestamp) <= m.config.DoubleTapDelay {
		s.tapCount++
		tap := types.TapGesture{Point: point, TapCount: s.tapCount}
		m.cancelDoubleTapLocked()
		s.tapCount = 0
		s.lastTap = nil

		h := m.handlers.OnDoubleTap
		if h == nil {
			return nil
		}
		return func() { h(tap) }
	}

	// an unrelated tap is still pending: deliver it now rather than dropping it
	var flushed func()
	if s.doubleTapTimer != nil {
		pending := s.pendingTap
		m.cancelDoubleTapLocked()
		s.tapCount = 0
		if h := m.handlers.OnTap; h != nil {
			flushed = func() { h(pending) }
		}
	}

	s.tapCount++
	s.lastTap = &point
	s.pendingTap = types.TapGesture{Point: point, TapCount: s.tapCount}

	m.timerGen++
	gen := m.timerGen
	attachGen := m.attachGen
	s.doubleTapGen = gen
	s.doubleTapTimer = m.clock.AfterFunc(m.config.DoubleTapDelay, func() {
		m.fireTap(attachGen, gen)
	})
	return flushed
}

func (m *Manager) fireTap(attachGen, gen uint64) {
	defer m.recoverPanic("tap timer")

	m.mu.Lock()
	s := &m.session
	if m.attachGen != attachGen || s.doubleTapGen != gen {
		m.mu.Unlock()
		return
	}
	tap := s.pendingTap
	s.doubleTapTimer = nil
	s.doubleTapGen = 0
	s.tapCount = 0
	s.lastTap = nil
	h := m.handlers.OnTap
	m.mu.Unlock()

	if h != nil {
		m.invoke([]func(){func() { h(tap) }})
	}
}

func (m *Manager) armLongPressLocked() {
	m.cancelLongPressLocked()

	m.timerGen++
	gen := m.timerGen
	attachGen := m.attachGen
	m.session.longPressGen = gen
	m.session.longPressTimer = m.clock.AfterFunc(m.config.LongPressDelay, func() {
		m.fireLongPress(attachGen, gen)
	})
}

func (m *Manager) fireLongPress(attachGen, gen uint64) {
	defer m.recoverPanic("long press timer")

	m.mu.Lock()
	s := &m.session
	if m.attachGen != attachGen || s.longPressGen != gen {
		m.mu.Unlock()
		return
	}
	s.longPressTimer = nil
	s.longPressGen = 0

	if s.touchStart == nil || s.touchCurrent == nil || s.multiTouch ||
		Distance(*s.touchStart, *s.touchCurrent) > m.config.TapThreshold {
		m.mu.Unlock()
		return
	}
	s.longPressFired = true
	point := *s.touchStart
	h := m.handlers.OnLongPress
	m.mu.Unlock()

	if h != nil {
		m.invoke([]func(){func() { h(point) }})
	}
}

func (m *Manager) cancelLongPressLocked() {
	s := &m.session
	if s.longPressTimer != nil {
		s.longPressTimer.Stop()
		s.longPressTimer = nil
	}
	s.longPressGen = 0
}

func (m *Manager) cancelDoubleTapLocked() {
	s := &m.session
	if s.doubleTapTimer != nil {
		s.doubleTapTimer.Stop()
		s.doubleTapTimer = nil
	}
	s.doubleTapGen = 0
}

// beginPinchLocked takes the current two touches as the new pinch baseline.
func (m *Manager) beginPinchLocked() {
	s := &m.session
	if len(s.touches) != 2 {
		return
	}
	s.initialDistance = touchDistance(s.touches[0], s.touches[1])
	s.initialScale = 1
}

func (m *Manager) pinchLocked(a, b Touch) func() {
	s := &m.session
	if s.initialDistance <= 0 {
		// fingers started on the same spot; use the first separation as baseline
		s.initialDistance = touchDistance(a, b)
		s.initialScale = 1
		return nil
	}

	current := touchDistance(a, b)
	scale := current / s.initialDistance
	if math.Abs(scale-s.initialScale) <= m.config.PinchThreshold/100 {
		return nil
	}
	s.initialScale = scale

	pinch := types.PinchGesture{
		Scale:    scale,
		Center:   midpoint(a, b),
		Distance: current,
	}
	h := m.handlers.OnPinch
	if h == nil {
		return nil
	}
	return func() { h(pinch) }
}

// resetSequenceLocked clears the per-sequence state. The tap-correlation
// window survives so a following tap can complete a double tap.
func (m *Manager) resetSequenceLocked() {
	m.cancelLongPressLocked()

	s := &m.session
	s.touchStart = nil
	s.touchCurrent = nil
	s.touches = nil
	s.multiTouch = false
	s.longPressFired = false
	s.initialDistance = 0
	s.initialScale = 1
}

func (m *Manager) resetTapLocked() {
	m.cancelDoubleTapLocked()

	s := &m.session
	s.lastTap = nil
	s.tapCount = 0
	s.pendingTap = types.TapGesture{}
	s.mouseDown = false
}
