package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/gesturekit/gesture"
	"github.com/mobile-next/gesturekit/input"
	"github.com/mobile-next/gesturekit/types"
	"github.com/mobile-next/gesturekit/utils"
)

// DefaultSessionLimit is the number of live sessions kept before the least
// recently used one is closed
const DefaultSessionLimit = 64

// maxEventLead bounds how far ahead of the server clock a shifted client
// timestamp may be. Anything further ahead re-anchors the session clock.
const maxEventLead = 5 * time.Second

// Notifier receives every gesture recognised by a session
type Notifier func(sessionID string, g types.Recognized)

// Session is one live recognition context: an element, the manager attached
// to it and the gestures not yet polled.
type Session struct {
	ID        string
	CreatedAt time.Time

	element  *gesture.Element
	manager  *gesture.Manager
	recorder *input.Recorder
	detach   func()

	mu        sync.Mutex
	closed    bool
	overrides gesture.ConfigPatch

	// dispatchMu keeps batches in order; offset maps client time to server time
	dispatchMu sync.Mutex
	offset     time.Duration
	anchored   bool
}

// Dispatch feeds events to the session. Client timestamps are shifted onto
// the server clock by an offset taken from the first timestamped event, and
// each event is delivered once its shifted time is reached, so the manager's
// timers see the same spacing the client recorded. Events without a timestamp
// are stamped on arrival.
func (s *Session) Dispatch(ctx context.Context, events []gesture.Event) (int, error) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return 0, fmt.Errorf("session %s is closed", s.ID)
	}

	for i, ev := range events {
		if err := ev.Validate(); err != nil {
			return i, fmt.Errorf("event %d: %w", i, err)
		}
	}

	for i, ev := range events {
		if ev.Timestamp.IsZero() {
			ev.Timestamp = time.Now()
		} else {
			ev.Timestamp = s.serverTime(ev.Timestamp)
			if err := input.SleepUntil(ctx, ev.Timestamp); err != nil {
				return i, err
			}
		}
		s.element.Dispatch(ev)
	}
	return len(events), nil
}

// serverTime maps a client timestamp onto the server clock. Called with
// dispatchMu held.
func (s *Session) serverTime(client time.Time) time.Time {
	now := time.Now()
	if !s.anchored || client.Add(s.offset).Sub(now) > maxEventLead {
		if s.anchored {
			utils.Verbose("Session %s client clock jumped ahead, re-anchoring", s.ID)
		}
		s.offset = now.Sub(client)
		s.anchored = true
	}
	return client.Add(s.offset)
}

// Poll returns the gestures recognised since the last poll
func (s *Session) Poll() []types.Recognized {
	gestures := s.recorder.Drain()
	if gestures == nil {
		gestures = []types.Recognized{}
	}
	return gestures
}

func (s *Session) Config() gesture.Config {
	return s.manager.Config()
}

// UpdateConfig applies patch and remembers it as a session override, so it
// survives config file reloads.
func (s *Session) UpdateConfig(patch gesture.ConfigPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.manager.UpdateConfig(patch); err != nil {
		return err
	}
	s.overrides = s.overrides.Merge(patch)
	return nil
}

// rebase rebuilds the session config as base plus the session overrides
func (s *Session) rebase(base gesture.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.UpdateConfig(base.Apply(s.overrides).Patch())
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.detach()
}

// SessionStore holds live sessions in an LRU cache. Evicted sessions are closed.
type SessionStore struct {
	cache    *lru.Cache[string, *Session]
	registry *gesture.Registry
}

// NewSessionStore creates a store for up to limit sessions. Managers are also
// tracked in registry, when given, so that signal handlers can detach them.
func NewSessionStore(limit int, registry *gesture.Registry) (*SessionStore, error) {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}

	store := &SessionStore{registry: registry}
	cache, err := lru.NewWithEvict[string, *Session](limit, store.evicted)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	store.cache = cache
	return store, nil
}

func (st *SessionStore) evicted(id string, s *Session) {
	utils.Verbose("Closing session %s", id)
	s.close()
	if st.registry != nil {
		st.registry.Unregister(id)
	}
}

// Create starts a session using base with overrides applied on top. The
// overrides are kept with the session and reapplied whenever the base changes.
// notify, when set, is called for every recognised gesture in addition to
// buffering it for Poll.
func (st *SessionStore) Create(base gesture.Config, overrides gesture.ConfigPatch, touchPrimary bool, notify Notifier) (*Session, error) {
	cfg := base.Apply(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gesture config: %w", err)
	}

	id := uuid.NewString()
	var element *gesture.Element
	if touchPrimary {
		element = gesture.NewTouchElement()
	} else {
		element = gesture.NewElement()
	}

	var sink func(types.Recognized)
	if notify != nil {
		sink = func(g types.Recognized) { notify(id, g) }
	}
	recorder := input.NewRecorder(nil, sink)

	manager := gesture.NewManager(cfg, gesture.WithLogger(utils.Logger().WithField("session", id)))
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		element:   element,
		manager:   manager,
		recorder:  recorder,
		detach:    manager.Attach(element, recorder.Handlers()),
		overrides: overrides,
	}

	if st.registry != nil {
		st.registry.Register(id, manager)
	}
	st.cache.Add(id, s)
	utils.Verbose("Created session %s", id)
	return s, nil
}

func (st *SessionStore) Get(id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("'sessionId' is required")
	}
	s, ok := st.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return s, nil
}

// Close removes and closes the session
func (st *SessionStore) Close(id string) error {
	if !st.cache.Remove(id) {
		return fmt.Errorf("session not found: %s", id)
	}
	return nil
}

// CloseAll closes every session
func (st *SessionStore) CloseAll() {
	st.cache.Purge()
}

func (st *SessionStore) Len() int {
	return st.cache.Len()
}

// Rebase rebuilds every live session's config from base plus that session's
// own overrides, and returns the first error.
func (st *SessionStore) Rebase(base gesture.Config) error {
	var firstErr error
	for _, s := range st.cache.Values() {
		if err := s.rebase(base); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("session %s: %w", s.ID, err)
		}
	}
	return firstErr
}
