// Package session owns the bearer token used for upstream calls.
// Every mutation goes through Session so subscribers see each change exactly once.
package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventKind identifies a session change
type EventKind string

const (
	EventAuthenticated   EventKind = "authenticated"
	EventUnauthenticated EventKind = "unauthenticated"
)

// Event is delivered to subscribers after the token changes
type Event struct {
	Kind   EventKind
	Reason string
	At     time.Time
}

// Subscriber receives session events. It runs synchronously and must not block.
type Subscriber func(Event)

// Session holds the current bearer token and fans out change events
type Session struct {
	mu          sync.RWMutex
	token       string
	store       Store
	logger      *zap.Logger
	subscribers map[int]Subscriber
	nextID      int
	now         func() time.Time
}

// New creates a session backed by store. A previously persisted token is restored.
func New(store Store, logger *zap.Logger) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	s := &Session{
		store:       store,
		logger:      logger,
		subscribers: make(map[int]Subscriber),
		now:         time.Now,
	}

	token, err := store.Load()
	if err != nil {
		logger.Warn("failed to restore session token", zap.Error(err))
	}
	s.token = token
	return s
}

// Token returns the current bearer token or "" when unauthenticated
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is held
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// SetToken stores a new token and notifies subscribers
func (s *Session) SetToken(token string) {
	if token == "" {
		s.Clear("empty token")
		return
	}
	s.apply(token, Event{Kind: EventAuthenticated, Reason: "login"})
}

// Clear drops the token and notifies subscribers with reason.
// Clearing an already empty session does not notify.
func (s *Session) Clear(reason string) {
	s.apply("", Event{Kind: EventUnauthenticated, Reason: reason})
}

// Subscribe registers fn for future events and returns a function that removes it
func (s *Session) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Session) apply(token string, event Event) {
	s.mu.Lock()
	if s.token == token {
		s.mu.Unlock()
		return
	}
	s.token = token

	var err error
	if token == "" {
		err = s.store.Clear()
	} else {
		err = s.store.Save(token)
	}

	subscribers := make([]Subscriber, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("failed to persist session token", zap.Error(err))
	}

	event.At = s.now()
	s.logger.Debug("session changed",
		zap.String("kind", string(event.Kind)),
		zap.String("reason", event.Reason),
	)
	for _, fn := range subscribers {
		fn(event)
	}
}
