// Package session holds the authenticated state of the client: the bearer
// token and the username, mirrored between memory and the durable metadata
// store. A single *Session is created at start-up and injected into every
// collaborator that needs it; collaborators that must react to state
// changes register a Listener instead of polling.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/client/repositories/metadata"
	"github.com/golang-jwt/jwt/v5"
)

// Keys of the durable entries.
const (
	KeyToken    = "token"
	KeyUsername = "username"
)

type EventKind int

const (
	// EventLoggedIn follows a successful Set.
	EventLoggedIn EventKind = iota + 1
	// EventLoggedOut follows an explicit Clear.
	EventLoggedOut
	// EventInvalidated follows Invalidate: the server rejected the token.
	EventInvalidated
)

func (k EventKind) String() string {
	switch k {
	case EventLoggedIn:
		return "logged_in"
	case EventLoggedOut:
		return "logged_out"
	case EventInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Event describes a state transition. Username is the user the event
// concerns (the new one for EventLoggedIn, the previous one otherwise).
type Event struct {
	Kind     EventKind
	Username string
	Reason   error
}

type Listener func(Event)

type Session struct {
	repo metadata.Repository

	mu       sync.RWMutex
	token    string
	username string

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// Load restores the session persisted in repo. A store without a token
// yields an anonymous session.
func Load(ctx context.Context, repo metadata.Repository) (*Session, error) {
	s := &Session{repo: repo, listeners: make(map[int]Listener)}

	token, _, err := repo.Get(ctx, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	username, _, err := repo.Get(ctx, KeyUsername)
	if err != nil {
		return nil, fmt.Errorf("load username: %w", err)
	}

	s.token = token
	s.username = username
	return s, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// IsAuthenticated reports whether a token is present.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Set persists token and username and then publishes them in memory.
// When persisting fails the in-memory state is left untouched.
func (s *Session) Set(ctx context.Context, token, username string) error {
	s.mu.Lock()
	err := s.repo.SetAll(ctx, map[string]string{KeyToken: token, KeyUsername: username})
	if err == nil {
		s.token = token
		s.username = username
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.notify(Event{Kind: EventLoggedIn, Username: username})
	return nil
}

// Clear drops the session. Memory is always cleared; the returned error
// reports a failure to remove the durable entries.
func (s *Session) Clear(ctx context.Context) error {
	return s.drop(ctx, Event{Kind: EventLoggedOut})
}

// Invalidate is Clear on behalf of the server having rejected the token.
// Listeners receive EventInvalidated carrying reason.
func (s *Session) Invalidate(ctx context.Context, reason error) error {
	return s.drop(ctx, Event{Kind: EventInvalidated, Reason: reason})
}

func (s *Session) drop(ctx context.Context, ev Event) error {
	s.mu.Lock()
	ev.Username = s.username
	err := s.repo.Delete(ctx, KeyToken, KeyUsername)
	s.token = ""
	s.username = ""
	s.mu.Unlock()

	s.notify(ev)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Subscribe registers l for every subsequent event. Listeners run
// synchronously on the goroutine that changed the state, after the change
// is visible. The returned func removes the listener.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) notify(ev Event) {
	s.lmu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.lmu.Unlock()

	for _, l := range ls {
		l(ev)
	}
}

// ExpiresAt reads the exp claim of the current token without verifying
// its signature; the client has no key to verify it with. ok is false
// when there is no token, it is not a JWT, or it carries no exp.
func (s *Session) ExpiresAt() (exp time.Time, ok bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	date, err := parsed.Claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}
