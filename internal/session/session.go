// Package session owns the client's authentication status.
//
// A [Machine] starts in [models.StatusUnknown], runs the startup check once
// and afterwards only moves through the explicit Mark* transitions performed
// by login and logout flows once their requests have succeeded.
package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvx/internal/models"
	"github.com/desertthunder/tvx/internal/shared"
)

// UserFetcher fetches the user of the current session.
type UserFetcher interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// State is a snapshot of the authentication status.
//
// User is non-nil exactly when Status is [models.StatusAuthenticated].
type State struct {
	Status models.AuthStatus
	User   *models.User
}

// Authenticated reports whether the state carries a user.
func (s State) Authenticated() bool {
	return s.Status == models.StatusAuthenticated && s.User != nil
}

// Match calls the handler for the variant of s. Every variant needs a handler.
func Match[T any](s State, unknown func() T, unauthenticated func() T, authenticated func(models.User) T) T {
	switch s.Status {
	case models.StatusAuthenticated:
		if s.User != nil {
			return authenticated(*s.User)
		}
		return unknown()
	case models.StatusUnauthenticated:
		return unauthenticated()
	default:
		return unknown()
	}
}

// Machine is the single writer of the session [State].
type Machine struct {
	fetcher UserFetcher
	logger  *log.Logger

	once sync.Once

	mu          sync.RWMutex
	state       State
	version     uint64
	subscribers []chan State
}

// New creates a machine in the unknown state.
func New(fetcher UserFetcher, logger *log.Logger) *Machine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Machine{fetcher: fetcher, logger: logger}
}

// State returns the current snapshot.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyState(m.state)
}

// Check runs the startup check on the first call and returns the resulting state.
//
// A 401 means unauthenticated. Any other failure leaves the status unknown and
// is returned. Later calls do no I/O and return the current state with a nil error.
// If a Mark* transition happens while the check is in flight, the check result is dropped.
func (m *Machine) Check(ctx context.Context) (State, error) {
	var checkErr error
	m.once.Do(func() {
		checkErr = m.check(ctx)
	})
	return m.State(), checkErr
}

func (m *Machine) check(ctx context.Context) error {
	m.mu.RLock()
	started := m.version
	m.mu.RUnlock()

	user, err := m.fetcher.CurrentUser(ctx)

	var next State
	switch {
	case err == nil && user != nil:
		next = State{Status: models.StatusAuthenticated, User: user}
	case err == nil:
		err = &shared.ValidationError{Op: "fetch current user", Issues: []string{"user: null"}}
		fallthrough
	case !shared.IsUnauthorized(err):
		m.logger.Error("startup session check failed", "err", err)
		return err
	default:
		next = State{Status: models.StatusUnauthenticated}
	}

	m.mu.Lock()
	if m.version != started {
		m.mu.Unlock()
		m.logger.Debug("discarding startup check result; session changed meanwhile")
		return nil
	}
	m.setLocked(next)
	m.mu.Unlock()

	m.logger.Info("startup session check", "status", next.Status)
	return nil
}

// MarkAuthenticated records a successful login.
func (m *Machine) MarkAuthenticated(user models.User) {
	m.set(State{Status: models.StatusAuthenticated, User: &user})
}

// MarkUnauthenticated records a logout or a rejected session.
func (m *Machine) MarkUnauthenticated() {
	m.set(State{Status: models.StatusUnauthenticated})
}

// MarkUnknown forgets what is known about the session.
func (m *Machine) MarkUnknown() {
	m.set(State{Status: models.StatusUnknown})
}

func (m *Machine) set(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version++
	m.setLocked(s)
}

func (m *Machine) setLocked(s State) {
	m.state = s
	snapshot := copyState(s)
	for _, ch := range m.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// Subscribe returns a channel receiving a snapshot after each transition.
//
// Delivery is best effort: a snapshot is dropped when the channel is full,
// so readers should call [Machine.State] for the authoritative value.
func (m *Machine) Subscribe() <-chan State {
	ch := make(chan State, 4)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()
	return ch
}

func copyState(s State) State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// ErrIfNotAuthenticated maps a non-authenticated state onto a sentinel error.
func ErrIfNotAuthenticated(s State) error {
	return Match(s,
		func() error { return shared.ErrSessionUnknown },
		func() error { return shared.ErrNotAuthenticated },
		func(models.User) error { return nil },
	)
}

// IsTransient reports whether err left the session in the unknown state
// rather than proving it unauthenticated.
func IsTransient(err error) bool {
	return err != nil && !errors.Is(err, shared.ErrNotAuthenticated)
}
