// Package session tracks the single active login of the client process.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/junhot777-lab/cyber-calender/internal/directory"
	"github.com/junhot777-lab/cyber-calender/internal/gateway"
)

// genericAuthMessage never distinguishes unknown users from wrong passcodes.
const genericAuthMessage = "invalid user or passcode"

// Authenticator is the login call of the gateway.
type Authenticator interface {
	Login(ctx context.Context, userID, passcode string) (gateway.LoginResult, error)
}

// Session is the authenticated identity of the operating human, valid until
// explicit logout.
type Session struct {
	Token  string
	UserID string
	Name   string
	Color  string

	done chan struct{}
}

// Done is closed when this session ends, so views can stop in-flight
// date-range queries tied to it.
func (s Session) Done() <-chan struct{} { return s.done }

// Manager owns the active session. Exactly one session is live at a time;
// login replaces any prior one, logout is idempotent.
type Manager struct {
	auth Authenticator
	dir  *directory.Directory

	mu     sync.Mutex
	active *Session
	epoch  uint64
}

// NewManager builds a session manager. dir may be nil when no directory has
// been loaded; the unknown-user fast path is then skipped.
func NewManager(auth Authenticator, dir *directory.Directory) *Manager {
	return &Manager{auth: auth, dir: dir}
}

// Login authenticates the user and installs the resulting session as the
// active one. An unknown user id fails with the same message as a wrong
// passcode and without a network call.
func (m *Manager) Login(ctx context.Context, userID, passcode string) (Session, error) {
	id := strings.ToLower(strings.TrimSpace(userID))

	if m.dir != nil && !m.dir.Has(id) {
		return Session{}, &gateway.Error{Kind: gateway.KindAuth, Message: genericAuthMessage}
	}

	res, err := m.auth.Login(ctx, id, passcode)
	if err != nil {
		if gateway.IsKind(err, gateway.KindAuth) {
			return Session{}, &gateway.Error{Kind: gateway.KindAuth, Message: genericAuthMessage}
		}
		return Session{}, err
	}

	s := Session{
		Token:  res.Token,
		UserID: res.User.ID,
		Name:   res.User.Name,
		Color:  res.User.Color,
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	if m.active != nil {
		close(m.active.done)
	}
	m.active = &s
	m.epoch++
	m.mu.Unlock()

	return s, nil
}

// Logout clears the active session. Calling it while logged out is a no-op.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return
	}
	close(m.active.done)
	m.active = nil
	m.epoch++
}

// Current returns the active session, if any. Pure read.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Session{}, false
	}
	return *m.active, true
}

// Token implements gateway.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return ""
	}
	return m.active.Token
}

// Epoch increments on every login and logout. A caller that captures it
// before dispatching a mutation can tell whether the session it acted for is
// still the active one when the result arrives.
func (m *Manager) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}
