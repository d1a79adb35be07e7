// Package session tracks connected users, their idle timers, and
// force-disconnect/teardown.
package session

import (
	"sync"
	"time"

	"github.com/nimbusdepot/gatesftp/internal/events"
)

// IdleTimeout is the duration of inactivity after which a user's session
// is reported idle.
const IdleTimeout = 60 * time.Second

// Closer is whatever can end a client's connection; sshd.Server's accepted
// connections satisfy this.
type Closer interface {
	Close() error
}

type session struct {
	username     string
	closer       Closer
	lastActivity time.Time
	timer        *time.Timer
}

// Manager owns the shared registry of active sessions and their idle
// timers. All mutation is guarded by one mutex; per-session state beyond
// that (handle tables) lives in the session's own gateway.FS instance, not
// here.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	bus      *events.Bus
}

// New returns an empty Manager that emits onto bus.
func New(bus *events.Bus) *Manager {
	return &Manager{sessions: make(map[string]*session), bus: bus}
}

// Register begins tracking username on closer and arms its first idle
// timer. A previous registration for the same username, if any, is
// replaced and its timer is stopped first: at most one idle timer per
// user.
func (m *Manager) Register(username string, closer Closer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[username]; ok {
		existing.timer.Stop()
	}
	s := &session{username: username, closer: closer, lastActivity: time.Now()}
	s.timer = time.AfterFunc(IdleTimeout, func() { m.fireIdle(username) })
	m.sessions[username] = s
}

// RecordActivity is the per-request activity hook: cancel the existing
// idle timer, arm a new one, and bump lastActivity.
func (m *Manager) RecordActivity(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[username]
	if !ok {
		return
	}
	s.timer.Stop()
	s.lastActivity = time.Now()
	s.timer = time.AfterFunc(IdleTimeout, func() { m.fireIdle(username) })
}

func (m *Manager) fireIdle(username string) {
	m.mu.Lock()
	_, stillTracked := m.sessions[username]
	m.mu.Unlock()
	if !stillTracked {
		return
	}
	if m.bus != nil {
		m.bus.Emit(events.Event{Kind: events.UserIdle, Time: time.Now(), Username: username})
	}
}

// End clears tracking for username (idle timer cancelled) and emits
// client-disconnected with cause. Called on session-close, channel-end,
// channel-close, or channel-error.
func (m *Manager) End(username, cause string) {
	m.mu.Lock()
	s, ok := m.sessions[username]
	if ok {
		s.timer.Stop()
		delete(m.sessions, username)
	}
	m.mu.Unlock()
	if ok && m.bus != nil {
		m.bus.Emit(events.Event{Kind: events.ClientDisconnected, Time: time.Now(), Username: username, Cause: cause})
	}
}

// ForceDisconnect closes the active client for username, if any, and
// clears its tracking.
func (m *Manager) ForceDisconnect(username string) {
	m.mu.Lock()
	s, ok := m.sessions[username]
	if ok {
		s.timer.Stop()
		delete(m.sessions, username)
	}
	m.mu.Unlock()
	if ok {
		_ = s.closer.Close()
	}
}

// DisconnectAll closes every tracked client and clears all tracking, used
// on graceful server shutdown.
func (m *Manager) DisconnectAll() {
	m.mu.Lock()
	all := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		s.timer.Stop()
		all = append(all, s)
	}
	m.sessions = make(map[string]*session)
	m.mu.Unlock()
	for _, s := range all {
		_ = s.closer.Close()
	}
}

// ActiveUsers returns the usernames currently tracked, for diagnostics.
func (m *Manager) ActiveUsers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sessions))
	for u := range m.sessions {
		out = append(out, u)
	}
	return out
}
