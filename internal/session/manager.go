package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joblens/joblens/internal/realtime"
)

// Manager tracks every live session controller and expires the inactive
// ones. Exactly one controller exists per session ID.
type Manager struct {
	issuer            TokenSource
	generator         Generator
	transport         realtime.Transport
	connectTimeout    time.Duration
	inactivityTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*Controller
	onExpire func(*Controller)
}

func NewManager(issuer TokenSource, generator Generator, transport realtime.Transport, connectTimeout, inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 2 * time.Minute
	}
	return &Manager{
		issuer:            issuer,
		generator:         generator,
		transport:         transport,
		connectTimeout:    connectTimeout,
		inactivityTimeout: inactivityTimeout,
		sessions:          make(map[string]*Controller),
	}
}

// SetExpireHook installs a callback run after the janitor tears down an
// inactive session.
func (m *Manager) SetExpireHook(hook func(*Controller)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Create registers a new disconnected controller.
func (m *Manager) Create(participantName, roomName, agentName string) *Controller {
	c := newController(uuid.NewString(), participantName, roomName, agentName,
		m.issuer, m.generator, m.transport, m.connectTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[c.id] = c
	return c
}

func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// Remove disconnects and drops a session. Missing IDs are an error;
// the disconnect itself is idempotent.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	c, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	c.Disconnect()
	return nil
}

// List returns every registered controller in no particular order.
func (m *Manager) List() []*Controller {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		out = append(out, c)
	}
	return out
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ConnectedCount reports sessions currently holding a live connection.
func (m *Manager) ConnectedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.sessions {
		if c.Snapshot().ConnectionState == StateConnected {
			n++
		}
	}
	return n
}

// StartJanitor expires inactive sessions until the context is done.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Controller

	m.mu.Lock()
	for id, c := range m.sessions {
		if now.Sub(c.lastActivityAt()) < m.inactivityTimeout {
			continue
		}
		delete(m.sessions, id)
		expired = append(expired, c)
	}
	hook := m.onExpire
	m.mu.Unlock()

	for _, c := range expired {
		c.Disconnect()
		if hook != nil {
			hook(c)
		}
	}
}
