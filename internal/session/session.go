// Package session tracks independent engine instances by explicit session id.
// Every collaborator addresses a session directly; there is no ambient or
// process-global current network.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Bassline-Org/bassline-sub010/internal/ctxlog"
	"github.com/Bassline-Org/bassline-sub010/internal/engine"
	"github.com/Bassline-Org/bassline-sub010/internal/gadget"
)

// Session is one isolated propagation network and its engine.
type Session struct {
	ID     string
	Engine *engine.Engine
}

// Manager owns the id-keyed session table. All sessions share one gadget
// registry; their arenas and schedulers are fully isolated.
type Manager struct {
	mu       sync.Mutex
	registry *gadget.Registry
	sessions map[string]*Session
}

// NewManager creates an empty manager resolving gadgets against registry.
func NewManager(registry *gadget.Registry) *Manager {
	return &Manager{
		registry: registry,
		sessions: make(map[string]*Session),
	}
}

// Open creates a session with a fresh engine and returns it.
func (m *Manager) Open(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	s := &Session{ID: id, Engine: engine.New(m.registry)}
	m.sessions[id] = s
	ctxlog.FromContext(ctx).Info("Session opened.", "session_id", id)
	return s, nil
}

// Get returns the session for an id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close tears a session down. Closing an unknown id is an error so callers
// notice double closes.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %q not found", id)
	}
	delete(m.sessions, id)
	ctxlog.FromContext(ctx).Info("Session closed.", "session_id", id)
	return nil
}

// IDs lists open session ids, sorted.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
