package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matst80/council-finder/pkg/types"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager keeps the sessions of the HTTP surface.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	loader   Loader
	opts     Options
}

func NewManager(loader Loader, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		loader:   loader,
		opts:     opts,
	}
}

// Create registers a new session and starts loading scope in the background.
func (m *Manager) Create(ctx context.Context, scope types.Scope) (*Session, <-chan bool) {
	s := New(uuid.NewString(), m.loader, m.opts)
	m.mu.Lock()
	m.sessions[s.Id] = s
	m.mu.Unlock()
	m.opts.Logger.Debug("session created", zap.String("session", s.Id), zap.String("scope", scope.String()))
	return s, s.Load(ctx, scope)
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Prune drops sessions that have not been viewed within maxAge.
func (m *Manager) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
