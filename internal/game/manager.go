package game

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/annel0/arstack/internal/logging"
)

// Manager хранит открытые сессии
type Manager struct {
	deps        Deps
	maxSessions int
	idleTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager создаёт менеджер сессий.
// maxSessions <= 0 снимает ограничение, idleTimeout <= 0 отключает очистку.
func NewManager(deps Deps, maxSessions int, idleTimeout time.Duration) *Manager {
	return &Manager{
		deps:        deps,
		maxSessions: maxSessions,
		idleTimeout: idleTimeout,
		sessions:    make(map[string]*Session),
	}
}

// Create открывает новую сессию
func (m *Manager) Create(ctx context.Context, player string) (*Session, error) {
	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w (%d)", ErrSessionLimit, m.maxSessions)
	}

	id := NewSessionID()
	// Резервируем место до создания, чтобы лимит не превысили параллельные запросы
	m.sessions[id] = nil
	m.mu.Unlock()

	s := NewSession(ctx, id, player, m.deps)

	m.mu.Lock()
	m.sessions[id] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.deps.Metrics.sessions(count)
	return s, nil
}

// Get возвращает сессию по идентификатору
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || s == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete закрывает сессию
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok || s == nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()

	m.deps.Metrics.sessions(count)
	return nil
}

// Count количество открытых сессий
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs возвращает отсортированные идентификаторы сессий
func (m *Manager) IDs() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id, s := range m.sessions {
		if s != nil {
			ids = append(ids, id)
		}
	}
	m.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Sweep удаляет сессии, неактивные дольше idleTimeout. Возвращает число удалённых.
func (m *Manager) Sweep(now time.Time) int {
	if m.idleTimeout <= 0 {
		return 0
	}

	m.mu.RLock()
	var stale []string
	for id, s := range m.sessions {
		if s != nil && now.Sub(s.idleSince()) > m.idleTimeout {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, id := range stale {
		if m.Delete(id) == nil {
			removed++
		}
	}
	if removed > 0 {
		logging.Info("🧹 Удалено неактивных сессий: %d", removed)
	}
	return removed
}

// Run периодически очищает неактивные сессии до отмены контекста
func (m *Manager) Run(ctx context.Context) {
	if m.idleTimeout <= 0 {
		return
	}

	interval := m.idleTimeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}
