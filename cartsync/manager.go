package cartsync

import (
	"context"
	"sync"
	"time"

	aws_pkg "github.com/Rohit1034/HrudaySparshi/pkg/aws"

	"go.uber.org/zap"
)

type entry struct {
	session *Session
	ready   chan struct{}
}

// Manager owns at most one Session per user.
type Manager struct {
	store   Store
	cfg     Config
	logger  *zap.Logger
	metrics *aws_pkg.MetricsClient
	writes  sync.WaitGroup

	mu       sync.Mutex
	sessions map[string]*entry
	closed   bool

	stopJanitor chan struct{}
	janitorDone chan struct{}
}

type ManagerOption func(*Manager)

func WithMetrics(m *aws_pkg.MetricsClient) ManagerOption {
	return func(mgr *Manager) { mgr.metrics = m }
}

func NewManager(store Store, cfg Config, log *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:       store,
		cfg:         cfg,
		logger:      log,
		sessions:    make(map[string]*entry),
		stopJanitor: make(chan struct{}),
		janitorDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if cfg.SessionIdle > 0 {
		go m.janitor()
	} else {
		close(m.janitorDone)
	}
	return m
}

// Session returns the user's active session, loading it on first use.
// Callers arriving while the load is in flight wait for the same load.
func (m *Manager) Session(ctx context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrInactive
	}
	e, ok := m.sessions[userID]
	if !ok {
		e = &entry{
			session: newSession(userID, m.store, m.cfg, m.logger, m.metrics, &m.writes),
			ready:   make(chan struct{}),
		}
		m.sessions[userID] = e
	}
	m.mu.Unlock()

	if !ok {
		// The load is shared by every waiter, so it outlives this caller;
		// PersistTimeout still bounds it.
		e.session.Activate(context.WithoutCancel(ctx))
		close(e.ready)
		return e.session, nil
	}

	select {
	case <-e.ready:
		e.session.touch()
		return e.session, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// End logs the user out of their cart session. The persisted cart keeps
// whatever was last written.
func (m *Manager) End(userID string) {
	e := m.remove(userID)
	if e == nil {
		return
	}
	<-e.ready
	e.session.End()
}

// ClearIfActive empties the user's cart if a session is live.
func (m *Manager) ClearIfActive(ctx context.Context, userID string) {
	m.mu.Lock()
	e, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return
	}

	select {
	case <-e.ready:
	case <-ctx.Done():
		return
	}
	if err := e.session.Clear(); err != nil {
		m.logger.Debug("cart clear skipped", zap.String("user_id", userID), zap.Error(err))
	}
}

// ActiveSessions reports how many sessions are held in memory.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close ends every session after a last write of each non-empty cart and
// waits for outstanding writes or ctx.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	entries := m.sessions
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()

	close(m.stopJanitor)
	<-m.janitorDone

	for _, e := range entries {
		<-e.ready
		m.retire(e.session)
	}

	done := make(chan struct{})
	go func() {
		m.writes.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) remove(userID string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[userID]
	if !ok {
		return nil
	}
	delete(m.sessions, userID)
	return e
}

// retire ends s and issues one final write when the cart is not empty.
func (m *Manager) retire(s *Session) {
	nonEmpty := s.ItemCount() > 0
	s.End()
	if nonEmpty {
		s.persistAsync()
	}
}

func (m *Manager) janitor() {
	defer close(m.janitorDone)

	interval := m.cfg.SessionIdle / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopJanitor:
			return
		case <-ticker.C:
			m.expireIdle()
		}
	}
}

func (m *Manager) expireIdle() {
	cutoff := time.Now().Add(-m.cfg.SessionIdle)

	m.mu.Lock()
	var stale []*entry
	for userID, e := range m.sessions {
		select {
		case <-e.ready:
		default:
			continue
		}
		if e.session.idleSince().Before(cutoff) {
			stale = append(stale, e)
			delete(m.sessions, userID)
		}
	}
	m.mu.Unlock()

	for _, e := range stale {
		m.logger.Debug("ending idle cart session", zap.String("user_id", e.session.UserID()))
		m.retire(e.session)
	}
}
