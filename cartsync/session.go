package cartsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Rohit1034/HrudaySparshi/models"
	aws_pkg "github.com/Rohit1034/HrudaySparshi/pkg/aws"

	"go.uber.org/zap"
)

// ErrInactive is returned by mutations on a session that is not ACTIVE.
var ErrInactive = errors.New("cart session is not active")

type State int

const (
	StateInactive State = iota
	StateLoading
	StateActive
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "LOADING"
	case StateActive:
		return "ACTIVE"
	default:
		return "INACTIVE"
	}
}

// Store persists full cart snapshots.
type Store interface {
	Load(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) (bool, error)
}

type Config struct {
	FlushInterval  time.Duration
	PersistTimeout time.Duration
	SessionIdle    time.Duration
}

// Session holds one user's cart in memory. Every mutation is followed by an
// asynchronous write of the whole cart, and a ticker rewrites non-empty
// carts while the session is ACTIVE. Store errors are logged, never
// returned: memory is authoritative for the life of the session.
type Session struct {
	userID  string
	store   Store
	cfg     Config
	logger  *zap.Logger
	metrics *aws_pkg.MetricsClient
	writes  *sync.WaitGroup
	now     func() time.Time

	mu       sync.Mutex
	state    State
	items    []models.CartItem
	revision int64
	lastUsed time.Time
	// final is the cart as it was when the session ended; writes issued
	// before End still persist it.
	final *models.Cart
	stop  chan struct{}
}

func NewSession(userID string, store Store, cfg Config, log *zap.Logger) *Session {
	return newSession(userID, store, cfg, log, nil, &sync.WaitGroup{})
}

func newSession(userID string, store Store, cfg Config, log *zap.Logger, metrics *aws_pkg.MetricsClient, writes *sync.WaitGroup) *Session {
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 5 * time.Second
	}
	return &Session{
		userID:  userID,
		store:   store,
		cfg:     cfg,
		logger:  log.With(zap.String("user_id", userID)),
		metrics: metrics,
		writes:  writes,
		now:     time.Now,
		state:   StateInactive,
		items:   []models.CartItem{},
	}
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Activate loads the persisted cart and starts the periodic flush. A failed
// load leaves an empty ACTIVE cart.
func (s *Session) Activate(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateInactive {
		s.mu.Unlock()
		return
	}
	s.state = StateLoading
	s.mu.Unlock()

	items := []models.CartItem{}
	var revision int64

	loadCtx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	cart, err := s.store.Load(loadCtx, s.userID)
	cancel()
	if err != nil {
		s.logger.Warn("cart load failed, starting empty", zap.Error(err))
	} else if cart != nil {
		if cart.Items != nil {
			items = cart.Items
		}
		revision = cart.Revision
	}

	s.mu.Lock()
	if s.state != StateLoading {
		// Ended while the load was in flight.
		s.mu.Unlock()
		return
	}
	s.items = items
	s.revision = revision
	s.lastUsed = s.now()
	s.final = nil
	s.state = StateActive
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	if s.cfg.FlushInterval > 0 {
		go s.flushLoop(stop)
	}
}

// End is logout: memory is cleared and the ticker stopped. Writes already
// issued still complete; nothing new is written.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		s.state = StateInactive
		return
	}
	s.final = s.snapshotLocked()
	s.state = StateInactive
	s.items = []models.CartItem{}
	close(s.stop)
}

// Wait blocks until every write issued so far has finished.
func (s *Session) Wait() {
	s.writes.Wait()
}

func (s *Session) Add(product models.CartItem) error {
	return s.mutate(func() {
		for i := range s.items {
			if s.items[i].ProductID == product.ProductID {
				s.items[i].Quantity++
				return
			}
		}
		product.Quantity = 1
		s.items = append(s.items, product)
	})
}

// Remove drops productID; removing an absent product is a no-op.
func (s *Session) Remove(productID string) error {
	return s.mutate(func() { s.removeLocked(productID) })
}

// SetQuantity overwrites the quantity; zero or less removes the entry.
func (s *Session) SetQuantity(productID string, quantity int) error {
	return s.mutate(func() {
		if quantity <= 0 {
			s.removeLocked(productID)
			return
		}
		for i := range s.items {
			if s.items[i].ProductID == productID {
				s.items[i].Quantity = quantity
				return
			}
		}
	})
}

func (s *Session) Clear() error {
	return s.mutate(func() { s.items = []models.CartItem{} })
}

func (s *Session) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, item := range s.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func (s *Session) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

func (s *Session) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartItem{}, s.items...)
}

// Snapshot returns a copy of the in-memory cart.
func (s *Session) Snapshot() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.snapshotLocked()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = s.now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) mutate(fn func()) error {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return ErrInactive
	}
	fn()
	now := s.now()
	s.lastUsed = now
	s.revision = nextRevision(s.revision, now)
	s.mu.Unlock()

	s.persistAsync()
	return nil
}

// nextRevision is the mutation time in microseconds, bumped when the clock
// has not moved, so revisions only grow.
func nextRevision(prev int64, now time.Time) int64 {
	rev := now.UnixMicro()
	if rev <= prev {
		rev = prev + 1
	}
	return rev
}

func (s *Session) removeLocked(productID string) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *Session) snapshotLocked() *models.Cart {
	return &models.Cart{
		UserID:    s.userID,
		Items:     append([]models.CartItem{}, s.items...),
		Revision:  s.revision,
		UpdatedAt: s.now().UTC(),
	}
}

// persistAsync issues one write of whatever the cart holds when the
// goroutine runs.
func (s *Session) persistAsync() {
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		s.persist("mutation")
	}()
}

func (s *Session) persist(reason string) {
	s.mu.Lock()
	var cart *models.Cart
	switch {
	case s.state == StateActive:
		cart = s.snapshotLocked()
	case s.final != nil:
		cart = s.final
	}
	s.mu.Unlock()
	if cart == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
	defer cancel()

	applied, err := s.store.Save(ctx, cart)
	if err != nil {
		s.logger.Warn("cart persist failed",
			zap.String("reason", reason),
			zap.Int64("revision", cart.Revision),
			zap.Error(err),
		)
		if s.metrics.IsEnabled() {
			_ = s.metrics.RecordCount(ctx, aws_pkg.MetricCartPersistFailures, nil)
		}
		return
	}
	if !applied {
		s.logger.Debug("stale cart write ignored", zap.Int64("revision", cart.Revision))
	}
}

func (s *Session) flushLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			empty := len(s.items) == 0
			s.mu.Unlock()
			if !empty {
				s.persist("periodic")
			}
		}
	}
}
