package calculator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
)

const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 10000
)

// Session is a snapshot of one calculator owned by a Store.
type Session struct {
	ID         string    `json:"id"`
	State      State     `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// StoreOptions configures a Store. Zero values select the defaults.
type StoreOptions struct {
	TTL         time.Duration
	MaxSessions int
	Registerer  prom.Registerer
	Now         func() time.Time
}

// Store owns the calculator state of every live session. Each Dispatch runs
// the reducer under the store lock, so concurrent requests against the same
// session apply one after another.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	active  prom.Gauge
	expired prom.Counter
}

// NewStore constructs a Store and registers its metrics on opts.Registerer,
// or on a private registry when none is given.
func NewStore(opts StoreOptions) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Registerer == nil {
		opts.Registerer = prom.NewRegistry()
	}

	s := &Store{
		sessions:    make(map[string]*Session),
		ttl:         opts.TTL,
		maxSessions: opts.MaxSessions,
		now:         opts.Now,
		active: prom.NewGauge(prom.GaugeOpts{
			Namespace: "calculator",
			Name:      "sessions_active",
			Help:      "Number of live calculator sessions",
		}),
		expired: prom.NewCounter(prom.CounterOpts{
			Namespace: "calculator",
			Name:      "sessions_expired_total",
			Help:      "Calculator sessions removed after sitting idle past the TTL",
		}),
	}
	opts.Registerer.MustRegister(s.active, s.expired)

	return s
}

// Create starts a fresh calculator session.
func (s *Store) Create() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		return Session{}, fmt.Errorf("%w: %d live sessions", ErrSessionLimit, len(s.sessions))
	}

	now := s.now()
	sess := &Session{
		ID:         uuid.New().String(),
		State:      NewState(),
		CreatedAt:  now,
		LastUsedAt: now,
	}
	s.sessions[sess.ID] = sess
	s.active.Set(float64(len(s.sessions)))

	return *sess, nil
}

// Get returns a snapshot of the session.
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return *sess, nil
}

// Dispatch applies a to the session's state and returns the updated snapshot.
func (s *Store) Dispatch(id string, a Action) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	sess.State = Reduce(sess.State, a)
	sess.LastUsedAt = s.now()

	return *sess, nil
}

// Delete removes the session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	s.active.Set(float64(len(s.sessions)))

	return nil
}

// Sweep removes sessions idle for longer than the TTL as of now and returns
// how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastUsedAt) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}

	s.expired.Add(float64(removed))
	s.active.Set(float64(len(s.sessions)))

	return removed
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
