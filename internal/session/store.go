// Package session keeps one calculator per open page. Sessions live in memory
// only and are evicted after sitting idle; nothing survives a restart.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"tip-calculator/internal/tipcalc"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session not found")

type entry struct {
	mu       sync.Mutex
	calc     *tipcalc.Calculator
	lastSeen time.Time
	settle   *tipcalc.Debouncer
}

// Store is an in-memory registry of calculators.
type Store struct {
	opts        tipcalc.Options
	ttl         time.Duration
	settleDelay time.Duration
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*entry
}

// Option configures a Store.
type Option func(*Store)

// WithSettleDelay sets the quiet period Settled waits for. The default is
// tipcalc.DefaultDebounce.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Store) { s.settleDelay = d }
}

func NewStore(opts tipcalc.Options, ttl time.Duration, options ...Option) *Store {
	s := &Store{
		opts:        opts,
		ttl:         ttl,
		settleDelay: tipcalc.DefaultDebounce,
		now:         time.Now,
		sessions:    make(map[string]*entry),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Create starts a session with a calculator in its default state.
func (s *Store) Create() (string, tipcalc.Result, tipcalc.State) {
	id := uuid.New().String()
	e := &entry{
		calc:     tipcalc.New(s.opts),
		lastSeen: s.now(),
		settle:   tipcalc.NewDebouncer(s.settleDelay),
	}

	s.mu.Lock()
	s.sessions[id] = e
	s.mu.Unlock()

	return id, e.calc.Result(), e.calc.Snapshot()
}

// With runs fn against the session's calculator while holding its lock.
// Calls on one session are serialized; different sessions do not contend.
func (s *Store) With(id string, fn func(c *tipcalc.Calculator) error) error {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = s.now()
	return fn(e.calc)
}

// Settled runs fn with the session's result and breakdown once the session
// has gone the settle delay without another Settled call. A newer call
// replaces the pending one. fn runs on its own goroutine.
func (s *Store) Settled(id string, fn func(tipcalc.Result, tipcalc.Breakdown)) error {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.settle.Trigger(func() {
		e.mu.Lock()
		res, b := e.calc.Result(), e.calc.Breakdown()
		e.mu.Unlock()
		fn(res, b)
	})
	return nil
}

// Delete ends a session and drops its pending settle callback.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	e.settle.Stop()
	delete(s.sessions, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		idle := e.lastSeen.Before(cutoff)
		e.mu.Unlock()
		if idle {
			e.settle.Stop()
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every interval until ctx is done. onSweep, if set, receives
// the number of sessions removed by each sweep.
func (s *Store) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := s.Sweep()
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}

// Collector exposes the number of open sessions to Prometheus.
func (s *Store) Collector() prometheus.Collector {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "tipcalc",
		Name:      "sessions_active",
		Help:      "Number of open calculator sessions.",
	}, func() float64 { return float64(s.Len()) })
}
