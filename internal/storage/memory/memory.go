package memory

import (
	"context"
	"sync"
	"time"
)

// Store keeps counters in process memory. Expired entries are lazily reset on
// the next increment and swept by the janitor.
type Store struct {
	mu           sync.Mutex
	counters     map[string]*entry
	now          func() time.Time
	cleanupEvery time.Duration
}

type entry struct {
	count     int64
	expiresAt time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithCleanupEvery(d time.Duration) Option {
	return func(s *Store) { s.cleanupEvery = d }
}

func New(opts ...Option) *Store {
	s := &Store{
		counters:     make(map[string]*entry),
		now:          time.Now,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.counters[key]
	if !ok || !ent.expiresAt.After(now) {
		ent = &entry{expiresAt: now.Add(window)}
		s.counters[key] = ent
	}
	ent.count++
	return ent.count, nil
}

func (s *Store) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.counters {
		if !ent.expiresAt.After(now) {
			delete(s.counters, k)
		}
	}
}

// StartJanitor sweeps expired counters periodically until ctx is cancelled.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
