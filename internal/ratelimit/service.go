package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrLimitExceeded = errors.New("rate limit exceeded")

func IsLimitExceededError(err error) bool {
	return errors.Is(err, ErrLimitExceeded)
}

// CounterStore is the injected home of the counters. Increment must be atomic
// per key: concurrent callers may never observe the same count.
type CounterStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Quota bounds the number of requests inside one window kind.
type Quota struct {
	Requests int64
	Window   Kind
}

// Config layers the quotas: PerDay and PerHour count every request of a
// client across all endpoints, PerMinute counts per endpoint path, and
// Overrides replaces the per-minute quota for specific paths. A quota with
// Requests <= 0 is not enforced.
type Config struct {
	PerDay    int64
	PerHour   int64
	PerMinute int64
	Overrides map[string]Quota
}

type Decision struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
	Scope      string
	Window     Kind
}

// Reason names the breached quota for the client-facing error body.
func (d Decision) Reason() string {
	return fmt.Sprintf("rate limit exceeded: %d per %s", d.Limit, d.Window)
}

type Service struct {
	store CounterStore
	cfg   Config
	now   func() time.Time
}

type Option func(*Service)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store CounterStore, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("counter store is required")
	}
	if cfg.Overrides == nil {
		cfg.Overrides = make(map[string]Quota)
	}

	s := &Service{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

const scopeGlobal = "global"

type rule struct {
	scope string
	quota Quota
}

// Allow increments every window applicable to the request and compares each
// count to its quota. All applicable counters are bumped even when the
// request ends up rejected, so rejected traffic still burns quota. Returns
// ErrLimitExceeded with the first breached window's Decision when any window
// is over quota.
func (s *Service) Allow(ctx context.Context, client, endpoint string) (Decision, error) {
	now := s.now()

	var breached *Decision
	tightest := Decision{Allowed: true, Remaining: -1}

	for _, r := range s.rulesFor(endpoint) {
		window := r.quota.Window.Duration()
		start := now.Truncate(window)
		key := counterKey(client, r.scope, r.quota.Window, start)

		count, err := s.store.Increment(ctx, key, window)
		if err != nil {
			return Decision{}, err
		}

		remaining := r.quota.Requests - count
		if remaining < 0 {
			remaining = 0
		}
		d := Decision{
			Allowed:    count <= r.quota.Requests,
			Limit:      r.quota.Requests,
			Remaining:  remaining,
			RetryAfter: start.Add(window).Sub(now),
			Scope:      r.scope,
			Window:     r.quota.Window,
		}

		if !d.Allowed {
			if breached == nil {
				breached = &d
			}
			continue
		}
		if tightest.Remaining < 0 || d.Remaining < tightest.Remaining {
			tightest = d
		}
	}

	if breached != nil {
		return *breached, ErrLimitExceeded
	}
	return tightest, nil
}

func (s *Service) rulesFor(endpoint string) []rule {
	rules := make([]rule, 0, 3)
	if s.cfg.PerDay > 0 {
		rules = append(rules, rule{scope: scopeGlobal, quota: Quota{Requests: s.cfg.PerDay, Window: Day}})
	}
	if s.cfg.PerHour > 0 {
		rules = append(rules, rule{scope: scopeGlobal, quota: Quota{Requests: s.cfg.PerHour, Window: Hour}})
	}

	if q, ok := s.cfg.Overrides[endpoint]; ok {
		if q.Requests > 0 {
			rules = append(rules, rule{scope: endpoint, quota: q})
		}
		return rules
	}
	if s.cfg.PerMinute > 0 {
		rules = append(rules, rule{scope: endpoint, quota: Quota{Requests: s.cfg.PerMinute, Window: Minute}})
	}
	return rules
}

// The window start is part of the key, so a new window always lands on a
// fresh counter and stale ones just expire.
func counterKey(client, scope string, kind Kind, start time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%s:%s:%d", client, scope, kind, start.Unix())
}
