package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Memory is an in-process fixed-window counter per key. It is only correct
// for a single server process; use Redis when running more than one.
//
// A key's window opens on its first attempt and admits Policy.Limit
// attempts until it closes Policy.Window later. Expired keys are dropped
// while serving later calls, so no background goroutine is needed.
type Memory struct {
	policy Policy
	now    func() time.Time

	mu        sync.Mutex
	entries   map[string]*window
	lastSweep time.Time
}

// NewMemory creates an in-process limiter.
func NewMemory(policy Policy) *Memory {
	return newMemoryWithClock(policy, time.Now)
}

func newMemoryWithClock(policy Policy, now func() time.Time) *Memory {
	return &Memory{
		policy:    policy,
		now:       now,
		entries:   make(map[string]*window),
		lastSweep: now(),
	}
}

func (m *Memory) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)

	w, ok := m.entries[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(m.policy.Window)}
		m.entries[key] = w
	}

	// Rejected attempts do not count.
	if w.count >= m.policy.Limit {
		return Decision{Allowed: false, RetryAfter: w.resetAt.Sub(now)}, nil
	}
	w.count++

	return Decision{Allowed: true, Remaining: m.policy.Limit - w.count}, nil
}

// sweep drops closed windows at most once per window. Caller holds m.mu.
func (m *Memory) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.policy.Window {
		return
	}
	for k, w := range m.entries {
		if !now.Before(w.resetAt) {
			delete(m.entries, k)
		}
	}
	m.lastSweep = now
}

// size reports the number of tracked keys.
func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
