package session

import (
	"sync"
	"time"
)

type attempt struct {
	count       int
	first       time.Time
	lockedUntil time.Time
}

// Lockout counts failed logins per key. maxTries failures inside window lock
// the key for lockFor; a successful login clears the count.
type Lockout struct {
	mu       sync.Mutex
	attempts map[string]*attempt
	maxTries int
	window   time.Duration
	lockFor  time.Duration
	now      func() time.Time
}

func NewLockout(maxTries int, window, lockFor time.Duration) *Lockout {
	if maxTries <= 0 {
		maxTries = 1
	}
	return &Lockout{
		attempts: make(map[string]*attempt),
		maxTries: maxTries,
		window:   window,
		lockFor:  lockFor,
		now:      time.Now,
	}
}

// Locked reports whether key is locked and for how much longer.
func (l *Lockout) Locked(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.attempts[key]
	if !ok {
		return false, 0
	}
	if left := a.lockedUntil.Sub(l.now()); left > 0 {
		return true, left
	}
	return false, 0
}

// Fail records a failure and reports whether it triggered a lock.
func (l *Lockout) Fail(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	a, ok := l.attempts[key]
	if !ok || now.Sub(a.first) > l.window {
		a = &attempt{first: now}
		l.attempts[key] = a
	}
	a.count++
	if a.count >= l.maxTries {
		a.lockedUntil = now.Add(l.lockFor)
		a.count = 0
		a.first = now
		return true
	}
	return false
}

func (l *Lockout) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// Cleanup drops entries that are neither locked nor inside a counting window.
func (l *Lockout) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, a := range l.attempts {
		if now.After(a.lockedUntil) && now.Sub(a.first) > l.window {
			delete(l.attempts, k)
		}
	}
}
