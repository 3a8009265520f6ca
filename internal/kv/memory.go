package kv

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value   []byte
	expires time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

type Memory struct {
	mu    sync.RWMutex
	slots map[string]memEntry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{slots: make(map[string]memEntry), now: time.Now}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.slots[key]
	if !ok || e.expired(m.now()) {
		return nil, ErrNoValue
	}
	return append([]byte(nil), e.value...), nil
}

func (m *Memory) Save(ctx context.Context, key string, value []byte) error {
	return m.SaveTTL(ctx, key, value, 0)
}

func (m *Memory) SaveTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.slots[key] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, key)
	return nil
}

func (m *Memory) Purge(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var n int64
	for k, e := range m.slots {
		if e.expired(now) {
			delete(m.slots, k)
			n++
		}
	}
	return n, nil
}

// Len counts every slot held, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.slots)
}

func (m *Memory) Close() error { return nil }
