package auth

import (
	"context"
	"sync"
	"time"
)

// Session is the identity snapshot taken at login. It is not refreshed when
// the underlying user record changes.
type Session struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// SessionStore keeps session attributes keyed by an opaque session id.
// Get returns (nil, nil) for unknown or expired ids.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, id string, s Session, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
}

// MemorySessions is a process-local store for dev/testing.
type MemorySessions struct {
	mu    sync.Mutex
	now   func() time.Time
	items map[string]memorySession
}

type memorySession struct {
	s       Session
	expires time.Time
}

// NewMemorySessions creates an empty in-memory store.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{now: time.Now, items: make(map[string]memorySession)}
}

// Get returns the session for id.
func (m *MemorySessions) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(item.expires) {
		delete(m.items, id)
		return nil, nil
	}
	s := item.s
	return &s, nil
}

// Set stores s under id for ttl.
func (m *MemorySessions) Set(_ context.Context, id string, s Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = memorySession{s: s, expires: m.now().Add(ttl)}
	return nil
}

// Destroy removes id.
func (m *MemorySessions) Destroy(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}
