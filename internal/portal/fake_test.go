package portal

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"
)

// memStore wraps MemoryStore with fault injection.
type memStore struct {
	*MemoryStore
	// err fails every call.
	err error
	// getDelay stalls GetEvent until ctx is done or the delay elapses.
	getDelay time.Duration
	// skipCheck hides existing users from FindUserByEmail so the insert
	// constraint is what rejects a duplicate.
	skipCheck bool
	// beforeInsertRegistration runs ahead of each registration insert.
	beforeInsertRegistration func()
	// afterPurge runs after DeleteRegistrationsByEvent succeeds.
	afterPurge func(eventID int64)
}

func newMemStore() *memStore {
	return &memStore{MemoryStore: NewMemoryStore()}
}

func (m *memStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.skipCheck {
		return nil, nil
	}
	return m.MemoryStore.FindUserByEmail(ctx, email)
}

func (m *memStore) InsertUser(ctx context.Context, u User) (User, error) {
	if m.err != nil {
		return User{}, m.err
	}
	return m.MemoryStore.InsertUser(ctx, u)
}

func (m *memStore) InsertEvent(ctx context.Context, e Event) (Event, error) {
	if m.err != nil {
		return Event{}, m.err
	}
	return m.MemoryStore.InsertEvent(ctx, e)
}

func (m *memStore) UpdateEvent(ctx context.Context, e Event) (*Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.MemoryStore.UpdateEvent(ctx, e)
}

func (m *memStore) GetEvent(ctx context.Context, id int64) (*Event, error) {
	if m.getDelay > 0 {
		select {
		case <-time.After(m.getDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.MemoryStore.GetEvent(ctx, id)
}

func (m *memStore) ListEvents(ctx context.Context, f EventFilter, today Date) ([]Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.MemoryStore.ListEvents(ctx, f, today)
}

func (m *memStore) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.MemoryStore.DeleteEvent(ctx, id)
}

func (m *memStore) FindRegistration(ctx context.Context, email string, eventID int64) (*Registration, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.MemoryStore.FindRegistration(ctx, email, eventID)
}

func (m *memStore) InsertRegistration(ctx context.Context, r Registration) (Registration, error) {
	if m.err != nil {
		return Registration{}, m.err
	}
	if m.beforeInsertRegistration != nil {
		m.beforeInsertRegistration()
	}
	return m.MemoryStore.InsertRegistration(ctx, r)
}

func (m *memStore) DeleteRegistrationsByEvent(ctx context.Context, eventID int64) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	n, err := m.MemoryStore.DeleteRegistrationsByEvent(ctx, eventID)
	if err == nil && m.afterPurge != nil {
		m.afterPurge(eventID)
	}
	return n, err
}

// memProofs records stored artifacts. When gate is set, Put blocks until
// gate arrivals have been counted. When stall is set, Put waits for ctx.
type memProofs struct {
	mu    sync.Mutex
	refs  []string
	err   error
	gate  *sync.WaitGroup
	stall bool
}

func (p *memProofs) Put(ctx context.Context, data []byte, declaredName string) (string, error) {
	if p.stall {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if p.gate != nil {
		p.gate.Done()
		p.gate.Wait()
	}
	if p.err != nil {
		return "", p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ref := "uploads/" + strconv.Itoa(len(p.refs)) + "-" + declaredName
	p.refs = append(p.refs, ref)
	return ref, nil
}

func (p *memProofs) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.refs)
}

// plainHasher avoids bcrypt cost in workflow tests.
type plainHasher struct{}

func (plainHasher) Hash(s string) (string, error) { return "h:" + s, nil }
func (plainHasher) Verify(s, h string) bool       { return h == "h:"+s }

var errBroken = errors.New("connection refused")
