package portal

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for development without Postgres. It
// enforces the same uniqueness rules as the database schema.
type MemoryStore struct {
	mu     sync.Mutex
	users  map[string]User
	events map[int64]Event
	regs   []Registration
	nextID int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: map[string]User{}, events: map[int64]Event{}}
}

func (m *MemoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) countFor(eventID int64) int {
	n := 0
	for _, r := range m.regs {
		if r.EventID == eventID {
			n++
		}
	}
	return n
}

func (m *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryStore) InsertUser(ctx context.Context, u User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return User{}, ErrDuplicate
	}
	u.ID = m.id()
	u.CreatedAt = time.Now().UTC()
	m.users[u.Email] = u
	return u, nil
}

func (m *MemoryStore) InsertEvent(ctx context.Context, e Event) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.id()
	e.CreatedAt = time.Now().UTC()
	m.events[e.ID] = e
	return e, nil
}

func (m *MemoryStore) UpdateEvent(ctx context.Context, e Event) (*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.events[e.ID]
	if !ok {
		return nil, nil
	}
	cur.Title, cur.Description, cur.Link = e.Title, e.Description, e.Link
	cur.EventDate, cur.Deadline = e.EventDate, e.Deadline
	m.events[e.ID] = cur
	cur.RegistrationCount = m.countFor(e.ID)
	return &cur, nil
}

func (m *MemoryStore) GetEvent(ctx context.Context, id int64) (*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	e.RegistrationCount = m.countFor(id)
	return &e, nil
}

func (m *MemoryStore) ListEvents(ctx context.Context, f EventFilter, today Date) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	res := []Event{}
	term := strings.ToLower(f.Search)
	for _, e := range m.events {
		if f.CreatedBy != 0 && e.CreatedBy != f.CreatedBy {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(e.Title), term) && !strings.Contains(strings.ToLower(e.Description), term) {
			continue
		}
		if f.OpenOnly && e.Deadline.Before(today.Time) {
			continue
		}
		e.RegistrationCount = m.countFor(e.ID)
		res = append(res, e)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].EventDate.Equal(res[j].EventDate.Time) {
			return res[i].EventDate.After(res[j].EventDate.Time)
		}
		return res[i].ID > res[j].ID
	})
	return res, nil
}

// DeleteEvent refuses to orphan registrations, mirroring the foreign key.
func (m *MemoryStore) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return false, nil
	}
	if m.countFor(id) > 0 {
		return false, ErrForeignKey
	}
	delete(m.events, id)
	return true, nil
}

func (m *MemoryStore) FindRegistration(ctx context.Context, email string, eventID int64) (*Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.regs {
		if r.Email == email && r.EventID == eventID {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) InsertRegistration(ctx context.Context, reg Registration) (Registration, error) {
	if err := ctx.Err(); err != nil {
		return Registration{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[reg.EventID]; !ok {
		return Registration{}, ErrForeignKey
	}
	for _, r := range m.regs {
		if r.Email == reg.Email && r.EventID == reg.EventID {
			return Registration{}, ErrDuplicate
		}
	}
	reg.ID = m.id()
	m.regs = append(m.regs, reg)
	return reg, nil
}

// ListRegistrationsByEmail returns newest first.
func (m *MemoryStore) ListRegistrationsByEmail(ctx context.Context, email string) ([]RegistrationDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	res := []RegistrationDetail{}
	for i := len(m.regs) - 1; i >= 0; i-- {
		r := m.regs[i]
		if r.Email != email {
			continue
		}
		e := m.events[r.EventID]
		res = append(res, RegistrationDetail{
			Registration: r,
			Title:        e.Title,
			Description:  e.Description,
			EventDate:    e.EventDate,
			Deadline:     e.Deadline,
			Link:         e.Link,
		})
	}
	return res, nil
}

// ListRegistrationsByEvent returns newest first.
func (m *MemoryStore) ListRegistrationsByEvent(ctx context.Context, eventID int64) ([]Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	res := []Registration{}
	for i := len(m.regs) - 1; i >= 0; i-- {
		if m.regs[i].EventID == eventID {
			res = append(res, m.regs[i])
		}
	}
	return res, nil
}

func (m *MemoryStore) DeleteRegistrationsByEvent(ctx context.Context, eventID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.regs[:0]
	var n int64
	for _, r := range m.regs {
		if r.EventID == eventID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.regs = kept
	return n, nil
}

var _ Store = (*MemoryStore)(nil)
