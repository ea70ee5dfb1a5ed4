package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/AliAbadiHub/val-backend/internal/user"
)

// Memory is the in-memory store used by unit tests and local development.
// It keeps insertion order for listings and enforces the same uniqueness
// rules as the PostgreSQL schema.
type Memory struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]user.User
	order    []uuid.UUID
	profiles map[uuid.UUID]user.Profile // keyed by owning user ID
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[uuid.UUID]user.User),
		profiles: make(map[uuid.UUID]user.Profile),
	}
}

func (m *Memory) CreateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	m.users[u.ID] = *u
	m.order = append(m.order, u.ID)
	return nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetUserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		out := u
		return &out, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) ListUsers(_ context.Context) ([]user.WithProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]user.WithProfile, 0, len(m.order))
	for _, id := range m.order {
		u, ok := m.users[id]
		if !ok {
			continue
		}
		wp := user.WithProfile{User: u}
		if p, ok := m.profiles[id]; ok {
			profile := p
			wp.Profile = &profile
		}
		out = append(out, wp)
	}
	return out, nil
}

func (m *Memory) GetUserWithProfile(ctx context.Context, email string) (*user.WithProfile, error) {
	u, err := m.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	wp := user.WithProfile{User: *u}
	if p, ok := m.profiles[u.ID]; ok {
		profile := p
		wp.Profile = &profile
	}
	return &wp, nil
}

func (m *Memory) UpdateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	delete(m.profiles, id) // cascade
	for i, ordered := range m.order {
		if ordered == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) CreateProfile(_ context.Context, p *user.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[p.UserID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.profiles[p.UserID]; ok {
		return ErrDuplicateProfile
	}
	m.profiles[p.UserID] = *p
	return nil
}

func (m *Memory) GetProfileByUserID(_ context.Context, userID uuid.UUID) (*user.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.profiles[userID]; ok {
		out := p
		return &out, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateProfile(_ context.Context, p *user.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.UserID]; !ok {
		return ErrNotFound
	}
	m.profiles[p.UserID] = *p
	return nil
}
